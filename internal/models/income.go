package models

import (
	"strings"

	"github.com/shopspring/decimal"
)

// IncomeType categorizes an income line. Canonical values are uppercase;
// comparison against server data is case-insensitive.
type IncomeType string

const (
	IncomeEarned    IncomeType = "EARNED"
	IncomePortfolio IncomeType = "PORTFOLIO"
	IncomePassive   IncomeType = "PASSIVE"
)

// ParseIncomeType maps a raw server value to an IncomeType.
// Unrecognized values default to EARNED rather than failing; the network
// boundary must never produce an error for a malformed enum.
func ParseIncomeType(raw string) IncomeType {
	switch IncomeType(strings.ToUpper(strings.TrimSpace(raw))) {
	case IncomePortfolio:
		return IncomePortfolio
	case IncomePassive:
		return IncomePassive
	default:
		return IncomeEarned
	}
}

// Quadrant is the income-source category used to group earned income for
// display: one of the four cashflow-quadrant values.
type Quadrant string

const (
	QuadrantEmployee      Quadrant = "EMPLOYEE"
	QuadrantSelfEmployed  Quadrant = "SELF_EMPLOYED"
	QuadrantBusinessOwner Quadrant = "BUSINESS_OWNER"
	QuadrantInvestor      Quadrant = "INVESTOR"
)

// Quadrants lists the four valid quadrant values.
var Quadrants = []Quadrant{
	QuadrantEmployee,
	QuadrantSelfEmployed,
	QuadrantBusinessOwner,
	QuadrantInvestor,
}

// DefaultQuadrant returns the quadrant an income type falls back to when no
// valid quadrant was supplied. The mapping is fixed: earned income is
// employee work, portfolio income is investing, passive income is business
// ownership.
func (t IncomeType) DefaultQuadrant() Quadrant {
	switch t {
	case IncomePortfolio:
		return QuadrantInvestor
	case IncomePassive:
		return QuadrantBusinessOwner
	default:
		return QuadrantEmployee
	}
}

// ResolveQuadrant normalizes a caller- or server-supplied quadrant value.
// Matching ignores case and separator characters ("self-employed",
// "Self Employed" and "SELF_EMPLOYED" are all valid). Anything that does not
// match one of the four quadrants resolves to the type's default, so add and
// update behave identically and never reject a record over this field.
func ResolveQuadrant(raw string, typ IncomeType) Quadrant {
	key := canonQuadrantKey(raw)
	for _, q := range Quadrants {
		if key == canonQuadrantKey(string(q)) {
			return q
		}
	}
	return typ.DefaultQuadrant()
}

func canonQuadrantKey(s string) string {
	s = strings.ToUpper(s)
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, s)
}

// IncomeItem is a single income line.
type IncomeItem struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Amount   decimal.Decimal `json:"amount"`
	Type     IncomeType      `json:"type"`
	Quadrant Quadrant        `json:"quadrant"`
}
