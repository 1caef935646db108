// Package models defines the core domain records for RichFlow.
//
// All records are owned by exactly one user; scoping is enforced by the
// server, never by clients. Monetary fields use decimal.Decimal so that
// values arriving from the network as either JSON numbers or quoted strings
// decode without loss.
//
// # Records
//
//   - IncomeItem: an income line, categorized by IncomeType and Quadrant
//   - ExpenseItem: a recurring expense
//   - AssetItem / LiabilityItem: balance-sheet entries
//   - CashSavings: a single per-user scalar, not a list
//   - Currency: display preference (symbol + name)
//
// Derived figures (net worth, cashflow, progress percent, ...) are computed
// in package finance and are never persisted.
package models
