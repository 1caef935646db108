// Package client implements typed remote data access against a RichFlow
// backend. Each method issues one HTTP request, checks the status, and runs
// the body through package normalize, so callers only ever see canonical
// records. Responses may wrap entities or return them bare; both decode.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/richflow/richflow/internal/finance"
	"github.com/richflow/richflow/internal/models"
	"github.com/richflow/richflow/internal/normalize"
)

// defaultTimeout bounds every request so a dead backend cannot leave a
// caller's loading state stuck forever.
const defaultTimeout = 15 * time.Second

// Client is a typed HTTP client for the RichFlow REST API.
// It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.RWMutex
	token string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout overrides the default per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithToken sets the initial bearer token.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a Client for the backend at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the bearer token used on subsequent requests.
// Pass the empty string to clear it on logout.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// StatusError reports a non-2xx backend response.
type StatusError struct {
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.Status)
}

// do issues one request and returns the response body on a 2xx status.
func (c *Client) do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: read response: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal(data, &errBody)
		return nil, fmt.Errorf("%s %s: %w", method, path, &StatusError{Status: resp.StatusCode, Message: errBody.Error})
	}

	return data, nil
}

// IncomeInput is the mutation payload for income lines. Quadrant is
// optional; when absent or invalid the type-derived default applies.
type IncomeInput struct {
	Name     string            `json:"name"`
	Amount   decimal.Decimal   `json:"amount"`
	Type     models.IncomeType `json:"type"`
	Quadrant string            `json:"quadrant,omitempty"`
}

// RecordInput is the mutation payload for expenses.
type RecordInput struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// ValueInput is the mutation payload for assets and liabilities.
type ValueInput struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// ListIncome fetches the user's income lines.
func (c *Client) ListIncome(ctx context.Context) ([]models.IncomeItem, error) {
	data, err := c.do(ctx, http.MethodGet, "/income", nil)
	if err != nil {
		return nil, err
	}
	return normalize.IncomeList(data)
}

// AddIncome creates an income line. The server assigns the ID.
func (c *Client) AddIncome(ctx context.Context, in IncomeInput) (models.IncomeItem, error) {
	data, err := c.do(ctx, http.MethodPost, "/income", in)
	if err != nil {
		return models.IncomeItem{}, err
	}
	return normalize.Income(data)
}

// UpdateIncome replaces an income line by ID.
func (c *Client) UpdateIncome(ctx context.Context, id string, in IncomeInput) (models.IncomeItem, error) {
	data, err := c.do(ctx, http.MethodPut, "/income/"+url.PathEscape(id), in)
	if err != nil {
		return models.IncomeItem{}, err
	}
	return normalize.Income(data)
}

// DeleteIncome removes an income line by ID.
func (c *Client) DeleteIncome(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/income/"+url.PathEscape(id), nil)
	return err
}

// ListExpenses fetches the user's expenses.
func (c *Client) ListExpenses(ctx context.Context) ([]models.ExpenseItem, error) {
	data, err := c.do(ctx, http.MethodGet, "/expenses", nil)
	if err != nil {
		return nil, err
	}
	return normalize.ExpenseList(data)
}

// AddExpense creates an expense.
func (c *Client) AddExpense(ctx context.Context, in RecordInput) (models.ExpenseItem, error) {
	data, err := c.do(ctx, http.MethodPost, "/expenses", in)
	if err != nil {
		return models.ExpenseItem{}, err
	}
	return normalize.Expense(data)
}

// UpdateExpense replaces an expense by ID.
func (c *Client) UpdateExpense(ctx context.Context, id string, in RecordInput) (models.ExpenseItem, error) {
	data, err := c.do(ctx, http.MethodPut, "/expenses/"+url.PathEscape(id), in)
	if err != nil {
		return models.ExpenseItem{}, err
	}
	return normalize.Expense(data)
}

// DeleteExpense removes an expense by ID.
func (c *Client) DeleteExpense(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/expenses/"+url.PathEscape(id), nil)
	return err
}

// ListAssets fetches the user's assets.
func (c *Client) ListAssets(ctx context.Context) ([]models.AssetItem, error) {
	data, err := c.do(ctx, http.MethodGet, "/assets", nil)
	if err != nil {
		return nil, err
	}
	return normalize.AssetList(data)
}

// AddAsset creates an asset.
func (c *Client) AddAsset(ctx context.Context, in ValueInput) (models.AssetItem, error) {
	data, err := c.do(ctx, http.MethodPost, "/assets", in)
	if err != nil {
		return models.AssetItem{}, err
	}
	return normalize.Asset(data)
}

// UpdateAsset replaces an asset by ID.
func (c *Client) UpdateAsset(ctx context.Context, id string, in ValueInput) (models.AssetItem, error) {
	data, err := c.do(ctx, http.MethodPut, "/assets/"+url.PathEscape(id), in)
	if err != nil {
		return models.AssetItem{}, err
	}
	return normalize.Asset(data)
}

// DeleteAsset removes an asset by ID.
func (c *Client) DeleteAsset(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/assets/"+url.PathEscape(id), nil)
	return err
}

// ListLiabilities fetches the user's liabilities.
func (c *Client) ListLiabilities(ctx context.Context) ([]models.LiabilityItem, error) {
	data, err := c.do(ctx, http.MethodGet, "/liabilities", nil)
	if err != nil {
		return nil, err
	}
	return normalize.LiabilityList(data)
}

// AddLiability creates a liability.
func (c *Client) AddLiability(ctx context.Context, in ValueInput) (models.LiabilityItem, error) {
	data, err := c.do(ctx, http.MethodPost, "/liabilities", in)
	if err != nil {
		return models.LiabilityItem{}, err
	}
	return normalize.Liability(data)
}

// UpdateLiability replaces a liability by ID.
func (c *Client) UpdateLiability(ctx context.Context, id string, in ValueInput) (models.LiabilityItem, error) {
	data, err := c.do(ctx, http.MethodPut, "/liabilities/"+url.PathEscape(id), in)
	if err != nil {
		return models.LiabilityItem{}, err
	}
	return normalize.Liability(data)
}

// DeleteLiability removes a liability by ID.
func (c *Client) DeleteLiability(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/liabilities/"+url.PathEscape(id), nil)
	return err
}

// GetCashSavings fetches the cash-savings scalar.
func (c *Client) GetCashSavings(ctx context.Context) (models.CashSavings, error) {
	data, err := c.do(ctx, http.MethodGet, "/cashSavings", nil)
	if err != nil {
		return models.CashSavings{}, err
	}
	return normalize.CashSavings(data)
}

// SetCashSavings replaces the cash-savings scalar.
func (c *Client) SetCashSavings(ctx context.Context, amount decimal.Decimal) (models.CashSavings, error) {
	data, err := c.do(ctx, http.MethodPut, "/cashSavings", models.CashSavings{Amount: amount})
	if err != nil {
		return models.CashSavings{}, err
	}
	return normalize.CashSavings(data)
}

// ListCurrencies fetches the currency catalog.
func (c *Client) ListCurrencies(ctx context.Context) ([]models.Currency, error) {
	data, err := c.do(ctx, http.MethodGet, "/currency", nil)
	if err != nil {
		return nil, err
	}
	return normalize.CurrencyList(data)
}

// GetUserCurrency fetches the user's display-currency preference.
func (c *Client) GetUserCurrency(ctx context.Context) (models.Currency, error) {
	data, err := c.do(ctx, http.MethodGet, "/currency/user", nil)
	if err != nil {
		return models.Currency{}, err
	}
	return normalize.Currency(data)
}

// SetUserCurrency updates the user's display-currency preference.
func (c *Client) SetUserCurrency(ctx context.Context, currencyID string) (models.Currency, error) {
	body := struct {
		ID string `json:"id"`
	}{ID: currencyID}
	data, err := c.do(ctx, http.MethodPut, "/currency/user", body)
	if err != nil {
		return models.Currency{}, err
	}
	return normalize.Currency(data)
}

// GetBalanceSheet fetches the server-computed balance sheet.
func (c *Client) GetBalanceSheet(ctx context.Context) (finance.BalanceSheet, error) {
	data, err := c.do(ctx, http.MethodGet, "/balanceSheet", nil)
	if err != nil {
		return finance.BalanceSheet{}, err
	}
	var bs finance.BalanceSheet
	if err := json.Unmarshal(data, &bs); err != nil {
		return finance.BalanceSheet{}, fmt.Errorf("decode balance sheet: %w", err)
	}
	return bs, nil
}

// GetAnalysis fetches the server-computed analysis snapshot.
func (c *Client) GetAnalysis(ctx context.Context) (finance.Totals, error) {
	data, err := c.do(ctx, http.MethodGet, "/analysis", nil)
	if err != nil {
		return finance.Totals{}, err
	}
	var t finance.Totals
	if err := json.Unmarshal(data, &t); err != nil {
		return finance.Totals{}, fmt.Errorf("decode analysis: %w", err)
	}
	return t, nil
}

// Credentials is the register/login payload.
type Credentials struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is the register/login response.
type AuthResult struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// Register creates an account and stores the returned token on the client.
func (c *Client) Register(ctx context.Context, creds Credentials) (AuthResult, error) {
	return c.authenticate(ctx, "/auth/register", creds)
}

// Login authenticates and stores the returned token on the client.
func (c *Client) Login(ctx context.Context, creds Credentials) (AuthResult, error) {
	return c.authenticate(ctx, "/auth/login", creds)
}

func (c *Client) authenticate(ctx context.Context, path string, creds Credentials) (AuthResult, error) {
	data, err := c.do(ctx, http.MethodPost, path, creds)
	if err != nil {
		return AuthResult{}, err
	}
	var res AuthResult
	if err := json.Unmarshal(data, &res); err != nil {
		return AuthResult{}, fmt.Errorf("decode auth response: %w", err)
	}
	c.SetToken(res.Token)
	return res, nil
}
