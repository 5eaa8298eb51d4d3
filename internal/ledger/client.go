// Package ledger is the HTTP client for the budget server's REST API.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// DefaultTimeout bounds each request; posting batches are capped at 1000
// entries so no single call runs long.
const DefaultTimeout = 30 * time.Second

// Options configures a Client.
type Options struct {
	URL      string // server base URL, no trailing slash required
	Token    string // bearer token
	BudgetID string
	Password string // budget passphrase for encrypted budgets, optional
	Timeout  time.Duration
}

// Client talks to one budget of one server. Methods are safe for
// concurrent use.
type Client struct {
	base     string
	token    string
	budgetID string
	password string
	http     *http.Client
}

// New returns a Client for the given server and budget.
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	base := opts.URL
	for len(base) > 0 && base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	return &Client{
		base:     base,
		token:    opts.Token,
		budgetID: opts.BudgetID,
		password: opts.Password,
		http:     &http.Client{Timeout: timeout},
	}
}

// response is the server's uniform envelope: a data payload on success, an
// error message otherwise.
type response[T any] struct {
	Data  T      `json:"data"`
	Error string `json:"error"`
}

// Open verifies the budget exists and is reachable. A missing budget is a
// fatal precondition for an import run.
func (c *Client) Open(ctx context.Context) error {
	_, err := request[json.RawMessage](ctx, c, http.MethodGet, c.budgetPath(""), nil)
	if err != nil {
		return fmt.Errorf("opening budget %q: %w", c.budgetID, err)
	}
	return nil
}

// ListAccounts returns all accounts of the budget.
func (c *Client) ListAccounts(ctx context.Context) ([]Account, error) {
	accounts, err := request[[]Account](ctx, c, http.MethodGet, c.budgetPath("/accounts"), nil)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	return accounts, nil
}

// CreateAccount creates an account by name and returns its id.
func (c *Client) CreateAccount(ctx context.Context, name string) (string, error) {
	body := map[string]any{"name": name}
	account, err := request[Account](ctx, c, http.MethodPost, c.budgetPath("/accounts"), body)
	if err != nil {
		return "", fmt.Errorf("creating account %q: %w", name, err)
	}
	return account.ID, nil
}

// ListCategoryGroups returns all category groups of the budget.
func (c *Client) ListCategoryGroups(ctx context.Context) ([]CategoryGroup, error) {
	groups, err := request[[]CategoryGroup](ctx, c, http.MethodGet, c.budgetPath("/category-groups"), nil)
	if err != nil {
		return nil, fmt.Errorf("listing category groups: %w", err)
	}
	return groups, nil
}

// CreateCategoryGroup creates a category group and returns its id.
func (c *Client) CreateCategoryGroup(ctx context.Context, name string, isIncome bool) (string, error) {
	body := map[string]any{"name": name, "is_income": isIncome}
	group, err := request[CategoryGroup](ctx, c, http.MethodPost, c.budgetPath("/category-groups"), body)
	if err != nil {
		return "", fmt.Errorf("creating category group %q: %w", name, err)
	}
	return group.ID, nil
}

// ListCategories returns all categories of the budget.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	categories, err := request[[]Category](ctx, c, http.MethodGet, c.budgetPath("/categories"), nil)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}
	return categories, nil
}

// CreateCategory creates a category in a group and returns its id.
func (c *Client) CreateCategory(ctx context.Context, name, groupID string, isIncome bool) (string, error) {
	body := map[string]any{"name": name, "group_id": groupID, "is_income": isIncome}
	category, err := request[Category](ctx, c, http.MethodPost, c.budgetPath("/categories"), body)
	if err != nil {
		return "", fmt.Errorf("creating category %q: %w", name, err)
	}
	return category.ID, nil
}

// ListPayees returns all payees, including server-managed transfer payees.
func (c *Client) ListPayees(ctx context.Context) ([]Payee, error) {
	payees, err := request[[]Payee](ctx, c, http.MethodGet, c.budgetPath("/payees"), nil)
	if err != nil {
		return nil, fmt.Errorf("listing payees: %w", err)
	}
	return payees, nil
}

// ImportPostings uploads one batch of postings for one account. Postings
// whose import id the ledger has seen before count as neither added nor
// updated.
func (c *Client) ImportPostings(ctx context.Context, accountID string, postings []Posting) (ImportResult, error) {
	body := map[string]any{"postings": postings}
	path := c.budgetPath("/accounts/" + accountID + "/postings/import")
	result, err := request[ImportResult](ctx, c, http.MethodPost, path, body)
	if err != nil {
		return ImportResult{}, fmt.Errorf("importing postings: %w", err)
	}
	return result, nil
}

// Sync commits pending changes server-side.
func (c *Client) Sync(ctx context.Context) error {
	_, err := request[json.RawMessage](ctx, c, http.MethodPost, c.budgetPath("/sync"), nil)
	if err != nil {
		return fmt.Errorf("syncing budget: %w", err)
	}
	return nil
}

// Shutdown closes the server session. Safe to call after failures.
func (c *Client) Shutdown(ctx context.Context) error {
	_, err := request[json.RawMessage](ctx, c, http.MethodPost, "/v1/session/close", nil)
	if err != nil {
		return fmt.Errorf("closing session: %w", err)
	}
	return nil
}

func (c *Client) budgetPath(suffix string) string {
	return "/v1/budgets/" + c.budgetID + suffix
}

func request[T any](ctx context.Context, c *Client, method, path string, body any) (T, error) {
	var zero T

	var payload *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return zero, fmt.Errorf("encoding request: %w", err)
		}
		payload = bytes.NewReader(raw)
	} else {
		payload = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, payload)
	if err != nil {
		return zero, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.password != "" {
		req.Header.Set("X-Budget-Password", c.password)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return zero, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return zero, apiError(res)
	}

	var decoded response[T]
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return zero, fmt.Errorf("decoding response: %w", err)
	}
	return decoded.Data, nil
}

// apiError extracts the server's error message, falling back to the HTTP
// status line.
func apiError(res *http.Response) error {
	var decoded response[json.RawMessage]
	if err := json.NewDecoder(res.Body).Decode(&decoded); err == nil && decoded.Error != "" {
		return fmt.Errorf("server: %s", decoded.Error)
	}
	return fmt.Errorf("server: %s", res.Status)
}
