// Package client is the Go counterpart of the web frontend's data layer: an
// HTTP client for the expense API plus an in-memory state container driven
// by pure transitions.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/frahmantamala/expense-tracker/internal/expense"
)

// Client calls the expense API on behalf of a single user.
type Client struct {
	baseURL    string
	userID     string
	httpClient *http.Client
}

func New(baseURL, userID string) *Client {
	return &Client{
		baseURL:    baseURL,
		userID:     userID,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// apiError is the decoded {error, details} envelope.
type apiError struct {
	ErrorMsg string `json:"error"`
	Details  string `json:"details,omitempty"`
}

func (e *apiError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s", e.ErrorMsg, e.Details)
	}
	return e.ErrorMsg
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", c.userID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var apiErr apiError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.ErrorMsg == "" {
			return fmt.Errorf("unexpected status %d", resp.StatusCode)
		}
		return &apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// ListExpenses fetches all of the caller's expenses.
func (c *Client) ListExpenses(ctx context.Context) ([]*expense.Expense, error) {
	var out []*expense.Expense
	if err := c.do(ctx, http.MethodGet, "/api/v1/expenses", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateExpense creates one expense and returns the stored record.
func (c *Client) CreateExpense(ctx context.Context, dto expense.ExpenseDTO) (*expense.Expense, error) {
	var out expense.Expense
	if err := c.do(ctx, http.MethodPost, "/api/v1/expenses", dto, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateExpense updates one expense and returns the stored record.
func (c *Client) UpdateExpense(ctx context.Context, id string, dto expense.ExpenseDTO) (*expense.Expense, error) {
	var out expense.Expense
	if err := c.do(ctx, http.MethodPut, "/api/v1/expenses/"+id, dto, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteExpense deletes one expense.
func (c *Client) DeleteExpense(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/expenses/"+id, nil, nil)
}

// FetchSummary fetches the derived summary for the caller.
func (c *Client) FetchSummary(ctx context.Context) (*expense.Summary, error) {
	var out expense.Summary
	if err := c.do(ctx, http.MethodGet, "/api/v1/expenses/summary", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
