// Package client provides an HTTP client for the Finman scheduler endpoints.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const executePath = "/api/v1/pipeline/recurring/execute"

// RuleResult is the outcome of one due rule in a scheduler pass.
type RuleResult struct {
	RecurringID   string `json:"recurring_id"`
	UserID        string `json:"user_id"`
	TransactionID string `json:"transaction_id,omitempty"`
	Status        string `json:"status"`
	Success       bool   `json:"success"`
	Error         string `json:"error,omitempty"`
}

// BatchResult summarises a scheduler pass.
type BatchResult struct {
	RunAt    time.Time    `json:"run_at"`
	Executed int          `json:"executed"`
	Skipped  int          `json:"skipped"`
	Failed   int          `json:"failed"`
	Results  []RuleResult `json:"results"`
}

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s: %s", e.StatusCode, e.Code, e.Message)
}

// Client talks to the API with the scheduler's API key.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new scheduler client.
func NewClient(baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: httpClient,
	}
}

// ExecutePending asks the API to run every due recurring transaction.
func (c *Client) ExecutePending(ctx context.Context) (*BatchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+executePath, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing pending rules: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("executing pending rules: %w", decodeAPIError(resp))
	}

	var result BatchResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding batch response: %w", err)
	}
	return &result, nil
}

func decodeAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{StatusCode: resp.StatusCode}
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		apiErr.Code = body.Error.Code
		apiErr.Message = body.Error.Message
	}
	return apiErr
}
