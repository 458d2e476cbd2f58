// Package tenbis talks to the 10bis web API: it exchanges a login for the
// opaque account identifier and fetches the current month's transactions.
package tenbis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"lunchbudget/internal/core"
)

const (
	DefaultBaseURL = "https://www.10bis.co.il/api"
	// 10bis serves the mobile API only to mobile user agents.
	UserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 5_0 like Mac OS X) AppleWebKit/534.46 (KHTML, like Gecko) Version/5.1 Mobile/9A334 Safari/7534.48.3"

	maxErrorBody = 64 << 10
)

var errNoEncryptedUserID = errors.New("login response has no EncryptedUserId")

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchTransactions returns the raw transactions of the current period for
// the given encrypted user id. A report without a Transactions field is an
// empty list, not an error.
func (c *Client) FetchTransactions(ctx context.Context, accountID string) ([]RawTransaction, error) {
	q := url.Values{}
	q.Set("encryptedUserId", accountID)
	q.Set("dateBias", "0")
	q.Set("WebsiteId", "10bis")
	q.Set("DomainId", "10bis")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/UserTransactionsReport?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build transactions request: %w", err)
	}

	var report transactionsReport
	if err := c.do(req, &report); err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "Fetched 10bis transactions", "count", len(report.Transactions))
	return report.Transactions, nil
}

// Login exchanges 10bis credentials for the account's encrypted user id.
// The credentials are forwarded and never kept.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body, err := json.Marshal(loginRequest{Email: email, Password: password})
	if err != nil {
		return "", fmt.Errorf("marshal login request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var resp loginResponse
	if err := c.do(req, &resp); err != nil {
		return "", err
	}
	id := strings.TrimSpace(resp.UserData.EncryptedUserID)
	if id == "" {
		return "", &core.UpstreamFetchError{StatusCode: http.StatusOK, Err: errNoEncryptedUserID}
	}
	return id, nil
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &core.UpstreamFetchError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &core.UpstreamFetchError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &core.UpstreamFetchError{
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("decode response: %w", err),
		}
	}
	return nil
}
