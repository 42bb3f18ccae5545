// Copyright 2026 The HackGate Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package identitystore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ClientConfig holds connection settings for the hosted identity store.
type ClientConfig struct {
	// BaseURL is the root of the store's REST API, without trailing slash.
	BaseURL string

	// ServiceKey authenticates HackGate itself against the admin surface.
	// Required for ListAccounts/UpdateAccount/CreateAccount.
	ServiceKey string

	Timeout time.Duration
}

// Client talks to the external identity store over its REST API.
type Client struct {
	baseURL    string
	serviceKey string
	http       *http.Client
}

// NewClient creates a new identity store client.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		serviceKey: cfg.ServiceKey,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// Configured reports whether the admin surface can be used.
func (c *Client) Configured() bool {
	return c.baseURL != "" && c.serviceKey != ""
}

// AccountFromToken verifies a bearer token against the store and returns the
// account it belongs to.
//
// Tokens issued by the store are JWTs; a token whose exp claim has already
// passed is rejected locally to save the round-trip. The claims are parsed
// without signature verification and are never trusted for anything beyond
// that short-circuit; the store's own verification stays authoritative.
func (c *Client) AccountFromToken(ctx context.Context, token string) (*Account, error) {
	if token == "" {
		return nil, ErrTokenInvalid
	}
	if tokenExpiredLocally(token) {
		return nil, ErrTokenInvalid
	}

	req, err := c.newRequest(ctx, http.MethodGet, "/user", nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	var account Account
	if err := c.do(req, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// ListAccounts returns one page of accounts from the admin surface.
func (c *Client) ListAccounts(ctx context.Context, page, perPage int) ([]*Account, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))

	req, err := c.newRequest(ctx, http.MethodGet, "/admin/accounts?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	c.authorizeAdmin(req)

	var resp struct {
		Accounts []*Account `json:"accounts"`
	}
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return resp.Accounts, nil
}

// UpdateAccount applies a partial update to an account by id.
func (c *Client) UpdateAccount(ctx context.Context, id string, update AccountUpdate) (*Account, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	req, err := c.newRequest(ctx, http.MethodPut, "/admin/accounts/"+url.PathEscape(id), update)
	if err != nil {
		return nil, err
	}
	c.authorizeAdmin(req)

	var account Account
	if err := c.do(req, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

// CreateAccount creates a new account through the admin surface.
func (c *Client) CreateAccount(ctx context.Context, params CreateAccountParams) (*Account, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/admin/accounts", params)
	if err != nil {
		return nil, err
	}
	c.authorizeAdmin(req)

	var account Account
	if err := c.do(req, &account); err != nil {
		return nil, err
	}
	return &account, nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) authorizeAdmin(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("identity store request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.apiError(req, resp)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode identity store response: %w", err)
		}
	}
	return nil
}

// apiError maps store error responses onto the domain errors.
func (c *Client) apiError(req *http.Request, resp *http.Response) error {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"msg"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body)

	message := body.Error
	if message == "" {
		message = body.Message
	}
	if message == "" {
		message = resp.Status
	}

	switch {
	case req.URL.Path == c.pathOf("/user") && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden):
		return ErrTokenInvalid
	case resp.StatusCode == http.StatusNotFound:
		return ErrAccountNotFound
	case resp.StatusCode == http.StatusConflict || resp.StatusCode == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", ErrEmailTaken, message)
	default:
		return fmt.Errorf("identity store error (%d): %s", resp.StatusCode, message)
	}
}

func (c *Client) pathOf(path string) string {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return path
	}
	return u.Path
}

// tokenExpiredLocally reports whether the JWT carries an exp claim that has
// already passed. Parse errors mean "unknown", not "expired".
func tokenExpiredLocally(token string) bool {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
