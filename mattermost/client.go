// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package mattermost

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
	"os"
	"strings"
	"sync"

	"github.com/bureau-foundation/communicator/errcode"
	"github.com/bureau-foundation/communicator/lib/clock"
	"github.com/bureau-foundation/communicator/lib/netutil"
	"github.com/bureau-foundation/communicator/lib/secret"
)

// apiPrefix is the REST API root on every Mattermost server.
const apiPrefix = "/api/v4"

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// ServerURL is the base URL of the Mattermost server
	// (e.g., "https://chat.example.com").
	ServerURL string
	// HTTPClient is used for all requests. If nil, http.DefaultClient
	// is used.
	HTTPClient *http.Client
	// Logger is used for structured logging. If nil, slog.Default()
	// is used.
	Logger *slog.Logger
	// Clock supplies time for response-cache expiry. If nil, the real
	// clock is used; tests inject a fake.
	Clock clock.Clock
	// DisableCache turns off the directory response caches; every
	// Cached* call then hits the server.
	DisableCache bool
}

// Client is a Mattermost REST API client. Create one with NewClient,
// then authenticate with Login or LoginWithToken before calling the
// directory operations.
type Client struct {
	serverURL  string
	httpClient *http.Client
	logger     *slog.Logger

	// Response caches, nil when disabled. See cache.go.
	userCache    *ttlCache[User]
	channelCache *ttlCache[Channel]
	teamCache    *ttlCache[Team]

	mu     sync.Mutex
	token  *secret.Buffer
	userID string
	teamID string
}

// NewClient creates an unauthenticated client for the given server.
func NewClient(config ClientConfig) (*Client, error) {
	if config.ServerURL == "" {
		return nil, errcode.New(errcode.InvalidArgument, "mattermost: ServerURL is required")
	}
	parsed, err := url.Parse(config.ServerURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, errcode.Newf(errcode.InvalidArgument, "mattermost: invalid ServerURL %q", config.ServerURL)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}

	client := &Client{
		serverURL:  strings.TrimRight(config.ServerURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
	if !config.DisableCache {
		client.userCache = newTTLCache[User](clk, userCacheTTL)
		client.channelCache = newTTLCache[Channel](clk, channelCacheTTL)
		client.teamCache = newTTLCache[Team](clk, teamCacheTTL)
	}
	return client, nil
}

// ServerURL returns the configured server base URL (no trailing slash).
func (c *Client) ServerURL() string { return c.serverURL }

// Token returns the session token as a heap string, or "" when not
// authenticated. Use only at boundaries that need the string form
// (the websocket authentication challenge); prefer passing the Client.
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == nil {
		return ""
	}
	return c.token.String()
}

// UserID returns the authenticated user's ID, or "" before login.
func (c *Client) UserID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.userID
}

// TeamID returns the active team scope, or "" when unscoped.
func (c *Client) TeamID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.teamID
}

// SetTeamID changes the active team scope. It takes effect on the next
// directory call that consults the scope; no reconnect is required.
func (c *Client) SetTeamID(teamID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.teamID = teamID
}

// requireTeamID returns the active team scope or an InvalidState error
// naming the operation that needed it.
func (c *Client) requireTeamID(operation string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.teamID == "" {
		return "", errcode.Newf(errcode.InvalidState, "mattermost: %s requires a team scope (set team_id at connect or via SetTeamID)", operation)
	}
	return c.teamID, nil
}

// requireUserID returns the authenticated user ID or an InvalidState
// error.
func (c *Client) requireUserID() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.userID == "" {
		return "", errcode.New(errcode.InvalidState, "mattermost: not authenticated")
	}
	return c.userID, nil
}

// setSession installs a freshly obtained session token and user
// identity, replacing (and zeroing) any previous token.
func (c *Client) setSession(token string, userID string) error {
	buffer, err := secret.NewFromString(token)
	if err != nil {
		return fmt.Errorf("mattermost: protecting session token: %w", err)
	}
	c.mu.Lock()
	old := c.token
	c.token = buffer
	c.userID = userID
	c.mu.Unlock()
	if old != nil {
		old.Close()
	}
	return nil
}

// clearSession zeroes and releases the session token.
func (c *Client) clearSession() {
	c.mu.Lock()
	old := c.token
	c.token = nil
	c.userID = ""
	c.mu.Unlock()
	if old != nil {
		old.Close()
	}
}

// CloseIdleConnections drops pooled HTTP connections. Call after a
// network disruption so the next request opens a fresh socket instead
// of reusing a poisoned pooled one.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// Close releases the session token memory. Idempotent. The client is
// unusable for authenticated calls afterwards.
func (c *Client) Close() error {
	c.clearSession()
	return nil
}

// apiError is the JSON shape of every Mattermost error response.
type apiError struct {
	ID            string `json:"id"`
	Message       string `json:"message"`
	DetailedError string `json:"detailed_error"`
	RequestID     string `json:"request_id"`
	StatusCode    int    `json:"status_code"`
}

// doRequest performs a JSON API request and returns the response body
// along with the raw *http.Response for callers that need headers
// (login reads the Token header). On non-2xx it returns a wrapped
// *errcode.Error built from the server's error body.
func (c *Client) doRequest(ctx context.Context, method, path string, requestBody any, query url.Values) ([]byte, *http.Response, error) {
	requestURL := c.serverURL + apiPrefix + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, nil, fmt.Errorf("mattermost: encoding request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, requestURL, bodyReader)
	if err != nil {
		return nil, nil, fmt.Errorf("mattermost: creating request: %w", err)
	}
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	c.authorize(request)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, nil, transportError(method, path, err)
	}
	defer response.Body.Close()

	responseBody, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("mattermost: reading response body: %w", errcode.Newf(errcode.Network, "%v", err))
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return responseBody, response, nil
	}
	return nil, response, serverError(method, path, response.StatusCode, responseBody)
}

// doRequestRaw performs a request with a caller-built body (multipart
// upload) or a binary response (file download). The returned reader is
// the response body; the caller must close it.
func (c *Client) doRequestRaw(ctx context.Context, method, path string, contentType string, body io.Reader, query url.Values) (io.ReadCloser, *http.Response, error) {
	requestURL := c.serverURL + apiPrefix + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	request, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return nil, nil, fmt.Errorf("mattermost: creating request: %w", err)
	}
	if contentType != "" {
		request.Header.Set("Content-Type", contentType)
	}
	c.authorize(request)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, nil, transportError(method, path, err)
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return response.Body, response, nil
	}
	defer response.Body.Close()
	errorBody, _ := netutil.ReadResponse(response.Body)
	return nil, response, serverError(method, path, response.StatusCode, errorBody)
}

// authorize attaches the bearer token, when one is held.
func (c *Client) authorize(request *http.Request) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != nil {
		request.Header.Set("Authorization", "Bearer "+c.token.String())
	}
}

// transportError classifies a failure from the HTTP client itself
// (no response was received).
func transportError(method, path string, err error) error {
	code := errcode.Network
	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) {
		code = errcode.Timeout
	}
	return fmt.Errorf("mattermost: %s %s: %w", method, path, &errcode.Error{
		Code:    code,
		Message: err.Error(),
	})
}

// serverError builds an *errcode.Error from a non-2xx response,
// preferring the server's error-ID mapping over the raw status code.
func serverError(method, path string, statusCode int, body []byte) error {
	var parsed apiError
	if err := json.Unmarshal(body, &parsed); err != nil || parsed.Message == "" {
		// Non-JSON error body (reverse proxy, crashed server). Keep
		// the raw text for diagnostics.
		return fmt.Errorf("mattermost: %s %s: %w", method, path, &errcode.Error{
			Code:       codeForStatus(statusCode),
			Message:    fmt.Sprintf("unexpected %d response: %s", statusCode, string(body)),
			HTTPStatus: statusCode,
		})
	}

	code := codeForErrorID(parsed.ID)
	if code == errcode.Unknown {
		code = codeForStatus(statusCode)
	}
	return fmt.Errorf("mattermost: %s %s: %w", method, path, &errcode.Error{
		Code:          code,
		Message:       parsed.Message,
		ServerErrorID: parsed.ID,
		RequestID:     parsed.RequestID,
		HTTPStatus:    statusCode,
	})
}

// codeForStatus maps an HTTP status onto the error taxonomy.
func codeForStatus(statusCode int) errcode.Code {
	switch {
	case statusCode == http.StatusUnauthorized:
		return errcode.AuthFailed
	case statusCode == http.StatusForbidden:
		return errcode.PermissionDenied
	case statusCode == http.StatusNotFound:
		return errcode.NotFound
	case statusCode == http.StatusBadRequest:
		return errcode.InvalidArgument
	case statusCode == http.StatusTooManyRequests:
		return errcode.RateLimited
	case statusCode == http.StatusRequestTimeout || statusCode == http.StatusGatewayTimeout:
		return errcode.Timeout
	case statusCode >= 500:
		return errcode.Network
	default:
		return errcode.Unknown
	}
}

// codeForErrorID refines the classification using the server's error
// identifier, which is more precise than the status code (e.g., an
// expired session and a missing user are both 401/404 at the HTTP
// level).
func codeForErrorID(errorID string) errcode.Code {
	switch {
	case errorID == "":
		return errcode.Unknown
	case strings.HasPrefix(errorID, "api.user.login."),
		errorID == "api.context.session_expired.app_error",
		errorID == "api.context.invalid_token.app_error":
		return errcode.AuthFailed
	case strings.HasSuffix(errorID, ".not_found.app_error"),
		strings.Contains(errorID, ".missing_"):
		return errcode.NotFound
	case strings.Contains(errorID, ".permissions."):
		return errcode.PermissionDenied
	case strings.Contains(errorID, "rate_limit"):
		return errcode.RateLimited
	case strings.Contains(errorID, "timeout"):
		return errcode.Timeout
	case strings.Contains(errorID, "invalid"):
		return errcode.InvalidArgument
	default:
		return errcode.Unknown
	}
}

// getJSON performs a GET and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	body, _, err := c.doRequest(ctx, http.MethodGet, path, nil, query)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("mattermost: parsing %s response: %w", path, err)
	}
	return nil
}

// postJSON performs a POST with a JSON body and, when out is non-nil,
// decodes the JSON response into it.
func (c *Client) postJSON(ctx context.Context, path string, requestBody, out any) error {
	body, _, err := c.doRequest(ctx, http.MethodPost, path, requestBody, nil)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("mattermost: parsing %s response: %w", path, err)
	}
	return nil
}

// putJSON performs a PUT with a JSON body and, when out is non-nil,
// decodes the JSON response into it.
func (c *Client) putJSON(ctx context.Context, path string, requestBody, out any) error {
	body, _, err := c.doRequest(ctx, http.MethodPut, path, requestBody, nil)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("mattermost: parsing %s response: %w", path, err)
	}
	return nil
}

// deleteJSON performs a DELETE.
func (c *Client) deleteJSON(ctx context.Context, path string) error {
	_, _, err := c.doRequest(ctx, http.MethodDelete, path, nil, nil)
	return err
}
