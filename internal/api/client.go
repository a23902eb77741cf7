package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"
)

// ErrSessionExpired means the access token was rejected and could not be
// refreshed. Callers must destroy the session and send the user to login.
var ErrSessionExpired = errors.New("session expired")

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// TokenStore holds one user's tokens. Refreshed tokens are written back
// through it; this is the only path that mutates stored tokens outside of
// explicit login/logout.
type TokenStore interface {
	Tokens(ctx context.Context) (access, refresh string, err error)
	SetTokens(ctx context.Context, access, refresh string) error
}

// Client talks to the remote FeastDash REST API. Every request carries a
// bearer token when a TokenStore is supplied; a 401 triggers exactly one
// token refresh and replay.
type Client struct {
	backendURL string
	http       HTTPClient
}

func NewClient(backendURL string, httpClient HTTPClient) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		backendURL: strings.TrimRight(backendURL, "/"),
		http:       httpClient,
	}
}

// BackendURL is the configured API origin, used to resolve media paths.
func (c *Client) BackendURL() string { return c.backendURL }

func (c *Client) url(path string) string {
	return c.backendURL + "/api/" + strings.TrimLeft(path, "/")
}

// noRefreshPath reports whether a 401 on this path must not trigger a
// refresh: a failed login is just a failed login, and a 401 from the refresh
// endpoint itself would loop.
func noRefreshPath(path string) bool {
	return strings.Contains(path, "auth/login") || strings.Contains(path, "auth/token/refresh")
}

// do sends one JSON request and decodes a JSON response into out (out may be
// nil). The body is kept as bytes so a replay after refresh can resend it.
func (c *Client) do(ctx context.Context, ts TokenStore, method, path string, body, out any) error {
	var payload []byte
	contentType := ""
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return err
		}
		contentType = "application/json"
	}
	return c.doRaw(ctx, ts, method, path, contentType, payload, out)
}

func (c *Client) doRaw(ctx context.Context, ts TokenStore, method, path, contentType string, payload []byte, out any) error {
	access, refresh := "", ""
	if ts != nil {
		var err error
		access, refresh, err = ts.Tokens(ctx)
		if err != nil {
			return err
		}
	}

	resp, err := c.send(ctx, method, path, contentType, payload, access)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized && ts != nil && !noRefreshPath(path) {
		drain(resp)
		if refresh == "" {
			return ErrSessionExpired
		}
		access, err = c.refreshTokens(ctx, ts, refresh)
		if err != nil {
			return ErrSessionExpired
		}
		// Replay once with the new token; a second 401 is terminal.
		resp, err = c.send(ctx, method, path, contentType, payload, access)
		if err != nil {
			return err
		}
		if resp.StatusCode == http.StatusUnauthorized {
			drain(resp)
			return ErrSessionExpired
		}
	}

	return decodeResponse(resp, out)
}

func (c *Client) send(ctx context.Context, method, path, contentType string, payload []byte, access string) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if access != "" {
		req.Header.Set("Authorization", "Bearer "+access)
	}
	return c.http.Do(req)
}

// refreshTokens exchanges the refresh token for a new access token and
// persists the result.
func (c *Client) refreshTokens(ctx context.Context, ts TokenStore, refresh string) (string, error) {
	var tokens struct {
		Access  string `json:"access"`
		Refresh string `json:"refresh"`
	}
	err := c.do(ctx, nil, http.MethodPost, "auth/token/refresh/", map[string]string{"refresh": refresh}, &tokens)
	if err != nil {
		log.Printf("ERROR: token refresh failed: %v", err)
		return "", err
	}
	if tokens.Refresh == "" {
		tokens.Refresh = refresh
	}
	if err := ts.SetTokens(ctx, tokens.Access, tokens.Refresh); err != nil {
		return "", err
	}
	return tokens.Access, nil
}

func decodeResponse(resp *http.Response, out any) error {
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newAPIError(resp.StatusCode, data)
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
}
