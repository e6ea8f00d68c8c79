package kis

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/joonwoo/stockfolio/backend/internal/stock"
	"github.com/joonwoo/stockfolio/backend/pkg/httputil"
	"github.com/joonwoo/stockfolio/backend/pkg/logger"
)

// Credentials is an application key/secret pair supplied by the caller.
// The core never owns credentials; a provided pair opts the resolver out
// of the fallback chain.
type Credentials struct {
	AppKey    string
	AppSecret string
}

// Client handles communication with KIS (한국투자증권) API
// ⭐ SSOT: KIS API 호출은 이 클라이언트에서만
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	baseURL    string

	// Token cache keyed by app key; different callers may supply
	// different credential pairs.
	tokens  map[string]tokenEntry
	tokenMu sync.RWMutex
}

type tokenEntry struct {
	token  string
	expiry time.Time
}

// NewClient creates a new KIS API client
func NewClient(httpClient *httputil.Client, log *logger.Logger, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://openapivts.koreainvestment.com:29443"
	}
	return &Client{
		httpClient: httpClient,
		logger:     log,
		baseURL:    baseURL,
		tokens:     make(map[string]tokenEntry),
	}
}

// TokenResponse represents the OAuth token response
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// getToken gets a valid access token for the credential pair,
// refreshing if necessary.
func (c *Client) getToken(ctx context.Context, creds Credentials) (string, error) {
	c.tokenMu.RLock()
	if entry, ok := c.tokens[creds.AppKey]; ok && time.Now().Before(entry.expiry) {
		c.tokenMu.RUnlock()
		return entry.token, nil
	}
	c.tokenMu.RUnlock()

	// Need to refresh token
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	// Double-check after acquiring write lock
	if entry, ok := c.tokens[creds.AppKey]; ok && time.Now().Before(entry.expiry) {
		return entry.token, nil
	}

	url := fmt.Sprintf("%s/oauth2/tokenP", c.baseURL)
	body := map[string]string{
		"grant_type": "client_credentials",
		"appkey":     creds.AppKey,
		"appsecret":  creds.AppSecret,
	}

	resp, err := c.httpClient.PostJSON(ctx, url, body)
	if err != nil {
		return "", fmt.Errorf("%w: token request failed: %v", stock.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("%w: token status %d: %s",
			stock.ErrUpstreamUnavailable, resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var tokenResp TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("%w: decode token response: %v", stock.ErrUpstreamUnavailable, err)
	}

	c.tokens[creds.AppKey] = tokenEntry{
		token:  tokenResp.AccessToken,
		expiry: time.Now().Add(time.Duration(tokenResp.ExpiresIn-60) * time.Second), // 1분 여유
	}

	c.logger.WithField("expires_in", tokenResp.ExpiresIn).Info("KIS access token refreshed")

	return tokenResp.AccessToken, nil
}

// request makes an authenticated GET request to KIS API
func (c *Client) request(ctx context.Context, path, trID string, creds Credentials) (*http.Response, error) {
	token, err := c.getToken(ctx, creds)
	if err != nil {
		return nil, fmt.Errorf("get token: %w", err)
	}

	url := fmt.Sprintf("%s%s", c.baseURL, path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	// Set required headers
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("authorization", fmt.Sprintf("Bearer %s", token))
	req.Header.Set("appkey", creds.AppKey)
	req.Header.Set("appsecret", creds.AppSecret)
	req.Header.Set("tr_id", trID)

	return c.httpClient.Do(req)
}
