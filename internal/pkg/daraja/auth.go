package daraja

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"
)

// tokenExpiryMargin is subtracted from the reported token lifetime so a token
// is never used right at its expiry edge.
const tokenExpiryMargin = 30 * time.Second

const oauthPath = "/oauth/v1/generate?grant_type=client_credentials"

// TokenCache acquires and caches a Daraja OAuth bearer token. The mutex is
// held across a refresh, so concurrent callers never issue parallel fetches.
type TokenCache struct {
	cfg        *Config
	httpClient *http.Client

	mu     sync.Mutex
	token  string
	expiry time.Time
}

func NewTokenCache(cfg *Config) *TokenCache {
	return &TokenCache{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// GetToken returns a valid access token, fetching a new one when the cached
// token has less than the safety margin of lifetime left.
func (t *TokenCache) GetToken(ctx context.Context) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.token != "" && time.Now().Before(t.expiry.Add(-tokenExpiryMargin)) {
		return t.token, nil
	}
	return t.fetchNewToken(ctx)
}

func (t *TokenCache) fetchNewToken(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.cfg.BaseURL+oauthPath, nil)
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(t.cfg.ConsumerKey, t.cfg.ConsumerSecret)
	req.Header.Set("Accept", "application/json")

	log.Printf("Fetching new Daraja OAuth token...")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return "", &AuthError{Body: err.Error()}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &AuthError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var auth AuthResponse
	if err := json.Unmarshal(body, &auth); err != nil {
		return "", &AuthError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	if auth.AccessToken == "" {
		return "", &AuthError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	expiresIn, err := strconv.ParseInt(auth.ExpiresIn, 10, 64)
	if err != nil {
		expiresIn = 0
	}

	t.token = auth.AccessToken
	t.expiry = time.Now().Add(time.Duration(expiresIn) * time.Second)
	log.Printf("Daraja OAuth token obtained, expires in %ss", auth.ExpiresIn)

	return t.token, nil
}
