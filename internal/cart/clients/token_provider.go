package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TokenProvider hands out the current service credential. Implementations
// refresh in the background; callers never trigger a fetch.
type TokenProvider interface {
	CurrentToken() string
}

// StaticTokenProvider wraps a fixed token, mainly for tests.
type StaticTokenProvider string

func (s StaticTokenProvider) CurrentToken() string { return string(s) }

// AuthTokenProvider logs into the auth service with service-account
// credentials and refreshes the token on a timer, independent of request
// handling. A failed refresh keeps the previous token and is retried on the
// next tick.
type AuthTokenProvider struct {
	authURL    string
	username   string
	password   string
	interval   time.Duration
	httpClient *http.Client
	logger     *zap.Logger

	mu    sync.RWMutex
	token string
}

func NewAuthTokenProvider(authURL, username, password string, interval time.Duration, logger *zap.Logger) *AuthTokenProvider {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &AuthTokenProvider{
		authURL:  authURL,
		username: username,
		password: password,
		interval: interval,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		logger: logger,
	}
}

func (p *AuthTokenProvider) CurrentToken() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.token
}

// Run fetches an initial token and keeps it fresh until ctx is cancelled.
func (p *AuthTokenProvider) Run(ctx context.Context) {
	if err := p.refresh(ctx); err != nil {
		p.logger.Warn("Initial service token fetch failed", zap.Error(err))
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := p.refresh(ctx); err != nil {
				p.logger.Warn("Service token refresh failed, keeping previous token", zap.Error(err))
			}
		case <-ctx.Done():
			return
		}
	}
}

func (p *AuthTokenProvider) refresh(ctx context.Context) error {
	body, err := json.Marshal(map[string]string{
		"email":    p.username,
		"password": p.password,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.authURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("auth service returned %d", resp.StatusCode)
	}

	var out struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return err
	}
	if out.Token == "" {
		return fmt.Errorf("auth service returned empty token")
	}

	p.mu.Lock()
	p.token = out.Token
	p.mu.Unlock()
	return nil
}
