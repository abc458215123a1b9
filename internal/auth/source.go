package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	grantType = "urn:ietf:params:oauth:grant-type:jwt-bearer"

	// expiryMargin absorbs clock skew and in-flight request latency; a token
	// with less than this much life left is treated as expired.
	expiryMargin = 60 * time.Second

	maxErrBody = 512
)

// TokenExchangeError means the token endpoint refused or garbled the
// assertion-for-token exchange.
type TokenExchangeError struct {
	Status int
	Body   string
	Err    error
}

func (e *TokenExchangeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("token exchange: %v", e.Err)
	}
	return fmt.Sprintf("token exchange: status %d: %s", e.Status, e.Body)
}

func (e *TokenExchangeError) Unwrap() error { return e.Err }

// AccessToken is an opaque bearer token with its absolute expiry.
type AccessToken struct {
	Value     string
	ExpiresAt time.Time
}

// AssertionSigner produces the signed JWT-bearer assertion used on a cache
// miss. Satisfied by *Signer.
type AssertionSigner interface {
	Assertion(now time.Time) (string, error)
}

// TokenSource exchanges signed assertions for access tokens and caches the
// result until near expiry. The common path is a cached read under an RLock;
// concurrent misses collapse into a single upstream exchange via singleflight.
type TokenSource struct {
	signer   AssertionSigner
	client   *http.Client
	tokenURL string

	now func() time.Time

	mu    sync.RWMutex
	token AccessToken

	group singleflight.Group
}

func NewTokenSource(signer AssertionSigner, tokenURL string) *TokenSource {
	return &TokenSource{
		signer:   signer,
		client:   &http.Client{Timeout: 15 * time.Second},
		tokenURL: tokenURL,
		now:      time.Now,
	}
}

// Token returns a bearer token with at least expiryMargin of validity left,
// exchanging a fresh assertion only when the cached one is expired or absent.
func (s *TokenSource) Token(ctx context.Context) (string, error) {
	s.mu.RLock()
	tok := s.token
	s.mu.RUnlock()
	if s.usable(tok) {
		return tok.Value, nil
	}

	v, err, _ := s.group.Do("token", func() (any, error) {
		// another caller may have refreshed while we queued
		s.mu.RLock()
		tok := s.token
		s.mu.RUnlock()
		if s.usable(tok) {
			return tok.Value, nil
		}

		fresh, err := s.exchange(ctx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		s.token = fresh
		s.mu.Unlock()
		return fresh.Value, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (s *TokenSource) usable(tok AccessToken) bool {
	if tok.Value == "" {
		return false
	}
	return !s.now().Add(expiryMargin).After(tok.ExpiresAt)
}

func (s *TokenSource) exchange(ctx context.Context) (AccessToken, error) {
	now := s.now()

	assertion, err := s.signer.Assertion(now)
	if err != nil {
		return AccessToken{}, err
	}

	form := url.Values{
		"grant_type": {grantType},
		"assertion":  {assertion},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return AccessToken{}, &TokenExchangeError{Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return AccessToken{}, &TokenExchangeError{Err: err}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return AccessToken{}, &TokenExchangeError{Status: resp.StatusCode, Body: truncate(string(body), maxErrBody)}
	}

	var out struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return AccessToken{}, &TokenExchangeError{Status: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}
	if out.AccessToken == "" || out.ExpiresIn <= 0 {
		return AccessToken{}, &TokenExchangeError{Status: resp.StatusCode, Err: fmt.Errorf("response missing access_token or expires_in")}
	}

	return AccessToken{
		Value:     out.AccessToken,
		ExpiresAt: now.Add(time.Duration(out.ExpiresIn) * time.Second),
	}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
