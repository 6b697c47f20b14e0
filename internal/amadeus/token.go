package amadeus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// ErrNoToken is returned when a usable access token could not be obtained.
// Callers should abort the dependent operation; the next call will try again.
var ErrNoToken = errors.New("amadeus: no access token available")

// expiryMargin keeps a token from being used in its final moments.
const expiryMargin = 300 * time.Second

// TokenSource holds a single cached client-credentials token shared by every
// search in the process. One instance per process; the cache is the whole
// point, a token is cheap to reuse across many searches in the same run.
type TokenSource struct {
	host     string
	authPath string
	id       string
	secret   string
	client   *http.Client
	log      *log.Logger
	now      func() time.Time

	mu      sync.Mutex
	tok     string
	expires time.Time
}

func NewTokenSource(host, id, secret string, logger *log.Logger) *TokenSource {
	return &TokenSource{
		host:     host,
		authPath: "/v1/security/oauth2/token",
		id:       id,
		secret:   secret,
		client:   http.DefaultClient,
		log:      logger,
		now:      time.Now,
	}
}

// Token returns the cached token while it is still valid, otherwise performs
// one issuance call. The cached path makes no network call.
func (ts *TokenSource) Token(ctx context.Context) (string, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if ts.tok != "" && ts.now().Before(ts.expires) {
		return ts.tok, nil
	}

	if ts.id == "" || ts.secret == "" {
		return "", fmt.Errorf("%w: credentials missing", ErrNoToken)
	}

	data := url.Values{}
	data.Set("grant_type", "client_credentials")
	data.Set("client_id", ts.id)
	data.Set("client_secret", ts.secret)
	req, _ := http.NewRequestWithContext(ctx, http.MethodPost, ts.host+ts.authPath, strings.NewReader(data.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := ts.client.Do(req)
	if err != nil {
		ts.log.Printf("token request failed: %v", err)
		return "", fmt.Errorf("%w: %v", ErrNoToken, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		ts.log.Printf("token request failed: %s", resp.Status)
		return "", fmt.Errorf("%w: %s", ErrNoToken, resp.Status)
	}

	var tr struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		ts.log.Printf("token response malformed: %v", err)
		return "", fmt.Errorf("%w: %v", ErrNoToken, err)
	}
	if tr.AccessToken == "" {
		return "", fmt.Errorf("%w: empty access_token", ErrNoToken)
	}

	ts.tok = tr.AccessToken
	ts.expires = ts.now().Add(time.Duration(tr.ExpiresIn)*time.Second - expiryMargin)
	return ts.tok, nil
}
