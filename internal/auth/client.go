// Package auth provides the authentication API client used by the front end
// and the token helpers used by the edge auth endpoints.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/mejaggi/nexus-answers-56/internal/envelope"
	"github.com/mejaggi/nexus-answers-56/internal/session"
)

// refreshWindow is how close to expiry a session must be before
// RefreshSession performs a network refresh instead of a no-op.
const refreshWindow = 5 * time.Minute

const defaultExpiresInSeconds = 3600

// Error is a failed authentication call surfaced to the UI layer.
type Error struct {
	Op         string
	Message    string
	StatusCode int
}

func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("auth %s failed [%d]: %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("auth %s failed: %s", e.Op, e.Message)
}

// Credentials carries a login or signup request.
type Credentials struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	Name       string `json:"name,omitempty"`
	Department string `json:"department,omitempty"`
}

// Client talks to the auth endpoints and persists the resulting session in
// an injected store.
type Client struct {
	baseURL    string
	store      session.Store
	httpClient *http.Client
}

func NewClient(baseURL string, store session.Store) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		store:      store,
		httpClient: &http.Client{},
	}
}

// Login authenticates and persists the resulting session.
func (c *Client) Login(ctx context.Context, creds Credentials) (*session.Session, error) {
	return c.authenticate(ctx, "login", creds)
}

// Signup registers a new account and persists the resulting session.
func (c *Client) Signup(ctx context.Context, creds Credentials) (*session.Session, error) {
	return c.authenticate(ctx, "signup", creds)
}

func (c *Client) authenticate(ctx context.Context, op string, creds Credentials) (*session.Session, error) {
	res, err := c.post(ctx, op, "/"+op, creds)
	if err != nil {
		return nil, err
	}

	sess, aerr := sessionFromPayload(op, res)
	if aerr != nil {
		return nil, aerr
	}

	if err := c.store.Set(sess); err != nil {
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}
	return sess, nil
}

// RefreshSession returns the current session unchanged when it is not close
// to expiry or carries no refresh token. Otherwise it calls the refresh
// endpoint; on any failure the stored session is cleared and (nil, nil) is
// returned, signaling that the user must re-authenticate.
func (c *Client) RefreshSession(ctx context.Context) (*session.Session, error) {
	sess, err := c.store.Get()
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	if sess == nil {
		return nil, nil
	}
	if sess.RefreshToken == "" || !sess.ExpiresWithin(refreshWindow) {
		return sess, nil
	}

	res, err := c.post(ctx, "refresh", "/refresh", map[string]string{"refreshToken": sess.RefreshToken})
	if err != nil {
		log.WithError(err).Debug("Session refresh failed, clearing stored session")
		_ = c.store.Clear()
		return nil, nil
	}

	fresh, aerr := sessionFromPayload("refresh", res)
	if aerr != nil {
		log.WithError(aerr).Debug("Session refresh rejected, clearing stored session")
		_ = c.store.Clear()
		return nil, nil
	}
	if fresh.RefreshToken == "" {
		fresh.RefreshToken = sess.RefreshToken
	}

	if err := c.store.Set(fresh); err != nil {
		return nil, fmt.Errorf("failed to persist refreshed session: %w", err)
	}
	return fresh, nil
}

// Logout clears the local session first so the user is logged out even when
// the network call fails, then notifies the logout endpoint best-effort.
func (c *Client) Logout(ctx context.Context) error {
	sess, _ := c.store.Get()
	if err := c.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}

	body := map[string]string{}
	if sess != nil {
		body["token"] = sess.Token
	}
	if _, err := c.post(ctx, "logout", "/logout", body); err != nil {
		log.WithError(err).Debug("Logout notification failed (ignored)")
	}
	return nil
}

func (c *Client) post(ctx context.Context, op, path string, body any) (*envelope.Result, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s request: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Op: op, Message: err.Error()}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Op: op, Message: err.Error()}
	}

	res, err := envelope.Normalize(resp.StatusCode, respBody)
	if err != nil {
		return nil, &Error{Op: op, Message: err.Error(), StatusCode: resp.StatusCode}
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		msg := res.ErrorMessage()
		if msg == "" {
			msg = http.StatusText(res.StatusCode)
		}
		return nil, &Error{Op: op, Message: msg, StatusCode: res.StatusCode}
	}
	if msg := res.ErrorMessage(); msg != "" {
		return nil, &Error{Op: op, Message: msg, StatusCode: res.StatusCode}
	}
	return res, nil
}

// sessionFromPayload builds a Session from a normalized auth response,
// requiring token and user and computing expiry from expiresIn (default one
// hour).
func sessionFromPayload(op string, res *envelope.Result) (*session.Session, *Error) {
	token := res.Str("token")
	if token == "" {
		return nil, &Error{Op: op, Message: "response missing token", StatusCode: res.StatusCode}
	}

	var user session.User
	if !res.Decode("user", &user) || user.ID == "" {
		return nil, &Error{Op: op, Message: "response missing user", StatusCode: res.StatusCode}
	}

	expiresIn := defaultExpiresInSeconds
	var n float64
	if res.Decode("expiresIn", &n) && n > 0 {
		expiresIn = int(n)
	}

	return &session.Session{
		Token:        token,
		RefreshToken: res.Str("refreshToken"),
		ExpiresAt:    time.Now().UnixMilli() + int64(expiresIn)*1000,
		User:         user,
	}, nil
}
