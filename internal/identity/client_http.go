package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"account-gateway/pkg/platform/sentinel"
)

// Provider error codes we branch on. Anything else propagates as an opaque
// dependency failure.
const (
	codeUserNotFound = "USER_NOT_FOUND"
	codeInvalidEmail = "INVALID_EMAIL"
	codeEmailExists  = "EMAIL_EXISTS"
)

// HTTPClient talks to the identity provider's admin REST API.
type HTTPClient struct {
	baseURL        string
	apiKey         string
	verifyContinue string
	resetContinue  string
	client         *http.Client
}

// HTTPClientConfig configures an HTTPClient.
type HTTPClientConfig struct {
	BaseURL                  string
	APIKey                   string
	VerificationContinueURL  string
	PasswordResetContinueURL string
	Timeout                  time.Duration
}

func NewHTTPClient(cfg HTTPClientConfig) *HTTPClient {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &HTTPClient{
		baseURL:        cfg.BaseURL,
		apiKey:         cfg.APIKey,
		verifyContinue: cfg.VerificationContinueURL,
		resetContinue:  cfg.PasswordResetContinueURL,
		client:         &http.Client{Timeout: timeout},
	}
}

type accountPayload struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	DisplayName   string `json:"displayName,omitempty"`
	EmailVerified bool   `json:"emailVerified"`
}

type errorPayload struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *HTTPClient) Create(ctx context.Context, acc NewAccount) (*Account, error) {
	body := map[string]string{
		"email":    acc.Email,
		"password": acc.Password,
	}
	if acc.DisplayName != "" {
		body["displayName"] = acc.DisplayName
	}
	var out accountPayload
	if err := c.do(ctx, http.MethodPost, "/v1/accounts", body, &out); err != nil {
		return nil, err
	}
	return &Account{ID: out.ID, Email: out.Email, DisplayName: out.DisplayName, EmailVerified: out.EmailVerified}, nil
}

func (c *HTTPClient) LookupByEmail(ctx context.Context, email string) (*Account, error) {
	var out accountPayload
	path := "/v1/accounts:lookup?email=" + url.QueryEscape(email)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &Account{ID: out.ID, Email: out.Email, DisplayName: out.DisplayName, EmailVerified: out.EmailVerified}, nil
}

func (c *HTTPClient) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/v1/accounts/"+url.PathEscape(id), nil, nil)
}

func (c *HTTPClient) VerificationLink(ctx context.Context, email string) (string, error) {
	return c.actionLink(ctx, "/v1/accounts:verificationLink", email, c.verifyContinue)
}

func (c *HTTPClient) PasswordResetLink(ctx context.Context, email string) (string, error) {
	return c.actionLink(ctx, "/v1/accounts:passwordResetLink", email, c.resetContinue)
}

func (c *HTTPClient) actionLink(ctx context.Context, path, email, continueURL string) (string, error) {
	body := map[string]string{
		"email":       email,
		"continueUrl": continueURL,
	}
	var out struct {
		Link string `json:"link"`
	}
	if err := c.do(ctx, http.MethodPost, path, body, &out); err != nil {
		return "", err
	}
	return out.Link, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("identity provider: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode identity response: %w", err)
		}
		return nil
	}

	return c.mapError(resp)
}

// mapError translates provider error codes to sentinels once, here, so the
// lifecycle manager never sees provider-specific strings.
func (c *HTTPClient) mapError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var payload errorPayload
	_ = json.Unmarshal(raw, &payload)

	switch payload.Error.Code {
	case codeUserNotFound:
		return sentinel.ErrNotFound
	case codeInvalidEmail:
		return fmt.Errorf("%w: %s", sentinel.ErrInvalidInput, payload.Error.Message)
	case codeEmailExists:
		return fmt.Errorf("%w: %s", sentinel.ErrConflict, payload.Error.Message)
	}
	if resp.StatusCode == http.StatusNotFound {
		return sentinel.ErrNotFound
	}
	return fmt.Errorf("identity provider %d: %s", resp.StatusCode, string(raw))
}
