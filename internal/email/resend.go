package email

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const defaultEndpoint = "https://api.resend.com/emails"

// ResendClient sends transactional email through the Resend HTTPS API.
// Transactional only: no tracking, no marketing streams, headers suppress
// auto-responses so verification mail does not trigger reply loops.
type ResendClient struct {
	apiKey        string
	from          string
	replyTo       string
	messageStream string
	endpoint      string
	client        *http.Client
}

// ResendConfig configures a ResendClient. Endpoint is overridable for tests.
type ResendConfig struct {
	APIKey        string
	From          string
	ReplyTo       string
	MessageStream string
	Endpoint      string
	Timeout       time.Duration
}

func NewResendClient(cfg ResendConfig) (*ResendClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("resend: API key is required")
	}
	if cfg.From == "" {
		return nil, errors.New("resend: from address is required")
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &ResendClient{
		apiKey:        cfg.APIKey,
		from:          cfg.From,
		replyTo:       cfg.ReplyTo,
		messageStream: cfg.MessageStream,
		endpoint:      endpoint,
		client:        &http.Client{Timeout: timeout},
	}, nil
}

type sendRequest struct {
	From          string            `json:"from"`
	To            string            `json:"to"`
	Subject       string            `json:"subject"`
	HTML          string            `json:"html,omitempty"`
	Text          string            `json:"text,omitempty"`
	Headers       map[string]string `json:"headers,omitempty"`
	MessageStream string            `json:"messageStream,omitempty"`
}

type sendResponse struct {
	ID string `json:"id"`
}

// Send delivers one message and returns the provider message id. Any non-2xx
// response is an error carrying the provider status and body.
func (c *ResendClient) Send(ctx context.Context, msg Message) (string, error) {
	if msg.To == "" || msg.Subject == "" || (msg.HTML == "" && msg.Text == "") {
		return "", errors.New("resend: to, subject and html or text are required")
	}

	payload := sendRequest{
		From:    c.from,
		To:      msg.To,
		Subject: msg.Subject,
		HTML:    msg.HTML,
		Text:    msg.Text,
		Headers: map[string]string{
			"Reply-To":                 c.replyTo,
			"Auto-Submitted":           "auto-generated",
			"X-Auto-Response-Suppress": "All",
		},
		MessageStream: c.messageStream,
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("resend: encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(raw))
	if err != nil {
		return "", fmt.Errorf("resend: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("resend: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("resend %d: %s", resp.StatusCode, string(body))
	}

	var out sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("resend: decode response: %w", err)
	}
	return out.ID, nil
}
