// Package okto is an otp.Provider backed by a hosted email OTP API.
package okto

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/peyroll/registrar/pkg/otp"
)

const (
	sendPath   = "/api/oc/v1/authenticate/email"
	verifyPath = "/api/oc/v1/authenticate/email/verify"

	maxResponseBytes = 1 << 20
)

// Client calls the hosted email OTP endpoints
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient creates a Client. A zero timeout uses 10s.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type sendRequest struct {
	Email string `json:"email"`
}

type verifyRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
	Token string `json:"token"`
}

type envelope struct {
	Status string `json:"status"`
	Data   struct {
		Token     string `json:"token"`
		AuthToken string `json:"auth_token"`
	} `json:"data"`
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// SendCode implements otp.Provider
func (c *Client) SendCode(ctx context.Context, email string) (string, error) {
	env, err := c.post(ctx, sendPath, sendRequest{Email: email})
	if err != nil {
		return "", err
	}
	if env.Data.Token == "" {
		return "", fmt.Errorf("%w: response carried no token", otp.ErrProviderUnavailable)
	}
	return env.Data.Token, nil
}

// VerifyCode implements otp.Provider
func (c *Client) VerifyCode(ctx context.Context, email, code, token string) (bool, error) {
	env, err := c.post(ctx, verifyPath, verifyRequest{Email: email, OTP: code, Token: token})
	if err != nil {
		return false, err
	}
	return env.Status == "success", nil
}

func (c *Client) post(ctx context.Context, path string, body any) (*envelope, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-Api-Key", c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", otp.ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %w", otp.ErrProviderUnavailable, err)
	}

	var env envelope
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 300 {
			return nil, fmt.Errorf("%w: decode response: %w", otp.ErrProviderUnavailable, err)
		}
	}

	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: status %d", otp.ErrProviderUnavailable, resp.StatusCode)
	}
	if resp.StatusCode >= 400 || env.Status == "error" {
		return nil, classifyMessage(env.Error.Message, resp.StatusCode)
	}
	return &env, nil
}

// classifyMessage maps the provider's error text onto otp sentinels.
func classifyMessage(msg string, status int) error {
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "expired"):
		return fmt.Errorf("%w: %s", otp.ErrExpiredToken, msg)
	case strings.Contains(lower, "email"):
		return fmt.Errorf("%w: %s", otp.ErrInvalidEmail, msg)
	case strings.Contains(lower, "invalid"), strings.Contains(lower, "otp"), strings.Contains(lower, "code"):
		return fmt.Errorf("%w: %s", otp.ErrInvalidCode, msg)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: provider rejected credentials (status %d)", otp.ErrProviderUnavailable, status)
	default:
		return fmt.Errorf("%w: status %d: %s", otp.ErrProviderUnavailable, status, msg)
	}
}
