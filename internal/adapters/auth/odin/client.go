package odin

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"vendor-notices/internal/platform/httpclient"
	"vendor-notices/internal/ports/auth"
)

var (
	ErrOdinNotConfigured = errors.New("odin client not configured")
	ErrOdinUnauthorized  = errors.New("odin unauthorized")
	ErrOdinUpstream      = errors.New("odin upstream error")
)

const verifyPath = "/v1/tokens/verify"

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration

	Transport http.RoundTripper
}

// Client habla con el IAM Odin para validar tokens de API.
type Client struct {
	http *httpclient.Client
}

func NewClient(cfg Config) (*Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	hc, err := httpclient.New(httpclient.Config{
		BaseURL:   cfg.BaseURL,
		Timeout:   timeout,
		APIKey:    cfg.APIKey,
		Transport: cfg.Transport,
	})
	if err != nil {
		return nil, err
	}
	return &Client{http: hc}, nil
}

func (c *Client) IsConfigured() bool {
	return c != nil && c.http.Configured()
}

type verifyResponse struct {
	UserID       string   `json:"user_id"`
	Username     string   `json:"username"`
	Superuser    bool     `json:"is_superuser"`
	Capabilities []string `json:"capabilities"`
}

// VerifyToken llama a Odin para verificar un token y traer la identidad.
func (c *Client) VerifyToken(ctx context.Context, token string) (auth.Identity, error) {
	if !c.IsConfigured() {
		return auth.Identity{}, ErrOdinNotConfigured
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Identity{}, ErrOdinUnauthorized
	}

	var out verifyResponse
	err := c.http.DoJSON(ctx, http.MethodPost, verifyPath,
		map[string]string{"Authorization": "Bearer " + token},
		map[string]string{"token": token},
		&out,
	)
	if err != nil {
		if errors.Is(err, httpclient.ErrUnauthorized) {
			return auth.Identity{}, ErrOdinUnauthorized
		}
		return auth.Identity{}, fmt.Errorf("%w: %v", ErrOdinUpstream, err)
	}

	out.UserID = strings.TrimSpace(out.UserID)
	if out.UserID == "" {
		return auth.Identity{}, fmt.Errorf("%w: response missing user_id", ErrOdinUpstream)
	}

	return auth.Identity{
		UserID:       out.UserID,
		Username:     strings.TrimSpace(out.Username),
		Superuser:    out.Superuser,
		Capabilities: out.Capabilities,
	}, nil
}
