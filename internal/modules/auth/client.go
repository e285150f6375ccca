package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// Errors surfaced to the login flow. InvalidCredentials maps to the
// gateway's 400; everything else collapses to ServiceUnavailable.
var (
	ErrMissingFields      = errors.New("username, group and password are required")
	ErrInvalidCredentials = errors.New("invalid username, groupname and password combination")
	ErrServiceUnavailable = errors.New("authentication service unavailable")
)

// Client is an HTTP client for the identity provider's login gateway.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// NewClient creates a new identity provider client.
func NewClient(baseURL string, log zerolog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		log: log.With().Str("client", "auth").Logger(),
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Group    string `json:"group"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login exchanges credentials for a bearer token. All three fields must be
// non-empty; no other client-side format rules apply.
func (c *Client) Login(ctx context.Context, username, group, password string) (string, error) {
	if username == "" || group == "" || password == "" {
		return "", ErrMissingFields
	}

	reqBody, err := json.Marshal(loginRequest{
		Username: username,
		Group:    group,
		Password: password,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal login request: %w", err)
	}

	url := fmt.Sprintf("%s/login", c.baseURL)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.log.Error().Err(err).Msg("Login request failed")
		return "", ErrServiceUnavailable
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		// Fall through to decode
	case resp.StatusCode == http.StatusBadRequest:
		c.log.Debug().Str("username", username).Msg("Credentials rejected")
		return "", ErrInvalidCredentials
	default:
		c.log.Error().Int("status", resp.StatusCode).Msg("Unexpected login response")
		return "", ErrServiceUnavailable
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", ErrServiceUnavailable
	}

	var decoded loginResponse
	if err := json.Unmarshal(body, &decoded); err != nil || decoded.Token == "" {
		c.log.Error().Err(err).Msg("Failed to decode login response")
		return "", ErrServiceUnavailable
	}

	return decoded.Token, nil
}
