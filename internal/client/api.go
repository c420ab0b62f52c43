package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 15 * time.Second

// ErrNoResponse wraps transport failures where the server never answered.
var ErrNoResponse = errors.New("no response from server")

// APIError is a non-2xx reply from the auth API.
type APIError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("auth api: status %d", e.StatusCode)
	}
	return fmt.Sprintf("auth api: status %d: %s", e.StatusCode, e.Message)
}

// AuthResponse is the body of a successful signup or login.
type AuthResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Token string `json:"token,omitempty"`
}

// Client talks to the auth API over JSON/HTTP.
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// Dial returns a client for the API rooted at endpoint, e.g. "http://localhost:4001".
func Dial(endpoint string) *Client {
	return &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// Signup creates an account.
func (c *Client) Signup(ctx context.Context, form SignupForm) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.post(ctx, "/api/auth/signup", form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login verifies credentials.
func (c *Client) Login(ctx context.Context, form LoginForm) (*AuthResponse, error) {
	var out AuthResponse
	if err := c.post(ctx, "/api/auth/login", form, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout revokes a server-issued token.
func (c *Client) Logout(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", token, nil, nil)
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, http.MethodPost, path, "", in, out)
}

func (c *Client) do(ctx context.Context, method, path, token string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNoResponse, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var payload struct {
			Error   string `json:"error"`
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &payload) == nil {
			apiErr.Message = payload.Error
			apiErr.Code = payload.Code
			if apiErr.Message == "" {
				apiErr.Message = payload.Message
			}
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
