package client

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// User-facing fallbacks used when the server gave no message of its own.
const (
	MsgNoResponse   = "No response from server. Please check your connection."
	MsgGeneric      = "An error occurred. Please try again."
	MsgLoginFailed  = "Login failed. Please try again."
	MsgSignupFailed = "Signup failed. Please try again."
)

// ErrorMessage turns a failed call into the text shown to the user: the
// server's own message when a response arrived, a connectivity hint when none
// did, and fallback or a generic message otherwise.
func ErrorMessage(err error, fallback string) string {
	if err == nil {
		return ""
	}
	var fieldErrs FieldErrors
	if errors.As(err, &fieldErrs) {
		return fieldErrs.Error()
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return fallback
	}
	if errors.Is(err, ErrNoResponse) {
		return MsgNoResponse
	}
	return MsgGeneric
}

// Session ties the API client to the shared AuthState: a successful signup or
// login stores the returned token and flips the state to authenticated.
type Session struct {
	api   *Client
	state *AuthState
}

// NewSession creates a session over api and state.
func NewSession(api *Client, state *AuthState) *Session {
	return &Session{api: api, state: state}
}

// State returns the shared auth state.
func (s *Session) State() *AuthState {
	return s.state
}

// Login validates the form, calls the API and records the token.
func (s *Session) Login(ctx context.Context, form LoginForm) (*AuthResponse, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	resp, err := s.api.Login(ctx, form)
	if err != nil {
		return nil, err
	}
	if err := s.state.Login(tokenFor(resp)); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return resp, nil
}

// Signup validates the form, calls the API and records the token.
func (s *Session) Signup(ctx context.Context, form SignupForm) (*AuthResponse, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	resp, err := s.api.Signup(ctx, form)
	if err != nil {
		return nil, err
	}
	if err := s.state.Login(tokenFor(resp)); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return resp, nil
}

// Logout clears local state. A server-issued token is revoked first on a
// best-effort basis; local logout happens even if the server is unreachable.
func (s *Session) Logout(ctx context.Context) error {
	if token, ok := s.state.Token(); ok && looksSigned(token) {
		_ = s.api.Logout(ctx, token)
	}
	return s.state.Logout()
}

// tokenFor prefers the signed token and falls back to the email, which is
// what older servers hand out as the only identifier.
func tokenFor(resp *AuthResponse) string {
	if resp.Token != "" {
		return resp.Token
	}
	return resp.Email
}

// looksSigned reports whether token decodes as a JWT. The signature is the
// server's business and is not checked here.
func looksSigned(token string) bool {
	_, _, err := jwt.NewParser().ParseUnverified(token, &jwt.RegisteredClaims{})
	return err == nil
}
