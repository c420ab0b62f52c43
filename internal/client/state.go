package client

import (
	"context"
	"fmt"
	"sync"
)

// Status is the lifecycle of AuthState.
type Status int

const (
	// Uninitialized means the stored token has not been checked yet.
	Uninitialized Status = iota
	Authenticated
	Unauthenticated
)

func (s Status) String() string {
	switch s {
	case Authenticated:
		return "authenticated"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "uninitialized"
	}
}

// Snapshot is a consistent view of AuthState.
type Snapshot struct {
	Authenticated bool
	Loading       bool
}

// AuthState is the single source of truth for "is the user logged in".
// Create one per process and hand the same pointer to every consumer.
//
// Presence of a stored token is trusted; it is never validated against the
// server here.
type AuthState struct {
	storage Storage

	mu     sync.RWMutex
	status Status
	ready  chan struct{}
	once   sync.Once
}

// NewAuthState creates an uninitialized state backed by storage.
func NewAuthState(storage Storage) *AuthState {
	return &AuthState{
		storage: storage,
		status:  Uninitialized,
		ready:   make(chan struct{}),
	}
}

// Init reads the persisted token and settles the initial status. Only the
// first call does any work; later calls return nil.
func (a *AuthState) Init(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var initErr error
	a.once.Do(func() {
		_, ok, err := a.storage.Get(TokenKey)
		if err != nil {
			// unreadable storage reads as logged out
			initErr = fmt.Errorf("read token: %w", err)
			ok = false
		}

		a.mu.Lock()
		if ok {
			a.status = Authenticated
		} else {
			a.status = Unauthenticated
		}
		a.mu.Unlock()
		close(a.ready)
	})
	return initErr
}

// Ready is closed once Init has completed.
func (a *AuthState) Ready() <-chan struct{} {
	return a.ready
}

// Wait blocks until Init has completed or ctx is done.
func (a *AuthState) Wait(ctx context.Context) error {
	select {
	case <-a.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Status returns the current lifecycle status.
func (a *AuthState) Status() Status {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.status
}

// Snapshot returns the authenticated and loading flags together.
func (a *AuthState) Snapshot() Snapshot {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return Snapshot{
		Authenticated: a.status == Authenticated,
		Loading:       a.status == Uninitialized,
	}
}

// IsAuthenticated reports false until Init has completed.
func (a *AuthState) IsAuthenticated() bool {
	return a.Snapshot().Authenticated
}

// IsLoading reports whether the initial check is still pending.
func (a *AuthState) IsLoading() bool {
	return a.Snapshot().Loading
}

// Login persists token and marks the state authenticated.
func (a *AuthState) Login(token string) error {
	if token == "" {
		return fmt.Errorf("empty token")
	}
	if err := a.storage.Set(TokenKey, token); err != nil {
		return fmt.Errorf("store token: %w", err)
	}
	a.settle(Authenticated)
	return nil
}

// Logout removes the token and marks the state unauthenticated.
func (a *AuthState) Logout() error {
	if err := a.storage.Remove(TokenKey); err != nil {
		return fmt.Errorf("remove token: %w", err)
	}
	a.settle(Unauthenticated)
	return nil
}

// Token returns the stored token, if any.
func (a *AuthState) Token() (string, bool) {
	token, ok, err := a.storage.Get(TokenKey)
	if err != nil {
		return "", false
	}
	return token, ok
}

// settle applies an explicit transition. A transition before Init also
// completes initialization, since the outcome is now known.
func (a *AuthState) settle(status Status) {
	a.mu.Lock()
	a.status = status
	a.mu.Unlock()
	a.once.Do(func() { close(a.ready) })
}
