package client

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type brokenStorage struct{}

func (brokenStorage) Get(string) (string, bool, error) { return "", false, errors.New("disk gone") }
func (brokenStorage) Set(string, string) error         { return errors.New("disk gone") }
func (brokenStorage) Remove(string) error              { return errors.New("disk gone") }

func TestAuthState_StartsLoading(t *testing.T) {
	state := NewAuthState(NewMemoryStorage())

	assert.Equal(t, Uninitialized, state.Status())
	assert.Equal(t, Snapshot{Authenticated: false, Loading: true}, state.Snapshot())
	assert.False(t, state.IsAuthenticated())

	select {
	case <-state.Ready():
		t.Fatal("ready before Init")
	default:
	}
}

func TestAuthState_NoTokenIsUnauthenticated(t *testing.T) {
	state := NewAuthState(NewMemoryStorage())
	require.NoError(t, state.Init(context.Background()))

	assert.Equal(t, Unauthenticated, state.Status())
	assert.Equal(t, Snapshot{Authenticated: false, Loading: false}, state.Snapshot())
	<-state.Ready()
}

func TestAuthState_LoginLogoutReload(t *testing.T) {
	storage := NewFileStorage(filepath.Join(t.TempDir(), "storage.json"))

	state := NewAuthState(storage)
	require.NoError(t, state.Init(context.Background()))
	assert.False(t, state.IsAuthenticated())

	require.NoError(t, state.Login("a@b.com"))
	assert.True(t, state.IsAuthenticated())
	token, ok, err := storage.Get(TokenKey)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a@b.com", token)

	// simulated reload: a fresh state over the same storage
	reloaded := NewAuthState(storage)
	require.NoError(t, reloaded.Init(context.Background()))
	assert.Equal(t, Authenticated, reloaded.Status())

	require.NoError(t, reloaded.Logout())
	assert.Equal(t, Unauthenticated, reloaded.Status())
	_, ok, err = storage.Get(TokenKey)
	require.NoError(t, err)
	assert.False(t, ok)

	again := NewAuthState(storage)
	require.NoError(t, again.Init(context.Background()))
	assert.Equal(t, Unauthenticated, again.Status())
}

func TestAuthState_PresenceIsTrusted(t *testing.T) {
	storage := NewMemoryStorage()
	require.NoError(t, storage.Set(TokenKey, "anything-at-all"))

	state := NewAuthState(storage)
	require.NoError(t, state.Init(context.Background()))
	assert.True(t, state.IsAuthenticated())
}

func TestAuthState_InitIsIdempotent(t *testing.T) {
	storage := NewMemoryStorage()
	state := NewAuthState(storage)
	require.NoError(t, state.Init(context.Background()))

	require.NoError(t, storage.Set(TokenKey, "late"))
	require.NoError(t, state.Init(context.Background()))
	assert.Equal(t, Unauthenticated, state.Status())
}

func TestAuthState_LoginBeforeInitCompletesInit(t *testing.T) {
	state := NewAuthState(NewMemoryStorage())
	require.NoError(t, state.Login("tok"))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, state.Wait(ctx))
	assert.Equal(t, Authenticated, state.Status())
}

func TestAuthState_WaitHonoursContext(t *testing.T) {
	state := NewAuthState(NewMemoryStorage())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, state.Wait(ctx), context.Canceled)
	assert.ErrorIs(t, state.Init(ctx), context.Canceled)
	assert.True(t, state.IsLoading())
}

func TestAuthState_BrokenStorage(t *testing.T) {
	state := NewAuthState(brokenStorage{})

	assert.Error(t, state.Init(context.Background()))
	assert.Equal(t, Unauthenticated, state.Status())

	assert.Error(t, state.Login("tok"))
	assert.False(t, state.IsAuthenticated())
	assert.Error(t, state.Logout())
}

func TestAuthState_EmptyTokenRejected(t *testing.T) {
	state := NewAuthState(NewMemoryStorage())
	assert.Error(t, state.Login(""))
	assert.True(t, state.IsLoading())
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "uninitialized", Uninitialized.String())
	assert.Equal(t, "authenticated", Authenticated.String())
	assert.Equal(t, "unauthenticated", Unauthenticated.String())
}
