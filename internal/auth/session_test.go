package auth_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/uploadhub/internal/auth"
	"github.com/dmitrymomot/uploadhub/internal/httperr"
	"github.com/dmitrymomot/uploadhub/internal/store"
)

func TestSessionAuthenticate(t *testing.T) {
	t.Parallel()

	newStore := func() *fakeStore {
		fs := newFakeStore()
		fs.sessions["sess-token"] = store.Session{
			Token:     "sess-token",
			UserID:    "U1",
			ExpiresAt: time.Now().Add(time.Hour),
		}
		fs.sessions["stale-token"] = store.Session{
			Token:     "stale-token",
			UserID:    "U1",
			ExpiresAt: time.Now().Add(-time.Minute),
		}
		return fs
	}

	t.Run("valid session resolves user", func(t *testing.T) {
		t.Parallel()

		a := auth.NewSessionAuth(newStore())
		user, err := a.Authenticate(context.Background(), "sess-token")
		require.NoError(t, err)
		assert.Equal(t, "U1", user.ID)
	})

	t.Run("missing token", func(t *testing.T) {
		t.Parallel()

		a := auth.NewSessionAuth(newStore())
		_, err := a.Authenticate(context.Background(), "")
		httpErr := httperr.As(err)
		require.NotNil(t, httpErr)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Status)
	})

	t.Run("unknown token", func(t *testing.T) {
		t.Parallel()

		a := auth.NewSessionAuth(newStore())
		_, err := a.Authenticate(context.Background(), "nope")
		httpErr := httperr.As(err)
		require.NotNil(t, httpErr)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Status)
	})

	t.Run("expired session", func(t *testing.T) {
		t.Parallel()

		a := auth.NewSessionAuth(newStore())
		_, err := a.Authenticate(context.Background(), "stale-token")
		httpErr := httperr.As(err)
		require.NotNil(t, httpErr)
		assert.Equal(t, http.StatusUnauthorized, httpErr.Status)
		assert.Equal(t, "session expired", httpErr.Message)
	})
}
