package memstore

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/quorahq/accountserver/internal/services"
	"github.com/quorahq/accountserver/internal/store"
	"github.com/quorahq/accountserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_UserUniqueness(t *testing.T) {
	st := New()
	ctx := context.Background()

	err := st.Atomic(ctx, func(ctx context.Context, repos services.Repositories) error {
		_, err := repos.Users().Create(ctx, types.User{ID: "1", Username: "alice", Email: "a@x.com"})
		return err
	})
	require.NoError(t, err)

	err = st.Atomic(ctx, func(ctx context.Context, repos services.Repositories) error {
		_, err := repos.Users().Create(ctx, types.User{ID: "2", Username: "alice", Email: "b@x.com"})
		return err
	})
	assert.ErrorIs(t, err, store.ErrUsernameTaken)

	err = st.Atomic(ctx, func(ctx context.Context, repos services.Repositories) error {
		_, err := repos.Users().Create(ctx, types.User{ID: "3", Username: "bob", Email: "a@x.com"})
		return err
	})
	assert.ErrorIs(t, err, store.ErrEmailTaken)
}

func TestStore_AtomicDiscardsFailedWork(t *testing.T) {
	st := New()
	ctx := context.Background()
	boom := errors.New("boom")

	err := st.Atomic(ctx, func(ctx context.Context, repos services.Repositories) error {
		if _, err := repos.Users().Create(ctx, types.User{ID: "1", Username: "alice", Email: "a@x.com"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	err = st.Atomic(ctx, func(ctx context.Context, repos services.Repositories) error {
		_, err := repos.Users().GetByUsername(ctx, "alice")
		return err
	})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestStore_Sessions(t *testing.T) {
	st := New()
	ctx := context.Background()
	now := time.Now()

	var first, second types.Session
	err := st.Atomic(ctx, func(ctx context.Context, repos services.Repositories) error {
		var err error
		first, err = repos.Sessions().Create(ctx, types.Session{UserID: "1", AccessToken: "t1", LoginAt: now, ExpiresAt: now.Add(time.Hour)})
		if err != nil {
			return err
		}
		second, err = repos.Sessions().Create(ctx, types.Session{UserID: "1", AccessToken: "t2", LoginAt: now, ExpiresAt: now.Add(time.Hour)})
		return err
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	err = st.Atomic(ctx, func(ctx context.Context, repos services.Repositories) error {
		_, err := repos.Sessions().Create(ctx, types.Session{UserID: "1", AccessToken: "t1"})
		return err
	})
	assert.ErrorIs(t, err, store.ErrDuplicateToken)

	err = st.Atomic(ctx, func(ctx context.Context, repos services.Repositories) error {
		return repos.Sessions().MarkLoggedOut(ctx, first.ID, now)
	})
	require.NoError(t, err)

	err = st.Atomic(ctx, func(ctx context.Context, repos services.Repositories) error {
		got, err := repos.Sessions().GetByToken(ctx, "t1")
		require.NoError(t, err)
		require.NotNil(t, got.LogoutAt)
		assert.True(t, got.LogoutAt.Equal(now))

		other, err := repos.Sessions().GetByToken(ctx, "t2")
		require.NoError(t, err)
		assert.Nil(t, other.LogoutAt)

		_, err = repos.Sessions().GetByToken(ctx, "missing")
		assert.ErrorIs(t, err, store.ErrNotFound)
		return nil
	})
	require.NoError(t, err)
}

func TestStore_AtomicHonoursCancelledContext(t *testing.T) {
	st := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := st.Atomic(ctx, func(ctx context.Context, repos services.Repositories) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}

func TestStore_GetByIDAcceptsAnyUUIDSpelling(t *testing.T) {
	st := New()
	ctx := context.Background()
	const id = "6f1c2a4e-0000-4000-8000-000000000001"

	require.NoError(t, st.Atomic(ctx, func(ctx context.Context, repos services.Repositories) error {
		_, err := repos.Users().Create(ctx, types.User{ID: id, Username: "alice", Email: "a@x.com"})
		return err
	}))

	for _, spelling := range []string{id, strings.ToUpper(id), "{" + id + "}", "urn:uuid:" + id} {
		err := st.Atomic(ctx, func(ctx context.Context, repos services.Repositories) error {
			got, err := repos.Users().GetByID(ctx, spelling)
			if err != nil {
				return err
			}
			assert.Equal(t, "alice", got.Username, spelling)
			return nil
		})
		assert.NoError(t, err, spelling)
	}
}
