package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tech-arch1tect/stepup/testutils"
)

func setupManager(t *testing.T) (*Manager, context.Context) {
	manager, err := ProvideSessionManager(testutils.GetTestConfig(), &Options{}, nil)
	require.NoError(t, err)
	require.NotNil(t, manager)

	ctx, err := manager.Load(context.Background(), "")
	require.NoError(t, err)
	return manager, ctx
}

func TestChallenge_PutAndGet(t *testing.T) {
	manager, ctx := setupManager(t)

	_, ok := manager.Challenge(ctx)
	assert.False(t, ok, "fresh session has no challenge")

	manager.PutChallenge(ctx, Challenge{
		SubjectID:   "subject-1",
		Realm:       "user",
		Purpose:     "login",
		Email:       "user@example.com",
		Fingerprint: "fp-1",
	})

	ch, ok := manager.Challenge(ctx)
	require.True(t, ok)
	assert.Equal(t, "subject-1", ch.SubjectID)
	assert.Equal(t, "user", ch.Realm)
	assert.Equal(t, "login", ch.Purpose)
	assert.Equal(t, "user@example.com", ch.Email)
	assert.False(t, ch.IssuedAt.IsZero(), "IssuedAt is stamped on put")
}

func TestChallenge_PutReplacesPrior(t *testing.T) {
	manager, ctx := setupManager(t)

	manager.PutChallenge(ctx, Challenge{SubjectID: "subject-1", Realm: "user", Purpose: "login"})
	manager.PutChallenge(ctx, Challenge{SubjectID: "subject-2", Realm: "admin", Purpose: "login"})

	ch, ok := manager.Challenge(ctx)
	require.True(t, ok)
	assert.Equal(t, "subject-2", ch.SubjectID)
	assert.Equal(t, "admin", ch.Realm)
}

func TestChallenge_Clear(t *testing.T) {
	manager, ctx := setupManager(t)

	manager.PutChallenge(ctx, Challenge{SubjectID: "subject-1", Realm: "user", Purpose: "login", IssuedAt: time.Now()})
	manager.ClearChallenge(ctx)

	_, ok := manager.Challenge(ctx)
	assert.False(t, ok)
}

func TestProvideSessionManager(t *testing.T) {
	t.Run("disabled returns nil", func(t *testing.T) {
		cfg := testutils.GetTestConfig()
		cfg.Session.Enabled = false
		manager, err := ProvideSessionManager(cfg, &Options{}, nil)
		require.NoError(t, err)
		assert.Nil(t, manager)
	})

	t.Run("unsupported store", func(t *testing.T) {
		cfg := testutils.GetTestConfig()
		cfg.Session.Store = "redis"
		_, err := ProvideSessionManager(cfg, &Options{}, nil)
		assert.Error(t, err)
	})

	t.Run("database store requires db", func(t *testing.T) {
		cfg := testutils.GetTestConfig()
		cfg.Session.Store = "database"
		_, err := ProvideSessionManager(cfg, &Options{}, nil)
		assert.Error(t, err)
	})

	t.Run("cookie policy applied", func(t *testing.T) {
		cfg := testutils.GetTestConfig()
		cfg.Session.SameSite = "strict"
		manager, err := ProvideSessionManager(cfg, &Options{}, nil)
		require.NoError(t, err)
		assert.Equal(t, cfg.Session.Name, manager.Cookie.Name)
		assert.Equal(t, cfg.Session.MaxAge, manager.Lifetime)
	})
}
