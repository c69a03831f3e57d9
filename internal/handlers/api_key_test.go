package handlers

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/gdg-garage/academic-nft-api/internal/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAPIKeyLifecycle(t *testing.T) {
	env := newTestEnv(t)
	handler := NewAPIKeyHandler(env.db, env.authHandler, zap.NewNop())
	ctx := context.Background()

	create := &CreateAPIKeyRequest{AuthInput: env.cookieFor(t, env.student)}
	create.Body.Name = "wallet sync"

	created, err := handler.HandleCreate(ctx, create)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(created.Body.Key, apiKeyPrefix))
	require.Len(t, created.Body.Key, len(apiKeyPrefix)+64)

	// The new key authenticates on its own.
	me, err := env.authHandler.HandleMe(ctx, &auth.AuthInput{APIKey: created.Body.Key})
	require.NoError(t, err)
	assert.Equal(t, env.student.ID, me.Body.ID)

	list, err := handler.HandleList(ctx, &AuthRequest{AuthInput: env.cookieFor(t, env.student)})
	require.NoError(t, err)
	require.Len(t, list.Body, 1)
	assert.Equal(t, "..."+created.Body.Key[len(created.Body.Key)-4:], list.Body[0].Key)
	assert.NotNil(t, list.Body[0].LastUsedAt)

	t.Run("PastExpiry", func(t *testing.T) {
		req := &CreateAPIKeyRequest{AuthInput: env.cookieFor(t, env.student)}
		req.Body.Name = "stale"
		past := time.Now().Add(-time.Minute)
		req.Body.ExpiresAt = &past

		_, err := handler.HandleCreate(ctx, req)
		requireStatus(t, err, 400)
	})

	t.Run("DemoAccountCannotCreate", func(t *testing.T) {
		req := &CreateAPIKeyRequest{AuthInput: auth.AuthInput{Authorization: "Bearer " + testDemoToken}}
		req.Body.Name = "shared"

		_, err := handler.HandleCreate(ctx, req)
		requireStatus(t, err, 403)
	})

	t.Run("DeleteOtherUsersKey", func(t *testing.T) {
		_, err := handler.HandleDelete(ctx, &DeleteAPIKeyRequest{AuthInput: env.cookieFor(t, env.organizer), ID: created.Body.ID})
		requireStatus(t, err, 404)
	})

	t.Run("Delete", func(t *testing.T) {
		_, err := handler.HandleDelete(ctx, &DeleteAPIKeyRequest{AuthInput: env.cookieFor(t, env.student), ID: created.Body.ID})
		require.NoError(t, err)

		_, err = env.authHandler.HandleMe(ctx, &auth.AuthInput{APIKey: created.Body.Key})
		requireStatus(t, err, 401)
	})
}

func TestMaskKey(t *testing.T) {
	assert.Equal(t, "...cdef", maskKey("ank_abcdef"))
	assert.Equal(t, "...", maskKey("abc"))
}
