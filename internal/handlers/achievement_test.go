package handlers

import (
	"context"
	"testing"

	"github.com/gdg-garage/academic-nft-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestAchievementLifecycle(t *testing.T) {
	env := newTestEnv(t)
	handler := NewAchievementHandler(env.db, env.notifier, env.authHandler, zap.NewNop())
	ctx := context.Background()

	create := &CreateAchievementRequest{AuthInput: env.cookieFor(t, env.student)}
	create.Body.Title = "Dean's list, three semesters"
	create.Body.Category = "academic"

	created, err := handler.HandleCreate(ctx, create)
	require.NoError(t, err)
	assert.False(t, created.Body.Verified)
	assert.Equal(t, env.student.ID, created.Body.UserID)
	achievementID := created.Body.ID

	mint := func(user models.User, tag string, rarity models.Rarity) (*CredentialResponse, error) {
		req := &MintCredentialRequest{AuthInput: env.cookieFor(t, user), ID: achievementID}
		req.Body.Tag = tag
		req.Body.Rarity = rarity
		return handler.HandleMint(ctx, req)
	}

	t.Run("MintBeforeVerify", func(t *testing.T) {
		_, err := mint(env.student, "gpa_guardian", models.RarityRare)
		requireStatus(t, err, 400)
	})

	t.Run("StudentCannotVerify", func(t *testing.T) {
		_, err := handler.HandleVerify(ctx, &VerifyAchievementRequest{AuthInput: env.cookieFor(t, env.student), ID: achievementID})
		requireStatus(t, err, 403)
	})

	t.Run("OrganizerVerifies", func(t *testing.T) {
		resp, err := handler.HandleVerify(ctx, &VerifyAchievementRequest{AuthInput: env.cookieFor(t, env.organizer), ID: achievementID})
		require.NoError(t, err)
		assert.True(t, resp.Body.Verified)
		require.NotNil(t, resp.Body.VerifiedByID)
		assert.Equal(t, env.organizer.ID, *resp.Body.VerifiedByID)

		_, err = handler.HandleVerify(ctx, &VerifyAchievementRequest{AuthInput: env.cookieFor(t, env.organizer), ID: achievementID})
		requireStatus(t, err, 409)
	})

	t.Run("OnlyOwnerMints", func(t *testing.T) {
		_, err := mint(env.organizer, "gpa_guardian", models.RarityRare)
		requireStatus(t, err, 404)
	})

	t.Run("UnknownRarity", func(t *testing.T) {
		_, err := mint(env.student, "gpa_guardian", models.Rarity("mythic"))
		requireStatus(t, err, 400)
	})

	t.Run("Mint", func(t *testing.T) {
		resp, err := mint(env.student, "gpa_guardian", models.RarityRare)
		require.NoError(t, err)
		assert.Equal(t, "gpa_guardian", resp.Body.Tag)
		assert.NotEmpty(t, resp.Body.TokenID)
		require.Len(t, env.notifier.mints, 1)

		_, err = mint(env.student, "gpa_guardian", models.RarityRare)
		requireStatus(t, err, 409)
	})

	t.Run("Lists", func(t *testing.T) {
		achievements, err := handler.HandleList(ctx, &AuthRequest{AuthInput: env.cookieFor(t, env.student)})
		require.NoError(t, err)
		require.Len(t, achievements.Body, 1)

		credentials, err := handler.HandleListCredentials(ctx, &AuthRequest{AuthInput: env.cookieFor(t, env.student)})
		require.NoError(t, err)
		require.Len(t, credentials.Body, 1)
		assert.Equal(t, models.RarityRare, credentials.Body[0].Rarity)

		other, err := handler.HandleListCredentials(ctx, &AuthRequest{AuthInput: env.cookieFor(t, env.organizer)})
		require.NoError(t, err)
		assert.Empty(t, other.Body)
	})
}

func TestHandleCreateAchievement_BlankTitle(t *testing.T) {
	env := newTestEnv(t)
	handler := NewAchievementHandler(env.db, nil, env.authHandler, zap.NewNop())

	req := &CreateAchievementRequest{AuthInput: env.cookieFor(t, env.student)}
	req.Body.Title = "   "

	_, err := handler.HandleCreate(context.Background(), req)
	requireStatus(t, err, 400)
}
