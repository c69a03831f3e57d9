package handlers

import (
	"context"
	"testing"

	"github.com/gdg-garage/academic-nft-api/internal/models"
	"github.com/gdg-garage/academic-nft-api/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestHandleDashboardStats(t *testing.T) {
	env := newTestEnv(t)
	handler := NewDashboardHandler(env.db, env.authHandler, stats.DefaultOptions(), zap.NewNop())

	env.grantCredential(t, env.student, "gpa_guardian", models.RarityRare)
	env.grantCredential(t, env.student, "research_rockstar", models.RarityLegendary)
	require.NoError(t, env.db.Create(&models.Achievement{UserID: env.student.ID, Title: "Pending review"}).Error)

	resp, err := handler.HandleStats(context.Background(), &AuthRequest{AuthInput: env.cookieFor(t, env.student)})
	require.NoError(t, err)

	assert.Equal(t, stats.Counts{
		TotalAchievements:    3,
		VerifiedAchievements: 2,
		MintedCredentials:    2,
		RareCount:            1,
		LegendaryCount:       1,
	}, resp.Body.Counts)
	assert.Equal(t, 3, resp.Body.Level)
	assert.Equal(t, 1000, resp.Body.XP)
	assert.Equal(t, 5000, resp.Body.TotalXP)
	assert.Equal(t, 6, resp.Body.StreakDays)
	assert.Equal(t, stats.RankLegendary, resp.Body.Rank)
	assert.Equal(t, 10, resp.Body.UnlockedOpportunities)

	t.Run("FreshUser", func(t *testing.T) {
		resp, err := handler.HandleStats(context.Background(), &AuthRequest{AuthInput: env.cookieFor(t, env.organizer)})
		require.NoError(t, err)
		assert.Equal(t, 1, resp.Body.Level)
		assert.Equal(t, stats.RankRising, resp.Body.Rank)
	})

	t.Run("Unauthenticated", func(t *testing.T) {
		_, err := handler.HandleStats(context.Background(), &AuthRequest{})
		requireStatus(t, err, 401)
	})
}

func TestHandleComputeStats(t *testing.T) {
	env := newTestEnv(t)
	handler := NewDashboardHandler(env.db, env.authHandler, stats.Options{TotalXP: 8000, MaxStreakDays: 30}, zap.NewNop())

	req := &ComputeStatsRequest{AuthInput: env.cookieFor(t, env.student)}
	req.Body.TotalAchievements = 100
	req.Body.VerifiedAchievements = 8
	req.Body.MintedCredentials = 5
	req.Body.RareCount = 5
	req.Body.LegendaryCount = 1

	resp, err := handler.HandleCompute(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, 7, resp.Body.Level)
	assert.Equal(t, 8000, resp.Body.TotalXP)
	assert.Equal(t, 30, resp.Body.StreakDays)
	assert.Equal(t, stats.RankLegendary, resp.Body.Rank)
	assert.Equal(t, 5, resp.Body.BattlePassLevel)
	assert.Equal(t, 155, resp.Body.SkillPoints)
}
