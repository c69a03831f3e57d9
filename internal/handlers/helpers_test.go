package handlers

import (
	"errors"
	"testing"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/academic-nft-api/internal/auth"
	"github.com/gdg-garage/academic-nft-api/internal/config"
	"github.com/gdg-garage/academic-nft-api/internal/database"
	"github.com/gdg-garage/academic-nft-api/internal/models"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const testDemoToken = "demo-token"

type testEnv struct {
	db          *gorm.DB
	cfg         *config.Config
	authHandler *auth.AuthHandler
	notifier    *recordingNotifier
	organizer   models.User
	student     models.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.Connect(":memory:")
	require.NoError(t, err)

	cfg := &config.Config{
		JWTSecret:     "test-secret",
		DemoToken:     testDemoToken,
		DemoUsername:  "demo-scholar",
		TotalXP:       5000,
		MaxStreakDays: 30,
	}

	env := &testEnv{
		db:          db,
		cfg:         cfg,
		authHandler: auth.NewAuthHandler(cfg, db, zap.NewNop()),
		notifier:    &recordingNotifier{},
		organizer:   models.User{Username: "organizer", Organizer: true},
		student:     models.User{Username: "student"},
	}
	require.NoError(t, db.Create(&env.organizer).Error)
	require.NoError(t, db.Create(&env.student).Error)
	return env
}

func (e *testEnv) cookieFor(t *testing.T, user models.User) auth.AuthInput {
	t.Helper()
	token, err := e.authHandler.GenerateToken(user.ID)
	require.NoError(t, err)
	return auth.AuthInput{Cookie: auth.CookieName + "=" + token}
}

// grantCredential stores a verified achievement with a minted credential.
func (e *testEnv) grantCredential(t *testing.T, user models.User, tag string, rarity models.Rarity) models.Credential {
	t.Helper()
	achievement := models.Achievement{UserID: user.ID, Title: tag, Verified: true}
	require.NoError(t, e.db.Create(&achievement).Error)

	credential := models.Credential{
		UserID:        user.ID,
		AchievementID: achievement.ID,
		Tag:           tag,
		Rarity:        rarity,
		TokenID:       "token-" + tag + "-" + user.Username,
	}
	require.NoError(t, e.db.Create(&credential).Error)
	return credential
}

func requireStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	var se huma.StatusError
	require.True(t, errors.As(err, &se), "expected huma status error, got %v", err)
	require.Equal(t, status, se.GetStatus(), "error: %v", err)
}

type recordingNotifier struct {
	purchases []models.Ticket
	mints     []models.Credential
	err       error
}

func (n *recordingNotifier) NotifyPurchase(user models.User, event models.Event, ticket models.Ticket) error {
	n.purchases = append(n.purchases, ticket)
	return n.err
}

func (n *recordingNotifier) NotifyMint(user models.User, achievement models.Achievement, credential models.Credential) error {
	n.mints = append(n.mints, credential)
	return n.err
}
