package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/academic-nft-api/internal/auth"
	"github.com/gdg-garage/academic-nft-api/internal/models"
	"github.com/gdg-garage/academic-nft-api/internal/notifier"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var errAlreadyMinted = errors.New("already minted")

type AchievementHandler struct {
	db          *gorm.DB
	notifier    notifier.Notifier
	authHandler *auth.AuthHandler
	log         *zap.Logger
}

func NewAchievementHandler(db *gorm.DB, notifier notifier.Notifier, authHandler *auth.AuthHandler, log *zap.Logger) *AchievementHandler {
	return &AchievementHandler{db: db, notifier: notifier, authHandler: authHandler, log: log}
}

type ListAchievementsResponse struct {
	Body []models.Achievement
}

func (h *AchievementHandler) HandleList(ctx context.Context, input *AuthRequest) (*ListAchievementsResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	achievements := []models.Achievement{}
	if err := h.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc").Find(&achievements).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to list achievements")
	}
	return &ListAchievementsResponse{Body: achievements}, nil
}

type CreateAchievementRequest struct {
	auth.AuthInput
	Body struct {
		Title       string `json:"title" doc:"Title of the achievement" required:"true" minLength:"1"`
		Category    string `json:"category,omitempty" doc:"Category, e.g. academic, research, leadership"`
		Description string `json:"description,omitempty" doc:"What was achieved"`
	}
}

type AchievementResponse struct {
	Body models.Achievement
}

func (h *AchievementHandler) HandleCreate(ctx context.Context, input *CreateAchievementRequest) (*AchievementResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Body.Title)
	if title == "" {
		return nil, huma.Error400BadRequest("Title is required")
	}

	achievement := models.Achievement{
		UserID:      userID,
		Title:       title,
		Category:    input.Body.Category,
		Description: input.Body.Description,
	}
	if err := h.db.WithContext(ctx).Create(&achievement).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to create achievement: " + err.Error())
	}

	return &AchievementResponse{Body: achievement}, nil
}

type VerifyAchievementRequest struct {
	auth.AuthInput
	ID uint `path:"id"`
}

func (h *AchievementHandler) HandleVerify(ctx context.Context, input *VerifyAchievementRequest) (*AchievementResponse, error) {
	verifierID, err := requireOrganizer(ctx, h.authHandler, input.AuthInput)
	if err != nil {
		return nil, err
	}

	var achievement models.Achievement
	if err := h.db.WithContext(ctx).First(&achievement, input.ID).Error; err != nil {
		return nil, notFoundOr(err, "Achievement")
	}
	if achievement.Verified {
		return nil, huma.Error409Conflict("Achievement already verified")
	}

	now := time.Now()
	achievement.Verified = true
	achievement.VerifiedAt = &now
	achievement.VerifiedByID = &verifierID
	if err := h.db.WithContext(ctx).Save(&achievement).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to verify achievement")
	}

	h.log.Info("Achievement verified", zap.Uint("achievement_id", achievement.ID), zap.Uint("verifier_id", verifierID))
	return &AchievementResponse{Body: achievement}, nil
}

type MintCredentialRequest struct {
	auth.AuthInput
	ID   uint `path:"id"`
	Body struct {
		Tag    string        `json:"tag" doc:"Credential tag used for discounts, e.g. gpa_guardian" required:"true" minLength:"1"`
		Rarity models.Rarity `json:"rarity" doc:"common, rare, epic or legendary" enum:"common,rare,epic,legendary" required:"true"`
	}
}

type CredentialResponse struct {
	Body models.Credential
}

func (h *AchievementHandler) HandleMint(ctx context.Context, input *MintCredentialRequest) (*CredentialResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	tag := strings.TrimSpace(input.Body.Tag)
	if tag == "" {
		return nil, huma.Error400BadRequest("Tag is required")
	}
	if !input.Body.Rarity.Valid() {
		return nil, huma.Error400BadRequest("Unknown rarity: " + string(input.Body.Rarity))
	}

	var achievement models.Achievement
	if err := h.db.WithContext(ctx).Where("id = ? AND user_id = ?", input.ID, userID).First(&achievement).Error; err != nil {
		return nil, notFoundOr(err, "Achievement")
	}
	if !achievement.Verified {
		return nil, huma.Error400BadRequest("Achievement must be verified before minting")
	}

	credential := models.Credential{
		UserID:        userID,
		AchievementID: achievement.ID,
		Tag:           tag,
		Rarity:        input.Body.Rarity,
		TokenID:       uuid.NewString(),
	}

	err = h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Credential{}).Where("achievement_id = ?", achievement.ID).Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return errAlreadyMinted
		}
		return tx.Create(&credential).Error
	})
	if errors.Is(err, errAlreadyMinted) {
		return nil, huma.Error409Conflict("Credential already minted for this achievement")
	}
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to mint credential: " + err.Error())
	}

	if h.notifier != nil {
		user, err := h.authHandler.User(ctx, userID)
		if err == nil {
			err = h.notifier.NotifyMint(user, achievement, credential)
		}
		if err != nil {
			// Minting already happened.
			h.log.Warn("Failed to send mint notification", zap.Error(err))
		}
	}

	return &CredentialResponse{Body: credential}, nil
}

type ListCredentialsResponse struct {
	Body []models.Credential
}

func (h *AchievementHandler) HandleListCredentials(ctx context.Context, input *AuthRequest) (*ListCredentialsResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	credentials := []models.Credential{}
	if err := h.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at desc").Find(&credentials).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to list credentials")
	}
	return &ListCredentialsResponse{Body: credentials}, nil
}
