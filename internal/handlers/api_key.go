package handlers

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/academic-nft-api/internal/auth"
	"github.com/gdg-garage/academic-nft-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// apiKeyPrefix marks marketplace keys so they are recognisable in logs and
// secret scanners.
const apiKeyPrefix = "ank_"

// APIKeyHandler manages long-lived keys for integrations such as wallet
// sync jobs. Keys authenticate through the X-API-KEY header.
type APIKeyHandler struct {
	db          *gorm.DB
	authHandler *auth.AuthHandler
	log         *zap.Logger
}

func NewAPIKeyHandler(db *gorm.DB, authHandler *auth.AuthHandler, log *zap.Logger) *APIKeyHandler {
	return &APIKeyHandler{db: db, authHandler: authHandler, log: log}
}

type APIKeyView struct {
	ID         uint       `json:"id"`
	Name       string     `json:"name"`
	Key        string     `json:"key" doc:"Full key on creation, masked afterwards"`
	CreatedAt  time.Time  `json:"created_at"`
	ExpiresAt  *time.Time `json:"expires_at"`
	LastUsedAt *time.Time `json:"last_used_at"`
}

func apiKeyView(k models.APIKey, reveal bool) APIKeyView {
	key := k.Key
	if !reveal {
		key = maskKey(key)
	}
	return APIKeyView{
		ID:         k.ID,
		Name:       k.Name,
		Key:        key,
		CreatedAt:  k.CreatedAt,
		ExpiresAt:  k.ExpiresAt,
		LastUsedAt: k.LastUsedAt,
	}
}

func maskKey(key string) string {
	if len(key) <= 4 {
		return "..."
	}
	return "..." + key[len(key)-4:]
}

func newAPIKeySecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return apiKeyPrefix + hex.EncodeToString(b), nil
}

type CreateAPIKeyRequest struct {
	auth.AuthInput
	Body struct {
		Name      string     `json:"name" doc:"Label for the key" required:"true" minLength:"1"`
		ExpiresAt *time.Time `json:"expires_at,omitempty" doc:"Optional expiry, never expires when omitted"`
	}
}

type APIKeyResponse struct {
	Body APIKeyView
}

// HandleCreate issues a key for the caller. The shared demo account cannot
// hold keys, since they would outlive the demo token.
func (h *APIKeyHandler) HandleCreate(ctx context.Context, input *CreateAPIKeyRequest) (*APIKeyResponse, error) {
	p, err := h.authHandler.AuthorizePrincipal(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}
	if p.Method == auth.MethodDemo {
		return nil, huma.Error403Forbidden("The demo account cannot create API keys")
	}
	if input.Body.ExpiresAt != nil && !input.Body.ExpiresAt.After(time.Now()) {
		return nil, huma.Error400BadRequest("Expiry must be in the future")
	}

	secret, err := newAPIKeySecret()
	if err != nil {
		h.log.Error("Failed to generate API key", zap.Error(err))
		return nil, huma.Error500InternalServerError("Failed to generate key")
	}

	key := models.APIKey{
		UserID:    p.UserID,
		Key:       secret,
		Name:      input.Body.Name,
		ExpiresAt: input.Body.ExpiresAt,
	}
	if err := h.db.WithContext(ctx).Create(&key).Error; err != nil {
		h.log.Error("Failed to store API key", zap.Uint("user_id", p.UserID), zap.Error(err))
		return nil, huma.Error500InternalServerError("Failed to create API key")
	}

	h.log.Info("API key created", zap.Uint("user_id", p.UserID), zap.Uint("key_id", key.ID), zap.String("via", string(p.Method)))
	return &APIKeyResponse{Body: apiKeyView(key, true)}, nil
}

type APIKeyListResponse struct {
	Body []APIKeyView
}

func (h *APIKeyHandler) HandleList(ctx context.Context, input *AuthRequest) (*APIKeyListResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	var keys []models.APIKey
	if err := h.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&keys).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to list API keys")
	}

	views := make([]APIKeyView, 0, len(keys))
	for _, k := range keys {
		views = append(views, apiKeyView(k, false))
	}
	return &APIKeyListResponse{Body: views}, nil
}

type DeleteAPIKeyRequest struct {
	auth.AuthInput
	ID uint `path:"id"`
}

// HandleDelete revokes one of the caller's keys. Other users' keys look
// missing.
func (h *APIKeyHandler) HandleDelete(ctx context.Context, input *DeleteAPIKeyRequest) (*struct{}, error) {
	userID, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	res := h.db.WithContext(ctx).Where("id = ? AND user_id = ?", input.ID, userID).Delete(&models.APIKey{})
	if res.Error != nil {
		return nil, huma.Error500InternalServerError("Failed to delete API key")
	}
	if res.RowsAffected == 0 {
		return nil, huma.Error404NotFound("API key not found")
	}

	h.log.Info("API key revoked", zap.Uint("user_id", userID), zap.Uint("key_id", input.ID))
	return nil, nil
}
