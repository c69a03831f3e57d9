package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/academic-nft-api/internal/auth"
	"github.com/gdg-garage/academic-nft-api/internal/stats"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type DashboardHandler struct {
	db          *gorm.DB
	authHandler *auth.AuthHandler
	opts        stats.Options
	log         *zap.Logger
}

func NewDashboardHandler(db *gorm.DB, authHandler *auth.AuthHandler, opts stats.Options, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{db: db, authHandler: authHandler, opts: opts, log: log}
}

type DashboardStatsResponse struct {
	Body struct {
		stats.DerivedStats
		Counts stats.Counts `json:"counts"`
	}
}

// HandleStats recomputes the caller's dashboard from their stored records.
func (h *DashboardHandler) HandleStats(ctx context.Context, input *AuthRequest) (*DashboardStatsResponse, error) {
	userID, err := h.authHandler.Authorize(ctx, input.AuthInput)
	if err != nil {
		return nil, err
	}

	counts, err := stats.CountsForUser(ctx, h.db, userID)
	if err != nil {
		h.log.Error("Failed to count dashboard records", zap.Uint("user_id", userID), zap.Error(err))
		return nil, huma.Error500InternalServerError("Failed to load dashboard stats")
	}

	res := &DashboardStatsResponse{}
	res.Body.DerivedStats = stats.ComputeStats(counts, h.opts)
	res.Body.Counts = counts
	return res, nil
}

type ComputeStatsRequest struct {
	auth.AuthInput
	Body struct {
		TotalAchievements    int `json:"totalAchievements,omitempty" minimum:"0"`
		VerifiedAchievements int `json:"verifiedAchievements,omitempty" minimum:"0"`
		MintedCredentials    int `json:"mintedCredentials,omitempty" minimum:"0"`
		RareCount            int `json:"rareCount,omitempty" minimum:"0"`
		LegendaryCount       int `json:"legendaryCount,omitempty" minimum:"0"`
	}
}

type ComputeStatsResponse struct {
	Body stats.DerivedStats
}

// HandleCompute evaluates the dashboard formulas for supplied counts.
func (h *DashboardHandler) HandleCompute(ctx context.Context, input *ComputeStatsRequest) (*ComputeStatsResponse, error) {
	if _, err := h.authHandler.Authorize(ctx, input.AuthInput); err != nil {
		return nil, err
	}

	counts := stats.Counts(input.Body)
	return &ComputeStatsResponse{Body: stats.ComputeStats(counts, h.opts)}, nil
}
