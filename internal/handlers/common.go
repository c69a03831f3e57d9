package handlers

import (
	"context"
	"errors"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/academic-nft-api/internal/auth"
	"github.com/gdg-garage/academic-nft-api/internal/pricing"
	"gorm.io/gorm"
)

// AuthRequest is the input of operations that take nothing but credentials.
type AuthRequest struct {
	auth.AuthInput
}

// notFoundOr maps a missing record to 404 and anything else to 500.
func notFoundOr(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return huma.Error404NotFound(what + " not found")
	}
	return huma.Error500InternalServerError("Database error loading " + what)
}

func pricingError(err error) error {
	if errors.Is(err, pricing.ErrInvalidArgument) {
		return huma.Error400BadRequest(err.Error())
	}
	return huma.Error500InternalServerError("Failed to compute price")
}

// requireOrganizer authorizes the caller and checks the organizer flag.
func requireOrganizer(ctx context.Context, authHandler *auth.AuthHandler, in auth.AuthInput) (uint, error) {
	userID, err := authHandler.Authorize(ctx, in)
	if err != nil {
		return 0, err
	}
	user, err := authHandler.User(ctx, userID)
	if err != nil {
		return 0, err
	}
	if !user.Organizer {
		return 0, huma.Error403Forbidden("Access denied: organizers only")
	}
	return userID, nil
}
