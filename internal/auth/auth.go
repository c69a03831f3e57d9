package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/gdg-garage/academic-nft-api/internal/config"
	"github.com/gdg-garage/academic-nft-api/internal/models"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

const (
	DiscordAuthorizeEndpoint = "https://discord.com/api/oauth2/authorize"
	DiscordTokenEndpoint     = "https://discord.com/api/oauth2/token"
	DiscordUserAPI           = "https://discord.com/api/users/@me"
	DiscordUserGuildsAPI     = "https://discord.com/api/users/@me/guilds"
)

type AuthHandler struct {
	oauthConfig   *oauth2.Config
	db            *gorm.DB
	cfg           *config.Config
	log           *zap.Logger
	session       *VerifiedSession
	authenticator Authenticator
}

func NewAuthHandler(cfg *config.Config, db *gorm.DB, log *zap.Logger) *AuthHandler {
	if log == nil {
		log = zap.NewNop()
	}
	session := NewVerifiedSession(cfg.JWTSecret, db)
	return &AuthHandler{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.DiscordClientID,
			ClientSecret: cfg.DiscordClientSecret,
			RedirectURL:  cfg.DiscordRedirectURL,
			Scopes:       []string{"identify", "email", "guilds"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  DiscordAuthorizeEndpoint,
				TokenURL: DiscordTokenEndpoint,
			},
		},
		db:      db,
		cfg:     cfg,
		log:     log,
		session: session,
		authenticator: Chain{
			NewDemoToken(cfg.DemoToken, db, cfg.DemoUsername),
			session,
		},
	}
}

// AuthInput is embedded in every protected huma input.
type AuthInput struct {
	Cookie        string `header:"Cookie"`
	Authorization string `header:"Authorization"`
	APIKey        string `header:"X-API-KEY"`
}

func (in AuthInput) Credentials() Credentials {
	return Credentials{Cookie: in.Cookie, Authorization: in.Authorization, APIKey: in.APIKey}
}

func (h *AuthHandler) Authenticate(ctx context.Context, creds Credentials) (Principal, error) {
	return h.authenticator.Authenticate(ctx, creds)
}

// Authorize resolves the caller's user ID or returns a huma error.
func (h *AuthHandler) Authorize(ctx context.Context, in AuthInput) (uint, error) {
	p, err := h.AuthorizePrincipal(ctx, in)
	if err != nil {
		return 0, err
	}
	return p.UserID, nil
}

// AuthorizePrincipal is Authorize for handlers that care how the caller
// authenticated.
func (h *AuthHandler) AuthorizePrincipal(ctx context.Context, in AuthInput) (Principal, error) {
	p, err := h.Authenticate(ctx, in.Credentials())
	if err != nil {
		return Principal{}, h.authError(err)
	}
	return p, nil
}

func (h *AuthHandler) authError(err error) error {
	switch {
	case errors.Is(err, ErrNoCredentials):
		return huma.Error401Unauthorized("Unauthorized: No token found")
	case errors.Is(err, ErrInvalidCredentials):
		return huma.Error401Unauthorized("Unauthorized: " + err.Error())
	default:
		h.log.Error("Authentication failed", zap.Error(err))
		return huma.Error500InternalServerError("Authentication failed")
	}
}

func (h *AuthHandler) GenerateToken(userID uint) (string, error) {
	return h.session.GenerateToken(userID)
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	url := h.oauthConfig.AuthCodeURL("state", oauth2.AccessTypeOnline)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

func (h *AuthHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "Code not found", http.StatusBadRequest)
		return
	}

	token, err := h.oauthConfig.Exchange(r.Context(), code)
	if err != nil {
		h.log.Warn("Failed to exchange OAuth code", zap.Error(err))
		http.Error(w, "Failed to exchange token", http.StatusInternalServerError)
		return
	}

	client := h.oauthConfig.Client(r.Context(), token)

	// Check Guild Membership
	if h.cfg.DiscordGuildID != "" {
		isMember, err := h.isGuildMember(client)
		if err != nil {
			h.log.Warn("Failed to get user guilds", zap.Error(err))
			http.Error(w, "Failed to get user guilds", http.StatusInternalServerError)
			return
		}
		if !isMember {
			http.Error(w, "Access denied: You are not a member of the required guild.", http.StatusForbidden)
			return
		}
	}

	resp, err := client.Get(DiscordUserAPI)
	if err != nil {
		http.Error(w, "Failed to get user info", http.StatusInternalServerError)
		return
	}
	defer resp.Body.Close()

	var profile DiscordProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		http.Error(w, "Failed to decode user info", http.StatusInternalServerError)
		return
	}

	user, err := h.SaveDiscordUser(r.Context(), profile)
	if err != nil {
		h.log.Error("Failed to save user", zap.Error(err), zap.String("discord_id", profile.ID))
		http.Error(w, "Failed to save user", http.StatusInternalServerError)
		return
	}

	jwtToken, err := h.GenerateToken(user.ID)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, sessionCookie(jwtToken))
	h.log.Info("User logged in", zap.Uint("user_id", user.ID), zap.String("username", user.Username))
	http.Redirect(w, r, h.cfg.FrontendURL, http.StatusTemporaryRedirect)
}

// DiscordProfile is the subset of the Discord user object we store.
type DiscordProfile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar"`
}

// SaveDiscordUser upserts the account keyed by Discord ID. Usernames are
// display data only and may repeat, including the demo account's name.
func (h *AuthHandler) SaveDiscordUser(ctx context.Context, profile DiscordProfile) (models.User, error) {
	if profile.ID == "" {
		return models.User{}, errors.New("discord profile without id")
	}

	db := h.db.WithContext(ctx)
	var user models.User
	if err := db.Where("discord_id = ?", profile.ID).FirstOrInit(&user).Error; err != nil {
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	user.DiscordID = &profile.ID
	user.Username = profile.Username
	user.Email = profile.Email
	user.Avatar = profile.Avatar

	if err := db.Save(&user).Error; err != nil {
		return models.User{}, fmt.Errorf("save user: %w", err)
	}
	return user, nil
}

func (h *AuthHandler) isGuildMember(client *http.Client) (bool, error) {
	guildsResp, err := client.Get(DiscordUserGuildsAPI)
	if err != nil {
		return false, err
	}
	defer guildsResp.Body.Close()

	var guilds []struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(guildsResp.Body).Decode(&guilds); err != nil {
		return false, fmt.Errorf("decode guilds: %w", err)
	}

	for _, g := range guilds {
		if g.ID == h.cfg.DiscordGuildID {
			return true, nil
		}
	}
	return false, nil
}

func sessionCookie(token string) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Expires:  time.Now().Add(TokenDuration),
		HttpOnly: true,
		Path:     "/",
	}
}

type MeResponse struct {
	Body struct {
		ID        uint   `json:"id"`
		Username  string `json:"username"`
		Email     string `json:"email"`
		Avatar    string `json:"avatar"`
		Organizer bool   `json:"organizer"`
	}
}

func (h *AuthHandler) HandleMe(ctx context.Context, input *AuthInput) (*MeResponse, error) {
	userID, err := h.Authorize(ctx, *input)
	if err != nil {
		return nil, err
	}

	user, err := h.User(ctx, userID)
	if err != nil {
		return nil, err
	}

	res := &MeResponse{}
	res.Body.ID = user.ID
	res.Body.Username = user.Username
	res.Body.Email = user.Email
	res.Body.Avatar = user.Avatar
	res.Body.Organizer = user.Organizer
	return res, nil
}

// User loads an authenticated user's record.
func (h *AuthHandler) User(ctx context.Context, userID uint) (models.User, error) {
	var user models.User
	if err := h.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, huma.Error404NotFound("User not found")
		}
		return models.User{}, huma.Error500InternalServerError("Database error")
	}
	return user, nil
}
