package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/gdg-garage/academic-nft-api/internal/auth"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Handlers struct {
	Auth         *auth.AuthHandler
	Achievements *AchievementHandler
	Events       *EventHandler
	Dashboard    *DashboardHandler
	APIKeys      *APIKeyHandler
	Demo         *DemoHandler
}

var protected = func(o *huma.Operation) {
	o.Security = []map[string][]string{{"cookieAuth": {}}, {"bearerAuth": {}}, {"apiKeyAuth": {}}}
}

func RegisterRoutes(r *chi.Mux, h Handlers) huma.API {
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	config := huma.DefaultConfig("Academic NFT Marketplace API", "1.0.0")
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"cookieAuth": {
			Type: "apiKey",
			In:   "cookie",
			Name: auth.CookieName,
		},
		"bearerAuth": {
			Type:   "http",
			Scheme: "bearer",
		},
		"apiKeyAuth": {
			Type: "apiKey",
			In:   "header",
			Name: "X-API-KEY",
		},
	}
	api := humachi.New(r, config)

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})
	r.Get("/auth/discord/login", h.Auth.HandleLogin)
	r.Get("/auth/discord/callback", h.Auth.HandleCallback)

	// Fixture passthrough
	r.Group(func(r chi.Router) {
		r.Use(h.Auth.Middleware)
		r.Get("/demo", h.Demo.HandleKeys)
		r.Get("/demo/{key}", h.Demo.HandleFixture)
	})

	huma.Get(api, "/me", h.Auth.HandleMe, protected)

	huma.Get(api, "/achievements", h.Achievements.HandleList, protected)
	huma.Post(api, "/achievements", h.Achievements.HandleCreate, protected)
	huma.Post(api, "/achievements/{id}/verify", h.Achievements.HandleVerify, protected)
	huma.Post(api, "/achievements/{id}/mint", h.Achievements.HandleMint, protected)
	huma.Get(api, "/credentials", h.Achievements.HandleListCredentials, protected)

	huma.Get(api, "/events", h.Events.HandleList, protected)
	huma.Post(api, "/events", h.Events.HandleCreate, protected)
	huma.Get(api, "/events/{id}", h.Events.HandleGet, protected)
	huma.Post(api, "/events/{id}/quote", h.Events.HandleQuote, protected)
	huma.Post(api, "/events/{id}/purchase", h.Events.HandlePurchase, protected)
	huma.Get(api, "/tickets", h.Events.HandleListTickets, protected)

	huma.Get(api, "/dashboard/stats", h.Dashboard.HandleStats, protected)
	huma.Post(api, "/stats/compute", h.Dashboard.HandleCompute, protected)

	huma.Post(api, "/api-keys", h.APIKeys.HandleCreate, protected)
	huma.Get(api, "/api-keys", h.APIKeys.HandleList, protected)
	huma.Delete(api, "/api-keys/{id}", h.APIKeys.HandleDelete, protected)

	return api
}
