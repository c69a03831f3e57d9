package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gdg-garage/academic-nft-api/internal/auth"
	"github.com/gdg-garage/academic-nft-api/internal/fixtures"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// DemoHandler serves hand-authored fixture payloads for widgets that have no
// backing data yet.
type DemoHandler struct {
	provider fixtures.Provider
	log      *zap.Logger
}

func NewDemoHandler(provider fixtures.Provider, log *zap.Logger) *DemoHandler {
	return &DemoHandler{provider: provider, log: log}
}

func (h *DemoHandler) HandleKeys(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"keys": h.provider.Keys()})
}

func (h *DemoHandler) HandleFixture(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	raw, err := h.provider.Fixture(r.Context(), key)
	if errors.Is(err, fixtures.ErrNotFound) {
		http.Error(w, "Fixture not found", http.StatusNotFound)
		return
	}
	if err != nil {
		fields := []zap.Field{zap.String("key", key), zap.Error(err)}
		if p, ok := auth.PrincipalFromContext(r.Context()); ok {
			fields = append(fields, zap.Uint("user_id", p.UserID), zap.String("auth_method", string(p.Method)))
		}
		h.log.Error("Failed to load fixture", fields...)
		http.Error(w, "Failed to load fixture", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
