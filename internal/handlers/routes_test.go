package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gdg-garage/academic-nft-api/internal/fixtures"
	"github.com/gdg-garage/academic-nft-api/internal/stats"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T, env *testEnv) *chi.Mux {
	t.Helper()

	provider, err := fixtures.Load("")
	require.NoError(t, err)

	log := zap.NewNop()
	r := chi.NewRouter()
	RegisterRoutes(r, Handlers{
		Auth:         env.authHandler,
		Achievements: NewAchievementHandler(env.db, env.notifier, env.authHandler, log),
		Events:       NewEventHandler(env.db, env.notifier, env.authHandler, log),
		Dashboard:    NewDashboardHandler(env.db, env.authHandler, stats.DefaultOptions(), log),
		APIKeys:      NewAPIKeyHandler(env.db, env.authHandler, log),
		Demo:         NewDemoHandler(provider, log),
	})
	return r
}

func serve(r http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestRoutes(t *testing.T) {
	env := newTestEnv(t)
	r := newTestRouter(t, env)
	demo := map[string]string{"Authorization": "Bearer " + testDemoToken}

	t.Run("Health", func(t *testing.T) {
		rr := serve(r, "GET", "/health", "", nil)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "OK", rr.Body.String())
	})

	t.Run("ProtectedWithoutToken", func(t *testing.T) {
		rr := serve(r, "GET", "/dashboard/stats", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)

		rr = serve(r, "GET", "/demo/nfts", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("ComputeStats", func(t *testing.T) {
		rr := serve(r, "POST", "/stats/compute",
			`{"totalAchievements":100,"verifiedAchievements":8,"mintedCredentials":5,"rareCount":5,"legendaryCount":1}`, demo)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var got stats.DerivedStats
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, 7, got.Level)
		assert.Equal(t, 30, got.StreakDays)
		assert.Equal(t, stats.RankLegendary, got.Rank)
	})

	t.Run("ComputeStatsRejectsNegative", func(t *testing.T) {
		rr := serve(r, "POST", "/stats/compute", `{"verifiedAchievements":-1}`, demo)
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	})

	t.Run("QuoteOverHTTP", func(t *testing.T) {
		event := createGala(t, env)

		rr := serve(r, "POST", "/events/"+jsonNumber(event.ID)+"/quote",
			`{"quantity":1,"heldCredentials":["gpa_guardian","leadership_legend"]}`, demo)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

		var got map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		assert.Equal(t, 52.5, got["unitPrice"])
		assert.Equal(t, "leadership_legend", got["appliedCredential"])
	})

	t.Run("DemoFixtures", func(t *testing.T) {
		rr := serve(r, "GET", "/demo/leaderboard", "", demo)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

		var board []map[string]any
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &board))
		assert.Len(t, board, 3)

		rr = serve(r, "GET", "/demo/unknown", "", demo)
		assert.Equal(t, http.StatusNotFound, rr.Code)

		rr = serve(r, "GET", "/demo", "", demo)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "social-feed")
	})

	t.Run("OpenAPI", func(t *testing.T) {
		rr := serve(r, "GET", "/openapi.json", "", nil)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "/events/{id}/purchase")
	})
}

func jsonNumber(id uint) string {
	b, _ := json.Marshal(id)
	return string(b)
}
