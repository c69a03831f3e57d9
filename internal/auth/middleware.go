package auth

import (
	"context"
	"net/http"
	"time"
)

type contextKey string

const principalKey contextKey = "principal"

// PrincipalFromContext returns the principal stored by Middleware.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// Middleware authenticates plain chi routes and refreshes cookie sessions
// that are more than halfway through their lifetime.
func (h *AuthHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, err := h.Authenticate(r.Context(), CredentialsFromRequest(r))
		if err != nil {
			status := http.StatusUnauthorized
			if herr, ok := h.authError(err).(interface{ GetStatus() int }); ok {
				status = herr.GetStatus()
			}
			http.Error(w, http.StatusText(status), status)
			return
		}

		if p.Method == MethodCookie && !p.ExpiresAt.IsZero() && time.Until(p.ExpiresAt) < TokenDuration/2 {
			if newToken, err := h.GenerateToken(p.UserID); err == nil {
				http.SetCookie(w, sessionCookie(newToken))
			}
		}

		ctx := context.WithValue(r.Context(), principalKey, p)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
