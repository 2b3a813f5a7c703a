package http

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fjod/gizmo_store/internal/auth"
	"github.com/fjod/gizmo_store/internal/logger"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

const (
	SessionCookie = "gizmos_session"
	AdminCookie   = "admin_token"

	sessionMaxAge = 30 * 24 * 60 * 60
)

type ctxKey int

const adminClaimsKey ctxKey = iota

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = middleware.GetReqID(r.Context())
		}
		if requestID == "" {
			requestID = fmt.Sprintf("req-%d", time.Now().UnixNano())
		}

		ctx := logger.WithRequestID(r.Context(), requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// SessionMiddleware gives every visitor a cart session id kept in a cookie.
func SessionMiddleware(secure bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sessionID string
			if c, err := r.Cookie(SessionCookie); err == nil {
				if _, parseErr := uuid.Parse(c.Value); parseErr == nil {
					sessionID = c.Value
				}
			}
			if sessionID == "" {
				sessionID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookie,
					Value:    sessionID,
					Path:     "/",
					MaxAge:   sessionMaxAge,
					HttpOnly: true,
					Secure:   secure,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := logger.WithSessionID(r.Context(), sessionID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type TokenVerifier interface {
	Verify(raw string) (*auth.Claims, error)
}

// AdminOnly rejects requests without a valid admin_token cookie.
func AdminOnly(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := adminFromRequest(r, verifier)
			if !ok {
				respondError(w, http.StatusUnauthorized, "unauthorized", "Unauthorized")
				return
			}
			ctx := context.WithValue(r.Context(), adminClaimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func adminFromRequest(r *http.Request, verifier TokenVerifier) (*auth.Claims, bool) {
	c, err := r.Cookie(AdminCookie)
	if err != nil {
		return nil, false
	}
	claims, err := verifier.Verify(c.Value)
	if err != nil {
		return nil, false
	}
	return claims, true
}

func adminClaims(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(adminClaimsKey).(*auth.Claims)
	return claims
}

func sessionID(r *http.Request) string {
	return logger.SessionID(r.Context())
}
