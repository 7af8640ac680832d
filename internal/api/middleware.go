package api

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/CodeWizard18/AgriConnect/internal/auth"
	"github.com/CodeWizard18/AgriConnect/internal/config"
	"github.com/CodeWizard18/AgriConnect/internal/database"
	"github.com/CodeWizard18/AgriConnect/internal/models"
	"github.com/CodeWizard18/AgriConnect/internal/store"
)

type contextKey string

const userContextKey contextKey = "user"

func currentUser(r *http.Request) *models.User {
	user, _ := r.Context().Value(userContextKey).(*models.User)
	return user
}

// authenticate resolves the bearer token to a live user row on every
// request, so a block takes effect on the user's very next call.
func authenticate(db *sql.DB, cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				respondError(w, r, http.StatusUnauthorized, "Unauthorized")
				return
			}

			claims, err := auth.ParseToken(cfg.Auth.JWTSecret, strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				respondError(w, r, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			user, err := store.GetUser(r.Context(), db, claims.UserID)
			if err != nil {
				if errors.Is(err, database.ErrUserNotFound) {
					respondError(w, r, http.StatusUnauthorized, "Invalid or expired token")
					return
				}
				respondStoreError(w, r, err)
				return
			}

			if user.Status == models.UserStatusBlocked {
				respondError(w, r, http.StatusForbidden, "Account blocked. Contact administrator.")
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func requireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := currentUser(r)
			if user == nil {
				respondError(w, r, http.StatusUnauthorized, "Unauthorized")
				return
			}
			for _, role := range roles {
				if user.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			respondError(w, r, http.StatusForbidden, "Insufficient role")
		})
	}
}
