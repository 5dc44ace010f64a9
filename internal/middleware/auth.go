package middleware

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/remindhq/reminder-api/internal/database"
	"github.com/remindhq/reminder-api/internal/request"
	"github.com/remindhq/reminder-api/internal/services/auth"
)

// Auth creates authentication middleware that validates bearer session
// tokens and attaches the authenticated user to the request context.
// Handlers downstream read it with request.UserFromContext.
func Auth(tokens *auth.TokenManager, userRepo database.UserRepositoryInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondError(w, http.StatusUnauthorized, "Missing Authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				respondError(w, http.StatusUnauthorized, "Invalid Authorization header format")
				return
			}

			ctx := r.Context()

			userID, err := tokens.Verify(parts[1])
			if err != nil {
				respondError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			user, err := userRepo.GetByID(ctx, userID)
			if err != nil {
				// A valid token for a deleted account is still unauthorized
				if errors.Is(err, database.ErrNotFound) {
					respondError(w, http.StatusUnauthorized, "Invalid or expired token")
					return
				}
				log.Printf("Database error while fetching user: %v", err)
				respondError(w, http.StatusInternalServerError, "Database error")
				return
			}

			next.ServeHTTP(w, r.WithContext(request.WithUser(ctx, user)))
		})
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success": false,
		"error":   message,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}
