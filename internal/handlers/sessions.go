package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/remindhq/reminder-api/internal/database"
	"github.com/remindhq/reminder-api/internal/models"
	"github.com/remindhq/reminder-api/internal/services/auth"
	"github.com/remindhq/reminder-api/internal/validation"
	"go.uber.org/zap"
)

// SessionHandler handles login requests
type SessionHandler struct {
	userRepo database.UserRepositoryInterface
	tokens   *auth.TokenManager
	logger   *zap.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(userRepo database.UserRepositoryInterface, tokens *auth.TokenManager, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{userRepo: userRepo, tokens: tokens, logger: logger}
}

// CreateSessionRequest represents a login request
type CreateSessionRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// CreateSessionResponse carries the issued bearer token and the
// authenticated user
type CreateSessionResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// CreateSession authenticates a user and issues a session token. Unknown
// email and wrong password produce identical responses so the endpoint
// cannot be used to enumerate accounts.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		if maxBytesErr, ok := err.(*http.MaxBytesError); ok {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := validation.Validate.Struct(req); err != nil {
		if _, ok := err.(validator.ValidationErrors); ok {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Email and password are required")
			return
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Validation failed")
		return
	}

	ctx := r.Context()

	user, err := h.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Invalid email or password")
			return
		}
		h.logger.Error("failed_to_load_user_for_login", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to sign in")
		return
	}

	if !auth.CheckPassword(user.PasswordHash, req.Password) {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "Invalid email or password")
		return
	}

	token, err := h.tokens.Issue(user.ID)
	if err != nil {
		h.logger.Error("failed_to_issue_token", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to sign in")
		return
	}

	respondJSON(w, http.StatusCreated, CreateSessionResponse{Token: token, User: user})
}
