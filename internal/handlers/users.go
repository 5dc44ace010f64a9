package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/remindhq/reminder-api/internal/database"
	"github.com/remindhq/reminder-api/internal/models"
	"github.com/remindhq/reminder-api/internal/services/auth"
	"github.com/remindhq/reminder-api/internal/validation"
	"go.uber.org/zap"
)

// UserHandler handles user registration requests
type UserHandler struct {
	userRepo database.UserRepositoryInterface
	logger   *zap.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userRepo database.UserRepositoryInterface, logger *zap.Logger) *UserHandler {
	return &UserHandler{userRepo: userRepo, logger: logger}
}

// CreateUserRequest represents a signup request
type CreateUserRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// CreateUser registers a new account
func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		if maxBytesErr, ok := err.(*http.MaxBytesError); ok {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	req.Name = validation.SanitizeText(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	if err := validation.Validate.Struct(req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, fieldError := range validationErrors {
				respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Validation failed: %s", fieldError.Error()))
				return
			}
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Validation failed")
		return
	}

	ctx := r.Context()

	if _, err := h.userRepo.GetByEmail(ctx, req.Email); err == nil {
		respondJSONError(w, http.StatusConflict, "Conflict", "An account with this email already exists")
		return
	} else if !errors.Is(err, database.ErrNotFound) {
		h.logger.Error("failed_to_check_existing_user", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create user")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("failed_to_hash_password", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create user")
		return
	}

	user := &models.User{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	}

	if err := h.userRepo.Create(ctx, user); err != nil {
		// Concurrent signup can still hit the unique index
		if database.IsUniqueViolation(err) {
			respondJSONError(w, http.StatusConflict, "Conflict", "An account with this email already exists")
			return
		}
		h.logger.Error("failed_to_create_user", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create user")
		return
	}

	respondJSON(w, http.StatusCreated, user)
}
