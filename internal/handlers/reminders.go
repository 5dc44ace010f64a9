package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/remindhq/reminder-api/internal/database"
	"github.com/remindhq/reminder-api/internal/models"
	"github.com/remindhq/reminder-api/internal/request"
	"github.com/remindhq/reminder-api/internal/validation"
	"go.uber.org/zap"
)

const (
	// MaxReminderMessageLength is the maximum length for a reminder message
	MaxReminderMessageLength = 10000
)

// ReminderScheduler enqueues a delivery job for a persisted reminder
type ReminderScheduler interface {
	Schedule(ctx context.Context, reminder *models.Reminder) error
}

// ReminderHandler handles reminder-related requests
type ReminderHandler struct {
	reminderRepo database.ReminderRepositoryInterface
	scheduler    ReminderScheduler
	logger       *zap.Logger
}

// NewReminderHandler creates a new reminder handler
func NewReminderHandler(reminderRepo database.ReminderRepositoryInterface, scheduler ReminderScheduler, logger *zap.Logger) *ReminderHandler {
	return &ReminderHandler{
		reminderRepo: reminderRepo,
		scheduler:    scheduler,
		logger:       logger,
	}
}

// RegisterRoutes registers reminder routes on the given router
// The router should already have the /reminders prefix
func (h *ReminderHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListReminders).Methods("GET")
	r.HandleFunc("", h.CreateReminder).Methods("POST")
	r.HandleFunc("/{id}", h.GetReminder).Methods("GET")
	r.HandleFunc("/{id}", h.UpdateReminder).Methods("PATCH")
	r.HandleFunc("/{id}", h.DeleteReminder).Methods("DELETE")
}

// CreateReminderRequest represents a create reminder request
type CreateReminderRequest struct {
	Message          string    `json:"message" validate:"required,min=1,max=10000"`
	NotificationDate time.Time `json:"notification_date" validate:"required"`
}

// UpdateReminderRequest represents an update reminder request. Updating a
// reminder does not reschedule delivery; the worker reloads the record at
// fire time and sends whatever is current.
type UpdateReminderRequest struct {
	Message          *string    `json:"message,omitempty"`
	NotificationDate *time.Time `json:"notification_date,omitempty"`
}

// ListReminders lists reminders for the authenticated user
func (h *ReminderHandler) ListReminders(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	reminders, err := h.reminderRepo.ListByUser(r.Context(), user.ID)
	if err != nil {
		h.logger.Error("failed_to_list_reminders", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve reminders")
		return
	}

	respondJSON(w, http.StatusOK, reminders)
}

// CreateReminder persists a reminder and schedules its delivery. If the
// delivery job cannot be enqueued the stored record is removed again so no
// reminder exists that will never fire.
func (h *ReminderHandler) CreateReminder(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	var req CreateReminderRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		if maxBytesErr, ok := err.(*http.MaxBytesError); ok {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

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

	req.Message = validation.SanitizeText(req.Message)
	if req.Message == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Message is required and cannot be empty after sanitization")
		return
	}
	if len(req.Message) > MaxReminderMessageLength {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Message exceeds maximum length of %d characters", MaxReminderMessageLength))
		return
	}

	if err := validation.ValidateNotificationDate(req.NotificationDate, time.Now()); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	ctx := r.Context()
	reminder := &models.Reminder{
		ID:               uuid.New(),
		UserID:           user.ID,
		Message:          req.Message,
		NotificationDate: req.NotificationDate.UTC(),
		Status:           models.ReminderStatusScheduled,
	}

	if err := h.reminderRepo.Create(ctx, reminder); err != nil {
		h.logger.Error("failed_to_create_reminder", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create reminder")
		return
	}

	if err := h.scheduler.Schedule(ctx, reminder); err != nil {
		h.logger.Error("failed_to_schedule_reminder",
			zap.String("reminder_id", reminder.ID.String()),
			zap.Error(err),
		)
		// Compensate: remove the orphaned record so create stays atomic
		if delErr := h.reminderRepo.DeleteByID(ctx, reminder.ID); delErr != nil {
			h.logger.Error("failed_to_compensate_unscheduled_reminder",
				zap.String("reminder_id", reminder.ID.String()),
				zap.Error(delErr),
			)
		}
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to schedule reminder")
		return
	}

	respondJSON(w, http.StatusCreated, reminder)
}

// GetReminder retrieves a reminder by ID
func (h *ReminderHandler) GetReminder(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid reminder ID")
		return
	}

	// Scoped lookup: another user's reminder is indistinguishable from a
	// missing one
	reminder, err := h.reminderRepo.GetByIDForUser(r.Context(), id, user.ID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondJSONError(w, http.StatusNotFound, "Not Found", "Reminder not found")
			return
		}
		h.logger.Error("failed_to_get_reminder", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve reminder")
		return
	}

	respondJSON(w, http.StatusOK, reminder)
}

// UpdateReminder updates an existing reminder's message
func (h *ReminderHandler) UpdateReminder(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid reminder ID")
		return
	}

	ctx := r.Context()
	reminder, err := h.reminderRepo.GetByIDForUser(ctx, id, user.ID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondJSONError(w, http.StatusNotFound, "Not Found", "Reminder not found")
			return
		}
		h.logger.Error("failed_to_get_reminder", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve reminder")
		return
	}

	var req UpdateReminderRequest
	decoder := json.NewDecoder(r.Body)
	if err := decoder.Decode(&req); err != nil {
		if maxBytesErr, ok := err.(*http.MaxBytesError); ok {
			respondJSONError(w, http.StatusRequestEntityTooLarge, "Request Entity Too Large", fmt.Sprintf("Request body exceeds maximum size of %d bytes", maxBytesErr.Limit))
			return
		}
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid request body")
		return
	}

	if req.Message == nil && req.NotificationDate == nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "No updatable fields provided")
		return
	}

	if req.Message != nil {
		sanitized := validation.SanitizeText(*req.Message)
		if sanitized == "" {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Message cannot be empty after sanitization")
			return
		}
		if len(sanitized) > MaxReminderMessageLength {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", fmt.Sprintf("Message exceeds maximum length of %d characters", MaxReminderMessageLength))
			return
		}
		reminder.Message = sanitized
	}

	if req.NotificationDate != nil {
		if err := validation.ValidateNotificationDate(*req.NotificationDate, time.Now()); err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
			return
		}
		reminder.NotificationDate = req.NotificationDate.UTC()
	}

	if err := h.reminderRepo.Update(ctx, reminder); err != nil {
		h.logger.Error("failed_to_update_reminder", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to update reminder")
		return
	}

	respondJSON(w, http.StatusOK, reminder)
}

// DeleteReminder deletes a reminder. Any delivery job already enqueued for
// it becomes a no-op when the worker finds the record gone.
func (h *ReminderHandler) DeleteReminder(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		respondJSONError(w, http.StatusUnauthorized, "Unauthorized", "User not found in context")
		return
	}

	vars := mux.Vars(r)
	id, err := uuid.Parse(vars["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid reminder ID")
		return
	}

	if err := h.reminderRepo.Delete(r.Context(), id, user.ID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			respondJSONError(w, http.StatusNotFound, "Not Found", "Reminder not found")
			return
		}
		h.logger.Error("failed_to_delete_reminder", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to delete reminder")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
