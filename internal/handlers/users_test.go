package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/remindhq/reminder-api/internal/database"
	"github.com/remindhq/reminder-api/internal/models"
	"github.com/remindhq/reminder-api/internal/services/auth"
	"go.uber.org/zap"
)

func TestCreateUser(t *testing.T) {
	t.Parallel()

	var created *models.User
	repo := &mockUserRepo{
		createFunc: func(ctx context.Context, user *models.User) error {
			created = user
			return nil
		},
	}
	h := NewUserHandler(repo, zap.NewNop())

	body := []byte(`{"name":"Ada Lovelace","email":"New.User@Example.com","password":"hunter2hunter2"}`)
	w := httptest.NewRecorder()
	h.CreateUser(w, httptest.NewRequest("POST", "/api/v1/users", bytes.NewReader(body)))

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body: %s)", w.Code, w.Body.String())
	}
	if created == nil {
		t.Fatal("expected user to be created")
	}
	if created.Name != "Ada Lovelace" {
		t.Errorf("name = %q, want the name from the signup request", created.Name)
	}
	if created.Email != "new.user@example.com" {
		t.Errorf("email = %q, want normalized lowercase", created.Email)
	}
	if created.PasswordHash == "" || created.PasswordHash == "hunter2hunter2" {
		t.Error("password must be stored hashed")
	}
	if !auth.CheckPassword(created.PasswordHash, "hunter2hunter2") {
		t.Error("stored hash does not verify against the original password")
	}

	// The hash must not appear in the response body
	var resp map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if data, ok := resp["data"].(map[string]any); ok {
		if _, leaked := data["password_hash"]; leaked {
			t.Error("password hash leaked in response")
		}
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	t.Parallel()

	repo := &mockUserRepo{
		getByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
			return &models.User{Email: email}, nil
		},
	}
	h := NewUserHandler(repo, zap.NewNop())

	body := []byte(`{"name":"Taken","email":"taken@example.com","password":"hunter2hunter2"}`)
	w := httptest.NewRecorder()
	h.CreateUser(w, httptest.NewRequest("POST", "/api/v1/users", bytes.NewReader(body)))

	if w.Code != http.StatusConflict {
		t.Errorf("status = %d, want 409", w.Code)
	}
}

func TestCreateUserValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"missing name", `{"email":"user@example.com","password":"hunter2hunter2"}`},
		{"blank name", `{"name":"   ","email":"user@example.com","password":"hunter2hunter2"}`},
		{"missing email", `{"name":"Ada","password":"hunter2hunter2"}`},
		{"invalid email", `{"name":"Ada","email":"nope","password":"hunter2hunter2"}`},
		{"short password", `{"name":"Ada","email":"user@example.com","password":"short"}`},
		{"malformed json", `{"email":`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := &mockUserRepo{
				createFunc: func(ctx context.Context, user *models.User) error {
					t.Error("Create should not be called for invalid input")
					return nil
				},
				getByEmailFunc: func(ctx context.Context, email string) (*models.User, error) {
					return nil, database.ErrNotFound
				},
			}
			h := NewUserHandler(repo, zap.NewNop())

			w := httptest.NewRecorder()
			h.CreateUser(w, httptest.NewRequest("POST", "/api/v1/users", bytes.NewReader([]byte(tt.body))))

			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}
