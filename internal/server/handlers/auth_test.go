package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/objectivehq/scenesync/internal/models"
	"github.com/objectivehq/scenesync/internal/server/storage"
	"github.com/objectivehq/scenesync/pkg/api"
)

// mockUserStorage реализует storage.UserStorage для тестов
type mockUserStorage struct {
	users     map[string]*models.User
	createErr error
}

func newMockUserStorage() *mockUserStorage {
	return &mockUserStorage{users: make(map[string]*models.User)}
}

func (m *mockUserStorage) CreateUser(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	if _, ok := m.users[user.Email]; ok {
		return storage.ErrUserAlreadyExists
	}
	m.users[user.Email] = user
	return nil
}

func (m *mockUserStorage) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := m.users[email]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	return user, nil
}

func testJWTConfig() JWTConfig {
	return JWTConfig{
		Secret:         []byte("test-secret-key-at-least-32-bytes!!"),
		AccessTokenTTL: time.Hour,
	}
}

func TestAuthHandler_Register_Success(t *testing.T) {
	users := newMockUserStorage()
	h := NewAuthHandler(setupTestLogger(), users, testJWTConfig())

	body, _ := json.Marshal(api.RegisterRequest{Email: "alice@example.com", Password: "correct horse battery"})
	req := httptest.NewRequest(http.MethodPost, "/api/v2/auth/register", bytes.NewReader(body))

	w := httptest.NewRecorder()
	h.Register(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var resp api.RegisterResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.UserID)

	// Пароль хранится только как bcrypt-хеш
	stored := users.users["alice@example.com"]
	require.NotNil(t, stored)
	assert.NotContains(t, stored.PasswordHash, "correct horse")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("correct horse battery")))
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"invalid email", `{"email":"not-an-email","password":"longenough1"}`, http.StatusBadRequest},
		{"short password", `{"email":"a@b.com","password":"short"}`, http.StatusBadRequest},
		{"malformed json", `{`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuthHandler(setupTestLogger(), newMockUserStorage(), testJWTConfig())

			req := httptest.NewRequest(http.MethodPost, "/api/v2/auth/register", bytes.NewReader([]byte(tt.body)))
			w := httptest.NewRecorder()
			h.Register(w, req)

			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	users := newMockUserStorage()
	users.users["alice@example.com"] = &models.User{ID: "u1", Email: "alice@example.com"}

	h := NewAuthHandler(setupTestLogger(), users, testJWTConfig())

	body, _ := json.Marshal(api.RegisterRequest{Email: "alice@example.com", Password: "longenough1"})
	req := httptest.NewRequest(http.MethodPost, "/api/v2/auth/register", bytes.NewReader(body))

	w := httptest.NewRecorder()
	h.Register(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandler_Login_Success(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("longenough1"), bcrypt.MinCost)
	require.NoError(t, err)

	users := newMockUserStorage()
	users.users["alice@example.com"] = &models.User{
		ID:           "u1",
		Email:        "alice@example.com",
		PasswordHash: string(hash),
	}

	cfg := testJWTConfig()
	h := NewAuthHandler(setupTestLogger(), users, cfg)

	body, _ := json.Marshal(api.LoginRequest{Email: "alice@example.com", Password: "longenough1"})
	req := httptest.NewRequest(http.MethodPost, "/api/v2/auth/login", bytes.NewReader(body))

	w := httptest.NewRecorder()
	h.Login(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp api.LoginResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(3600), resp.ExpiresIn)

	// Выданный токен валиден и несет наши claims
	claims, err := ValidateAccessToken(cfg, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "alice@example.com", claims.Email)
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("longenough1"), bcrypt.MinCost)
	require.NoError(t, err)

	users := newMockUserStorage()
	users.users["alice@example.com"] = &models.User{
		ID:           "u1",
		Email:        "alice@example.com",
		PasswordHash: string(hash),
	}

	h := NewAuthHandler(setupTestLogger(), users, testJWTConfig())

	tests := []struct {
		name string
		body string
	}{
		{"wrong password", `{"email":"alice@example.com","password":"wrongpassword"}`},
		{"unknown user", `{"email":"bob@example.com","password":"longenough1"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v2/auth/login", bytes.NewReader([]byte(tt.body)))
			w := httptest.NewRecorder()
			h.Login(w, req)

			// Одинаковый ответ: не раскрываем, существует ли пользователь
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}
