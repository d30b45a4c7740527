package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockAuthValidator struct {
	mock.Mock
}

func (m *MockAuthValidator) Validate(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

func TestBearerAuth_Success(t *testing.T) {
	mockValidator := new(MockAuthValidator)
	mockValidator.On("Validate", mock.Anything, "tok-alice").Return("alice@example.com", nil)

	var capturedEmail string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedEmail = GetUserEmail(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	middleware := BearerAuth(mockValidator)
	wrappedHandler := middleware(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok-alice")
	w := httptest.NewRecorder()

	wrappedHandler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "alice@example.com", capturedEmail)
	mockValidator.AssertExpectations(t)
}

func TestBearerAuth_MissingHeader(t *testing.T) {
	mockValidator := new(MockAuthValidator)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	})

	middleware := BearerAuth(mockValidator)
	wrappedHandler := middleware(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	wrappedHandler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBearerAuth_WrongScheme(t *testing.T) {
	mockValidator := new(MockAuthValidator)

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	})

	middleware := BearerAuth(mockValidator)
	wrappedHandler := middleware(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	w := httptest.NewRecorder()

	wrappedHandler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBearerAuth_InvalidToken(t *testing.T) {
	mockValidator := new(MockAuthValidator)
	mockValidator.On("Validate", mock.Anything, "tok-bogus").Return("", errors.New("invalid api token"))

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be called")
	})

	middleware := BearerAuth(mockValidator)
	wrappedHandler := middleware(handler)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer tok-bogus")
	w := httptest.NewRecorder()

	wrappedHandler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockValidator.AssertExpectations(t)
}

func TestGetUserEmail_Missing(t *testing.T) {
	assert.Empty(t, GetUserEmail(context.Background()))
}
