package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"moneyflow/internal/auth"
)

func authRouter(tokens *auth.TokenProvider, seen *uuid.UUID) *mux.Router {
	router := mux.NewRouter()
	router.Use(AuthMiddleware(tokens))
	router.HandleFunc("/protected", func(w http.ResponseWriter, r *http.Request) {
		if userID, ok := UserIDFrom(r.Context()); ok {
			*seen = userID
		}
		w.WriteHeader(http.StatusOK)
	})
	return router
}

func TestAuthMiddlewarePassesUserID(t *testing.T) {
	tokens := auth.NewTokenProvider("secret", time.Hour)
	userID := uuid.New()
	token, err := tokens.Issue(userID)
	require.NoError(t, err)

	var seen uuid.UUID
	router := authRouter(tokens, &seen)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, userID, seen)
}

func TestAuthMiddlewareMissingHeader(t *testing.T) {
	tokens := auth.NewTokenProvider("secret", time.Hour)
	var seen uuid.UUID
	router := authRouter(tokens, &seen)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "unauthorized")
	assert.Equal(t, uuid.Nil, seen)
}

func TestAuthMiddlewareBadToken(t *testing.T) {
	tokens := auth.NewTokenProvider("secret", time.Hour)
	var seen uuid.UUID
	router := authRouter(tokens, &seen)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, uuid.Nil, seen)
}

func TestAuthMiddlewareWrongScheme(t *testing.T) {
	tokens := auth.NewTokenProvider("secret", time.Hour)
	var seen uuid.UUID
	router := authRouter(tokens, &seen)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, uuid.Nil, seen)
}
