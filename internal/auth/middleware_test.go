package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tripdesk/agency-api/internal/domain"
	"go.uber.org/zap"
)

type fakeUsers map[uuid.UUID]*domain.User

func (f fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, errors.New("not found")
}

func newTestMiddleware(users fakeUsers) (*Middleware, *TokenManager) {
	tokens := NewTokenManager("secret", "agency-api", time.Hour)
	return NewMiddleware(tokens, users, "test-api-key", zap.NewNop()), tokens
}

func captureHandler(captured **UserContext) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestMiddleware_APIKey(t *testing.T) {
	mw, _ := newTestMiddleware(fakeUsers{})
	var captured *UserContext

	req := httptest.NewRequest(http.MethodGet, "/api/v1/hotels", nil)
	req.Header.Set("x-api-key", "test-api-key")
	w := httptest.NewRecorder()
	mw.Authenticate(captureHandler(&captured)).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, captured)
	assert.True(t, captured.IsSystem)
	assert.True(t, captured.IsAdmin())
	assert.Nil(t, captured.OwnerFilter())

	req = httptest.NewRequest(http.MethodGet, "/api/v1/hotels", nil)
	req.Header.Set("x-api-key", "wrong")
	w = httptest.NewRecorder()
	mw.Authenticate(captureHandler(&captured)).ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMiddleware_BearerToken(t *testing.T) {
	user := testUser()
	users := fakeUsers{user.ID: user}
	mw, tokens := newTestMiddleware(users)
	token, _, err := tokens.Issue(user)
	require.NoError(t, err)

	serve := func() (int, *UserContext) {
		var captured *UserContext
		req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		mw.Authenticate(captureHandler(&captured)).ServeHTTP(w, req)
		return w.Code, captured
	}

	code, captured := serve()
	assert.Equal(t, http.StatusOK, code)
	require.NotNil(t, captured)
	assert.Equal(t, user.ID, captured.UserID)
	assert.Equal(t, domain.RoleAgent, captured.Role)
	require.NotNil(t, captured.OwnerFilter())
	assert.Equal(t, user.ID, *captured.OwnerFilter())

	t.Run("role changes apply without a new token", func(t *testing.T) {
		user.Role = domain.RoleSales
		code, captured := serve()
		assert.Equal(t, http.StatusOK, code)
		assert.Equal(t, domain.RoleSales, captured.Role)
	})

	t.Run("signed out token is rejected", func(t *testing.T) {
		user.TokenVersion++
		code, _ := serve()
		assert.Equal(t, http.StatusUnauthorized, code)
		user.TokenVersion--
	})

	t.Run("deactivated user is rejected", func(t *testing.T) {
		user.IsActive = false
		code, _ := serve()
		assert.Equal(t, http.StatusUnauthorized, code)
		user.IsActive = true
	})
}

func TestMiddleware_MissingCredentials(t *testing.T) {
	mw, _ := newTestMiddleware(fakeUsers{})
	var captured *UserContext

	for _, header := range []string{"", "Basic abc", "Bearer "} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		mw.Authenticate(captureHandler(&captured)).ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
	}
}

func TestMiddleware_WebsocketQueryToken(t *testing.T) {
	user := testUser()
	mw, tokens := newTestMiddleware(fakeUsers{user.ID: user})
	token, _, err := tokens.Issue(user)
	require.NoError(t, err)
	var captured *UserContext

	req := httptest.NewRequest(http.MethodGet, "/api/v1/assignments/x/chat/stream?access_token="+token, nil)
	req.Header.Set("Upgrade", "websocket")
	w := httptest.NewRecorder()
	mw.Authenticate(captureHandler(&captured)).ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/me?access_token="+token, nil)
	w = httptest.NewRecorder()
	mw.Authenticate(captureHandler(&captured)).ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code, "query tokens are only accepted on upgrades")
}

func TestRequireRoleAndPermission(t *testing.T) {
	mw, _ := newTestMiddleware(fakeUsers{})
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	tests := []struct {
		name     string
		user     *UserContext
		handler  http.Handler
		expected int
	}{
		{"no user", nil, mw.RequireRole(domain.RoleAdmin)(ok), http.StatusForbidden},
		{"matching role", &UserContext{Role: domain.RoleSales}, mw.RequireRole(domain.RoleSales, domain.RoleAdmin)(ok), http.StatusOK},
		{"other role", &UserContext{Role: domain.RoleGuest}, mw.RequireRole(domain.RoleSales)(ok), http.StatusForbidden},
		{"system passes role gate", SystemUser(), mw.RequireRole(domain.RoleOperations)(ok), http.StatusOK},
		{"operations may toggle checklist", &UserContext{Role: domain.RoleOperations}, mw.RequirePermission(domain.PermissionAssignmentsWrite)(ok), http.StatusOK},
		{"agent may not edit catalog", &UserContext{Role: domain.RoleAgent}, mw.RequirePermission(domain.PermissionCatalogWrite)(ok), http.StatusForbidden},
		{"admin has everything", &UserContext{Role: domain.RoleAdmin}, mw.RequirePermission(domain.PermissionAuditRead)(ok), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.user != nil {
				req = req.WithContext(WithUserContext(req.Context(), tt.user))
			}
			w := httptest.NewRecorder()
			tt.handler.ServeHTTP(w, req)
			assert.Equal(t, tt.expected, w.Code)
		})
	}
}

func TestShellFor(t *testing.T) {
	for _, role := range domain.AllRoles() {
		shell := ShellFor(role)
		assert.Equal(t, role, shell.Role)
		assert.NotEmpty(t, shell.Navigation)
		assert.Contains(t, shell.Permissions, string(domain.PermissionCatalogRead))
	}

	assert.Equal(t, "/sales", ShellFor(domain.RoleSales).BasePath)
	assert.Contains(t, ShellFor(domain.RoleSales).Permissions, string(domain.PermissionFollowUpsWrite))
	assert.NotContains(t, ShellFor(domain.RoleGuest).Permissions, string(domain.PermissionClientsWrite))

	unknown := ShellFor(domain.UserRoleType("pirate"))
	assert.Equal(t, domain.RoleGuest, unknown.Role)
}
