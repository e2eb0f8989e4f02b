package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gosuda/trackly/internal/server/middleware"
)

// setRole injects a role into the request context using the same context key
// that the Auth middleware uses.
func setRole(r *http.Request, role string) *http.Request {
	ctx := context.WithValue(r.Context(), middleware.ContextKeyUserRole, role)
	return r.WithContext(ctx)
}

//nolint:gochecknoglobals // shared test handler
var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func TestRequireRole(t *testing.T) {
	t.Parallel()

	activityRoles := []string{middleware.RoleAdmin, middleware.RoleMember}

	tests := []struct {
		name       string
		allowed    []string
		role       *string
		wantStatus int
		wantDetail string
	}{
		{name: "admin reads activity", allowed: activityRoles, role: ptr(middleware.RoleAdmin), wantStatus: http.StatusOK},
		{name: "member reads activity", allowed: activityRoles, role: ptr(middleware.RoleMember), wantStatus: http.StatusOK},
		{name: "viewer denied activity", allowed: activityRoles, role: ptr(middleware.RoleViewer), wantStatus: http.StatusForbidden, wantDetail: "insufficient permissions"},
		{name: "unknown role denied", allowed: activityRoles, role: ptr("owner"), wantStatus: http.StatusForbidden},
		{name: "no role in context", allowed: activityRoles, wantStatus: http.StatusUnauthorized, wantDetail: "authentication required"},
		{name: "empty role", allowed: activityRoles, role: ptr(""), wantStatus: http.StatusUnauthorized},
		{name: "admin only blocks member", allowed: []string{middleware.RoleAdmin}, role: ptr(middleware.RoleMember), wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := middleware.RequireRole(tt.allowed...)(okHandler)
			req := httptest.NewRequest(http.MethodGet, "/api/v1/activity", http.NoBody)
			if tt.role != nil {
				req = setRole(req, *tt.role)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantDetail != "" {
				assert.Contains(t, rec.Body.String(), tt.wantDetail)
			}
		})
	}
}

func ptr[T any](v T) *T { return &v }
