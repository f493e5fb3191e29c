package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type mapResolver map[string]string

func (r mapResolver) ResolveTenant(_ context.Context, token string) (string, error) {
	tenant, ok := r[token]
	if !ok {
		return "", ErrUnauthorized
	}
	return tenant, nil
}

type failingResolver struct{}

func (failingResolver) ResolveTenant(_ context.Context, _ string) (string, error) {
	return "", errors.New("resolver down")
}

func authRequest(token string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/mcp", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestAuthMiddleware_ResolvesTenant(t *testing.T) {
	var seen string
	handler := AuthMiddleware(mapResolver{"token": "tenant1"})(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen, _ = TenantFromContext(r.Context())
		}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authRequest("token"))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "tenant1", seen)
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatal("handler reached without valid credentials")
	})

	cases := []struct {
		name     string
		resolver TenantResolver
		token    string
	}{
		{"missing token", mapResolver{}, ""},
		{"unknown token", mapResolver{"token": "tenant1"}, "wrong"},
		{"resolver error", failingResolver{}, "token"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			AuthMiddleware(tc.resolver)(inner).ServeHTTP(rec, authRequest(tc.token))
			require.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}
