package httpapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"spacerh.dev/internal/auth"
)

func TestExtractBearerToken(t *testing.T) {
	cases := []struct {
		name    string
		header  string
		want    string
		wantErr bool
	}{
		{name: "valid", header: "Bearer abc.def.ghi", want: "abc.def.ghi"},
		{name: "lowercase scheme", header: "bearer abc", want: "abc"},
		{name: "padded", header: "  Bearer abc  ", want: "abc"},
		{name: "empty", header: "", wantErr: true},
		{name: "wrong scheme", header: "Basic abc", wantErr: true},
		{name: "scheme only", header: "Bearer ", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := extractBearerToken(tc.header)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got token %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("token = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	api := &API{}

	withPrincipal := func(role string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/users", nil)
		ctx := auth.ContextWithPrincipal(req.Context(), auth.Principal{UserID: 7, Role: role})
		return req.WithContext(ctx)
	}

	t.Run("missing principal", func(t *testing.T) {
		rec := httptest.NewRecorder()
		_, ok := api.requireRole(rec, httptest.NewRequest(http.MethodGet, "/users", nil), "admin")
		if ok {
			t.Fatalf("expected denial")
		}
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("role mismatch", func(t *testing.T) {
		rec := httptest.NewRecorder()
		_, ok := api.requireRole(rec, withPrincipal("contratado"), "admin", "lider")
		if ok {
			t.Fatalf("expected denial")
		}
		if rec.Code != http.StatusForbidden {
			t.Fatalf("status = %d", rec.Code)
		}
	})

	t.Run("role match", func(t *testing.T) {
		rec := httptest.NewRecorder()
		principal, ok := api.requireRole(rec, withPrincipal("lider"), "admin", "lider")
		if !ok {
			t.Fatalf("expected access")
		}
		if principal.UserID != 7 {
			t.Fatalf("principal = %+v", principal)
		}
	})

	t.Run("no roles means any authenticated", func(t *testing.T) {
		rec := httptest.NewRecorder()
		if _, ok := api.requireRole(rec, withPrincipal("contratado")); !ok {
			t.Fatalf("expected access")
		}
	})
}

func TestIsPublicPath(t *testing.T) {
	for _, path := range []string{"/auth/login", "/auth/signup", "/healthz", "/readyz", "/metrics", "/"} {
		if !isPublicPath(path) {
			t.Fatalf("%s should be public", path)
		}
	}
	for _, path := range []string{"/users", "/users/me", "/companies", "/daily-requests"} {
		if isPublicPath(path) {
			t.Fatalf("%s should require auth", path)
		}
	}
}
