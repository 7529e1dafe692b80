package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

type authStub bool

func (a authStub) IsAuthenticated() bool { return bool(a) }

func TestRequireSession(t *testing.T) {
	tests := []struct {
		name         string
		auth         authStub
		target       string
		wantStatus   int
		wantLocation string
		wantNext     bool
	}{
		{
			name:       "authenticated",
			auth:       true,
			target:     "/debtors",
			wantStatus: http.StatusOK,
			wantNext:   true,
		},
		{
			name:         "anonymous redirected with return url",
			auth:         false,
			target:       "/debtors?page=2",
			wantStatus:   http.StatusSeeOther,
			wantLocation: "/login?returnUrl=%2Fdebtors%3Fpage%3D2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nextCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				nextCalled = true
			})

			w := httptest.NewRecorder()
			r := httptest.NewRequest(http.MethodGet, tt.target, nil)
			RequireSession(tt.auth)(next).ServeHTTP(w, r)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if loc := w.Header().Get("Location"); loc != tt.wantLocation {
				t.Fatalf("location = %q, want %q", loc, tt.wantLocation)
			}
			if nextCalled != tt.wantNext {
				t.Fatalf("next called = %v, want %v", nextCalled, tt.wantNext)
			}
		})
	}
}

func TestGuestOnly(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	GuestOnly(authStub(true))(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusSeeOther)
	}
	if loc := w.Header().Get("Location"); loc != "/debtors" {
		t.Fatalf("location = %q, want /debtors", loc)
	}

	w = httptest.NewRecorder()
	GuestOnly(authStub(false))(next).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNoContent)
	}
}
