package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	goChmod "github.com/xvzf/goChmod"
)

var fixtureGroups = map[string][]string{
	"testuser1": {"testgroup1", "testgroup2"},
	"testuser2": {"testgroup2"},
	"testuser3": {"testgroup3"},
}

func newTestManager(t *testing.T, app goChmod.App) *goChmod.Manager {
	t.Helper()

	resolver := goChmod.GroupResolverFunc(func(_ context.Context, user string) ([]string, error) {
		return fixtureGroups[user], nil
	})

	m, err := goChmod.New().WithApp(app).WithGroupResolver(resolver).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(m.Close)
	return m
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := DecisionFromContext(r.Context()); !ok {
			http.Error(w, "missing decision", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte("ok"))
	})
}

func serve(h http.Handler, user string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if user != "" {
		req = req.WithContext(goChmod.WithUser(req.Context(), user))
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestChmodExamples(t *testing.T) {
	m := newTestManager(t, nil)

	tests := []struct {
		name   string
		mode   int
		user   string
		status int
	}{
		{"owner match", 110, "testuser1", http.StatusOK},
		{"group match", 110, "testuser2", http.StatusOK},
		{"neither", 110, "testuser3", http.StatusForbidden},
		{"owner only rejects group member", 100, "testuser2", http.StatusForbidden},
		{"other admits anyone", 1, "testuser3", http.StatusOK},
		{"other admits anonymous", 1, "", http.StatusOK},
		{"anonymous on owner route", 100, "", http.StatusUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := Chmod(m, tc.mode, "testuser1", "testgroup2")(okHandler())
			rr := serve(h, tc.user)
			if rr.Code != tc.status {
				t.Fatalf("expected %d, got %d (%s)", tc.status, rr.Code, rr.Body.String())
			}
		})
	}
}

func TestChmodDeniedBody(t *testing.T) {
	m := newTestManager(t, nil)

	rr := serve(Chmod(m, 100, "testuser1", "")(okHandler()), "testuser2")
	if rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rr.Code)
	}
	if strings.TrimSpace(rr.Body.String()) != "forbidden" {
		t.Fatalf("unexpected body %q", rr.Body.String())
	}
}

func TestChmodPanicsOnInvalidMode(t *testing.T) {
	m := newTestManager(t, nil)

	for _, mode := range []int{2, 9, 112, 1000, -1} {
		func() {
			defer func() {
				if recover() == nil {
					t.Fatalf("expected panic for mode %d", mode)
				}
			}()
			Chmod(m, mode, "testuser1", "testgroup1")
		}()
	}
}

func TestChown(t *testing.T) {
	m := newTestManager(t, nil)
	h := Chown(m, "testuser3", "testgroup1")(okHandler())

	if rr := serve(h, "testuser3"); rr.Code != http.StatusOK {
		t.Fatalf("owner: expected 200, got %d", rr.Code)
	}
	if rr := serve(h, "testuser1"); rr.Code != http.StatusOK {
		t.Fatalf("group member: expected 200, got %d", rr.Code)
	}
	if rr := serve(h, "testuser2"); rr.Code != http.StatusForbidden {
		t.Fatalf("outsider: expected 403, got %d", rr.Code)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic without owner and group")
		}
	}()
	Chown(m, "", "")
}

func TestDeniedHandler(t *testing.T) {
	m := newTestManager(t, nil)

	var got goChmod.Decision
	denied := func(w http.ResponseWriter, _ *http.Request, d goChmod.Decision, err error) {
		if !errors.Is(err, goChmod.ErrPermissionDenied) {
			t.Errorf("expected ErrPermissionDenied, got %v", err)
		}
		got = d
		w.WriteHeader(http.StatusNotFound)
	}

	rr := serve(Chmod(m, 110, "testuser1", "testgroup3", WithDeniedHandler(denied))(okHandler()), "testuser2")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected custom status, got %d", rr.Code)
	}
	if got.Allowed || got.Identity.Name != "testuser2" {
		t.Fatalf("unexpected decision %+v", got)
	}
}

func TestConfiguredDenialStatus(t *testing.T) {
	cfg := goChmod.DefaultConfig()
	cfg.Denial.Status = http.StatusNotFound
	cfg.Denial.UnauthenticatedStatus = 0
	cfg.Denial.Message = "nothing here"

	m, err := goChmod.New().WithConfig(cfg).Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer m.Close()

	h := Chmod(m, 100, "testuser1", "")(okHandler())
	for _, user := range []string{"", "testuser2"} {
		rr := serve(h, user)
		if rr.Code != http.StatusNotFound {
			t.Fatalf("user %q: expected 404, got %d", user, rr.Code)
		}
		if strings.TrimSpace(rr.Body.String()) != "nothing here" {
			t.Fatalf("unexpected body %q", rr.Body.String())
		}
	}
}

func TestDecisionFromContext(t *testing.T) {
	m := newTestManager(t, nil)

	var got goChmod.Decision
	h := Chmod(m, 110, "testuser1", "testgroup2")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = DecisionFromContext(r.Context())
	}))
	serve(h, "testuser2")

	if !got.Allowed || got.Reason != goChmod.ReasonGroup {
		t.Fatalf("expected group grant, got %+v", got)
	}
}

func TestHandleRequiresBoundApp(t *testing.T) {
	m := newTestManager(t, nil)
	spec, _ := goChmod.SpecFromDigits(100, "testuser1", "")

	if err := Handle(m, "/protected", spec, okHandler()); !errors.Is(err, goChmod.ErrManagerNotBound) {
		t.Fatalf("expected ErrManagerNotBound, got %v", err)
	}

	mux := http.NewServeMux()
	if err := m.InitApp(mux); err != nil {
		t.Fatalf("InitApp: %v", err)
	}
	if err := Handle(m, "/protected", spec, okHandler()); err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if rr := serve(mux, "testuser1"); rr.Code != http.StatusOK {
		t.Fatalf("expected 200 through mux, got %d", rr.Code)
	}
	if rr := serve(mux, "testuser2"); rr.Code != http.StatusForbidden {
		t.Fatalf("expected 403 through mux, got %d", rr.Code)
	}
}

func TestHandleRejectsInvalidSpec(t *testing.T) {
	m := newTestManager(t, http.NewServeMux())

	err := Handle(m, "/x", goChmod.Spec{Mode: 9}, okHandler())
	if !errors.Is(err, goChmod.ErrInvalidMode) {
		t.Fatalf("expected ErrInvalidMode, got %v", err)
	}
}
