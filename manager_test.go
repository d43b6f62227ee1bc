package goChmod

import (
	"errors"
	"net/http"
	"testing"
)

type testApp struct {
	routes map[string]http.Handler
}

func newTestApp() *testApp {
	return &testApp{routes: map[string]http.Handler{}}
}

func (a *testApp) Handle(pattern string, h http.Handler) {
	a.routes[pattern] = h
}

func TestNewManagerBindsApp(t *testing.T) {
	app := newTestApp()
	m, err := NewManager(app)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer m.Close()

	if m.App() != App(app) {
		t.Fatal("expected manager to be bound to app")
	}
}

func TestInitAppTwoPhase(t *testing.T) {
	m, err := NewManager(nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer m.Close()

	if m.App() != nil {
		t.Fatal("expected unbound manager")
	}

	app := newTestApp()
	if err := m.InitApp(app); err != nil {
		t.Fatalf("InitApp: %v", err)
	}
	if err := m.InitApp(app); err != nil {
		t.Fatalf("second InitApp with the same app must be a no-op, got %v", err)
	}
	if err := m.InitApp(newTestApp()); !errors.Is(err, ErrAppAlreadyBound) {
		t.Fatalf("expected ErrAppAlreadyBound, got %v", err)
	}
	if m.App() != App(app) {
		t.Fatal("binding must not change after a rejected InitApp")
	}
}

// funcApp has an uncomparable dynamic type.
type funcApp func(pattern string, h http.Handler)

func (f funcApp) Handle(pattern string, h http.Handler) { f(pattern, h) }

// sliceApp is a struct holding a slice, also uncomparable.
type sliceApp struct {
	patterns []string
}

func (a sliceApp) Handle(string, http.Handler) {}

func TestInitAppUncomparableApp(t *testing.T) {
	apps := map[string]App{
		"func":  funcApp(func(string, http.Handler) {}),
		"slice": sliceApp{patterns: []string{"/x"}},
	}

	for name, app := range apps {
		t.Run(name, func(t *testing.T) {
			m, err := NewManager(nil)
			if err != nil {
				t.Fatalf("NewManager: %v", err)
			}
			defer m.Close()

			if err := m.InitApp(app); err != nil {
				t.Fatalf("first InitApp: %v", err)
			}
			if err := m.InitApp(app); !errors.Is(err, ErrAppAlreadyBound) {
				t.Fatalf("expected ErrAppAlreadyBound without panicking, got %v", err)
			}
			if err := m.InitApp(newTestApp()); !errors.Is(err, ErrAppAlreadyBound) {
				t.Fatalf("expected ErrAppAlreadyBound for a different app, got %v", err)
			}
		})
	}
}

func TestInitAppNil(t *testing.T) {
	m, err := NewManager(nil)
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	defer m.Close()

	if err := m.InitApp(nil); !errors.Is(err, ErrNilApp) {
		t.Fatalf("expected ErrNilApp, got %v", err)
	}
}

func TestNilManager(t *testing.T) {
	var m *Manager

	if err := m.InitApp(newTestApp()); !errors.Is(err, ErrManagerNotReady) {
		t.Fatalf("expected ErrManagerNotReady, got %v", err)
	}
	if m.App() != nil {
		t.Fatal("nil manager has no app")
	}
	if got := m.Config().Denial.Status; got != http.StatusForbidden {
		t.Fatalf("expected default config from nil manager, got status %d", got)
	}
	if m.AuditDropped() != 0 {
		t.Fatal("nil manager drops nothing")
	}
	m.Close()
}

func TestBuilderSingleUse(t *testing.T) {
	b := New()
	m, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer m.Close()

	if _, err := b.Build(); err == nil {
		t.Fatal("expected second Build to fail")
	}
}

func TestBuilderCacheRequiresRedis(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cache.Enabled = true

	if _, err := New().WithConfig(cfg).Build(); err == nil {
		t.Fatal("expected Build to fail without redis client")
	}
}

func TestConfigIsCopied(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Denial.Status = http.StatusNotFound

	m, err := New().WithConfig(cfg).Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer m.Close()

	cfg.Denial.Status = http.StatusTeapot
	if got := m.Config().Denial.Status; got != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", got)
	}
}
