package goChmod

import (
	"context"
	"reflect"
	"sync"

	"github.com/go-logr/logr"
	"golang.org/x/sync/singleflight"

	internalaudit "github.com/xvzf/goChmod/internal/audit"
	"github.com/xvzf/goChmod/internal/groupcache"
)

// Manager decides access for protected handlers of one application.
//
// Manager methods are safe for concurrent use. The only mutable state is the
// application binding, which is set once.
type Manager struct {
	config Config

	mu  sync.RWMutex
	app App

	resolver GroupResolver
	verdicts *groupcache.Store
	local    *groupcache.Local
	lookups  singleflight.Group

	log     logr.Logger
	metrics *Metrics
	audit   *internalaudit.Dispatcher
}

// NewManager builds a Manager with [DefaultConfig]. app may be nil, in which
// case [Manager.InitApp] binds it later.
func NewManager(app App) (*Manager, error) {
	return New().WithApp(app).Build()
}

// InitApp binds the Manager to app. Binding the same app again is a no-op;
// binding a different one returns [ErrAppAlreadyBound]. Apps whose dynamic
// type is not comparable cannot be recognized as "the same" and always get
// ErrAppAlreadyBound on a second call.
func (m *Manager) InitApp(app App) error {
	if m == nil {
		return ErrManagerNotReady
	}
	if app == nil {
		return ErrNilApp
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.app != nil {
		if sameApp(m.app, app) {
			return nil
		}
		return ErrAppAlreadyBound
	}

	m.app = app
	m.log.V(1).Info("bound to application")
	return nil
}

func sameApp(a, b App) bool {
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}

// App returns the bound application, or nil.
func (m *Manager) App() App {
	if m == nil {
		return nil
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.app
}

// Config returns a copy of the Manager configuration.
func (m *Manager) Config() Config {
	if m == nil {
		return defaultConfig()
	}
	return cloneConfig(m.config)
}

// Logger returns the Manager's logger.
func (m *Manager) Logger() logr.Logger {
	if m == nil {
		return logr.Discard()
	}
	return m.log
}

// Close flushes pending audit events. The Manager must not be used afterwards.
func (m *Manager) Close() {
	if m == nil {
		return
	}
	if m.audit != nil {
		m.audit.Close()
	}
}

func (m *Manager) AuditDropped() uint64 {
	if m == nil || m.audit == nil {
		return 0
	}
	return m.audit.Dropped()
}

func (m *Manager) MetricsSnapshot() MetricsSnapshot {
	if m == nil || m.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return m.metrics.Snapshot()
}

func (m *Manager) metricInc(id MetricID) {
	if m == nil || m.metrics == nil {
		return
	}
	m.metrics.Inc(id)
}

func (m *Manager) emitAudit(ctx context.Context, event AuditEvent) {
	if m == nil || m.audit == nil {
		return
	}
	m.audit.Emit(ctx, event)
}
