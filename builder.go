package goChmod

import (
	"errors"

	"github.com/go-logr/logr"
	"github.com/redis/go-redis/v9"

	internalaudit "github.com/xvzf/goChmod/internal/audit"
	"github.com/xvzf/goChmod/internal/groupcache"
)

// Builder assembles a [Manager]. A Builder can be used for one Build only.
type Builder struct {
	config Config
	app    App
	redis  redis.UniversalClient

	resolver  GroupResolver
	auditSink AuditSink
	logger    logr.Logger

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
		logger: logr.Discard(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithApp binds the Manager to app at Build time. Leave it unset for
// two-phase setup through [Manager.InitApp].
func (b *Builder) WithApp(app App) *Builder {
	b.app = app
	return b
}

// WithRedis sets the client backing the shared verdict cache.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

func (b *Builder) WithGroupResolver(resolver GroupResolver) *Builder {
	b.resolver = resolver
	return b
}

func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

func (b *Builder) WithLogger(logger logr.Logger) *Builder {
	b.logger = logger
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and returns the Manager.
func (b *Builder) Build() (*Manager, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Cache.Enabled && b.redis == nil {
		return nil, errors.New("Cache requires redis client")
	}

	logger := b.logger
	if logger.GetSink() == nil {
		logger = logr.Discard()
	}

	m := &Manager{
		config:   cfg,
		app:      b.app,
		resolver: b.resolver,
		log:      logger.WithName("chmod"),
		metrics:  NewMetrics(cfg.Metrics),
	}

	if cfg.Cache.Enabled {
		store, err := groupcache.NewStore(b.redis, cfg.Cache.RedisPrefix, cfg.Cache.TTL)
		if err != nil {
			return nil, err
		}
		m.verdicts = store
	}
	if cfg.Cache.LocalEnabled {
		m.local = groupcache.NewLocal(cfg.Cache.LocalSize, cfg.Cache.LocalTTL)
	}

	m.audit = internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    cfg.Audit.Enabled,
		BufferSize: cfg.Audit.BufferSize,
		DropIfFull: cfg.Audit.DropIfFull,
	}, b.auditSink)

	b.built = true

	return m, nil
}
