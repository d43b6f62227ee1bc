package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"github.com/urfave/cli/v2"

	goChmod "github.com/xvzf/goChmod"
	"github.com/xvzf/goChmod/jwt"
	"github.com/xvzf/goChmod/metrics/export/prometheus"
	"github.com/xvzf/goChmod/middleware"
)

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the demo HTTP server",
		Description: `Serves a few routes guarded by different modes:

	/public      001  anyone, including anonymous requests
	/staff       010  members of "staff"
	/admin       100  the user "admin"
	/ops         110  the user "admin" or members of "ops"
	/metrics          Prometheus metrics

Requests authenticate with "Authorization: Bearer <token>"; see the token command.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "bind",
				Aliases: []string{"b"},
				Usage:   "The address to bind to (overrides config)",
			},
		},
		Action: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return cli.Exit(err, 1)
			}
			if b := c.String("bind"); b != "" {
				cfg.Bind = b
			}

			log, flush, err := newLogger(cfg.Debug)
			if err != nil {
				return cli.Exit(fmt.Errorf("error initializing logger: %w", err), 1)
			}
			defer flush()

			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServer(ctx, cfg, log)
		},
	}
}

func runServer(ctx context.Context, cfg *fileConfig, log logr.Logger) error {
	rdb, closeRedis, err := openRedis(cfg.Redis.Addr, log)
	if err != nil {
		return err
	}
	defer closeRedis()

	tokens, err := newTokenManager(cfg)
	if err != nil {
		return err
	}

	mux := http.NewServeMux()
	m, err := goChmod.New().
		WithConfig(cfg.Chmod).
		WithApp(mux).
		WithRedis(rdb).
		WithGroupResolver(staticGroups(cfg.Groups)).
		WithAuditSink(goChmod.NewJSONWriterSink(os.Stdout)).
		WithLogger(log).
		Build()
	if err != nil {
		return fmt.Errorf("error building manager: %w", err)
	}
	defer m.Close()

	if err := registerRoutes(m); err != nil {
		return err
	}
	mux.Handle("/metrics", prometheus.NewExporter(m).Handler())

	srv := &http.Server{
		Addr:              cfg.Bind,
		Handler:           middleware.Authenticate(middleware.BearerJWT(tokens))(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", cfg.Bind)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type route struct {
	pattern string
	mode    int
	owner   string
	group   string
}

var demoRoutes = []route{
	{pattern: "/public", mode: 1},
	{pattern: "/staff", mode: 10, group: "staff"},
	{pattern: "/admin", mode: 100, owner: "admin"},
	{pattern: "/ops", mode: 110, owner: "admin", group: "ops"},
}

func registerRoutes(m *goChmod.Manager) error {
	for _, r := range demoRoutes {
		spec, err := goChmod.SpecFromDigits(r.mode, r.owner, r.group)
		if err != nil {
			return fmt.Errorf("route %s: %w", r.pattern, err)
		}
		if err := middleware.Handle(m, r.pattern, spec, greet(r.pattern)); err != nil {
			return fmt.Errorf("route %s: %w", r.pattern, err)
		}
	}
	return nil
}

func greet(pattern string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d, _ := middleware.DecisionFromContext(r.Context())
		name := d.Identity.Name
		if name == "" {
			name = "anonymous"
		}
		fmt.Fprintf(w, "%s: hello %s (granted by %s bit)\n", pattern, name, d.Reason)
	})
}

func newTokenManager(cfg *fileConfig) (*jwt.Manager, error) {
	if cfg.JWT.Secret == "" {
		return nil, errors.New("jwt.secret is required (set CHMOD_JWT_SECRET)")
	}
	return jwt.NewManager(jwt.Config{
		TTL:           cfg.JWT.TTL,
		SigningMethod: jwt.MethodHS256,
		PrivateKey:    []byte(cfg.JWT.Secret),
		Issuer:        "chmodd",
	})
}
