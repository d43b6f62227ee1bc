package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	goChmod "github.com/xvzf/goChmod"
)

type decisionContextKey struct{}

// DecisionFromContext returns the Decision that admitted the current request.
func DecisionFromContext(ctx context.Context) (goChmod.Decision, bool) {
	d, ok := ctx.Value(decisionContextKey{}).(goChmod.Decision)
	return d, ok
}

// DeniedHandler writes the response for a rejected request. err is
// goChmod.ErrPermissionDenied for plain denials, or the configuration error
// that prevented a decision.
type DeniedHandler func(w http.ResponseWriter, r *http.Request, d goChmod.Decision, err error)

type options struct {
	denied DeniedHandler
}

// Option customizes a guard.
type Option func(*options)

// WithDeniedHandler replaces the configured status response for rejected
// requests.
func WithDeniedHandler(h DeniedHandler) Option {
	return func(o *options) {
		o.denied = h
	}
}

// Require returns middleware that only forwards requests satisfying spec.
func Require(m *goChmod.Manager, spec goChmod.Spec, opts ...Option) func(http.Handler) http.Handler {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := goChmod.WithRequestPath(r.Context(), r.URL.Path)
			ctx = goChmod.WithClientIP(ctx, clientIP(r))

			d, err := m.Authorize(ctx, spec)
			if err != nil {
				if o.denied != nil {
					o.denied(w, r, d, err)
					return
				}
				writeDenied(w, m.Config().Denial, d)
				return
			}

			ctx = context.WithValue(r.Context(), decisionContextKey{}, d)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// Chmod guards a handler with a mode written as octal-looking digits, for
// example 110 for owner and group. It panics on an invalid mode, so mistakes
// surface when routes are registered.
func Chmod(m *goChmod.Manager, mode int, owner, group string, opts ...Option) func(http.Handler) http.Handler {
	spec, err := goChmod.SpecFromDigits(mode, owner, group)
	if err != nil {
		panic(err)
	}
	return Require(m, spec, opts...)
}

// Chown admits the owner and members of group. It panics when both are
// empty.
func Chown(m *goChmod.Manager, owner, group string, opts ...Option) func(http.Handler) http.Handler {
	spec, err := goChmod.OwnershipSpec(owner, group)
	if err != nil {
		panic(err)
	}
	return Require(m, spec, opts...)
}

// Handle registers h under pattern on the Manager's bound application,
// guarded by spec.
func Handle(m *goChmod.Manager, pattern string, spec goChmod.Spec, h http.Handler, opts ...Option) error {
	if err := spec.Validate(); err != nil {
		return err
	}

	app := m.App()
	if app == nil {
		return goChmod.ErrManagerNotBound
	}

	app.Handle(pattern, Require(m, spec, opts...)(h))
	return nil
}

func writeDenied(w http.ResponseWriter, cfg goChmod.DenialConfig, d goChmod.Decision) {
	status := cfg.Status
	if d.Identity.Anonymous() && cfg.UnauthenticatedStatus != 0 {
		status = cfg.UnauthenticatedStatus
	}

	msg := cfg.Message
	if msg == "" {
		msg = strings.ToLower(http.StatusText(status))
	}
	http.Error(w, msg, status)
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
