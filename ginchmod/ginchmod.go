package ginchmod

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	goChmod "github.com/xvzf/goChmod"
)

// DecisionKey is the gin context key holding the goChmod.Decision of an
// admitted request.
const DecisionKey = "chmod.decision"

// SetIdentity attaches id to the request so that later Require handlers see
// it. Call it from the authentication handler that runs before them.
func SetIdentity(c *gin.Context, id goChmod.Identity) {
	c.Request = c.Request.WithContext(goChmod.WithIdentity(c.Request.Context(), id))
}

// Decision returns the Decision stored by Require.
func Decision(c *gin.Context) (goChmod.Decision, bool) {
	v, ok := c.Get(DecisionKey)
	if !ok {
		return goChmod.Decision{}, false
	}
	d, ok := v.(goChmod.Decision)
	return d, ok
}

// Require aborts requests that do not satisfy spec using the Manager's
// denial settings.
func Require(m *goChmod.Manager, spec goChmod.Spec) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := goChmod.WithRequestPath(c.Request.Context(), c.FullPath())
		ctx = goChmod.WithClientIP(ctx, c.ClientIP())

		d, err := m.Authorize(ctx, spec)
		if err != nil {
			cfg := m.Config().Denial
			status := cfg.Status
			if d.Identity.Anonymous() && cfg.UnauthenticatedStatus != 0 {
				status = cfg.UnauthenticatedStatus
			}
			msg := cfg.Message
			if msg == "" {
				msg = strings.ToLower(http.StatusText(status))
			}
			c.AbortWithStatusJSON(status, gin.H{"error": msg})
			return
		}

		c.Set(DecisionKey, d)
		c.Next()
	}
}

// Chmod is Require with a digit mode such as 110. It panics on an invalid
// mode.
func Chmod(m *goChmod.Manager, mode int, owner, group string) gin.HandlerFunc {
	spec, err := goChmod.SpecFromDigits(mode, owner, group)
	if err != nil {
		panic(err)
	}
	return Require(m, spec)
}

type app struct {
	routes gin.IRoutes
}

// App adapts a gin router or route group to goChmod.App. Handlers are
// registered for every method. Adapters of the same router compare equal,
// so binding a router twice is a no-op.
func App(routes gin.IRoutes) goChmod.App {
	return app{routes: routes}
}

func (a app) Handle(pattern string, h http.Handler) {
	a.routes.Any(pattern, gin.WrapH(h))
}
