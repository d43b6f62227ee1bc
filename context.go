package goChmod

import "context"

type identityContextKey struct{}
type userContextKey struct{}
type clientIPContextKey struct{}
type requestPathContextKey struct{}

// WithIdentity attaches the full request identity to ctx. It takes
// precedence over a name set by [WithUser].
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityContextKey{}, id)
}

// WithUser attaches only a user name to ctx. Groups are then resolved
// through the Manager's [GroupResolver].
func WithUser(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, userContextKey{}, name)
}

// WithClientIP attaches the caller's IP address to ctx for audit events.
func WithClientIP(ctx context.Context, ip string) context.Context {
	return context.WithValue(ctx, clientIPContextKey{}, ip)
}

// WithRequestPath attaches the request path to ctx for audit events and logs.
func WithRequestPath(ctx context.Context, path string) context.Context {
	return context.WithValue(ctx, requestPathContextKey{}, path)
}

// IdentityFromContext returns the identity set by [WithIdentity], falling
// back to a name-only identity set by [WithUser]. ok is false when neither
// is present.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}

	if id, ok := ctx.Value(identityContextKey{}).(Identity); ok {
		return id, true
	}

	if name, ok := ctx.Value(userContextKey{}).(string); ok && name != "" {
		return Identity{Name: name}, true
	}

	return Identity{}, false
}

func clientIPFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	ip, _ := ctx.Value(clientIPContextKey{}).(string)
	return ip
}

func requestPathFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	path, _ := ctx.Value(requestPathContextKey{}).(string)
	return path
}
