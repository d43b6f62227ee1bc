package middleware

import (
	"net/http"
	"strings"

	"github.com/samber/lo"

	goChmod "github.com/xvzf/goChmod"
	"github.com/xvzf/goChmod/jwt"
)

// IdentityResolver extracts the requester from r. ok is false for anonymous
// requests; a non-nil error means credentials were presented but rejected.
type IdentityResolver interface {
	ResolveIdentity(r *http.Request) (id goChmod.Identity, ok bool, err error)
}

type IdentityResolverFunc func(r *http.Request) (goChmod.Identity, bool, error)

func (f IdentityResolverFunc) ResolveIdentity(r *http.Request) (goChmod.Identity, bool, error) {
	return f(r)
}

// Authenticate places the resolved identity on the request context.
// Anonymous requests pass through unchanged so that guards with the other
// bit still admit them. Rejected credentials get a 401.
func Authenticate(resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if resolver == nil {
				next.ServeHTTP(w, r)
				return
			}

			id, ok, err := resolver.ResolveIdentity(r)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(goChmod.WithIdentity(r.Context(), id)))
		})
	}
}

// BearerJWT resolves identities from "Authorization: Bearer <token>" headers
// signed by tokens.
func BearerJWT(tokens *jwt.Manager) IdentityResolver {
	return IdentityResolverFunc(func(r *http.Request) (goChmod.Identity, bool, error) {
		value := r.Header.Get("Authorization")
		if value == "" {
			return goChmod.Identity{}, false, nil
		}

		token, ok := bearerToken(value)
		if !ok {
			return goChmod.Identity{}, false, jwt.ErrMalformedToken
		}

		claims, err := tokens.ParseIdentity(token)
		if err != nil {
			return goChmod.Identity{}, false, err
		}
		return goChmod.Identity{Name: claims.Subject, Groups: claims.Groups}, true, nil
	})
}

// TrustedHeaders reads the user name from userHeader and a comma-separated
// group list from groupsHeader. Only use it behind a proxy that strips these
// headers from client requests.
func TrustedHeaders(userHeader, groupsHeader string) IdentityResolver {
	return IdentityResolverFunc(func(r *http.Request) (goChmod.Identity, bool, error) {
		name := strings.TrimSpace(r.Header.Get(userHeader))
		if name == "" {
			return goChmod.Identity{}, false, nil
		}

		var groups []string
		if groupsHeader != "" {
			groups = lo.Uniq(lo.Compact(lo.Map(strings.Split(r.Header.Get(groupsHeader), ","),
				func(g string, _ int) string { return strings.TrimSpace(g) })))
		}
		return goChmod.Identity{Name: name, Groups: groups}, true, nil
	})
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
