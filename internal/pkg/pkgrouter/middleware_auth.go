package pkgrouter

import (
	"context"
	"net/http"
	"strings"

	"github.com/shandysiswandi/chemvis/internal/pkg/pkgerror"
)

// AuthScheme is the keyword expected in the Authorization header.
const AuthScheme = "Token"

// Principal is the authenticated caller attached to the request context.
type Principal struct {
	UserID   int64
	Username string
	IsStaff  bool
}

// Authenticator resolves an API token to its owner.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (Principal, error)
}

type principalContextKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFrom returns the caller stored by the auth middleware.
func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	return p, ok
}

func tokenFromHeader(header string) string {
	scheme, key, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, AuthScheme) {
		return ""
	}
	return strings.TrimSpace(key)
}

// Authenticate rejects requests without a valid "Authorization: Token <key>"
// header and stores the resolved Principal in the request context.
func Authenticate(auth Authenticator) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := tokenFromHeader(r.Header.Get("Authorization"))
			if token == "" {
				WriteError(r.Context(), w, pkgerror.NewUnauthorized("authentication credentials were not provided"))
				return
			}

			p, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				WriteError(r.Context(), w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// RequireStaff allows only staff principals. It must run after Authenticate.
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFrom(r.Context())
		if !ok {
			WriteError(r.Context(), w, pkgerror.NewUnauthorized("authentication credentials were not provided"))
			return
		}
		if !p.IsStaff {
			WriteError(r.Context(), w, pkgerror.NewForbidden("you do not have permission to perform this action"))
			return
		}

		next.ServeHTTP(w, r)
	})
}
