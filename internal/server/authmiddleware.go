package server

import (
	"context"
	"net/http"

	"github.com/chasedovey/tokencounter/internal/auth"
	"github.com/chasedovey/tokencounter/internal/domain"
)

// principalKey is the context key for the authenticated principal.
type principalKey struct{}

// BasicAuthMiddleware verifies HTTP Basic credentials on every request
// and injects the verified principal into the context. Missing or bad
// credentials get a 401 with the Basic challenge so interactive clients
// can prompt.
func BasicAuthMiddleware(verifier *auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			username, password, ok := r.BasicAuth()
			if !ok {
				unauthorized(w, r, domain.ErrAuthentication("missing credentials"))
				return
			}

			principal, err := verifier.Verify(username, password)
			if err != nil {
				unauthorized(w, r, err)
				return
			}

			AddLogField(r.Context(), "principal", principal)
			ctx := context.WithValue(r.Context(), principalKey{}, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, r *http.Request, err error) {
	AddError(r.Context(), err)
	w.Header().Set("WWW-Authenticate", `Basic realm="tokencounter"`)
	WriteError(w, err)
}

// GetPrincipal retrieves the authenticated principal from context.
// Returns "" if the request was not authenticated.
func GetPrincipal(ctx context.Context) string {
	if p, ok := ctx.Value(principalKey{}).(string); ok {
		return p
	}
	return ""
}
