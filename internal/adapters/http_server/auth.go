package httpserver

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/iconpropertiesg-arch/iconproperties-sub001/internal/domain"
)

type principalKey struct{}

// RequireAuth gates a route on the session cookie. A missing cookie is
// Unauthenticated; a cookie the verifier rejects is InvalidToken.
func RequireAuth(v domain.TokenVerifier, cookie string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(cookie)
			if err != nil || c.Value == "" {
				writeError(w, r, domain.ErrUnauthenticated)
				return
			}
			p, err := v.Verify(r.Context(), c.Value)
			if err != nil {
				log.Warn().Err(err).Str("remote", remoteIP(r)).Msg("token rejected")
				writeError(w, r, domain.ErrInvalidToken)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), principalKey{}, p)))
		})
	}
}

func PrincipalFrom(ctx context.Context) (domain.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(domain.Principal)
	return p, ok
}
