package middleware

import (
	"context"
	"net/http"
	"strings"

	authflow "github.com/VoloKh/authFlow"
)

type identityContextKey struct{}

// IdentityFromContext returns the resolved identity a Guard stored on the
// request context, if any. The record never carries a refresh token.
func IdentityFromContext(ctx context.Context) (*authflow.UserRecord, bool) {
	user, ok := ctx.Value(identityContextKey{}).(*authflow.UserRecord)
	return user, ok
}

// Guard wraps next with bearer-token authentication. The Authorization header
// is resolved through Engine.Authenticate; on success the identity is placed
// on the request context for IdentityFromContext, on any failure the request
// is answered 401 without detail.
func Guard(engine *authflow.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			user, err := engine.Authenticate(r.Context(), token)
			if err != nil {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
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
