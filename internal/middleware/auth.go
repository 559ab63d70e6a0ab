package middleware

import (
	"context"
	"net/http"
)

// TokenCookie is the name of the httpOnly cookie holding the upstream API token.
const TokenCookie = "token"

type tokenCtxKey struct{}

// NewTokenReader returns a middleware that copies the auth token cookie, when
// present, into the request context. It never rejects a request: most of the
// site works signed out, and handlers that require auth use RequireAuth.
func NewTokenReader() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if c, err := r.Cookie(TokenCookie); err == nil && c.Value != "" {
				r = r.WithContext(context.WithValue(r.Context(), tokenCtxKey{}, c.Value))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth returns a middleware that rejects requests lacking an auth token
// with a 401 JSON error body. Wire it after NewTokenReader.
func RequireAuth() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if Token(r.Context()) == "" {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":{"code":"unauthorized","message":"sign in required"}}`))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Token returns the auth token placed in ctx by NewTokenReader, or "" when the
// request carried no token cookie.
func Token(ctx context.Context) string {
	s, _ := ctx.Value(tokenCtxKey{}).(string)
	return s
}
