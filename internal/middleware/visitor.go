package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// VisitorCookie is the name of the cookie carrying the anonymous visitor ID.
// Carts and favorites for signed-out visitors are scoped by this ID.
const VisitorCookie = "staybook_visitor"

type visitorCtxKey struct{}

// NewVisitorID returns a middleware that ensures every request carries a
// visitor ID. If the request has no visitor cookie (or an unparseable one),
// a fresh UUID is minted and set as a long-lived cookie on the response.
// The ID is available to downstream handlers via VisitorID.
func NewVisitorID() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := visitorFromRequest(r)
			if id == uuid.Nil {
				id = uuid.New()
				http.SetCookie(w, &http.Cookie{
					Name:     VisitorCookie,
					Value:    id.String(),
					Path:     "/",
					MaxAge:   int((365 * 24 * time.Hour).Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}
			ctx := context.WithValue(r.Context(), visitorCtxKey{}, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func visitorFromRequest(r *http.Request) uuid.UUID {
	c, err := r.Cookie(VisitorCookie)
	if err != nil {
		return uuid.Nil
	}
	id, err := uuid.Parse(c.Value)
	if err != nil {
		return uuid.Nil
	}
	return id
}

// VisitorID returns the visitor ID placed in ctx by NewVisitorID, or uuid.Nil
// when the middleware did not run.
func VisitorID(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(visitorCtxKey{}).(uuid.UUID)
	return id
}
