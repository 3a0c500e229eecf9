package middleware

import (
	"errors"
	"net/http"

	"github.com/platinummonkey/coursebook/pkg/auth"
	"github.com/platinummonkey/coursebook/pkg/contextkeys"
	"github.com/platinummonkey/coursebook/pkg/httputil"
	"github.com/platinummonkey/coursebook/pkg/observability"
	"github.com/platinummonkey/coursebook/pkg/session"
)

// DefaultSessionCookie is the cookie holding the session id
const DefaultSessionCookie = "coursebook_session"

// SessionLoader attaches the session identity named by the session cookie
// to the request context. Requests without a valid session pass through
// unchanged; RequireSession decides whether that is acceptable.
func SessionLoader(store session.Store, cookieName string) func(http.Handler) http.Handler {
	if cookieName == "" {
		cookieName = DefaultSessionCookie
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(cookieName)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			ctx := contextkeys.WithSessionID(r.Context(), cookie.Value)

			identity, err := store.Get(ctx, cookie.Value)
			switch {
			case err == nil:
				ctx = contextkeys.WithSession(ctx, identity)
				ctx = contextkeys.WithUserID(ctx, identity.ID)
			case errors.Is(err, session.ErrNotFound):
			default:
				observability.FromContext(ctx).WithError(err).Warn("session lookup failed")
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSessionIdentity returns the identity loaded by SessionLoader
func GetSessionIdentity(r *http.Request) (*auth.Identity, bool) {
	identity, ok := r.Context().Value(contextkeys.SessionKey).(*auth.Identity)
	return identity, ok && identity != nil
}

// RequireSession answers 401 unless SessionLoader attached an identity
func (a *Authenticator) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := GetSessionIdentity(r); !ok {
			a.recordFailure(ReasonNoSession)
			httputil.WriteUnauthorized(w, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}
