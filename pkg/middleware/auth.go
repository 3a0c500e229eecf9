package middleware

import (
	"errors"
	"net/http"

	"github.com/platinummonkey/coursebook/pkg/apperr"
	"github.com/platinummonkey/coursebook/pkg/auth"
	"github.com/platinummonkey/coursebook/pkg/contextkeys"
	"github.com/platinummonkey/coursebook/pkg/httputil"
	"github.com/platinummonkey/coursebook/pkg/observability"
)

// Auth failure reasons reported to the FailureRecorder
const (
	ReasonMissingToken = "missing_token"
	ReasonInvalidToken = "invalid_token"
	ReasonNotAdmin     = "not_admin"
	ReasonNoSession    = "no_session"
)

// AuthenticatedContext is the verified caller of a request. Only
// Authenticator.Authenticate can produce one, so a handler taking it as a
// parameter cannot be reached without token verification.
type AuthenticatedContext struct {
	identity auth.Identity
}

// Identity returns the verified token payload
func (a AuthenticatedContext) Identity() auth.Identity {
	return a.identity
}

func (a AuthenticatedContext) UserID() string { return a.identity.ID }
func (a AuthenticatedContext) IsAdmin() bool  { return a.identity.IsAdmin }

// AuthenticatedHandler handles a request whose caller is already verified
type AuthenticatedHandler func(w http.ResponseWriter, r *http.Request, caller AuthenticatedContext)

// TokenVerifier decodes an Authorization header into an identity
type TokenVerifier interface {
	Verify(header string) (*auth.Identity, error)
}

// FailureRecorder counts rejected requests by reason
type FailureRecorder interface {
	RecordAuthFailure(reason string)
}

// Authenticator provides the token and role checks
type Authenticator struct {
	tokens   TokenVerifier
	recorder FailureRecorder
}

// NewAuthenticator creates an authenticator; recorder may be nil
func NewAuthenticator(tokens TokenVerifier, recorder FailureRecorder) *Authenticator {
	return &Authenticator{
		tokens:   tokens,
		recorder: recorder,
	}
}

func (a *Authenticator) recordFailure(reason string) {
	if a.recorder != nil {
		a.recorder.RecordAuthFailure(reason)
	}
}

// authFailure is the body of a rejected token
type authFailure struct {
	Auth    string `json:"auth"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message"`
}

// Authenticate verifies the Authorization header and hands the caller to next.
// Failures answer 401 and stop the chain.
func (a *Authenticator) Authenticate(next AuthenticatedHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := a.tokens.Verify(r.Header.Get("Authorization"))
		if err != nil {
			a.unauthorized(w, r, err)
			return
		}

		caller := AuthenticatedContext{identity: *identity}
		ctx := contextkeys.WithAuth(r.Context(), caller)
		ctx = contextkeys.WithUserID(ctx, identity.ID)

		next(w, r.WithContext(ctx), caller)
	})
}

// unauthorized answers 401 with the auth failure envelope for both missing
// and invalid tokens.
func (a *Authenticator) unauthorized(w http.ResponseWriter, r *http.Request, err error) {
	body := authFailure{Auth: "Failed"}

	switch {
	case errors.Is(err, auth.ErrMissingToken):
		a.recordFailure(ReasonMissingToken)
		body.Error = apperr.MissingToken.String()
		body.Message = "No token"
	default:
		a.recordFailure(ReasonInvalidToken)
		body.Error = apperr.InvalidToken.String()
		body.Message = err.Error()
	}

	observability.FromContext(r.Context()).
		WithField("reason", body.Error).
		Debug("token rejected")

	httputil.WriteJSON(w, http.StatusUnauthorized, body)
}

// RequireAdmin lets only admin callers through; others get 403
func (a *Authenticator) RequireAdmin(next AuthenticatedHandler) AuthenticatedHandler {
	return func(w http.ResponseWriter, r *http.Request, caller AuthenticatedContext) {
		if !caller.IsAdmin() {
			a.recordFailure(ReasonNotAdmin)
			httputil.WriteJSON(w, http.StatusForbidden, authFailure{
				Auth:    "Failed",
				Message: "Action Forbidden",
			})
			return
		}
		next(w, r, caller)
	}
}

// Admin is shorthand for Authenticate(RequireAdmin(next))
func (a *Authenticator) Admin(next AuthenticatedHandler) http.Handler {
	return a.Authenticate(a.RequireAdmin(next))
}

// GetAuthenticatedContext extracts the verified caller from a request
func GetAuthenticatedContext(r *http.Request) (AuthenticatedContext, bool) {
	caller, ok := r.Context().Value(contextkeys.AuthKey).(AuthenticatedContext)
	return caller, ok
}
