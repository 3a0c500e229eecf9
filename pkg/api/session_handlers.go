package api

import (
	"net/http"

	"github.com/platinummonkey/coursebook/pkg/audit"
	"github.com/platinummonkey/coursebook/pkg/contextkeys"
	"github.com/platinummonkey/coursebook/pkg/httputil"
	"github.com/platinummonkey/coursebook/pkg/middleware"
	"github.com/platinummonkey/coursebook/pkg/observability"
)

// sessionFailed handles GET /users/failed, the landing page of a rejected login
func (s *Server) sessionFailed(w http.ResponseWriter, r *http.Request) {
	httputil.WriteMessage(w, http.StatusOK, "Failed")
}

// sessionSuccess handles GET /users/success behind RequireSession
func (s *Server) sessionSuccess(w http.ResponseWriter, r *http.Request) {
	identity, _ := middleware.GetSessionIdentity(r)

	user, err := s.users.Details(r.Context(), identity.ID)
	if err != nil {
		httputil.WriteAppError(w, err)
		return
	}

	httputil.WriteSuccess(w, map[string]interface{}{
		"message": "Welcome " + user.FirstName,
		"user":    user.Public(),
	})
}

// logout handles GET /users/logout. It is idempotent: a missing or unknown
// session still clears the cookie.
func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if id := contextkeys.GetSessionID(r.Context()); id != "" {
		if err := s.sessions.Delete(r.Context(), id); err != nil {
			observability.FromContext(r.Context()).WithError(err).Error("failed to destroy session")
			httputil.WriteInternalError(w, "Failed to log out")
			return
		}
		s.recordAudit(r, audit.NewEvent(r, audit.EventTypeAuthLogout, audit.EventStatusSuccess))
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.sessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	httputil.WriteMessage(w, http.StatusOK, "Logged out")
}
