// Package middleware provides the access control checks in front of handlers.
//
// Authenticate verifies the bearer token and produces an AuthenticatedContext.
// RequireAdmin takes and returns an AuthenticatedHandler, so it can only be
// mounted behind Authenticate:
//
//	authn := middleware.NewAuthenticator(tokens, metrics)
//	router.Handle("/courses", authn.Authenticate(authn.RequireAdmin(s.addCourse)))
//
// Session flows use a separate pair: SessionLoader reads the session cookie
// into the request context and RequireSession rejects requests without one.
//
//	router.Use(middleware.SessionLoader(sessions, cookieName))
//	router.Handle("/users/success", authn.RequireSession(http.HandlerFunc(s.sessionWelcome)))
//
// # Related Packages
//
//   - pkg/auth: Token verification
//   - pkg/session: Session storage
package middleware
