// Package api exposes the course booking operations over HTTP.
//
// Routes are registered on a gorilla/mux router. Token protected routes are
// wrapped with middleware.Authenticator.Authenticate, admin routes with
// Authenticator.Admin; handlers behind them receive the verified caller as a
// middleware.AuthenticatedContext argument.
//
//	server := api.NewServer(api.Dependencies{...})
//	http.ListenAndServe(":4000", server.Handler(api.HandlerOptions{Logger: logger}))
//
// Domain errors are written with httputil.WriteAppError, so every failure
// body has the form {"error": message}.
package api
