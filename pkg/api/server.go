package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/platinummonkey/coursebook/pkg/audit"
	"github.com/platinummonkey/coursebook/pkg/courses"
	"github.com/platinummonkey/coursebook/pkg/enrollments"
	"github.com/platinummonkey/coursebook/pkg/httputil"
	"github.com/platinummonkey/coursebook/pkg/middleware"
	"github.com/platinummonkey/coursebook/pkg/observability"
	"github.com/platinummonkey/coursebook/pkg/session"
	"github.com/platinummonkey/coursebook/pkg/users"
)

// Dependencies are the collaborators of the API server
type Dependencies struct {
	Courses       *courses.Service
	Users         *users.Service
	Enrollments   *enrollments.Service
	Authenticator *middleware.Authenticator
	Sessions      session.Store
	SessionCookie string

	// Metrics is optional; when set every matched route is counted
	Metrics *observability.Metrics

	// Audit receives admin and authentication events; nil discards them
	Audit audit.Logger
}

// Server represents our API server
type Server struct {
	router        *mux.Router
	courses       *courses.Service
	users         *users.Service
	enrollments   *enrollments.Service
	authn         *middleware.Authenticator
	sessions      session.Store
	sessionCookie string
	audit         audit.Logger
}

// NewServer creates a new API server
func NewServer(deps Dependencies) *Server {
	cookie := deps.SessionCookie
	if cookie == "" {
		cookie = middleware.DefaultSessionCookie
	}
	auditLogger := deps.Audit
	if auditLogger == nil {
		auditLogger = audit.NopLogger{}
	}

	s := &Server{
		router:        mux.NewRouter(),
		courses:       deps.Courses,
		users:         deps.Users,
		enrollments:   deps.Enrollments,
		authn:         deps.Authenticator,
		sessions:      deps.Sessions,
		sessionCookie: cookie,
		audit:         auditLogger,
	}

	if deps.Metrics != nil {
		s.router.Use(observability.HTTPMetricsMiddleware(deps.Metrics))
	}
	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteNotFoundError(w, "Route not found")
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteErrorMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	s.setupRoutes()
	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	authn := s.authn

	// Course routes. Fixed paths are registered before /courses/{courseId}.
	s.router.Handle("/courses", authn.Admin(s.addCourse)).Methods("POST")
	s.router.Handle("/courses/all", authn.Admin(s.getAllCourses)).Methods("GET")
	s.router.HandleFunc("/courses", s.getActiveCourses).Methods("GET")
	s.router.HandleFunc("/courses/search", s.searchCoursesByPriceRange).Methods("POST")
	s.router.HandleFunc("/courses/{courseId}", s.getCourse).Methods("GET")
	s.router.Handle("/courses/{courseId}", authn.Admin(s.updateCourse)).Methods("PATCH")
	s.router.Handle("/courses/{courseId}/archive", authn.Admin(s.archiveCourse)).Methods("PATCH")
	s.router.Handle("/courses/{courseId}/activate", authn.Admin(s.activateCourse)).Methods("PATCH")

	// User routes
	s.router.HandleFunc("/users/checkEmail", s.checkEmail).Methods("POST")
	s.router.HandleFunc("/users/register", s.registerUser).Methods("POST")
	s.router.HandleFunc("/users/login", s.loginUser).Methods("POST")
	s.router.Handle("/users/details", authn.Authenticate(s.getProfile)).Methods("POST")
	s.router.Handle("/users/enroll", authn.Authenticate(s.enroll)).Methods("POST")
	s.router.Handle("/users/getEnrollments", authn.Authenticate(s.getEnrollments)).Methods("GET")
	s.router.Handle("/users/reset-password", authn.Authenticate(s.resetPassword)).Methods("PUT")
	s.router.Handle("/users/profile", authn.Authenticate(s.updateProfile)).Methods("PUT")
	s.router.Handle("/users/updateAdmin", authn.Admin(s.updateAdmin)).Methods("PUT")
	s.router.Handle("/users/updateEnrollmentStatus", authn.Admin(s.updateEnrollmentStatus)).Methods("PUT")

	// Session routes
	loadSession := middleware.SessionLoader(s.sessions, s.sessionCookie)
	s.router.HandleFunc("/users/failed", s.sessionFailed).Methods("GET")
	s.router.Handle("/users/success", loadSession(authn.RequireSession(http.HandlerFunc(s.sessionSuccess)))).Methods("GET")
	s.router.Handle("/users/logout", loadSession(http.HandlerFunc(s.logout))).Methods("GET")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Router exposes the route table
func (s *Server) Router() *mux.Router {
	return s.router
}

// HandlerOptions configures the middleware stack around the router
type HandlerOptions struct {
	Logger       *observability.Logger
	CORSOrigins  []string
	MaxBodyBytes int64
	Tracing      bool
}

// Handler wraps the server in the request id, recovery, access log, CORS and
// body limit middleware, outermost first.
func (s *Server) Handler(opts HandlerOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = observability.NewLogger(observability.InfoLevel, nil)
	}

	middlewares := []func(http.Handler) http.Handler{
		httputil.RequestIDMiddleware,
		httputil.RecoveryMiddleware(logger),
		httputil.LoggingMiddleware(logger),
		httputil.CORSMiddleware(opts.CORSOrigins),
	}
	if opts.MaxBodyBytes > 0 {
		middlewares = append(middlewares, httputil.MaxBytesMiddleware(opts.MaxBodyBytes))
	}

	var handler http.Handler = httputil.Chain(middlewares...)(s)
	if opts.Tracing {
		handler = otelhttp.NewHandler(handler, "coursebook",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				return r.Method + " " + r.URL.Path
			}),
		)
	}
	return handler
}
