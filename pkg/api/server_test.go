package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoutesRegistered(t *testing.T) {
	env := newTestEnv(t)

	want := []string{
		"POST /courses",
		"GET /courses/all",
		"GET /courses",
		"POST /courses/search",
		"GET /courses/{courseId}",
		"PATCH /courses/{courseId}",
		"PATCH /courses/{courseId}/archive",
		"PATCH /courses/{courseId}/activate",
		"POST /users/checkEmail",
		"POST /users/register",
		"POST /users/login",
		"POST /users/details",
		"POST /users/enroll",
		"GET /users/getEnrollments",
		"PUT /users/reset-password",
		"PUT /users/profile",
		"PUT /users/updateAdmin",
		"PUT /users/updateEnrollmentStatus",
		"GET /users/failed",
		"GET /users/success",
		"GET /users/logout",
	}

	var got []string
	err := env.server.Router().Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		path, err := route.GetPathTemplate()
		require.NoError(t, err)
		methods, err := route.GetMethods()
		require.NoError(t, err)
		for _, method := range methods {
			got = append(got, method+" "+path)
		}
		return nil
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, want, got)
}

func TestCoursesAllIsNotACourseID(t *testing.T) {
	env := newTestEnv(t)

	// without a token /courses/all must hit the admin route, not GET /courses/{courseId}
	rr := env.do(t, request{method: http.MethodGet, path: "/courses/all"})
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestUnknownRouteAndMethod(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, request{method: http.MethodGet, path: "/nope"})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "Route not found", decodeObject(t, rr)["error"])

	rr = env.do(t, request{method: http.MethodDelete, path: "/courses"})
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestHandler_MiddlewareStack(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, request{method: http.MethodGet, path: "/courses"})
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	assert.Equal(t, 1, testutil.CollectAndCount(env.metrics.HTTPRequestsTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(env.metrics.HTTPRequestsTotal.WithLabelValues("GET", "/courses", "200")))
}

func TestHandler_MalformedJSON(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, request{method: http.MethodPost, path: "/users/login", body: "{not json"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decodeObject(t, rr)["error"], "invalid JSON")
}

func TestHandler_Tracing(t *testing.T) {
	env := newTestEnv(t)
	handler := env.server.Handler(HandlerOptions{Tracing: true})

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/courses", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}
