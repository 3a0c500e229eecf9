package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/platinummonkey/coursebook/pkg/audit"
	"github.com/platinummonkey/coursebook/pkg/auth"
	"github.com/platinummonkey/coursebook/pkg/courses"
	"github.com/platinummonkey/coursebook/pkg/enrollments"
	"github.com/platinummonkey/coursebook/pkg/middleware"
	"github.com/platinummonkey/coursebook/pkg/models"
	"github.com/platinummonkey/coursebook/pkg/observability"
	"github.com/platinummonkey/coursebook/pkg/session"
	"github.com/platinummonkey/coursebook/pkg/storage/memory"
	"github.com/platinummonkey/coursebook/pkg/users"
)

type testEnv struct {
	server   *Server
	handler  http.Handler
	store    *memory.Store
	tokens   *auth.TokenService
	hasher   auth.PasswordHasher
	sessions *session.MemoryStore
	metrics  *observability.Metrics
	audit    *recordingAudit
}

// recordingAudit keeps every audit event in memory
type recordingAudit struct {
	mu     sync.Mutex
	events []*audit.Event
}

func (a *recordingAudit) Log(_ context.Context, event *audit.Event) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.events = append(a.events, event)
	return nil
}

func (a *recordingAudit) Close() error { return nil }

func (a *recordingAudit) types() []audit.EventType {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]audit.EventType, 0, len(a.events))
	for _, event := range a.events {
		out = append(out, event.EventType)
	}
	return out
}

func (a *recordingAudit) last() *audit.Event {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.events) == 0 {
		return nil
	}
	return a.events[len(a.events)-1]
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore()
	tokens := auth.NewTokenService([]byte("api-test-signing-secret"), 0)
	hasher := auth.NewBcryptHasher(bcrypt.MinCost)
	sessions := session.NewMemoryStore(0)
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	auditLog := &recordingAudit{}

	server := NewServer(Dependencies{
		Courses:       courses.NewService(store),
		Users:         users.NewService(store, hasher, tokens),
		Enrollments:   enrollments.NewService(store, metrics),
		Authenticator: middleware.NewAuthenticator(tokens, metrics),
		Sessions:      sessions,
		Metrics:       metrics,
		Audit:         auditLog,
	})

	return &testEnv{
		server:   server,
		handler:  server.Handler(HandlerOptions{Logger: observability.NewLogger(observability.ErrorLevel, &bytes.Buffer{})}),
		store:    store,
		tokens:   tokens,
		hasher:   hasher,
		sessions: sessions,
		metrics:  metrics,
		audit:    auditLog,
	}
}

// createUser stores a user directly and returns it with a bearer header
func (e *testEnv) createUser(t *testing.T, email string, isAdmin bool) (*models.User, string) {
	t.Helper()
	hash, err := e.hasher.Hash("password1")
	require.NoError(t, err)

	user := &models.User{
		FirstName: "Test",
		LastName:  "User",
		Email:     email,
		MobileNo:  "09171234567",
		Password:  hash,
		IsAdmin:   isAdmin,
	}
	require.NoError(t, e.store.CreateUser(context.Background(), user))

	token, err := e.tokens.Issue(auth.Identity{ID: user.ID, Email: user.Email, IsAdmin: isAdmin})
	require.NoError(t, err)
	return user, "Bearer " + token
}

func (e *testEnv) createCourse(t *testing.T, name string, price float64, active bool) *models.Course {
	t.Helper()
	course := &models.Course{Name: name, Description: name, Price: price, IsActive: active}
	require.NoError(t, e.store.CreateCourse(context.Background(), course))
	return course
}

type request struct {
	method string
	path   string
	body   interface{}
	bearer string
	cookie *http.Cookie
}

func (e *testEnv) do(t *testing.T, req request) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	if req.body != nil {
		if raw, ok := req.body.(string); ok {
			body.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&body).Encode(req.body))
		}
	}

	r := httptest.NewRequest(req.method, req.path, &body)
	r.Header.Set("Content-Type", "application/json")
	if req.bearer != "" {
		r.Header.Set("Authorization", req.bearer)
	}
	if req.cookie != nil {
		r.AddCookie(req.cookie)
	}

	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, r)
	return rr
}

func decodeObject(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func decodeArray(t *testing.T, rr *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}
