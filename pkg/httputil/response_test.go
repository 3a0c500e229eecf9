package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/coursebook/pkg/apperr"
)

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	data := map[string]string{"message": "success"}

	err := WriteJSON(w, http.StatusOK, data)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "success", decodeBody(t, w)["message"])
}

func TestWriteMessage(t *testing.T) {
	w := httptest.NewRecorder()

	assert.NoError(t, WriteMessage(w, http.StatusOK, "Password reset successfully"))
	assert.Equal(t, map[string]interface{}{"message": "Password reset successfully"}, decodeBody(t, w))
}

func TestErrorWriters(t *testing.T) {
	tests := []struct {
		name   string
		write  func(w http.ResponseWriter)
		status int
	}{
		{"bad request", func(w http.ResponseWriter) { WriteBadRequest(w, "Invalid Email") }, http.StatusBadRequest},
		{"unauthorized", func(w http.ResponseWriter) { WriteUnauthorized(w, "Unauthorized") }, http.StatusUnauthorized},
		{"forbidden", func(w http.ResponseWriter) { WriteForbidden(w, "Action Forbidden") }, http.StatusForbidden},
		{"not found", func(w http.ResponseWriter) { WriteNotFoundError(w, "Course not found") }, http.StatusNotFound},
		{"conflict", func(w http.ResponseWriter) { WriteConflict(w, "Course already exists") }, http.StatusConflict},
		{"internal", func(w http.ResponseWriter) { WriteInternalError(w, "Failed to save the course") }, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, decodeBody(t, w), "error")
		})
	}
}

func TestWriteAppError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"conflict", apperr.NewConflict("Duplicate Email Found"), http.StatusConflict, "Duplicate Email Found"},
		{"not found", apperr.NewNotFound("Course not found"), http.StatusNotFound, "Course not found"},
		{"forbidden", apperr.NewForbidden("Action Forbidden"), http.StatusForbidden, "Action Forbidden"},
		{"invalid token", apperr.New(apperr.InvalidToken, "signature is invalid"), http.StatusUnauthorized, "signature is invalid"},
		{"internal hides cause", apperr.NewInternal("Failed to fetch course", errors.New("pq: connection reset")), http.StatusInternalServerError, "Failed to fetch course"},
		{"plain error", errors.New("raw driver error"), http.StatusInternalServerError, "Internal Server Error."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			WriteAppError(w, tt.err)

			assert.Equal(t, tt.status, w.Code)
			body := decodeBody(t, w)
			assert.Equal(t, tt.message, body["error"])
			assert.NotContains(t, w.Body.String(), "pq:")
			assert.NotContains(t, w.Body.String(), "raw driver")
		})
	}
}

func TestWriteCreatedAndSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	assert.NoError(t, WriteCreated(w, map[string]string{"message": "Registered Successfully"}))
	assert.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	assert.NoError(t, WriteSuccess(w, []string{}))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
}

// BenchmarkWriteJSON benchmarks the WriteJSON function
func BenchmarkWriteJSON(b *testing.B) {
	data := map[string]string{"message": "benchmark"}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		w := httptest.NewRecorder()
		WriteJSON(w, http.StatusOK, data)
	}
}
