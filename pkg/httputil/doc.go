// Package httputil provides HTTP utilities for standardized request/response handling.
//
// # Response Helpers
//
//	httputil.WriteSuccess(w, map[string]interface{}{"course": course})
//	httputil.WriteCreated(w, map[string]interface{}{"savedCourse": course})
//	httputil.WriteMessage(w, http.StatusOK, "Password reset successfully")
//
// Errors carry a named "error" field:
//
//	httputil.WriteBadRequest(w, "Invalid Email")
//	httputil.WriteAppError(w, err) // status from the apperr kind
//
// # Request Parsing
//
//	var req enrollRequest
//	if !httputil.ParseJSONOrError(w, r, &req) {
//		return // Error response already written
//	}
//	courseID, ok := httputil.ParsePathStringOrError(w, r, "courseId")
//
// # Middleware
//
//	httputil.Chain(
//		httputil.RequestIDMiddleware,
//		httputil.LoggingMiddleware(logger),
//		httputil.RecoveryMiddleware(logger),
//		httputil.CORSMiddleware(origins),
//		httputil.MaxBytesMiddleware(1<<20),
//	)
//
// # Related Packages
//
//   - pkg/middleware: Authentication and authorization middleware
package httputil
