// Package storage defines the persistence collaborator of the course booking
// API and its shared errors.
//
// # Architecture
//
// Interfaces are split by capability and composed into Store:
//
//   - UserReader / UserWriter: identities, looked up by id or email
//   - CourseReader / CourseWriter: the catalog, listed through CourseFilter
//   - EnrollmentReader / EnrollmentWriter: enrollments with versioned updates
//   - HealthChecker: backend liveness for readiness probes
//
// # Backends
//
//   - memory: process-local maps, the default for development and tests
//   - postgres: lib/pq with goose migrations (see storage/postgres)
//
// Wrap any backend with NewInstrumentedStore to record operation counts.
//
// # Errors
//
// Backends return ErrNotFound, ErrConflict and ErrVersionConflict (optionally
// wrapped); every other error is a backend failure. Callers classify with
// errors.Is.
//
// # Optimistic concurrency
//
// Enrollments carry a Version. UpdateEnrollment is a compare-and-swap on it:
//
//	e, _ := store.GetEnrollment(ctx, id)
//	e.Status = "Completed"
//	if err := store.UpdateEnrollment(ctx, e); errors.Is(err, storage.ErrVersionConflict) {
//		// reload and retry
//	}
package storage
