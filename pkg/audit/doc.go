// Package audit records who did what to which resource.
//
// Handlers build an Event with NewEvent, which copies the request id,
// authenticated user id, method, path and client address from the request,
// and hand it to a Logger. Audit writes never fail the request that caused
// them.
//
// Loggers:
//
//   - FileLogger appends newline-delimited JSON to audit.log with size-based
//     rotation
//   - StructuredLogger writes each event into the application log stream
//   - MultiLogger fans out to several loggers, optionally asynchronously
//   - NopLogger discards events
//
// Example:
//
//	event := audit.NewEvent(r, audit.EventTypeCourseArchive, audit.EventStatusSuccess)
//	event.ResourceType = audit.ResourceTypeCourse
//	event.ResourceID = course.ID
//	_ = logger.Log(r.Context(), event)
package audit
