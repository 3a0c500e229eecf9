package audit

import (
	"time"
)

// EventType represents the category of audit event
type EventType string

const (
	// Authentication events
	EventTypeAuthLogin          EventType = "auth.login"
	EventTypeAuthLoginFailed    EventType = "auth.login_failed"
	EventTypeAuthLogout         EventType = "auth.logout"
	EventTypeAuthPasswordChange EventType = "auth.password_change"
	EventTypeAuthRegister       EventType = "auth.register"

	// Catalog mutations
	EventTypeCourseCreate   EventType = "data.course_create"
	EventTypeCourseUpdate   EventType = "data.course_update"
	EventTypeCourseArchive  EventType = "data.course_archive"
	EventTypeCourseActivate EventType = "data.course_activate"

	// Enrollment mutations
	EventTypeEnrollmentCreate       EventType = "data.enrollment_create"
	EventTypeEnrollmentStatusUpdate EventType = "data.enrollment_status_update"

	// Admin events
	EventTypeAdminUserPromote EventType = "admin.user_promote"
)

// EventStatus represents the outcome of an event
type EventStatus string

const (
	EventStatusSuccess EventStatus = "success"
	EventStatusFailure EventStatus = "failure"
)

// ResourceType represents the type of resource being acted on
type ResourceType string

const (
	ResourceTypeUser       ResourceType = "user"
	ResourceTypeCourse     ResourceType = "course"
	ResourceTypeEnrollment ResourceType = "enrollment"
)

// Event is a single audit log entry
type Event struct {
	Timestamp time.Time   `json:"timestamp"`
	EventType EventType   `json:"event_type"`
	Status    EventStatus `json:"status"`

	// Actor
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`

	// Resource
	ResourceType ResourceType `json:"resource_type,omitempty"`
	ResourceID   string       `json:"resource_id,omitempty"`

	// Request context
	RequestID string `json:"request_id,omitempty"`
	IPAddress string `json:"ip_address,omitempty"`
	Method    string `json:"method,omitempty"`
	Path      string `json:"path,omitempty"`

	Message  string                 `json:"message,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}
