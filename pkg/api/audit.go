package api

import (
	"net/http"

	"github.com/platinummonkey/coursebook/pkg/audit"
	"github.com/platinummonkey/coursebook/pkg/observability"
)

// auditSuccess builds a success event about one resource
func auditSuccess(r *http.Request, eventType audit.EventType, resourceType audit.ResourceType, resourceID string) *audit.Event {
	event := audit.NewEvent(r, eventType, audit.EventStatusSuccess)
	event.ResourceType = resourceType
	event.ResourceID = resourceID
	return event
}

// recordAudit hands event to the audit logger. A failed write is logged and
// never changes the response.
func (s *Server) recordAudit(r *http.Request, event *audit.Event) {
	if err := s.audit.Log(r.Context(), event); err != nil {
		observability.FromContext(r.Context()).
			WithError(err).
			WithField("event_type", string(event.EventType)).
			Warn("failed to write audit event")
	}
}
