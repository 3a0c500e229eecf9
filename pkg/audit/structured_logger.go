package audit

import (
	"context"

	"github.com/platinummonkey/coursebook/pkg/observability"
)

// StructuredLogger writes audit events into the application log stream,
// one entry per event tagged audit=true
type StructuredLogger struct {
	logger *observability.Logger
}

// NewStructuredLogger creates an audit logger on top of logger
func NewStructuredLogger(logger *observability.Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger.WithField("audit", true)}
}

func (l *StructuredLogger) Log(ctx context.Context, event *Event) error {
	fields := map[string]interface{}{
		"event_type": string(event.EventType),
		"status":     string(event.Status),
	}
	for key, value := range map[string]string{
		"user_id":       event.UserID,
		"email":         event.Email,
		"resource_type": string(event.ResourceType),
		"resource_id":   event.ResourceID,
		"request_id":    event.RequestID,
		"ip_address":    event.IPAddress,
		"method":        event.Method,
		"path":          event.Path,
	} {
		if value != "" {
			fields[key] = value
		}
	}
	for key, value := range event.Metadata {
		fields["meta_"+key] = value
	}

	entry := l.logger.WithFields(fields)
	message := event.Message
	if message == "" {
		message = string(event.EventType)
	}
	if event.Status == EventStatusFailure {
		entry.Warn(message)
	} else {
		entry.Info(message)
	}
	return nil
}

func (l *StructuredLogger) Close() error { return nil }
