package audit

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/platinummonkey/coursebook/pkg/contextkeys"
)

// Logger is the interface for audit logging
type Logger interface {
	// Log records an audit event
	Log(ctx context.Context, event *Event) error

	// Close closes the logger and flushes any buffered output
	Close() error
}

// NewEvent builds an event stamped with the current time and the request
// context of r. r may be nil.
func NewEvent(r *http.Request, eventType EventType, status EventStatus) *Event {
	event := &Event{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Status:    status,
	}
	if r == nil {
		return event
	}

	ctx := r.Context()
	event.RequestID = contextkeys.GetRequestID(ctx)
	event.UserID = contextkeys.GetUserID(ctx)
	event.Method = r.Method
	event.Path = r.URL.Path
	event.IPAddress = clientIP(r)
	return event
}

// clientIP prefers the first X-Forwarded-For hop, then RemoteAddr
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// NopLogger discards every event
type NopLogger struct{}

func (NopLogger) Log(context.Context, *Event) error { return nil }

func (NopLogger) Close() error { return nil }
