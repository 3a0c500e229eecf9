package observability

import (
	"context"
	"database/sql"
	"runtime/debug"
	"time"
)

// RecoverPanic recovers from a panic and logs it with its stack.
// Call it in a defer at the top of a background goroutine; the panic is not re-raised.
func RecoverPanic(logger *Logger, context string) {
	if r := recover(); r != nil {
		logger.WithField("panic", r).
			WithField("stack", string(debug.Stack())).
			WithField("context", context).
			Error("PANIC recovered")
	}
}

// PoolStatsSource is anything exposing database/sql pool statistics
type PoolStatsSource interface {
	Stats() sql.DBStats
}

// StartDBStatsCollector copies pool statistics into the DB gauges every
// interval until ctx is done.
func StartDBStatsCollector(ctx context.Context, metrics *Metrics, source PoolStatsSource, interval time.Duration, logger *Logger) {
	if interval <= 0 {
		interval = 15 * time.Second
	}

	go func() {
		defer RecoverPanic(logger, "db stats collector")

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		metrics.RecordDBStats(source.Stats())
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				metrics.RecordDBStats(source.Stats())
			}
		}
	}()
}
