package obs

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
)

type ctxKey string

const RequestIDKey ctxKey = "req_id"

// RequestID returns the request id stored in ctx, if any.
func RequestID(ctx context.Context) string {
	reqID, _ := ctx.Value(RequestIDKey).(string)
	return reqID
}

// Time logs the duration of op and records it in ExternalCallDuration.
// Use as: defer obs.Time(ctx, "ors.Optimize")(&err)
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()

	return func(errp *error) {
		dur := time.Since(start)

		fields := log.Fields{
			"req_id": RequestID(ctx),
			"op":     name,
			"dur_ms": dur.Milliseconds(),
		}

		if errp != nil && *errp != nil {
			ExternalCallDuration.WithLabelValues(name, "error").Observe(dur.Seconds())
			log.WithFields(fields).WithError(*errp).Warn("operation failed")
			return
		}
		ExternalCallDuration.WithLabelValues(name, "ok").Observe(dur.Seconds())
		log.WithFields(fields).Debug("operation finished")
	}
}
