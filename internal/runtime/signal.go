package runtime

import (
	"context"
	"os/signal"
	"syscall"
	"time"
)

// SignalContext returns the service's root context, cancelled on
// SIGINT/SIGTERM. The lock sweeper, outbox publisher and HTTP server all
// derive from it so one signal winds the whole process down.
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// ShutdownContext bounds one step of graceful shutdown. It is detached
// from the root context, which is already cancelled by the time shutdown
// runs.
func ShutdownContext(d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), d)
}
