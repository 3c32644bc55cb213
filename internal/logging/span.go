package logging

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Span represents one outbound API call for logging purposes.
type Span struct {
	name   string
	logger *slog.Logger
	start  time.Time
}

// StartSpan derives a call-scoped logger carrying a fresh request identifier
// and returns the derived context together with the span handle. The same
// identifier is sent to the server as X-Request-Id so client and server logs
// can be correlated.
func StartSpan(ctx context.Context, name string) (context.Context, *Span) {
	if ctx == nil {
		ctx = context.Background()
	}

	requestID := RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
		ctx = WithRequestID(ctx, requestID)
	}

	logger := FromContext(ctx).With(
		slog.String("request_id", requestID),
		slog.String("call", name),
	)
	ctx = WithLogger(ctx, logger)

	span := &Span{
		name:   name,
		logger: logger,
		start:  time.Now(),
	}
	span.logger.Debug("api call started")

	return ctx, span
}

// End records the call outcome and duration.
func (s *Span) End(err error) {
	if s == nil {
		return
	}
	elapsed := time.Since(s.start)
	if err != nil {
		s.logger.Warn("api call failed", slog.Duration("elapsed", elapsed), slog.String("error", err.Error()))
		return
	}
	s.logger.Debug("api call finished", slog.Duration("elapsed", elapsed))
}
