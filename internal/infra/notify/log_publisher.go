// Package notify holds the development notification sink.
package notify

import (
	"context"
	"log/slog"

	"storefront/internal/infra"
)

// LogPublisher writes events to the log instead of a broker.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.With("component", "notify")}
}

func (p *LogPublisher) Publish(ctx context.Context, pattern string, data any) error {
	p.logger.InfoContext(ctx, "event published", "pattern", pattern, "data", data)
	return nil
}

var _ infra.PublisherInterface = (*LogPublisher)(nil)
