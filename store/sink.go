package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"portfolio/devserver/models"
)

// EventSink receives copies of stored events. analytics.json stays the source
// of truth; sinks exist so the events can be queried with SQL.
type EventSink interface {
	Name() string
	Write(ctx context.Context, events []models.Event) error
	Close() error
}

// MultiSink forwards events to every configured sink concurrently.
type MultiSink struct {
	sinks   []EventSink
	timeout time.Duration
	logger  *zap.Logger

	pending sync.WaitGroup
}

func NewMultiSink(logger *zap.Logger, timeout time.Duration, sinks ...EventSink) *MultiSink {
	return &MultiSink{sinks: sinks, timeout: timeout, logger: logger}
}

func (m *MultiSink) Len() int { return len(m.sinks) }

// Write sends events to all sinks and waits for them. Each failure is logged;
// the first one is returned. A failing sink does not stop the others.
func (m *MultiSink) Write(ctx context.Context, events []models.Event) error {
	if len(m.sinks) == 0 || len(events) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	var g errgroup.Group
	for _, sink := range m.sinks {
		sink := sink
		g.Go(func() error {
			if err := sink.Write(ctx, events); err != nil {
				m.logger.Error("mirroring events failed",
					zap.String("sink", sink.Name()),
					zap.Int("events", len(events)),
					zap.Error(err))
				return fmt.Errorf("%s: %w", sink.Name(), err)
			}
			return nil
		})
	}
	return g.Wait()
}

// WriteAsync mirrors events in the background so a slow or unreachable sink
// never delays the caller. The write outlives ctx's cancellation but is still
// bounded by the sink timeout; Close waits for it.
func (m *MultiSink) WriteAsync(ctx context.Context, events []models.Event) {
	if len(m.sinks) == 0 || len(events) == 0 {
		return
	}
	m.pending.Add(1)
	go func() {
		defer m.pending.Done()
		_ = m.Write(context.WithoutCancel(ctx), events)
	}()
}

// Close waits for background writes, then closes every sink.
func (m *MultiSink) Close() error {
	m.pending.Wait()

	var errs []error
	for _, sink := range m.sinks {
		if err := sink.Close(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", sink.Name(), err))
		}
	}
	return errors.Join(errs...)
}
