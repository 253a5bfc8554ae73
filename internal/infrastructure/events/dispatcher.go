package events

import (
	"context"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/panjf2000/ants/v2"
	"github.com/sourcegraph/conc"

	"github.com/riskibarqy/tournament-engine/internal/domain/tournament"
	"github.com/riskibarqy/tournament-engine/internal/platform/logging"
)

// Sink receives committed events. A failing sink never affects the others.
type Sink interface {
	Name() string
	Deliver(ctx context.Context, event tournament.Event) error
}

type DispatcherConfig struct {
	Workers         int
	DeliveryTimeout time.Duration
}

// Dispatcher implements tournament.EventPublisher on top of a bounded worker pool. Each
// Publish call is one task, so events from one committed transaction reach a sink in order.
type Dispatcher struct {
	pool    *ants.Pool
	sinks   []Sink
	timeout time.Duration
	logger  *logging.Logger
}

func NewDispatcher(cfg DispatcherConfig, logger *logging.Logger, sinks ...Sink) (*Dispatcher, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.DeliveryTimeout <= 0 {
		cfg.DeliveryTimeout = 10 * time.Second
	}

	pool, err := ants.NewPool(cfg.Workers,
		ants.WithNonblocking(true),
		ants.WithPanicHandler(func(r any) {
			logger.Error("event dispatcher worker panicked", "panic", r)
		}),
	)
	if err != nil {
		return nil, crerr.Wrap(err, "create event worker pool")
	}

	return &Dispatcher{
		pool:    pool,
		sinks:   append([]Sink(nil), sinks...),
		timeout: cfg.DeliveryTimeout,
		logger:  logger,
	}, nil
}

func (d *Dispatcher) Publish(ctx context.Context, events ...tournament.Event) {
	if len(events) == 0 || len(d.sinks) == 0 {
		return
	}
	batch := append([]tournament.Event(nil), events...)
	detached := context.WithoutCancel(ctx)

	if err := d.pool.Submit(func() { d.deliverBatch(detached, batch) }); err != nil {
		for _, e := range batch {
			d.logger.WarnContext(ctx, "event dropped",
				"event_id", e.ID,
				"event_type", string(e.Type),
				"tournament_id", e.TournamentID,
				"error", err,
			)
		}
	}
}

func (d *Dispatcher) deliverBatch(ctx context.Context, batch []tournament.Event) {
	for _, e := range batch {
		d.deliver(ctx, e)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, e tournament.Event) {
	var wg conc.WaitGroup
	for _, sink := range d.sinks {
		sink := sink
		wg.Go(func() {
			sinkCtx, cancel := context.WithTimeout(ctx, d.timeout)
			defer cancel()

			if err := sink.Deliver(sinkCtx, e); err != nil {
				d.logger.WarnContext(ctx, "event sink delivery failed",
					"sink", sink.Name(),
					"event_id", e.ID,
					"event_type", string(e.Type),
					"tournament_id", e.TournamentID,
					"error", err,
				)
			}
		})
	}
	if recovered := wg.WaitAndRecover(); recovered != nil {
		d.logger.ErrorContext(ctx, "event sink panicked",
			"event_id", e.ID,
			"event_type", string(e.Type),
			"error", recovered.AsError(),
		)
	}
}

// Close waits up to timeout for in-flight deliveries and releases the pool.
func (d *Dispatcher) Close(timeout time.Duration) error {
	if err := d.pool.ReleaseTimeout(timeout); err != nil {
		return crerr.Wrap(err, "release event worker pool")
	}
	return nil
}
