package tracker

import (
	"context"
	"time"

	"raffle/internal/beacon"
	"raffle/internal/logger"
	"raffle/internal/program"
	"raffle/internal/raffle"

	"go.uber.org/zap"
)

// Tracker acts for one operator: it reveals winners of expired raffles with entropy from the
// beacon and closes ledgers once prizes are claimed.
type Tracker struct {
	ctx      context.Context
	program  *program.Program
	source   beacon.Source
	operator raffle.Identity
	interval time.Duration
}

func NewTracker(ctx context.Context, p *program.Program, source beacon.Source, operator raffle.Identity, interval time.Duration) *Tracker {
	logger.Debug("tracker initialization",
		zap.String("operator", operator.ToRaw()),
		zap.String("beacon", source.Name()),
		zap.Duration("interval", interval),
	)
	return &Tracker{
		ctx:      ctx,
		program:  p,
		source:   source,
		operator: operator,
		interval: interval,
	}
}

// Run synchronizes every interval until the context is cancelled. Failed rounds are logged and
// retried on the next tick.
func (t *Tracker) Run() {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		if err := t.synchronize(); err != nil && t.ctx.Err() == nil {
			logger.Error("tracker synchronization failed", zap.Error(err))
		}

		select {
		case <-t.ctx.Done():
			t.Finalize()
			return
		case <-ticker.C:
		}
	}
}

func (t *Tracker) Finalize() {
	logger.Info("tracker stopped", zap.String("operator", t.operator.ToRaw()))
}
