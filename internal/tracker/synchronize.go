package tracker

import (
	"errors"
	"fmt"
	"time"

	"raffle/internal/beacon"
	"raffle/internal/logger"
	"raffle/internal/program"
	"raffle/internal/raffle"

	"go.uber.org/zap"
)

func (t *Tracker) synchronize() error {
	summaries, err := t.program.Raffles(t.ctx)
	if err != nil {
		logger.Debug("cannot list raffles, exiting...")
		return err
	}

	var errs []error
	for _, summary := range summaries {
		if summary.Raffle.Operator != t.operator {
			continue
		}

		if t.revealDue(summary) {
			if err := t.reveal(summary.Raffle); err != nil {
				errs = append(errs, err)
			}
			continue
		}

		if summary.Raffle.PrizeClaimed && !summary.Closed {
			if err := t.close(summary.Raffle); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// revealDue reports whether the raffle is past its end plus the time buffer, has entrants and is undrawn.
func (t *Tracker) revealDue(summary *program.Summary) bool {
	if summary.Closed || summary.Total == 0 || summary.Raffle.Winner.IsDrawn() {
		return false
	}
	deadline := time.Unix(summary.Raffle.EndTimestamp, 0).Add(t.program.TimeBuffer())
	return !t.program.Now().Before(deadline)
}

func (t *Tracker) reveal(r *raffle.Raffle) error {
	logger.Debug("revealing expired raffle...", zap.String("raffle", r.Address.ToRaw()))

	randomness, seed, err := beacon.Randomness(t.ctx, t.source, r.Address)
	if err != nil {
		logger.Debug("reveal: cannot fetch beacon seed, exiting...")
		return err
	}

	draw, err := t.program.RevealWinners(t.ctx, r.Address, t.operator, randomness)
	if errors.Is(err, raffle.ErrWinnersAlreadyDrawn) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reveal %s: %w", r.Address.ToRaw(), err)
	}

	logger.Info("revealing expired raffle... done",
		zap.String("raffle", r.Address.ToRaw()),
		zap.String("seed", seed.String()),
		zap.Uint32("index", draw.Index),
		zap.String("winner", draw.Winner.ToRaw()),
	)
	return nil
}

func (t *Tracker) close(r *raffle.Raffle) error {
	logger.Debug("closing settled raffle...", zap.String("raffle", r.Address.ToRaw()))

	reclaimed, err := t.program.CloseEntrants(t.ctx, r.Address, t.operator)
	if err != nil {
		return fmt.Errorf("close %s: %w", r.Address.ToRaw(), err)
	}

	logger.Info("closing settled raffle... done", zap.String("raffle", r.Address.ToRaw()), zap.Uint64("reclaimed", reclaimed))
	return nil
}
