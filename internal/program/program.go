package program

import (
	"context"
	"errors"
	"time"

	"raffle/internal/blockchain"
	"raffle/internal/event"
	"raffle/internal/logger"
	"raffle/internal/raffle"
	"raffle/internal/storage"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const DefaultMaxRetries = 5

var (
	ErrNotWallet         = errors.New("account is not a wallet")
	ErrNotProgramAccount = errors.New("account is not owned by the raffle program")
	ErrInvalidAmount     = errors.New("amount must be greater than 0")
	ErrRaffleExists      = errors.New("raffle already exists for ledger")
)

// Program hosts the raffle state machine on top of a Storage. Every operation is one storage
// transaction; storage conflicts are retried, every other failure leaves state untouched.
type Program struct {
	storage    storage.Storage
	programID  raffle.Identity
	now        func() time.Time
	timeBuffer time.Duration
	rent       raffle.Rent
	eventBus   *event.EventBus
	metrics    *programMetrics
	maxRetries int
}

type OptionFunc func(*Program)

func WithProgramID(programID raffle.Identity) OptionFunc {
	return func(p *Program) {
		p.programID = programID
	}
}

func WithClock(now func() time.Time) OptionFunc {
	return func(p *Program) {
		p.now = now
	}
}

func WithTimeBuffer(timeBuffer time.Duration) OptionFunc {
	return func(p *Program) {
		p.timeBuffer = timeBuffer
	}
}

func WithRent(rent raffle.Rent) OptionFunc {
	return func(p *Program) {
		p.rent = rent
	}
}

func WithEventBus(eventBus *event.EventBus) OptionFunc {
	return func(p *Program) {
		p.eventBus = eventBus
	}
}

func WithPromRegistry(registry prometheus.Registerer) OptionFunc {
	return func(p *Program) {
		if registry != nil {
			p.metrics = newProgramMetrics(registry)
		}
	}
}

func WithMaxRetries(maxRetries int) OptionFunc {
	return func(p *Program) {
		p.maxRetries = maxRetries
	}
}

func New(s storage.Storage, opts ...OptionFunc) *Program {
	p := &Program{
		storage:    s,
		programID:  blockchain.DefaultProgramID,
		now:        time.Now,
		rent:       raffle.DefaultRent(),
		maxRetries: DefaultMaxRetries,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Program) ProgramID() raffle.Identity {
	return p.programID
}

func (p *Program) Now() time.Time {
	return p.now()
}

func (p *Program) TimeBuffer() time.Duration {
	return p.timeBuffer
}

func (p *Program) env() raffle.Env {
	return raffle.Env{
		UnixTimestamp: p.now().Unix(),
		TimeBuffer:    int64(p.timeBuffer / time.Second),
		Rent:          p.rent,
	}
}

// transact runs fn in a storage transaction, retrying on conflicts, and records the outcome.
func transact[T any](ctx context.Context, p *Program, operation string, fn func(txn storage.Txn, env raffle.Env) (T, error)) (T, error) {
	start := time.Now()
	result, err := retryOnConflict(ctx, p.maxRetries, func() (T, error) {
		var result T
		err := p.storage.Transaction(ctx, func(txn storage.Txn) error {
			var err error
			result, err = fn(txn, p.env())
			return err
		})
		return result, err
	})
	p.metrics.observe(operation, time.Since(start), err)
	if err != nil {
		logger.Debug(operation+" rejected", zap.Error(err))
	}
	return result, err
}

func (p *Program) view(ctx context.Context, fn func(txn storage.Txn) error) error {
	return p.storage.Transaction(ctx, fn)
}

func (p *Program) publish(eventType event.EventType, data any) {
	if p.eventBus == nil {
		return
	}
	p.eventBus.PublishAsync(eventType, event.NewEvent(eventType, data))
}

func appendAction(txn storage.Txn, env raffle.Env, actionType storage.ActionType, raffleAddress, actor raffle.Identity, amount uint64, quantity uint32) error {
	action := &storage.Action{
		ID:         uuid.Must(uuid.NewV7()).String(),
		ActionType: actionType,
		Actor:      actor.ToRaw(),
		Amount:     amount,
		Quantity:   quantity,
		UnixTime:   env.UnixTimestamp,
	}
	if !blockchain.IsZero(raffleAddress) {
		action.Raffle = raffleAddress.ToRaw()
	}
	return txn.AppendAction(action)
}
