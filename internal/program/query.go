package program

import (
	"context"
	"errors"

	"raffle/internal/blockchain"
	"raffle/internal/raffle"
	"raffle/internal/storage"
)

// Summary is a read-only view of a raffle. Closed is set once the ledger has been destroyed,
// after which Total and Capacity are zero.
type Summary struct {
	Raffle   *raffle.Raffle
	Balance  uint64
	Total    uint32
	Capacity uint32
	Closed   bool
}

func (p *Program) Raffle(ctx context.Context, address raffle.Identity) (*raffle.Raffle, error) {
	var r *raffle.Raffle
	err := p.view(ctx, func(txn storage.Txn) error {
		var err error
		r, err = p.loadRaffle(txn, address)
		return err
	})
	return r, err
}

func (p *Program) Entrants(ctx context.Context, ledger raffle.Identity) (*raffle.Entrants, error) {
	var e *raffle.Entrants
	err := p.view(ctx, func(txn storage.Txn) error {
		var err error
		e, err = p.loadEntrants(txn, ledger)
		return err
	})
	return e, err
}

func (p *Program) Balance(ctx context.Context, account raffle.Identity) (uint64, error) {
	var balance uint64
	err := p.view(ctx, func(txn storage.Txn) error {
		var err error
		balance, err = txnBank{txn: txn}.Balance(account)
		return err
	})
	return balance, err
}

func (p *Program) Summary(ctx context.Context, address raffle.Identity) (*Summary, error) {
	var summary *Summary
	err := p.view(ctx, func(txn storage.Txn) error {
		r, err := p.loadRaffle(txn, address)
		if err != nil {
			return err
		}
		summary, err = p.summarize(txn, r)
		return err
	})
	return summary, err
}

// Raffles lists every raffle hosted by the program, ordered by address.
func (p *Program) Raffles(ctx context.Context) ([]*Summary, error) {
	summaries := make([]*Summary, 0)
	err := p.view(ctx, func(txn storage.Txn) error {
		accounts, err := txn.ListAccounts(storage.RaffleAccountKind)
		if err != nil {
			return err
		}
		for _, acct := range accounts {
			if acct.Owner != p.programID.ToRaw() {
				continue
			}
			address, err := blockchain.ParseIdentity(acct.Address)
			if err != nil {
				return err
			}
			r, err := raffle.DecodeRaffle(address, acct.Data)
			if err != nil {
				return err
			}
			summary, err := p.summarize(txn, r)
			if err != nil {
				return err
			}
			summaries = append(summaries, summary)
		}
		return nil
	})
	return summaries, err
}

func (p *Program) summarize(txn storage.Txn, r *raffle.Raffle) (*Summary, error) {
	bank := txnBank{txn: txn}
	balance, err := bank.Balance(r.Address)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Raffle: r, Balance: balance}
	e, err := p.loadEntrants(txn, r.Entrants)
	switch {
	case errors.Is(err, storage.ErrAccountNotFound):
		summary.Closed = true
	case err != nil:
		return nil, err
	default:
		summary.Total = e.Total
		summary.Capacity = e.Capacity
	}
	return summary, nil
}

// History returns recorded actions for one raffle, or for everything when address is zero.
func (p *Program) History(ctx context.Context, address raffle.Identity) ([]*storage.Action, error) {
	var actions []*storage.Action
	err := p.view(ctx, func(txn storage.Txn) error {
		var err error
		if blockchain.IsZero(address) {
			actions, err = txn.GetActions("")
		} else {
			actions, err = txn.GetActions(address.ToRaw())
		}
		return err
	})
	return actions, err
}
