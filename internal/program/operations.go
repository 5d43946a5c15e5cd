package program

import (
	"context"
	"errors"
	"fmt"

	"raffle/internal/blockchain"
	"raffle/internal/event"
	"raffle/internal/logger"
	"raffle/internal/raffle"
	"raffle/internal/storage"

	"go.uber.org/zap"
)

// Draw is the outcome of RevealWinners.
type Draw struct {
	Index  uint32
	Total  uint32
	Winner raffle.Identity
}

// CreateRaffle initializes a raffle over a provisioned ledger. The operator pays the raffle
// record's rent minimum, which stays on the raffle as its reserve.
func (p *Program) CreateRaffle(ctx context.Context, operator, ledger raffle.Identity, params raffle.Params) (*raffle.Raffle, error) {
	logger.Debug("creating raffle...", zap.String("operator", operator.ToRaw()), zap.String("ledger", ledger.ToRaw()))
	r, err := transact(ctx, p, "create", func(txn storage.Txn, env raffle.Env) (*raffle.Raffle, error) {
		ledgerAcct, err := p.programAccount(txn, ledger, storage.EntrantsAccountKind)
		if err != nil {
			return nil, err
		}

		address := blockchain.DeriveRaffleAddress(p.programID, ledger)
		if _, err := txn.GetAccount(address.ToRaw()); err == nil {
			return nil, fmt.Errorf("raffle %s: %w", address.ToRaw(), ErrRaffleExists)
		} else if !errors.Is(err, storage.ErrAccountNotFound) {
			return nil, err
		}

		r, e, err := raffle.CreateRaffle(env, address, operator, ledger, ledgerAcct.Data, params)
		if err != nil {
			return nil, err
		}
		reserve, err := env.Rent.MinimumBalance(raffle.RaffleRecordSize)
		if err != nil {
			return nil, err
		}

		err = txn.PutAccount(&storage.Account{
			Address: address.ToRaw(),
			Kind:    storage.RaffleAccountKind,
			Owner:   p.programID.ToRaw(),
			Data:    raffle.EncodeRaffle(r),
		})
		if err != nil {
			return nil, err
		}
		if err := (txnBank{txn: txn}).Transfer(operator, address, reserve); err != nil {
			return nil, err
		}
		if err := saveEntrants(txn, e); err != nil {
			return nil, err
		}
		if err := appendAction(txn, env, storage.CreateActionType, address, operator, reserve, params.Capacity); err != nil {
			return nil, err
		}
		return r, nil
	})
	if err != nil {
		return nil, err
	}

	p.publish(event.RaffleCreatedEventType, event.RaffleCreatedEvent{
		Raffle:       r.Address,
		Operator:     r.Operator,
		Entrants:     r.Entrants,
		EndTimestamp: r.EndTimestamp,
		TicketPrice:  r.TicketPrice,
		Capacity:     params.Capacity,
		FeePercent:   r.FeePercent,
	})
	logger.Info("creating raffle... done", zap.String("raffle", r.Address.ToRaw()))
	return r, nil
}

func (p *Program) BuyTickets(ctx context.Context, address, buyer raffle.Identity, quantity uint32) (*raffle.Purchase, error) {
	logger.Debug("buying tickets...", zap.String("raffle", address.ToRaw()), zap.String("buyer", buyer.ToRaw()), zap.Uint32("quantity", quantity))
	purchase, err := transact(ctx, p, "buy", func(txn storage.Txn, env raffle.Env) (*raffle.Purchase, error) {
		r, e, err := p.loadPair(txn, address)
		if err != nil {
			return nil, err
		}
		purchase, err := r.BuyTickets(env, txnBank{txn: txn}, e, buyer, quantity)
		if err != nil {
			return nil, err
		}
		if err := saveRaffle(txn, r); err != nil {
			return nil, err
		}
		if err := saveEntrants(txn, e); err != nil {
			return nil, err
		}
		if err := appendAction(txn, env, storage.BuyActionType, address, buyer, purchase.Total, quantity); err != nil {
			return nil, err
		}
		return purchase, nil
	})
	if err != nil {
		return nil, err
	}

	p.metrics.purchase(purchase)
	p.publish(event.TicketsPurchasedEventType, event.TicketsPurchasedEvent{
		Raffle:     address,
		Buyer:      buyer,
		Quantity:   purchase.Quantity,
		FirstIndex: purchase.FirstIndex,
		Net:        purchase.Net,
		Fee:        purchase.Fee,
	})
	logger.Debug("buying tickets... done", zap.Uint32("firstIndex", purchase.FirstIndex), zap.Uint64("fee", purchase.Fee))
	return purchase, nil
}

// RevealWinners draws the winner from an externally supplied randomness value.
func (p *Program) RevealWinners(ctx context.Context, address, caller raffle.Identity, randomness uint64) (*Draw, error) {
	logger.Debug("revealing winner...", zap.String("raffle", address.ToRaw()))
	draw, err := transact(ctx, p, "reveal", func(txn storage.Txn, env raffle.Env) (*Draw, error) {
		r, e, err := p.loadPair(txn, address)
		if err != nil {
			return nil, err
		}
		index, err := r.RevealWinners(env, e, caller, randomness)
		if err != nil {
			return nil, err
		}
		if err := saveRaffle(txn, r); err != nil {
			return nil, err
		}
		if err := appendAction(txn, env, storage.RevealActionType, address, caller, 0, index); err != nil {
			return nil, err
		}
		winner, _ := e.Entry(index)
		return &Draw{Index: index, Total: e.Total, Winner: winner}, nil
	})
	if err != nil {
		return nil, err
	}

	p.publish(event.WinnerRevealedEventType, event.WinnerRevealedEvent{
		Raffle: address,
		Index:  draw.Index,
		Total:  draw.Total,
	})
	logger.Info("revealing winner... done", zap.String("raffle", address.ToRaw()), zap.Uint32("index", draw.Index), zap.Uint32("total", draw.Total))
	return draw, nil
}

// ClaimPrize settles a drawn raffle. authority must be the raffle's operator, who receives the fee.
func (p *Program) ClaimPrize(ctx context.Context, address, caller, authority raffle.Identity) (*raffle.Settlement, error) {
	logger.Debug("claiming prize...", zap.String("raffle", address.ToRaw()), zap.String("caller", caller.ToRaw()))
	settlement, err := transact(ctx, p, "claim", func(txn storage.Txn, env raffle.Env) (*raffle.Settlement, error) {
		r, e, err := p.loadPair(txn, address)
		if err != nil {
			return nil, err
		}
		settlement, err := r.ClaimPrize(env, txnBank{txn: txn}, e, caller, authority)
		if err != nil {
			return nil, err
		}
		if err := saveRaffle(txn, r); err != nil {
			return nil, err
		}
		if err := appendAction(txn, env, storage.ClaimActionType, address, caller, settlement.Prize, 0); err != nil {
			return nil, err
		}
		return settlement, nil
	})
	if err != nil {
		return nil, err
	}

	p.metrics.settlement(settlement)
	p.publish(event.PrizeClaimedEventType, event.PrizeClaimedEvent{
		Raffle: address,
		Winner: settlement.Winner,
		Prize:  settlement.Prize,
		Fee:    settlement.Fee,
	})
	logger.Info("claiming prize... done", zap.String("raffle", address.ToRaw()), zap.Uint64("prize", settlement.Prize), zap.Uint64("fee", settlement.Fee))
	return settlement, nil
}

// CloseEntrants destroys a settled raffle's ledger and returns its balance to the operator.
func (p *Program) CloseEntrants(ctx context.Context, address, caller raffle.Identity) (uint64, error) {
	logger.Debug("closing entrants...", zap.String("raffle", address.ToRaw()))
	var ledger raffle.Identity
	reclaimed, err := transact(ctx, p, "close", func(txn storage.Txn, env raffle.Env) (uint64, error) {
		r, e, err := p.loadPair(txn, address)
		if err != nil {
			return 0, err
		}
		reclaimed, err := r.CloseEntrants(env, txnBank{txn: txn}, e, caller)
		if err != nil {
			return 0, err
		}
		if err := txn.DeleteAccount(e.Address.ToRaw()); err != nil {
			return 0, err
		}
		if err := appendAction(txn, env, storage.CloseActionType, address, caller, reclaimed, 0); err != nil {
			return 0, err
		}
		ledger = e.Address
		return reclaimed, nil
	})
	if err != nil {
		return 0, err
	}

	p.metrics.closed()
	p.publish(event.EntrantsClosedEventType, event.EntrantsClosedEvent{
		Raffle:    address,
		Entrants:  ledger,
		Reclaimed: reclaimed,
	})
	logger.Info("closing entrants... done", zap.String("raffle", address.ToRaw()), zap.Uint64("reclaimed", reclaimed))
	return reclaimed, nil
}
