package program

import (
	"context"
	"errors"

	"raffle/internal/blockchain"
	"raffle/internal/logger"
	"raffle/internal/raffle"
	"raffle/internal/storage"

	"go.uber.org/zap"
)

// Deposit credits a wallet, creating it when missing. Returns the new balance.
func (p *Program) Deposit(ctx context.Context, account raffle.Identity, amount uint64) (uint64, error) {
	if blockchain.IsZero(account) {
		return 0, raffle.ErrInvalidIdentity
	}
	if amount == 0 {
		return 0, ErrInvalidAmount
	}

	logger.Debug("depositing...", zap.String("account", account.ToRaw()), zap.Uint64("amount", amount))
	balance, err := transact(ctx, p, "deposit", func(txn storage.Txn, env raffle.Env) (uint64, error) {
		acct, err := txn.GetAccount(account.ToRaw())
		if errors.Is(err, storage.ErrAccountNotFound) {
			acct = &storage.Account{Address: account.ToRaw(), Kind: storage.WalletAccountKind}
		} else if err != nil {
			return 0, err
		}
		if acct.Kind != storage.WalletAccountKind {
			return 0, ErrNotWallet
		}
		if acct.Balance+amount < acct.Balance {
			return 0, raffle.ErrArithmeticOverflow
		}

		acct.Balance += amount
		if err := txn.PutAccount(acct); err != nil {
			return 0, err
		}
		if err := appendAction(txn, env, storage.DepositActionType, raffle.Identity{}, account, amount, 0); err != nil {
			return 0, err
		}
		return acct.Balance, nil
	})
	if err != nil {
		return 0, err
	}

	logger.Debug("depositing... done", zap.Uint64("balance", balance))
	return balance, nil
}

// ProvisionEntrants allocates a zeroed ledger sized for capacity, funded with its rent minimum by
// payer. The ledger is owned by the program and can back exactly one raffle.
func (p *Program) ProvisionEntrants(ctx context.Context, payer raffle.Identity, capacity uint32) (raffle.Identity, error) {
	if capacity == 0 || capacity > raffle.MaxCapacity {
		return raffle.Identity{}, raffle.ErrInvalidMaxEntrants
	}
	ledger, err := blockchain.NewIdentity()
	if err != nil {
		return raffle.Identity{}, err
	}
	size := raffle.EntrantsSize(capacity)

	logger.Debug("provisioning entrants...", zap.String("ledger", ledger.ToRaw()), zap.Uint32("capacity", capacity))
	_, err = transact(ctx, p, "provision", func(txn storage.Txn, env raffle.Env) (struct{}, error) {
		minimum, err := env.Rent.MinimumBalance(size)
		if err != nil {
			return struct{}{}, err
		}
		err = txn.PutAccount(&storage.Account{
			Address: ledger.ToRaw(),
			Kind:    storage.EntrantsAccountKind,
			Owner:   p.programID.ToRaw(),
			Data:    make([]byte, size),
		})
		if err != nil {
			return struct{}{}, err
		}
		if err := (txnBank{txn: txn}).Transfer(payer, ledger, minimum); err != nil {
			return struct{}{}, err
		}
		return struct{}{}, appendAction(txn, env, storage.ProvisionActionType, raffle.Identity{}, payer, minimum, capacity)
	})
	if err != nil {
		return raffle.Identity{}, err
	}

	logger.Debug("provisioning entrants... done")
	return ledger, nil
}
