package program

import (
	"errors"
	"fmt"

	"raffle/internal/raffle"
	"raffle/internal/storage"
)

// txnBank moves balances between accounts inside one storage transaction.
type txnBank struct {
	txn storage.Txn
}

func (b txnBank) Balance(account raffle.Identity) (uint64, error) {
	acct, err := b.txn.GetAccount(account.ToRaw())
	if errors.Is(err, storage.ErrAccountNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return acct.Balance, nil
}

// Transfer debits a wallet that signed the operation. Raffle and ledger accounts cannot sign.
func (b txnBank) Transfer(from, to raffle.Identity, amount uint64) error {
	return b.move(from, to, amount, func(src *storage.Account) error {
		if src.Kind != storage.WalletAccountKind {
			return fmt.Errorf("%s is a %s account: %w", src.Address, src.Kind, ErrNotWallet)
		}
		return nil
	})
}

// Payout debits an account the program owns.
func (b txnBank) Payout(from, to raffle.Identity, amount uint64) error {
	return b.move(from, to, amount, func(src *storage.Account) error {
		if src.Kind == storage.WalletAccountKind {
			return fmt.Errorf("%s: %w", src.Address, ErrNotProgramAccount)
		}
		return nil
	})
}

// move credits unknown destinations as new wallets.
func (b txnBank) move(from, to raffle.Identity, amount uint64, authorize func(*storage.Account) error) error {
	if amount == 0 {
		return nil
	}

	src, err := b.txn.GetAccount(from.ToRaw())
	if errors.Is(err, storage.ErrAccountNotFound) {
		return fmt.Errorf("%s: %w", from.ToRaw(), raffle.ErrInsufficientFunds)
	}
	if err != nil {
		return err
	}
	if err := authorize(src); err != nil {
		return err
	}
	if src.Balance < amount {
		return fmt.Errorf("%s has %d, needs %d: %w", from.ToRaw(), src.Balance, amount, raffle.ErrInsufficientFunds)
	}
	if from == to {
		return nil
	}

	dst, err := b.txn.GetAccount(to.ToRaw())
	if errors.Is(err, storage.ErrAccountNotFound) {
		dst = &storage.Account{Address: to.ToRaw(), Kind: storage.WalletAccountKind}
	} else if err != nil {
		return err
	}
	if dst.Balance+amount < dst.Balance {
		return raffle.ErrArithmeticOverflow
	}

	src.Balance -= amount
	dst.Balance += amount
	if err := b.txn.PutAccount(src); err != nil {
		return err
	}
	return b.txn.PutAccount(dst)
}
