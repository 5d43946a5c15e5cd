package storage

import (
	"context"
	"errors"
)

var (
	ErrAccountNotFound = errors.New("account does not exist")
	ErrConflict        = errors.New("transaction conflict")
)

// Storage runs fn inside a single atomic transaction. A non-nil error from fn rolls back every
// write made through txn.
type Storage interface {
	Transaction(ctx context.Context, fn func(txn Txn) error) error
	Close() error
}

type Txn interface {
	// account
	GetAccount(address string) (*Account, error)
	PutAccount(account *Account) error
	DeleteAccount(address string) error
	ListAccounts(kind AccountKind) ([]*Account, error)

	// action history
	AppendAction(action *Action) error
	GetActions(raffle string) ([]*Action, error)
}

type AccountKind = string

const (
	WalletAccountKind   AccountKind = "wallet"
	RaffleAccountKind   AccountKind = "raffle"
	EntrantsAccountKind AccountKind = "entrants"
)

type ActionType = string

const (
	DepositActionType   ActionType = "DepositActionType"
	ProvisionActionType ActionType = "ProvisionActionType"
	CreateActionType    ActionType = "CreateActionType"
	BuyActionType       ActionType = "BuyActionType"
	RevealActionType    ActionType = "RevealActionType"
	ClaimActionType     ActionType = "ClaimActionType"
	CloseActionType     ActionType = "CloseActionType"
)

// Open returns the storage backend registered under plugin.
func Open(plugin string, path string) (Storage, error) {
	switch plugin {
	case "sqlite", "":
		return NewSqliteStorage(path)
	case "badger":
		return NewBadgerStorage(path)
	default:
		return nil, errors.New("unknown storage plugin: " + plugin)
	}
}
