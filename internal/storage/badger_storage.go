package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"raffle/internal/logger"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"go.uber.org/zap"
)

const (
	accountKeyPrefix = "account/"
	actionKeyPrefix  = "action/"
)

// BadgerStorage keeps cbor-encoded records in badger. Transactions are optimistic: a commit that
// lost a race returns ErrConflict and the caller may retry.
type BadgerStorage struct {
	db *badger.DB
}

// NewBadgerStorage opens the database in dataDir, or an in-memory database when dataDir is empty.
func NewBadgerStorage(dataDir string) (*BadgerStorage, error) {
	logger.Debug("initializing badger database...", zap.String("dataDir", dataDir))

	opts := badger.DefaultOptions(dataDir)
	if dataDir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.
		WithLogger(badgerLogger{}).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger %q: %w", dataDir, err)
	}

	logger.Debug("initializing badger database... done")
	return &BadgerStorage{db: db}, nil
}

func (s *BadgerStorage) Transaction(ctx context.Context, fn func(txn Txn) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return fn(&badgerTxn{txn: txn})
	})
	if errors.Is(err, badger.ErrConflict) {
		return ErrConflict
	}
	return err
}

func (s *BadgerStorage) Close() error {
	return s.db.Close()
}

type badgerTxn struct {
	txn *badger.Txn
}

func accountKey(address string) []byte {
	return []byte(accountKeyPrefix + address)
}

func actionKey(action *Action) []byte {
	return []byte(actionKeyPrefix + action.Raffle + "/" + action.ID)
}

func (t *badgerTxn) GetAccount(address string) (*Account, error) {
	item, err := t.txn.Get(accountKey(address))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%s: %w", address, ErrAccountNotFound)
	}
	if err != nil {
		return nil, err
	}
	value, err := item.ValueCopy(nil)
	if err != nil {
		return nil, err
	}

	var account Account
	if err := cbor.Unmarshal(value, &account); err != nil {
		return nil, fmt.Errorf("decode account %s: %w", address, err)
	}
	return &account, nil
}

func (t *badgerTxn) PutAccount(account *Account) error {
	value, err := cbor.Marshal(account)
	if err != nil {
		return err
	}
	return t.txn.Set(accountKey(account.Address), value)
}

func (t *badgerTxn) DeleteAccount(address string) error {
	if _, err := t.txn.Get(accountKey(address)); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%s: %w", address, ErrAccountNotFound)
		}
		return err
	}
	return t.txn.Delete(accountKey(address))
}

func (t *badgerTxn) ListAccounts(kind AccountKind) ([]*Account, error) {
	accounts := make([]*Account, 0)
	err := t.scan(accountKeyPrefix, func(value []byte) error {
		var account Account
		if err := cbor.Unmarshal(value, &account); err != nil {
			return err
		}
		if account.Kind == kind {
			accounts = append(accounts, &account)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func (t *badgerTxn) AppendAction(action *Action) error {
	value, err := cbor.Marshal(action)
	if err != nil {
		return err
	}
	return t.txn.Set(actionKey(action), value)
}

func (t *badgerTxn) GetActions(raffle string) ([]*Action, error) {
	prefix := actionKeyPrefix
	if raffle != "" {
		prefix += raffle + "/"
	}

	actions := make([]*Action, 0)
	err := t.scan(prefix, func(value []byte) error {
		var action Action
		if err := cbor.Unmarshal(value, &action); err != nil {
			return err
		}
		actions = append(actions, &action)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(actions, func(i, j int) bool {
		return strings.Compare(actions[i].ID, actions[j].ID) < 0
	})
	return actions, nil
}

func (t *badgerTxn) scan(prefix string, fn func(value []byte) error) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)
	it := t.txn.NewIterator(opts)
	defer it.Close()

	for it.Rewind(); it.ValidForPrefix(opts.Prefix); it.Next() {
		value, err := it.Item().ValueCopy(nil)
		if err != nil {
			return err
		}
		if err := fn(value); err != nil {
			return err
		}
	}
	return nil
}

// badgerLogger routes badger's internal logging into the process logger.
type badgerLogger struct{}

func (badgerLogger) Errorf(format string, args ...any) {
	logger.Error(strings.TrimSpace(fmt.Sprintf(format, args...)), zap.String("component", "badger"))
}

func (badgerLogger) Warningf(format string, args ...any) {
	logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)), zap.String("component", "badger"))
}

func (badgerLogger) Infof(format string, args ...any) {
	logger.Info(strings.TrimSpace(fmt.Sprintf(format, args...)), zap.String("component", "badger"))
}

func (badgerLogger) Debugf(format string, args ...any) {
	logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)), zap.String("component", "badger"))
}
