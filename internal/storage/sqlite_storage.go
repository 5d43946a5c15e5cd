package storage

import (
	"context"
	"errors"
	"fmt"

	"raffle/internal/logger"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"
)

const sqliteInMemory = "file::memory:"

type SqliteStorage struct {
	db *gorm.DB
}

// NewSqliteStorage opens the database at path, or a private in-memory database when path is empty.
func NewSqliteStorage(path string) (*SqliteStorage, error) {
	if path == "" {
		path = sqliteInMemory
	}

	logger.Debug("initializing database...", zap.String("path", path))
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Discard,
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// one connection serializes transactions and keeps an in-memory database alive
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	err = db.AutoMigrate(
		&Account{},
		&Action{},
	)
	if err != nil {
		return nil, fmt.Errorf("migrate sqlite %s: %w", path, err)
	}

	logger.Debug("initializing database... done")
	return &SqliteStorage{
		db: db,
	}, nil
}

func (s *SqliteStorage) Transaction(ctx context.Context, fn func(txn Txn) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&sqliteTxn{db: tx})
	})
}

func (s *SqliteStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type sqliteTxn struct {
	db *gorm.DB
}

func (t *sqliteTxn) GetAccount(address string) (*Account, error) {
	var account Account
	err := t.db.Where("address = ?", address).First(&account).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%s: %w", address, ErrAccountNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (t *sqliteTxn) PutAccount(account *Account) error {
	return t.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "address"}},
		DoUpdates: clause.AssignmentColumns([]string{"kind", "owner", "balance", "data"}),
	}).Create(account).Error
}

func (t *sqliteTxn) DeleteAccount(address string) error {
	tx := t.db.Where("address = ?", address).Delete(&Account{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", address, ErrAccountNotFound)
	}
	return nil
}

func (t *sqliteTxn) ListAccounts(kind AccountKind) ([]*Account, error) {
	var accounts []*Account
	err := t.db.Where("kind = ?", kind).Order("address").Find(&accounts).Error
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

func (t *sqliteTxn) AppendAction(action *Action) error {
	return t.db.Create(action).Error
}

func (t *sqliteTxn) GetActions(raffle string) ([]*Action, error) {
	query := t.db.Order("id")
	if raffle != "" {
		query = query.Where("raffle = ?", raffle)
	}

	var actions []*Action
	if err := query.Find(&actions).Error; err != nil {
		return nil, err
	}
	return actions, nil
}
