package storage

// Account is a balance-holding record. Data is opaque to storage and empty for wallets.
type Account struct {
	Address string      `gorm:"primaryKey"`
	Kind    AccountKind `gorm:"index;not null"`
	Owner   string
	Balance uint64 `gorm:"not null;default:0"`
	Data    []byte
}

type Action struct {
	// time-ordered uuid, sorts in append order
	ID         string     `gorm:"primaryKey"`
	ActionType ActionType `gorm:"index;not null"`
	Raffle     string     `gorm:"index"`
	Actor      string     `gorm:"not null"`
	Amount     uint64     `gorm:"default:0"`
	Quantity   uint32     `gorm:"default:0"`
	UnixTime   int64      `gorm:"not null"`
}
