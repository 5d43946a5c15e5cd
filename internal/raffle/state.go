package raffle

import (
	"fmt"

	"github.com/tonkeeper/tongo/ton"
)

type Identity = ton.AccountID

// WinnerSelection is either undrawn or drawn at a fixed ledger index. The zero value is undrawn.
type WinnerSelection struct {
	index uint32
	drawn bool
}

func Drawn(index uint32) WinnerSelection {
	return WinnerSelection{index: index, drawn: true}
}

func (w WinnerSelection) Index() (uint32, bool) {
	return w.index, w.drawn
}

func (w WinnerSelection) IsDrawn() bool {
	return w.drawn
}

func (w WinnerSelection) String() string {
	if !w.drawn {
		return "undrawn"
	}
	return fmt.Sprintf("drawn(%d)", w.index)
}

// Raffle is the persisted raffle record. Address is the account key, not part of the layout.
type Raffle struct {
	Address        Identity
	Operator       Identity
	Entrants       Identity
	EndTimestamp   int64
	TicketPrice    uint64
	FeePercent     uint8
	AccumulatedFee uint64
	Winner         WinnerSelection
	PrizeClaimed   bool
}

// Entrants is the ticket ledger: a fixed arena of Capacity slots of which [0, Total) are sold.
type Entrants struct {
	Address  Identity
	Total    uint32
	Capacity uint32
	Entries  []Identity
}

func NewEntrants(address Identity, capacity uint32) *Entrants {
	return &Entrants{
		Address:  address,
		Capacity: capacity,
		Entries:  make([]Identity, capacity),
	}
}

func (e *Entrants) Remaining() uint32 {
	return e.Capacity - e.Total
}

func (e *Entrants) Append(entrant Identity) error {
	if e.Total >= e.Capacity {
		return ErrNotEnoughTicketsLeft
	}
	e.Entries[e.Total] = entrant
	e.Total++
	return nil
}

// Entry resolves a sold ticket index to its holder.
func (e *Entrants) Entry(index uint32) (Identity, bool) {
	if index >= e.Total {
		return Identity{}, false
	}
	return e.Entries[index], true
}

func (e *Entrants) Sold() []Identity {
	return e.Entries[:e.Total]
}

// Tickets counts sold tickets held by one identity.
func (e *Entrants) Tickets(holder Identity) uint32 {
	var n uint32
	for _, entry := range e.Sold() {
		if entry == holder {
			n++
		}
	}
	return n
}

// Env is the hosting environment as seen by a single operation.
type Env struct {
	UnixTimestamp int64
	TimeBuffer    int64
	Rent          Rent
}

// deadlinePassed reports now >= end + TimeBuffer.
func (env Env) deadlinePassed(end int64) (bool, error) {
	deadline, err := checkedAddInt64(end, env.TimeBuffer)
	if err != nil {
		return false, err
	}
	return env.UnixTimestamp >= deadline, nil
}

// Bank moves value between accounts. Implementations must fail with ErrInsufficientFunds
// rather than overdraw.
type Bank interface {
	Balance(account Identity) (uint64, error)
	// Transfer debits a wallet that authorized the operation. Program-owned accounts are refused.
	Transfer(from, to Identity, amount uint64) error
	// Payout debits the raffle or its ledger on the program's behalf.
	Payout(from, to Identity, amount uint64) error
}
