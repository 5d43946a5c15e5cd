package raffle

import "raffle/internal/blockchain"

type Params struct {
	EndTimestamp int64
	TicketPrice  uint64
	Capacity     uint32
	FeePercent   uint8
}

func (p Params) Validate(now int64) error {
	if p.TicketPrice == 0 {
		return ErrInvalidTicketPrice
	}
	if p.Capacity == 0 || p.Capacity > MaxCapacity {
		return ErrInvalidMaxEntrants
	}
	if p.EndTimestamp <= now {
		return ErrInvalidEndTimestamp
	}
	if p.FeePercent > percentDenominator {
		return ErrInvalidFeePercent
	}
	return nil
}

// CreateRaffle initializes a raffle record and its ledger. ledgerData is the current content of
// the pre-provisioned ledger account, which must be untouched and large enough for the capacity.
func CreateRaffle(env Env, address, operator, ledger Identity, ledgerData []byte, params Params) (*Raffle, *Entrants, error) {
	if err := params.Validate(env.UnixTimestamp); err != nil {
		return nil, nil, err
	}
	if blockchain.IsZero(operator) || blockchain.IsZero(ledger) {
		return nil, nil, ErrInvalidIdentity
	}
	if !IsUninitialized(ledgerData) {
		return nil, nil, ErrLedgerNotEmpty
	}
	if len(ledgerData) < EntrantsSize(params.Capacity) {
		return nil, nil, ErrLedgerTooSmall
	}

	r := &Raffle{
		Address:      address,
		Operator:     operator,
		Entrants:     ledger,
		EndTimestamp: params.EndTimestamp,
		TicketPrice:  params.TicketPrice,
		FeePercent:   params.FeePercent,
	}
	return r, NewEntrants(ledger, params.Capacity), nil
}

func (r *Raffle) checkLedger(e *Entrants) error {
	if e == nil || e.Address != r.Entrants {
		return ErrLedgerMismatch
	}
	return nil
}
