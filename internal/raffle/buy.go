package raffle

import "raffle/internal/blockchain"

// Purchase describes a committed ticket purchase. Tickets occupy [FirstIndex, FirstIndex+Quantity).
type Purchase struct {
	Buyer      Identity
	Quantity   uint32
	FirstIndex uint32
	FeeSplit
}

// BuyTickets moves the net cost from the buyer to the raffle, accrues the fee and appends
// quantity entries for the buyer. Nothing changes on failure.
func (r *Raffle) BuyTickets(env Env, bank Bank, e *Entrants, buyer Identity, quantity uint32) (*Purchase, error) {
	if err := r.checkLedger(e); err != nil {
		return nil, err
	}
	if blockchain.IsZero(buyer) {
		return nil, ErrInvalidIdentity
	}
	if quantity == 0 {
		return nil, ErrInvalidQuantity
	}
	if r.Winner.IsDrawn() || env.UnixTimestamp > r.EndTimestamp {
		return nil, ErrRaffleEnded
	}
	if quantity > e.Remaining() {
		return nil, ErrNotEnoughTicketsLeft
	}

	split, err := SplitFee(r.TicketPrice, quantity, r.FeePercent)
	if err != nil {
		return nil, err
	}
	accumulated, err := checkedAdd(r.AccumulatedFee, split.Fee)
	if err != nil {
		return nil, err
	}
	if err := bank.Transfer(buyer, r.Address, split.Net); err != nil {
		return nil, err
	}

	first := e.Total
	for range quantity {
		if err := e.Append(buyer); err != nil {
			return nil, err
		}
	}
	r.AccumulatedFee = accumulated

	return &Purchase{
		Buyer:      buyer,
		Quantity:   quantity,
		FirstIndex: first,
		FeeSplit:   split,
	}, nil
}
