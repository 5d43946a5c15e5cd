package raffle

// Settlement is the outcome of a successful claim. Reserve stays on the raffle account.
type Settlement struct {
	Winner   Identity
	Operator Identity
	Prize    uint64
	Fee      uint64
	Reserve  uint64
}

// ClaimPrize pays the winner balance-reserve-fee and the operator the accumulated fee, computed
// from the live raffle balance. The caller must commit the transfers and the claimed flag together.
func (r *Raffle) ClaimPrize(env Env, bank Bank, e *Entrants, caller, authority Identity) (*Settlement, error) {
	if err := r.checkLedger(e); err != nil {
		return nil, err
	}
	index, drawn := r.Winner.Index()
	if !drawn {
		return nil, ErrWinnerNotDrawn
	}
	if r.PrizeClaimed {
		return nil, ErrPrizeAlreadyClaimed
	}
	winner, ok := e.Entry(index)
	if !ok {
		return nil, ErrInvalidPrizeIndex
	}
	if winner != caller {
		return nil, ErrNotWinner
	}
	if authority != r.Operator {
		return nil, ErrUnauthorized
	}

	reserve, err := env.Rent.MinimumBalance(RaffleRecordSize)
	if err != nil {
		return nil, err
	}
	balance, err := bank.Balance(r.Address)
	if err != nil {
		return nil, err
	}
	available, err := checkedSub(balance, reserve)
	if err != nil {
		return nil, err
	}
	prize, err := checkedSub(available, r.AccumulatedFee)
	if err != nil {
		return nil, err
	}

	if err := bank.Payout(r.Address, winner, prize); err != nil {
		return nil, err
	}
	if err := bank.Payout(r.Address, r.Operator, r.AccumulatedFee); err != nil {
		return nil, err
	}
	r.PrizeClaimed = true

	return &Settlement{
		Winner:   winner,
		Operator: r.Operator,
		Prize:    prize,
		Fee:      r.AccumulatedFee,
		Reserve:  reserve,
	}, nil
}
