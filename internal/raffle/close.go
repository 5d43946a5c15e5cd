package raffle

// CloseEntrants drains the ledger balance to the operator. The caller deletes the ledger account
// in the same transaction. Returns the amount reclaimed.
func (r *Raffle) CloseEntrants(env Env, bank Bank, e *Entrants, caller Identity) (uint64, error) {
	if err := r.checkLedger(e); err != nil {
		return 0, err
	}
	if caller != r.Operator {
		return 0, ErrUnauthorized
	}
	ended, err := env.deadlinePassed(r.EndTimestamp)
	if err != nil {
		return 0, err
	}
	if !ended {
		return 0, ErrRaffleStillRunning
	}
	if !r.Winner.IsDrawn() {
		return 0, ErrWinnerNotDrawn
	}
	if !r.PrizeClaimed {
		return 0, ErrPrizeNotClaimed
	}

	balance, err := bank.Balance(e.Address)
	if err != nil {
		return 0, err
	}
	if err := bank.Payout(e.Address, r.Operator, balance); err != nil {
		return 0, err
	}
	return balance, nil
}
