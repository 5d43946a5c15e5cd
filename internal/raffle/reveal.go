package raffle

// RevealWinners fixes the winning ticket as randomness mod Total. A raffle is drawn at most once.
func (r *Raffle) RevealWinners(env Env, e *Entrants, caller Identity, randomness uint64) (uint32, error) {
	if err := r.checkLedger(e); err != nil {
		return 0, err
	}
	ended, err := env.deadlinePassed(r.EndTimestamp)
	if err != nil {
		return 0, err
	}
	if !ended {
		return 0, ErrRaffleStillRunning
	}
	if e.Total == 0 {
		return 0, ErrNoEntrants
	}
	if r.Winner.IsDrawn() {
		return 0, ErrWinnersAlreadyDrawn
	}
	if caller != r.Operator {
		return 0, ErrUnauthorized
	}

	index := uint32(randomness % uint64(e.Total))
	r.Winner = Drawn(index)
	return index, nil
}
