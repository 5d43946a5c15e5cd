package raffle

import "errors"

var (
	// configuration
	ErrInvalidTicketPrice  = errors.New("ticket price must be greater than 0")
	ErrInvalidMaxEntrants  = errors.New("max entrants must be greater than 0 and less than or equal to 1000")
	ErrInvalidEndTimestamp = errors.New("end timestamp must be in the future")
	ErrInvalidFeePercent   = errors.New("operator fee percent must be less than or equal to 100")

	// capacity
	ErrNotEnoughTicketsLeft = errors.New("not enough tickets left")
	ErrInvalidQuantity      = errors.New("ticket quantity must be greater than 0")

	// timing
	ErrRaffleStillRunning = errors.New("raffle is still running")
	ErrRaffleEnded        = errors.New("raffle has ended")

	// sequencing
	ErrWinnerNotDrawn      = errors.New("winner not drawn")
	ErrWinnersAlreadyDrawn = errors.New("winner already drawn")
	ErrNoEntrants          = errors.New("raffle has no entrants")
	ErrPrizeNotClaimed     = errors.New("prize not claimed")
	ErrPrizeAlreadyClaimed = errors.New("prize already claimed")

	// authorization
	ErrNotWinner       = errors.New("user is not winner")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrInvalidIdentity = errors.New("invalid identity")

	// arithmetic and funds
	ErrArithmeticOverflow = errors.New("invalid calculation")
	ErrInsufficientFunds  = errors.New("insufficient funds")

	// records
	ErrLedgerMismatch     = errors.New("ledger does not belong to raffle")
	ErrLedgerNotEmpty     = errors.New("ledger account is already initialized")
	ErrLedgerTooSmall     = errors.New("ledger account is too small for capacity")
	ErrInvalidPrizeIndex  = errors.New("invalid prize index")
	ErrInvalidAccountData = errors.New("invalid account data")
)
