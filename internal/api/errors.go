package api

import (
	"errors"
	"net/http"

	"raffle/internal/amount"
	"raffle/internal/logger"
	"raffle/internal/program"
	"raffle/internal/raffle"
	"raffle/internal/storage"

	"go.uber.org/zap"
)

var (
	ErrBadRequest     = errors.New("malformed request")
	ErrFaucetDisabled = errors.New("faucet is disabled")
	ErrNoBeacon       = errors.New("randomness is required when no beacon is configured")
)

type errorMapping struct {
	err    error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{ErrBadRequest, http.StatusBadRequest, "bad_request"},
	{ErrNoBeacon, http.StatusBadRequest, "randomness_required"},
	{ErrFaucetDisabled, http.StatusForbidden, "faucet_disabled"},

	{raffle.ErrInvalidTicketPrice, http.StatusBadRequest, "invalid_ticket_price"},
	{raffle.ErrInvalidMaxEntrants, http.StatusBadRequest, "invalid_max_entrants"},
	{raffle.ErrInvalidEndTimestamp, http.StatusBadRequest, "invalid_end_timestamp"},
	{raffle.ErrInvalidFeePercent, http.StatusBadRequest, "invalid_fee_percent"},
	{raffle.ErrInvalidQuantity, http.StatusBadRequest, "invalid_quantity"},
	{raffle.ErrInvalidIdentity, http.StatusBadRequest, "invalid_identity"},
	{raffle.ErrInvalidPrizeIndex, http.StatusBadRequest, "invalid_prize_index"},
	{program.ErrInvalidAmount, http.StatusBadRequest, "invalid_amount"},
	{amount.ErrNegative, http.StatusBadRequest, "invalid_amount"},
	{amount.ErrPrecision, http.StatusBadRequest, "invalid_amount"},
	{amount.ErrTooLarge, http.StatusBadRequest, "invalid_amount"},

	{raffle.ErrUnauthorized, http.StatusForbidden, "unauthorized"},
	{raffle.ErrNotWinner, http.StatusForbidden, "not_winner"},

	{storage.ErrAccountNotFound, http.StatusNotFound, "not_found"},

	{raffle.ErrInsufficientFunds, http.StatusPaymentRequired, "insufficient_funds"},

	{raffle.ErrNotEnoughTicketsLeft, http.StatusConflict, "not_enough_tickets_left"},
	{raffle.ErrRaffleStillRunning, http.StatusConflict, "raffle_still_running"},
	{raffle.ErrRaffleEnded, http.StatusConflict, "raffle_ended"},
	{raffle.ErrWinnerNotDrawn, http.StatusConflict, "winner_not_drawn"},
	{raffle.ErrWinnersAlreadyDrawn, http.StatusConflict, "winner_already_drawn"},
	{raffle.ErrNoEntrants, http.StatusConflict, "no_entrants"},
	{raffle.ErrPrizeNotClaimed, http.StatusConflict, "prize_not_claimed"},
	{raffle.ErrPrizeAlreadyClaimed, http.StatusConflict, "prize_already_claimed"},
	{raffle.ErrLedgerMismatch, http.StatusConflict, "ledger_mismatch"},
	{raffle.ErrLedgerNotEmpty, http.StatusConflict, "ledger_not_empty"},
	{raffle.ErrLedgerTooSmall, http.StatusConflict, "ledger_too_small"},
	{program.ErrRaffleExists, http.StatusConflict, "raffle_exists"},
	{program.ErrNotProgramAccount, http.StatusConflict, "not_program_account"},
	{program.ErrNotWallet, http.StatusConflict, "not_wallet"},
	{storage.ErrConflict, http.StatusConflict, "storage_conflict"},

	{raffle.ErrArithmeticOverflow, http.StatusUnprocessableEntity, "arithmetic_overflow"},
}

type errorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

func statusFor(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, "internal"
}

func writeError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("request failed", zap.Error(err))
	}
	writeJSON(w, status, errorResponse{Code: code, Error: err.Error()})
}
