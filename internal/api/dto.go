package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"raffle/internal/amount"
	"raffle/internal/blockchain"
	"raffle/internal/program"
	"raffle/internal/raffle"
	"raffle/internal/storage"
)

// Amounts travel as decimal strings in whole units ("0.1"), identities in raw form ("0:<hex>").

type depositRequest struct {
	Amount string `json:"amount"`
}

type balanceResponse struct {
	Address string `json:"address"`
	Balance string `json:"balance"`
}

type ledgerRequest struct {
	Payer    string `json:"payer"`
	Capacity uint32 `json:"capacity"`
}

type ledgerResponse struct {
	Ledger   string `json:"ledger"`
	Capacity uint32 `json:"capacity"`
}

type createRequest struct {
	Operator     string `json:"operator"`
	Ledger       string `json:"ledger"`
	EndTimestamp int64  `json:"endTimestamp"`
	TicketPrice  string `json:"ticketPrice"`
	Capacity     uint32 `json:"capacity"`
	FeePercent   uint8  `json:"feePercent"`
}

type buyRequest struct {
	Buyer    string `json:"buyer"`
	Quantity uint32 `json:"quantity"`
}

type purchaseResponse struct {
	Buyer      string `json:"buyer"`
	Quantity   uint32 `json:"quantity"`
	FirstIndex uint32 `json:"firstIndex"`
	Total      string `json:"total"`
	Fee        string `json:"fee"`
	Net        string `json:"net"`
}

type revealRequest struct {
	Caller     string  `json:"caller"`
	Randomness *uint64 `json:"randomness,omitempty"`
}

type drawResponse struct {
	Index      uint32 `json:"index"`
	Total      uint32 `json:"total"`
	Winner     string `json:"winner"`
	Randomness uint64 `json:"randomness"`
	Seed       string `json:"seed,omitempty"`
}

type claimRequest struct {
	Caller    string `json:"caller"`
	Authority string `json:"authority"`
}

type settlementResponse struct {
	Winner   string `json:"winner"`
	Operator string `json:"operator"`
	Prize    string `json:"prize"`
	Fee      string `json:"fee"`
	Reserve  string `json:"reserve"`
}

type closeRequest struct {
	Caller string `json:"caller"`
}

type closeResponse struct {
	Reclaimed string `json:"reclaimed"`
}

type raffleResponse struct {
	Address        string  `json:"address"`
	Operator       string  `json:"operator"`
	Entrants       string  `json:"entrants"`
	EndTimestamp   int64   `json:"endTimestamp"`
	TicketPrice    string  `json:"ticketPrice"`
	FeePercent     uint8   `json:"feePercent"`
	AccumulatedFee string  `json:"accumulatedFee"`
	Winner         *uint32 `json:"winner,omitempty"`
	PrizeClaimed   bool    `json:"prizeClaimed"`
	Balance        string  `json:"balance"`
	Total          uint32  `json:"total"`
	Capacity       uint32  `json:"capacity"`
	Closed         bool    `json:"closed"`
}

type entrantsResponse struct {
	Ledger   string   `json:"ledger"`
	Total    uint32   `json:"total"`
	Capacity uint32   `json:"capacity"`
	Entries  []string `json:"entries"`
}

type actionResponse struct {
	ID       string `json:"id"`
	Type     string `json:"type"`
	Raffle   string `json:"raffle,omitempty"`
	Actor    string `json:"actor"`
	Amount   string `json:"amount"`
	Quantity uint32 `json:"quantity,omitempty"`
	UnixTime int64  `json:"unixTime"`
}

func newRaffleResponse(summary *program.Summary) raffleResponse {
	r := summary.Raffle
	resp := raffleResponse{
		Address:        r.Address.ToRaw(),
		Operator:       r.Operator.ToRaw(),
		Entrants:       r.Entrants.ToRaw(),
		EndTimestamp:   r.EndTimestamp,
		TicketPrice:    amount.Format(r.TicketPrice),
		FeePercent:     r.FeePercent,
		AccumulatedFee: amount.Format(r.AccumulatedFee),
		PrizeClaimed:   r.PrizeClaimed,
		Balance:        amount.Format(summary.Balance),
		Total:          summary.Total,
		Capacity:       summary.Capacity,
		Closed:         summary.Closed,
	}
	if index, drawn := r.Winner.Index(); drawn {
		resp.Winner = &index
	}
	return resp
}

func newEntrantsResponse(e *raffle.Entrants) entrantsResponse {
	entries := make([]string, 0, e.Total)
	for _, entrant := range e.Sold() {
		entries = append(entries, entrant.ToRaw())
	}
	return entrantsResponse{
		Ledger:   e.Address.ToRaw(),
		Total:    e.Total,
		Capacity: e.Capacity,
		Entries:  entries,
	}
}

func newActionResponse(action *storage.Action) actionResponse {
	return actionResponse{
		ID:       action.ID,
		Type:     action.ActionType,
		Raffle:   action.Raffle,
		Actor:    action.Actor,
		Amount:   amount.Format(action.Amount),
		Quantity: action.Quantity,
		UnixTime: action.UnixTime,
	}
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return nil
}

func identity(field, value string) (raffle.Identity, error) {
	id, err := blockchain.ParseIdentity(value)
	if err != nil {
		return raffle.Identity{}, fmt.Errorf("%w: %s: %v", ErrBadRequest, field, err)
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
