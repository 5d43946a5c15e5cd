package api

import (
	"net/http"

	"raffle/internal/amount"
	"raffle/internal/beacon"
	"raffle/internal/raffle"

	"github.com/go-chi/chi/v5"
)

func (s *Server) pathIdentity(r *http.Request) (raffle.Identity, error) {
	return identity("address", chi.URLParam(r, "address"))
}

func (s *Server) getBalance(w http.ResponseWriter, r *http.Request) {
	address, err := s.pathIdentity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	balance, err := s.program.Balance(r.Context(), address)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{Address: address.ToRaw(), Balance: amount.Format(balance)})
}

func (s *Server) postDeposit(w http.ResponseWriter, r *http.Request) {
	if !s.faucet {
		writeError(w, ErrFaucetDisabled)
		return
	}
	address, err := s.pathIdentity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req depositRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	nanos, err := amount.Parse(req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	balance, err := s.program.Deposit(r.Context(), address, nanos)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{Address: address.ToRaw(), Balance: amount.Format(balance)})
}

func (s *Server) postLedger(w http.ResponseWriter, r *http.Request) {
	var req ledgerRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	payer, err := identity("payer", req.Payer)
	if err != nil {
		writeError(w, err)
		return
	}

	ledger, err := s.program.ProvisionEntrants(r.Context(), payer, req.Capacity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, ledgerResponse{Ledger: ledger.ToRaw(), Capacity: req.Capacity})
}

func (s *Server) postRaffle(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	operator, err := identity("operator", req.Operator)
	if err != nil {
		writeError(w, err)
		return
	}
	ledger, err := identity("ledger", req.Ledger)
	if err != nil {
		writeError(w, err)
		return
	}
	price, err := amount.Parse(req.TicketPrice)
	if err != nil {
		writeError(w, err)
		return
	}

	created, err := s.program.CreateRaffle(r.Context(), operator, ledger, raffle.Params{
		EndTimestamp: req.EndTimestamp,
		TicketPrice:  price,
		Capacity:     req.Capacity,
		FeePercent:   req.FeePercent,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	summary, err := s.program.Summary(r.Context(), created.Address)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newRaffleResponse(summary))
}

func (s *Server) listRaffles(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.program.Raffles(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	resp := make([]raffleResponse, 0, len(summaries))
	for _, summary := range summaries {
		resp = append(resp, newRaffleResponse(summary))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) getRaffle(w http.ResponseWriter, r *http.Request) {
	address, err := s.pathIdentity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	summary, err := s.program.Summary(r.Context(), address)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newRaffleResponse(summary))
}

func (s *Server) getEntrants(w http.ResponseWriter, r *http.Request) {
	address, err := s.pathIdentity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	rec, err := s.program.Raffle(r.Context(), address)
	if err != nil {
		writeError(w, err)
		return
	}
	e, err := s.program.Entrants(r.Context(), rec.Entrants)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newEntrantsResponse(e))
}

// getHistory serves both the global and the per-raffle history.
func (s *Server) getHistory(w http.ResponseWriter, r *http.Request) {
	var address raffle.Identity
	if chi.URLParam(r, "address") != "" {
		var err error
		if address, err = s.pathIdentity(r); err != nil {
			writeError(w, err)
			return
		}
	}

	actions, err := s.program.History(r.Context(), address)
	if err != nil {
		writeError(w, err)
		return
	}
	resp := make([]actionResponse, 0, len(actions))
	for _, action := range actions {
		resp = append(resp, newActionResponse(action))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) postTickets(w http.ResponseWriter, r *http.Request) {
	address, err := s.pathIdentity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req buyRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	buyer, err := identity("buyer", req.Buyer)
	if err != nil {
		writeError(w, err)
		return
	}

	purchase, err := s.program.BuyTickets(r.Context(), address, buyer, req.Quantity)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, purchaseResponse{
		Buyer:      purchase.Buyer.ToRaw(),
		Quantity:   purchase.Quantity,
		FirstIndex: purchase.FirstIndex,
		Total:      amount.Format(purchase.Total),
		Fee:        amount.Format(purchase.Fee),
		Net:        amount.Format(purchase.Net),
	})
}

func (s *Server) postReveal(w http.ResponseWriter, r *http.Request) {
	address, err := s.pathIdentity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req revealRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	caller, err := identity("caller", req.Caller)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := drawResponse{}
	switch {
	case req.Randomness != nil:
		resp.Randomness = *req.Randomness
	case s.source != nil:
		randomness, seed, err := beacon.Randomness(r.Context(), s.source, address)
		if err != nil {
			writeError(w, err)
			return
		}
		resp.Randomness = randomness
		resp.Seed = seed.String()
	default:
		writeError(w, ErrNoBeacon)
		return
	}

	draw, err := s.program.RevealWinners(r.Context(), address, caller, resp.Randomness)
	if err != nil {
		writeError(w, err)
		return
	}
	resp.Index = draw.Index
	resp.Total = draw.Total
	resp.Winner = draw.Winner.ToRaw()
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) postClaim(w http.ResponseWriter, r *http.Request) {
	address, err := s.pathIdentity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req claimRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	caller, err := identity("caller", req.Caller)
	if err != nil {
		writeError(w, err)
		return
	}
	authority, err := identity("authority", req.Authority)
	if err != nil {
		writeError(w, err)
		return
	}

	settlement, err := s.program.ClaimPrize(r.Context(), address, caller, authority)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, settlementResponse{
		Winner:   settlement.Winner.ToRaw(),
		Operator: settlement.Operator.ToRaw(),
		Prize:    amount.Format(settlement.Prize),
		Fee:      amount.Format(settlement.Fee),
		Reserve:  amount.Format(settlement.Reserve),
	})
}

func (s *Server) postClose(w http.ResponseWriter, r *http.Request) {
	address, err := s.pathIdentity(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req closeRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	caller, err := identity("caller", req.Caller)
	if err != nil {
		writeError(w, err)
		return
	}

	reclaimed, err := s.program.CloseEntrants(r.Context(), address, caller)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, closeResponse{Reclaimed: amount.Format(reclaimed)})
}
