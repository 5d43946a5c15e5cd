package program

import (
	"fmt"

	"raffle/internal/blockchain"
	"raffle/internal/raffle"
	"raffle/internal/storage"
)

func (p *Program) programAccount(txn storage.Txn, address raffle.Identity, kind storage.AccountKind) (*storage.Account, error) {
	acct, err := txn.GetAccount(address.ToRaw())
	if err != nil {
		return nil, fmt.Errorf("%s %w", kind, err)
	}
	if acct.Kind != kind || acct.Owner != p.programID.ToRaw() {
		return nil, fmt.Errorf("%s %s: %w", kind, address.ToRaw(), ErrNotProgramAccount)
	}
	return acct, nil
}

func (p *Program) loadRaffle(txn storage.Txn, address raffle.Identity) (*raffle.Raffle, error) {
	acct, err := p.programAccount(txn, address, storage.RaffleAccountKind)
	if err != nil {
		return nil, err
	}
	r, err := raffle.DecodeRaffle(address, acct.Data)
	if err != nil {
		return nil, err
	}
	if blockchain.DeriveRaffleAddress(p.programID, r.Entrants) != address {
		return nil, fmt.Errorf("raffle %s: %w", address.ToRaw(), raffle.ErrLedgerMismatch)
	}
	return r, nil
}

func (p *Program) loadEntrants(txn storage.Txn, ledger raffle.Identity) (*raffle.Entrants, error) {
	acct, err := p.programAccount(txn, ledger, storage.EntrantsAccountKind)
	if err != nil {
		return nil, err
	}
	return raffle.DecodeEntrants(ledger, acct.Data)
}

// loadPair reads a raffle and its ledger, verifying the pairing.
func (p *Program) loadPair(txn storage.Txn, address raffle.Identity) (*raffle.Raffle, *raffle.Entrants, error) {
	r, err := p.loadRaffle(txn, address)
	if err != nil {
		return nil, nil, err
	}
	e, err := p.loadEntrants(txn, r.Entrants)
	if err != nil {
		return nil, nil, err
	}
	return r, e, nil
}

// saveRaffle re-reads the account so balance changes made by the bank are kept.
func saveRaffle(txn storage.Txn, r *raffle.Raffle) error {
	acct, err := txn.GetAccount(r.Address.ToRaw())
	if err != nil {
		return err
	}
	acct.Data = raffle.EncodeRaffle(r)
	return txn.PutAccount(acct)
}

// saveEntrants writes the ledger into its existing allocation.
func saveEntrants(txn storage.Txn, e *raffle.Entrants) error {
	acct, err := txn.GetAccount(e.Address.ToRaw())
	if err != nil {
		return err
	}
	encoded := raffle.EncodeEntrants(e)
	if len(acct.Data) < len(encoded) {
		return raffle.ErrLedgerTooSmall
	}
	data := make([]byte, len(acct.Data))
	copy(data, encoded)
	acct.Data = data
	return txn.PutAccount(acct)
}
