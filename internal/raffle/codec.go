package raffle

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"raffle/internal/blockchain"
)

// raffle record layout, little endian:
//
//	[0:8)     discriminator
//	[8:44)    operator
//	[44:80)   entrants ledger
//	[80:88)   end timestamp
//	[88:96)   accumulated fee
//	[96:104)  ticket price
//	[104]     fee percent
//	[105]     prize claimed
//	[106]     winner tag
//	[107:111) winner index
//	[111:136) reserved
const (
	offOperator       = DiscriminatorSize
	offEntrants       = offOperator + IdentitySize
	offEndTimestamp   = offEntrants + IdentitySize
	offAccumulatedFee = offEndTimestamp + 8
	offTicketPrice    = offAccumulatedFee + 8
	offFeePercent     = offTicketPrice + 8
	offPrizeClaimed   = offFeePercent + 1
	offWinnerTag      = offPrizeClaimed + 1
	offWinnerIndex    = offWinnerTag + 1
)

func EncodeRaffle(r *Raffle) []byte {
	buf := make([]byte, RaffleRecordSize)
	copy(buf, raffleDiscriminator[:])
	blockchain.PutIdentity(buf[offOperator:], r.Operator)
	blockchain.PutIdentity(buf[offEntrants:], r.Entrants)
	binary.LittleEndian.PutUint64(buf[offEndTimestamp:], uint64(r.EndTimestamp))
	binary.LittleEndian.PutUint64(buf[offAccumulatedFee:], r.AccumulatedFee)
	binary.LittleEndian.PutUint64(buf[offTicketPrice:], r.TicketPrice)
	buf[offFeePercent] = r.FeePercent
	if r.PrizeClaimed {
		buf[offPrizeClaimed] = 1
	}
	if index, drawn := r.Winner.Index(); drawn {
		buf[offWinnerTag] = 1
		binary.LittleEndian.PutUint32(buf[offWinnerIndex:], index)
	}
	return buf
}

func DecodeRaffle(address Identity, data []byte) (*Raffle, error) {
	if len(data) < RaffleRecordSize || !bytes.Equal(data[:DiscriminatorSize], raffleDiscriminator[:]) {
		return nil, fmt.Errorf("decode raffle %s: %w", address.ToRaw(), ErrInvalidAccountData)
	}
	r := &Raffle{
		Address:        address,
		Operator:       blockchain.ReadIdentity(data[offOperator:]),
		Entrants:       blockchain.ReadIdentity(data[offEntrants:]),
		EndTimestamp:   int64(binary.LittleEndian.Uint64(data[offEndTimestamp:])),
		AccumulatedFee: binary.LittleEndian.Uint64(data[offAccumulatedFee:]),
		TicketPrice:    binary.LittleEndian.Uint64(data[offTicketPrice:]),
		FeePercent:     data[offFeePercent],
	}
	switch data[offPrizeClaimed] {
	case 0:
	case 1:
		r.PrizeClaimed = true
	default:
		return nil, fmt.Errorf("decode raffle %s: claimed flag %d: %w", address.ToRaw(), data[offPrizeClaimed], ErrInvalidAccountData)
	}
	switch data[offWinnerTag] {
	case 0:
	case 1:
		r.Winner = Drawn(binary.LittleEndian.Uint32(data[offWinnerIndex:]))
	default:
		return nil, fmt.Errorf("decode raffle %s: winner tag %d: %w", address.ToRaw(), data[offWinnerTag], ErrInvalidAccountData)
	}
	if r.TicketPrice == 0 || r.FeePercent > percentDenominator {
		return nil, fmt.Errorf("decode raffle %s: %w", address.ToRaw(), ErrInvalidAccountData)
	}
	return r, nil
}

func EncodeEntrants(e *Entrants) []byte {
	buf := make([]byte, EntrantsSize(e.Capacity))
	copy(buf, entrantsDiscriminator[:])
	binary.LittleEndian.PutUint32(buf[DiscriminatorSize:], e.Total)
	binary.LittleEndian.PutUint32(buf[DiscriminatorSize+4:], e.Capacity)
	for i, entry := range e.Sold() {
		blockchain.PutIdentity(buf[EntrantsHeaderSize+i*IdentitySize:], entry)
	}
	return buf
}

func DecodeEntrants(address Identity, data []byte) (*Entrants, error) {
	if len(data) < EntrantsHeaderSize || !bytes.Equal(data[:DiscriminatorSize], entrantsDiscriminator[:]) {
		return nil, fmt.Errorf("decode entrants %s: %w", address.ToRaw(), ErrInvalidAccountData)
	}
	total := binary.LittleEndian.Uint32(data[DiscriminatorSize:])
	capacity := binary.LittleEndian.Uint32(data[DiscriminatorSize+4:])
	if capacity == 0 || capacity > MaxCapacity || total > capacity || len(data) < EntrantsSize(capacity) {
		return nil, fmt.Errorf("decode entrants %s: total %d capacity %d: %w", address.ToRaw(), total, capacity, ErrInvalidAccountData)
	}
	e := NewEntrants(address, capacity)
	e.Total = total
	for i := range int(total) {
		e.Entries[i] = blockchain.ReadIdentity(data[EntrantsHeaderSize+i*IdentitySize:])
	}
	return e, nil
}

// IsUninitialized reports whether an account has never been written by this program.
func IsUninitialized(data []byte) bool {
	if len(data) < DiscriminatorSize {
		return true
	}
	var zero [DiscriminatorSize]byte
	return bytes.Equal(data[:DiscriminatorSize], zero[:])
}
