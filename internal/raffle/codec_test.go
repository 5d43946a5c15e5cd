package raffle_test

import (
	"testing"

	"raffle/internal/raffle"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRaffleRecordLayout(t *testing.T) {
	r := &raffle.Raffle{
		Address:        identity(t),
		Operator:       identity(t),
		Entrants:       identity(t),
		EndTimestamp:   start,
		TicketPrice:    price,
		FeePercent:     100,
		AccumulatedFee: 42,
		Winner:         raffle.Drawn(7),
		PrizeClaimed:   true,
	}

	data := raffle.EncodeRaffle(r)
	require.Len(t, data, raffle.RaffleRecordSize)
	assert.False(t, raffle.IsUninitialized(data))

	decoded, err := raffle.DecodeRaffle(r.Address, data)
	require.NoError(t, err)
	assert.Equal(t, r, decoded)

	r.Winner = raffle.WinnerSelection{}
	r.PrizeClaimed = false
	decoded, err = raffle.DecodeRaffle(r.Address, raffle.EncodeRaffle(r))
	require.NoError(t, err)
	assert.False(t, decoded.Winner.IsDrawn())
}

func TestDecodeRejectsForeignData(t *testing.T) {
	address := identity(t)

	_, err := raffle.DecodeRaffle(address, make([]byte, raffle.RaffleRecordSize))
	require.ErrorIs(t, err, raffle.ErrInvalidAccountData)

	ledger := raffle.EncodeEntrants(raffle.NewEntrants(address, 3))
	_, err = raffle.DecodeRaffle(address, ledger)
	require.ErrorIs(t, err, raffle.ErrInvalidAccountData)

	_, err = raffle.DecodeEntrants(address, ledger[:raffle.EntrantsSize(2)])
	require.ErrorIs(t, err, raffle.ErrInvalidAccountData)
}

func TestEntrantsLedgerLayout(t *testing.T) {
	address := identity(t)
	buyer := identity(t)
	e := raffle.NewEntrants(address, 4)
	require.NoError(t, e.Append(buyer))
	require.NoError(t, e.Append(buyer))

	data := raffle.EncodeEntrants(e)
	require.Len(t, data, raffle.EntrantsSize(4))

	decoded, err := raffle.DecodeEntrants(address, data)
	require.NoError(t, err)
	assert.Equal(t, e, decoded)

	holder, ok := decoded.Entry(1)
	require.True(t, ok)
	assert.Equal(t, buyer, holder)
	_, ok = decoded.Entry(2)
	assert.False(t, ok)
}
