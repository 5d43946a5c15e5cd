package raffle_test

import (
	"math"
	"testing"

	"raffle/internal/blockchain"
	"raffle/internal/raffle"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	start      = int64(1_700_000_000)
	price      = uint64(100_000_000)
	feePercent = uint8(10)
)

type memBank map[raffle.Identity]uint64

func (b memBank) Balance(account raffle.Identity) (uint64, error) {
	return b[account], nil
}

func (b memBank) Transfer(from, to raffle.Identity, amount uint64) error {
	if b[from] < amount {
		return raffle.ErrInsufficientFunds
	}
	b[from] -= amount
	b[to] += amount
	return nil
}

func (b memBank) Payout(from, to raffle.Identity, amount uint64) error {
	return b.Transfer(from, to, amount)
}

func identity(t *testing.T) raffle.Identity {
	t.Helper()
	id, err := blockchain.NewIdentity()
	require.NoError(t, err)
	return id
}

type fixture struct {
	env      raffle.Env
	bank     memBank
	operator raffle.Identity
	raffle   *raffle.Raffle
	entrants *raffle.Entrants
	reserve  uint64
}

func newFixture(t *testing.T, capacity uint32) *fixture {
	t.Helper()
	env := raffle.Env{UnixTimestamp: start, Rent: raffle.DefaultRent()}
	operator := identity(t)
	ledger := identity(t)
	address := blockchain.DeriveRaffleAddress(blockchain.DefaultProgramID, ledger)

	r, e, err := raffle.CreateRaffle(env, address, operator, ledger, make([]byte, raffle.EntrantsSize(capacity)), raffle.Params{
		EndTimestamp: start + 10,
		TicketPrice:  price,
		Capacity:     capacity,
		FeePercent:   feePercent,
	})
	require.NoError(t, err)

	reserve, err := env.Rent.MinimumBalance(raffle.RaffleRecordSize)
	require.NoError(t, err)
	bank := memBank{address: reserve}
	return &fixture{env: env, bank: bank, operator: operator, raffle: r, entrants: e, reserve: reserve}
}

func (f *fixture) funded(t *testing.T, amount uint64) raffle.Identity {
	t.Helper()
	id := identity(t)
	f.bank[id] = amount
	return id
}

func (f *fixture) after() raffle.Env {
	env := f.env
	env.UnixTimestamp = f.raffle.EndTimestamp + env.TimeBuffer
	return env
}

func TestParamsValidate(t *testing.T) {
	valid := raffle.Params{EndTimestamp: start + 1, TicketPrice: 1, Capacity: 1, FeePercent: 0}
	require.NoError(t, valid.Validate(start))

	cases := []struct {
		name   string
		mutate func(p *raffle.Params)
		err    error
	}{
		{"zero price", func(p *raffle.Params) { p.TicketPrice = 0 }, raffle.ErrInvalidTicketPrice},
		{"zero capacity", func(p *raffle.Params) { p.Capacity = 0 }, raffle.ErrInvalidMaxEntrants},
		{"capacity over max", func(p *raffle.Params) { p.Capacity = raffle.MaxCapacity + 1 }, raffle.ErrInvalidMaxEntrants},
		{"end now", func(p *raffle.Params) { p.EndTimestamp = start }, raffle.ErrInvalidEndTimestamp},
		{"end past", func(p *raffle.Params) { p.EndTimestamp = start - 1 }, raffle.ErrInvalidEndTimestamp},
		{"fee over 100", func(p *raffle.Params) { p.FeePercent = 101 }, raffle.ErrInvalidFeePercent},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := valid
			tc.mutate(&p)
			require.ErrorIs(t, p.Validate(start), tc.err)
		})
	}

	maxed := valid
	maxed.Capacity = raffle.MaxCapacity
	maxed.FeePercent = 100
	require.NoError(t, maxed.Validate(start))
}

func TestCreateRaffleLedgerChecks(t *testing.T) {
	env := raffle.Env{UnixTimestamp: start}
	operator, ledger := identity(t), identity(t)
	params := raffle.Params{EndTimestamp: start + 10, TicketPrice: price, Capacity: 4}

	_, _, err := raffle.CreateRaffle(env, identity(t), operator, ledger, make([]byte, raffle.EntrantsSize(3)), params)
	require.ErrorIs(t, err, raffle.ErrLedgerTooSmall)

	used := raffle.EncodeEntrants(raffle.NewEntrants(ledger, 4))
	_, _, err = raffle.CreateRaffle(env, identity(t), operator, ledger, used, params)
	require.ErrorIs(t, err, raffle.ErrLedgerNotEmpty)

	r, e, err := raffle.CreateRaffle(env, identity(t), operator, ledger, make([]byte, raffle.EntrantsSize(4)), params)
	require.NoError(t, err)
	assert.Zero(t, r.AccumulatedFee)
	assert.False(t, r.Winner.IsDrawn())
	assert.False(t, r.PrizeClaimed)
	assert.Equal(t, uint32(0), e.Total)
	assert.Equal(t, uint32(4), e.Capacity)
	assert.Len(t, e.Entries, 4)
}

func TestSplitFee(t *testing.T) {
	split, err := raffle.SplitFee(price, 3, feePercent)
	require.NoError(t, err)
	assert.Equal(t, uint64(300_000_000), split.Total)
	assert.Equal(t, uint64(30_000_000), split.Fee)
	assert.Equal(t, uint64(270_000_000), split.Net)

	split, err = raffle.SplitFee(7, 1, 33)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), split.Fee)
	assert.Equal(t, uint64(5), split.Net)

	_, err = raffle.SplitFee(math.MaxUint64, 2, 0)
	require.ErrorIs(t, err, raffle.ErrArithmeticOverflow)

	_, err = raffle.SplitFee(math.MaxUint64/2, 1, 10)
	require.ErrorIs(t, err, raffle.ErrArithmeticOverflow)
}

func TestBuyTicketsSplitsFee(t *testing.T) {
	f := newFixture(t, 100)
	buyer := f.funded(t, 1_000_000_000)

	purchase, err := f.raffle.BuyTickets(f.env, f.bank, f.entrants, buyer, 3)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), purchase.FirstIndex)
	assert.Equal(t, uint64(30_000_000), purchase.Fee)

	assert.Equal(t, f.reserve+270_000_000, f.bank[f.raffle.Address])
	assert.Equal(t, uint64(730_000_000), f.bank[buyer])
	assert.Equal(t, uint64(30_000_000), f.raffle.AccumulatedFee)
	assert.Equal(t, uint32(3), f.entrants.Total)
	assert.Equal(t, []raffle.Identity{buyer, buyer, buyer}, f.entrants.Sold())

	other := f.funded(t, 1_000_000_000)
	purchase, err = f.raffle.BuyTickets(f.env, f.bank, f.entrants, other, 2)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), purchase.FirstIndex)
	assert.Equal(t, uint64(50_000_000), f.raffle.AccumulatedFee)
	assert.Equal(t, uint32(2), f.entrants.Tickets(other))
}

func TestBuyTicketsCapacity(t *testing.T) {
	f := newFixture(t, 5)
	buyer := f.funded(t, 10*price)

	_, err := f.raffle.BuyTickets(f.env, f.bank, f.entrants, buyer, 4)
	require.NoError(t, err)

	balance := f.bank[buyer]
	_, err = f.raffle.BuyTickets(f.env, f.bank, f.entrants, buyer, 2)
	require.ErrorIs(t, err, raffle.ErrNotEnoughTicketsLeft)
	assert.Equal(t, uint32(4), f.entrants.Total)
	assert.Equal(t, balance, f.bank[buyer])

	_, err = f.raffle.BuyTickets(f.env, f.bank, f.entrants, buyer, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(0), f.entrants.Remaining())

	_, err = f.raffle.BuyTickets(f.env, f.bank, f.entrants, buyer, 1)
	require.ErrorIs(t, err, raffle.ErrNotEnoughTicketsLeft)
}

func TestBuyTicketsRejections(t *testing.T) {
	f := newFixture(t, 10)
	buyer := f.funded(t, price)

	_, err := f.raffle.BuyTickets(f.env, f.bank, f.entrants, buyer, 0)
	require.ErrorIs(t, err, raffle.ErrInvalidQuantity)

	_, err = f.raffle.BuyTickets(f.env, f.bank, f.entrants, buyer, 2)
	require.ErrorIs(t, err, raffle.ErrInsufficientFunds)
	assert.Zero(t, f.entrants.Total)
	assert.Zero(t, f.raffle.AccumulatedFee)

	_, err = f.raffle.BuyTickets(f.env, f.bank, f.entrants, raffle.Identity{}, 1)
	require.ErrorIs(t, err, raffle.ErrInvalidIdentity)

	late := f.env
	late.UnixTimestamp = f.raffle.EndTimestamp + 1
	_, err = f.raffle.BuyTickets(late, f.bank, f.entrants, buyer, 1)
	require.ErrorIs(t, err, raffle.ErrRaffleEnded)

	_, err = f.raffle.BuyTickets(f.env, f.bank, raffle.NewEntrants(identity(t), 10), buyer, 1)
	require.ErrorIs(t, err, raffle.ErrLedgerMismatch)
}

func TestBuyTicketsRejectsOverfilledLedger(t *testing.T) {
	f := newFixture(t, 3)
	buyer := f.funded(t, 10*price)
	f.entrants.Total = f.entrants.Capacity + 1

	_, err := f.raffle.BuyTickets(f.env, f.bank, f.entrants, buyer, 1)
	require.ErrorIs(t, err, raffle.ErrNotEnoughTicketsLeft)
	assert.Equal(t, uint32(4), f.entrants.Total)
	assert.Zero(t, f.raffle.AccumulatedFee)
}

func TestRevealWinners(t *testing.T) {
	f := newFixture(t, 10)
	buyer := f.funded(t, 10*price)

	_, err := f.raffle.RevealWinners(f.after(), f.entrants, f.operator, 7)
	require.ErrorIs(t, err, raffle.ErrNoEntrants)

	_, err = f.raffle.BuyTickets(f.env, f.bank, f.entrants, buyer, 5)
	require.NoError(t, err)

	_, err = f.raffle.RevealWinners(f.env, f.entrants, f.operator, 7)
	require.ErrorIs(t, err, raffle.ErrRaffleStillRunning)

	_, err = f.raffle.RevealWinners(f.after(), f.entrants, buyer, 7)
	require.ErrorIs(t, err, raffle.ErrUnauthorized)

	index, err := f.raffle.RevealWinners(f.after(), f.entrants, f.operator, 7)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), index)
	drawn, ok := f.raffle.Winner.Index()
	require.True(t, ok)
	assert.Equal(t, uint32(2), drawn)

	_, err = f.raffle.RevealWinners(f.after(), f.entrants, f.operator, 8)
	require.ErrorIs(t, err, raffle.ErrWinnersAlreadyDrawn)
	assert.Equal(t, raffle.Drawn(2), f.raffle.Winner)

	_, err = f.raffle.BuyTickets(f.env, f.bank, f.entrants, buyer, 1)
	require.ErrorIs(t, err, raffle.ErrRaffleEnded)
}

func TestRevealHonoursTimeBuffer(t *testing.T) {
	f := newFixture(t, 10)
	f.env.TimeBuffer = 30
	buyer := f.funded(t, price)
	_, err := f.raffle.BuyTickets(f.env, f.bank, f.entrants, buyer, 1)
	require.NoError(t, err)

	env := f.env
	env.UnixTimestamp = f.raffle.EndTimestamp + 29
	_, err = f.raffle.RevealWinners(env, f.entrants, f.operator, 0)
	require.ErrorIs(t, err, raffle.ErrRaffleStillRunning)

	_, err = f.raffle.RevealWinners(f.after(), f.entrants, f.operator, math.MaxUint64)
	require.NoError(t, err)
}

func TestClaimPrizeSettles(t *testing.T) {
	f := newFixture(t, 100)
	alice := f.funded(t, 1_000_000_000)
	bob := f.funded(t, 1_000_000_000)

	_, err := f.raffle.BuyTickets(f.env, f.bank, f.entrants, alice, 3)
	require.NoError(t, err)
	_, err = f.raffle.BuyTickets(f.env, f.bank, f.entrants, bob, 2)
	require.NoError(t, err)

	_, err = f.raffle.ClaimPrize(f.after(), f.bank, f.entrants, alice, f.operator)
	require.ErrorIs(t, err, raffle.ErrWinnerNotDrawn)

	// 4 mod 5 lands on bob's second ticket
	_, err = f.raffle.RevealWinners(f.after(), f.entrants, f.operator, 4)
	require.NoError(t, err)

	_, err = f.raffle.ClaimPrize(f.after(), f.bank, f.entrants, alice, f.operator)
	require.ErrorIs(t, err, raffle.ErrNotWinner)

	_, err = f.raffle.ClaimPrize(f.after(), f.bank, f.entrants, bob, alice)
	require.ErrorIs(t, err, raffle.ErrUnauthorized)

	bobBefore := f.bank[bob]
	settlement, err := f.raffle.ClaimPrize(f.after(), f.bank, f.entrants, bob, f.operator)
	require.NoError(t, err)

	assert.Equal(t, uint64(400_000_000), settlement.Prize)
	assert.Equal(t, uint64(50_000_000), settlement.Fee)
	assert.Equal(t, f.reserve, settlement.Reserve)
	assert.Equal(t, f.reserve, f.bank[f.raffle.Address])
	assert.Equal(t, bobBefore+settlement.Prize, f.bank[bob])
	assert.Equal(t, uint64(50_000_000), f.bank[f.operator])
	assert.True(t, f.raffle.PrizeClaimed)

	_, err = f.raffle.ClaimPrize(f.after(), f.bank, f.entrants, bob, f.operator)
	require.ErrorIs(t, err, raffle.ErrPrizeAlreadyClaimed)
}

func TestClaimPrizeFailsClosedOnShortBalance(t *testing.T) {
	f := newFixture(t, 10)
	buyer := f.funded(t, price)
	_, err := f.raffle.BuyTickets(f.env, f.bank, f.entrants, buyer, 1)
	require.NoError(t, err)
	_, err = f.raffle.RevealWinners(f.after(), f.entrants, f.operator, 0)
	require.NoError(t, err)

	f.bank[f.raffle.Address] = f.reserve
	_, err = f.raffle.ClaimPrize(f.after(), f.bank, f.entrants, buyer, f.operator)
	require.ErrorIs(t, err, raffle.ErrArithmeticOverflow)
	assert.False(t, f.raffle.PrizeClaimed)
}

func TestCloseEntrants(t *testing.T) {
	f := newFixture(t, 10)
	ledgerRent, err := f.env.Rent.MinimumBalance(raffle.EntrantsSize(10))
	require.NoError(t, err)
	f.bank[f.entrants.Address] = ledgerRent

	buyer := f.funded(t, price)
	_, err = f.raffle.BuyTickets(f.env, f.bank, f.entrants, buyer, 1)
	require.NoError(t, err)

	_, err = f.raffle.CloseEntrants(f.after(), f.bank, f.entrants, buyer)
	require.ErrorIs(t, err, raffle.ErrUnauthorized)

	_, err = f.raffle.CloseEntrants(f.env, f.bank, f.entrants, f.operator)
	require.ErrorIs(t, err, raffle.ErrRaffleStillRunning)

	_, err = f.raffle.CloseEntrants(f.after(), f.bank, f.entrants, f.operator)
	require.ErrorIs(t, err, raffle.ErrWinnerNotDrawn)

	_, err = f.raffle.RevealWinners(f.after(), f.entrants, f.operator, 0)
	require.NoError(t, err)

	_, err = f.raffle.CloseEntrants(f.after(), f.bank, f.entrants, f.operator)
	require.ErrorIs(t, err, raffle.ErrPrizeNotClaimed)

	_, err = f.raffle.ClaimPrize(f.after(), f.bank, f.entrants, buyer, f.operator)
	require.NoError(t, err)
	operatorBefore := f.bank[f.operator]

	reclaimed, err := f.raffle.CloseEntrants(f.after(), f.bank, f.entrants, f.operator)
	require.NoError(t, err)
	assert.Equal(t, ledgerRent, reclaimed)
	assert.Zero(t, f.bank[f.entrants.Address])
	assert.Equal(t, operatorBefore+ledgerRent, f.bank[f.operator])
}

func TestRentMinimumBalance(t *testing.T) {
	rent := raffle.DefaultRent()
	minimum, err := rent.MinimumBalance(raffle.RaffleRecordSize)
	require.NoError(t, err)
	assert.Equal(t, uint64((128+136)*3480*2), minimum)

	_, err = raffle.Rent{NanosPerByteYear: math.MaxUint64, ExemptionYears: 2}.MinimumBalance(0)
	require.ErrorIs(t, err, raffle.ErrArithmeticOverflow)
}
