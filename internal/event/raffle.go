package event

import "github.com/tonkeeper/tongo/ton"

const (
	RaffleCreatedEventType    EventType = "raffle.created"
	TicketsPurchasedEventType EventType = "raffle.tickets_purchased"
	WinnerRevealedEventType   EventType = "raffle.winner_revealed"
	PrizeClaimedEventType     EventType = "raffle.prize_claimed"
	EntrantsClosedEventType   EventType = "raffle.entrants_closed"
)

type RaffleCreatedEvent struct {
	Raffle       ton.AccountID
	Operator     ton.AccountID
	Entrants     ton.AccountID
	EndTimestamp int64
	TicketPrice  uint64
	Capacity     uint32
	FeePercent   uint8
}

type TicketsPurchasedEvent struct {
	Raffle     ton.AccountID
	Buyer      ton.AccountID
	Quantity   uint32
	FirstIndex uint32
	Net        uint64
	Fee        uint64
}

type WinnerRevealedEvent struct {
	Raffle ton.AccountID
	Index  uint32
	Total  uint32
}

type PrizeClaimedEvent struct {
	Raffle ton.AccountID
	Winner ton.AccountID
	Prize  uint64
	Fee    uint64
}

type EntrantsClosedEvent struct {
	Raffle    ton.AccountID
	Entrants  ton.AccountID
	Reclaimed uint64
}
