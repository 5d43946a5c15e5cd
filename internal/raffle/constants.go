package raffle

import (
	"crypto/sha256"

	"raffle/internal/blockchain"
)

// MaxCapacity is the hard ceiling on tickets a single ledger can hold.
const MaxCapacity = 1000

const (
	DiscriminatorSize = 8

	// RaffleRecordSize is the fixed allocation of a raffle account, padding included.
	RaffleRecordSize = DiscriminatorSize + 128

	// EntrantsHeaderSize covers discriminator, total and capacity.
	EntrantsHeaderSize = DiscriminatorSize + 4 + 4

	IdentitySize = blockchain.IdentitySize
)

const percentDenominator = 100

var (
	raffleDiscriminator   = discriminator("account:Raffle")
	entrantsDiscriminator = discriminator("account:Entrants")
)

func discriminator(name string) [DiscriminatorSize]byte {
	var out [DiscriminatorSize]byte
	sum := sha256.Sum256([]byte(name))
	copy(out[:], sum[:DiscriminatorSize])
	return out
}

// EntrantsSize is the number of bytes a ledger of the given capacity occupies.
func EntrantsSize(capacity uint32) int {
	return EntrantsHeaderSize + int(capacity)*IdentitySize
}
