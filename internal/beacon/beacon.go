package beacon

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"

	"raffle/internal/blockchain"

	"github.com/tonkeeper/tongo/liteapi"
	"github.com/tonkeeper/tongo/ton"
	"golang.org/x/crypto/sha3"
)

const (
	StaticSourceName  = "static"
	RandomSourceName  = "random"
	LiteapiSourceName = "liteapi"
	TonapiSourceName  = "tonapi"
)

var ErrUnknownSource = errors.New("unknown randomness source")

// Seed is 32 bytes of entropy published by the hosting environment, typically a block hash.
type Seed [32]byte

func (s Seed) String() string {
	return hex.EncodeToString(s[:])
}

func ParseSeed(value string) (Seed, error) {
	var seed Seed
	raw, err := hex.DecodeString(value)
	if err != nil {
		return seed, fmt.Errorf("parse seed: %w", err)
	}
	if len(raw) != len(seed) {
		return seed, fmt.Errorf("parse seed: want %d bytes, got %d", len(seed), len(raw))
	}
	copy(seed[:], raw)
	return seed, nil
}

type Source interface {
	Name() string
	Seed(ctx context.Context) (Seed, error)
}

// Derive reduces a seed to the randomness value for one raffle: the little-endian head of
// Keccak-256(seed || raffle). Salting by raffle keeps draws in the same block independent.
func Derive(seed Seed, raffle ton.AccountID) uint64 {
	h := sha3.NewLegacyKeccak256()
	h.Write(seed[:])
	h.Write(blockchain.EncodeIdentity(raffle))
	return binary.LittleEndian.Uint64(h.Sum(nil)[:8])
}

// Randomness fetches a fresh seed and derives the value for raffle.
func Randomness(ctx context.Context, source Source, raffle ton.AccountID) (uint64, Seed, error) {
	seed, err := source.Seed(ctx)
	if err != nil {
		return 0, Seed{}, fmt.Errorf("%s seed: %w", source.Name(), err)
	}
	return Derive(seed, raffle), seed, nil
}

type StaticSource struct {
	seed Seed
}

func NewStaticSource(seed Seed) *StaticSource {
	return &StaticSource{seed: seed}
}

func (s *StaticSource) Name() string {
	return StaticSourceName
}

func (s *StaticSource) Seed(context.Context) (Seed, error) {
	return s.seed, nil
}

// RandomSource draws seeds from the operating system. Useful for local runs without network access.
type RandomSource struct{}

func (RandomSource) Name() string {
	return RandomSourceName
}

func (RandomSource) Seed(context.Context) (Seed, error) {
	var seed Seed
	_, err := rand.Read(seed[:])
	return seed, err
}

// Open builds the source registered under name.
func Open(name string, tonapiToken string, staticSeed string) (Source, error) {
	switch name {
	case StaticSourceName:
		seed, err := ParseSeed(staticSeed)
		if err != nil {
			return nil, err
		}
		return NewStaticSource(seed), nil
	case RandomSourceName:
		return RandomSource{}, nil
	case LiteapiSourceName:
		client, err := liteapi.NewClientWithDefaultMainnet()
		if err != nil {
			return nil, fmt.Errorf("liteapi client: %w", err)
		}
		return NewLiteapiSource(client), nil
	case TonapiSourceName:
		client, err := NewTonapiClient(tonapiToken)
		if err != nil {
			return nil, fmt.Errorf("tonapi client: %w", err)
		}
		return NewTonapiSource(client), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, name)
	}
}
