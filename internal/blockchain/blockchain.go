package blockchain

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/tonkeeper/tongo/ton"
)

// RaffleSeed prefixes the derivation of a raffle address from its ledger.
const RaffleSeed = "raffle"

// IdentitySize is the persisted width of an account id: workchain + address.
const IdentitySize = 4 + 32

var ErrZeroIdentity = errors.New("identity must not be the zero account")

// DefaultProgramID owns raffle and ledger accounts unless configured otherwise.
var DefaultProgramID = ton.AccountID{
	Workchain: 0,
	Address:   sha256.Sum256([]byte("raffle-program")),
}

// ParseIdentity accepts raw ("0:abcd...") and user-friendly account ids.
func ParseIdentity(value string) (ton.AccountID, error) {
	accountID, err := ton.ParseAccountID(value)
	if err != nil {
		return ton.AccountID{}, fmt.Errorf("parse identity %q: %w", value, err)
	}
	if IsZero(accountID) {
		return ton.AccountID{}, ErrZeroIdentity
	}
	return accountID, nil
}

func IsZero(accountID ton.AccountID) bool {
	return accountID == ton.AccountID{}
}

// NewIdentity returns a random basechain account id, used for freshly provisioned ledgers.
func NewIdentity() (ton.AccountID, error) {
	var accountID ton.AccountID
	if _, err := rand.Read(accountID.Address[:]); err != nil {
		return ton.AccountID{}, err
	}
	return accountID, nil
}

// DeriveRaffleAddress binds a raffle to exactly one ledger: the same ledger always maps
// to the same raffle address under a given program.
func DeriveRaffleAddress(programID ton.AccountID, ledger ton.AccountID) ton.AccountID {
	h := sha256.New()
	h.Write([]byte(RaffleSeed))
	h.Write(EncodeIdentity(ledger))
	h.Write(EncodeIdentity(programID))

	var derived ton.AccountID
	derived.Workchain = programID.Workchain
	copy(derived.Address[:], h.Sum(nil))
	return derived
}

func EncodeIdentity(accountID ton.AccountID) []byte {
	buf := make([]byte, IdentitySize)
	PutIdentity(buf, accountID)
	return buf
}

func PutIdentity(buf []byte, accountID ton.AccountID) {
	binary.LittleEndian.PutUint32(buf[0:4], uint32(accountID.Workchain))
	copy(buf[4:IdentitySize], accountID.Address[:])
}

func ReadIdentity(buf []byte) ton.AccountID {
	var accountID ton.AccountID
	accountID.Workchain = int32(binary.LittleEndian.Uint32(buf[0:4]))
	copy(accountID.Address[:], buf[4:IdentitySize])
	return accountID
}
