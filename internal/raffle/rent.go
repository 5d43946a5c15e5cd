package raffle

// AccountStorageOverhead is charged on top of every account's data length.
const AccountStorageOverhead = 128

// Rent prices account storage. An account holding at least MinimumBalance is never reclaimed.
type Rent struct {
	NanosPerByteYear uint64 `yaml:"nanosPerByteYear" envconfig:"RAFFLE_RENT_NANOS_PER_BYTE_YEAR"`
	ExemptionYears   uint64 `yaml:"exemptionYears"   envconfig:"RAFFLE_RENT_EXEMPTION_YEARS"`
}

func DefaultRent() Rent {
	return Rent{
		NanosPerByteYear: 3480,
		ExemptionYears:   2,
	}
}

func (r Rent) MinimumBalance(dataSize int) (uint64, error) {
	if dataSize < 0 {
		return 0, ErrArithmeticOverflow
	}
	size, err := checkedAdd(AccountStorageOverhead, uint64(dataSize))
	if err != nil {
		return 0, err
	}
	perYear, err := checkedMul(size, r.NanosPerByteYear)
	if err != nil {
		return 0, err
	}
	return checkedMul(perYear, r.ExemptionYears)
}
