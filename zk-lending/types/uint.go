package types

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"
)

const (
	AmountConstraint   = "Uint<0..18446744073709551615>"
	MinScoreConstraint = "Uint<0..65535>"

	// AmountWidth is the encoded width of the amount cell in bytes.
	AmountWidth = 8
)

// Amount is a loan amount, 64 unsigned bits.
type Amount uint64

// MinScore is the public threshold of a credit proof, 16 unsigned bits.
type MinScore uint16

// AmountFromUint256 range-checks an arbitrary-width integer into an Amount.
func AmountFromUint256(v *uint256.Int) (Amount, error) {
	if v == nil {
		return 0, fmt.Errorf("%w: nil amount", ErrInvalidType)
	}
	if !v.IsUint64() {
		return 0, fmt.Errorf("%w: %s exceeds 2^64-1", ErrOutOfRange, v.Dec())
	}
	return Amount(v.Uint64()), nil
}

// MinScoreFromUint256 range-checks an arbitrary-width integer into a MinScore.
func MinScoreFromUint256(v *uint256.Int) (MinScore, error) {
	if v == nil {
		return 0, fmt.Errorf("%w: nil min score", ErrInvalidType)
	}
	if !v.IsUint64() || v.Uint64() > 0xffff {
		return 0, fmt.Errorf("%w: %s exceeds 65535", ErrOutOfRange, v.Dec())
	}
	return MinScore(v.Uint64()), nil
}

// ParseAmount parses a decimal or 0x-prefixed hex amount.
func ParseAmount(s string) (Amount, error) {
	v, err := ParseUint256(s)
	if err != nil {
		return 0, err
	}
	return AmountFromUint256(v)
}

// ParseMinScore parses a decimal or 0x-prefixed hex min score.
func ParseMinScore(s string) (MinScore, error) {
	v, err := ParseUint256(s)
	if err != nil {
		return 0, err
	}
	return MinScoreFromUint256(v)
}

// ParseUint256 parses a non-negative decimal or 0x-prefixed hex integer of
// at most 256 bits.
func ParseUint256(s string) (*uint256.Int, error) {
	s = strings.TrimSpace(s)
	digits, base := s, 10
	if len(s) > 2 && (s[:2] == "0x" || s[:2] == "0X") {
		digits, base = s[2:], 16
	}
	b, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, fmt.Errorf("%w: not an integer: %q", ErrInvalidType, s)
	}
	if b.Sign() < 0 {
		return nil, fmt.Errorf("%w: negative value %s", ErrOutOfRange, s)
	}
	v, overflow := uint256.FromBig(b)
	if overflow {
		return nil, fmt.Errorf("%w: %s exceeds 256 bits", ErrOutOfRange, s)
	}
	return v, nil
}

// Bytes encodes the amount as its 8-byte little-endian cell.
func (a Amount) Bytes() []byte {
	bz := make([]byte, AmountWidth)
	binary.LittleEndian.PutUint64(bz, uint64(a))
	return bz
}

func AmountFromBytes(bz []byte) (Amount, error) {
	if len(bz) != AmountWidth {
		return 0, fmt.Errorf("%w: amount cell must be %d bytes, got %d", ErrInvalidLength, AmountWidth, len(bz))
	}
	return Amount(binary.LittleEndian.Uint64(bz)), nil
}
