package types

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Bytes32Constraint names the fixed-width byte argument type.
const Bytes32Constraint = "Bytes<32>"

// FieldConstraint names a 32-byte argument that must also be a canonical
// BN254 scalar, as the mimc hasher requires of secrets.
const FieldConstraint = "Bytes<32> below the BN254 modulus"

// Commitment is a one-way digest standing in for a borrower secret.
type Commitment [32]byte

// Secret is the caller-held value behind a commitment. It is never stored
// by the ledger.
type Secret [32]byte

// WalletAddress identifies the caller. It is validated but never stored.
type WalletAddress [32]byte

func toBytes32(b []byte) ([32]byte, error) {
	var ret [32]byte
	if len(b) != len(ret) {
		return ret, fmt.Errorf("%w: expected 32 bytes, got %d", ErrInvalidLength, len(b))
	}
	copy(ret[:], b)
	return ret, nil
}

func NewCommitment(b []byte) (Commitment, error) {
	v, err := toBytes32(b)
	return Commitment(v), err
}

func NewSecret(b []byte) (Secret, error) {
	v, err := toBytes32(b)
	return Secret(v), err
}

func NewWalletAddress(b []byte) (WalletAddress, error) {
	v, err := toBytes32(b)
	return WalletAddress(v), err
}

// ParseBytes32 decodes a hex string, with or without 0x prefix, of exactly
// 32 bytes.
func ParseBytes32(s string) ([32]byte, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	bz, err := hexutil.Decode(s)
	if err != nil {
		return [32]byte{}, err
	}
	return toBytes32(bz)
}

func (c Commitment) Bytes() []byte { return append([]byte(nil), c[:]...) }
func (c Commitment) Hex() string   { return hexutil.Encode(c[:]) }
func (c Commitment) IsZero() bool  { return c == Commitment{} }

func (s Secret) Bytes() []byte { return append([]byte(nil), s[:]...) }
func (s Secret) Hex() string   { return hexutil.Encode(s[:]) }

// String hides the secret so it cannot end up in logs by accident.
func (s Secret) String() string { return "Secret(<redacted>)" }

func (a WalletAddress) Bytes() []byte  { return append([]byte(nil), a[:]...) }
func (a WalletAddress) Hex() string    { return hexutil.Encode(a[:]) }
func (a WalletAddress) String() string { return EncodeAddress(a) }
