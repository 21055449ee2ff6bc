package contract

import (
	"fmt"

	"github.com/praneet25101-blip/ShieldedLending/utils"
	"github.com/praneet25101-blip/ShieldedLending/zk-lending/types"
)

const (
	HasherSHA256 = "sha256"
	HasherMiMC   = "mimc"
)

// Hasher maps a secret to its commitment. A ledger uses exactly one Hasher
// for its lifetime; commitments produced by another function never verify.
// Digest fails for a secret outside the hasher's domain.
type Hasher interface {
	Name() string
	Digest(secret types.Secret) (types.Commitment, error)
}

// NewHasher returns the hasher registered under name.
func NewHasher(name string) (Hasher, error) {
	switch name {
	case HasherSHA256, "":
		return SHA256Hasher{}, nil
	case HasherMiMC:
		return MiMCHasher{}, nil
	}
	return nil, fmt.Errorf("unknown commitment hasher %q", name)
}

// SHA256Hasher commits with SHA-256 over the 32 secret bytes.
type SHA256Hasher struct{}

func (SHA256Hasher) Name() string { return HasherSHA256 }

func (SHA256Hasher) Digest(secret types.Secret) (types.Commitment, error) {
	var c types.Commitment
	copy(c[:], utils.Sha256Hash(secret[:]))
	return c, nil
}

// MiMCHasher commits with MiMC over BN254, reading the secret as a single
// field element. A secret at or above the field modulus is rejected with
// utils.ErrNonCanonical rather than reduced: s and s+p must not share a
// commitment.
type MiMCHasher struct{}

func (MiMCHasher) Name() string { return HasherMiMC }

func (MiMCHasher) Digest(secret types.Secret) (types.Commitment, error) {
	var c types.Commitment
	bz, err := utils.MiMCHash(secret[:])
	if err != nil {
		return c, err
	}
	copy(c[:], bz)
	return c, nil
}
