// Package wallet holds the borrower side of the lending flow: the signing key
// that gives a wallet address, score secrets and their commitments, and a
// passphrase-sealed keystore on disk.
package wallet

import (
	crand "crypto/rand"

	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"
	"github.com/praneet25101-blip/ShieldedLending/zk-lending/contract"
	"github.com/praneet25101-blip/ShieldedLending/zk-lending/crypto"
	"github.com/praneet25101-blip/ShieldedLending/zk-lending/types"
)

type Borrower struct {
	Address    types.WalletAddress
	PrivateKey *eddsa.PrivateKey
}

func NewBorrower() (*Borrower, error) {
	prvk, err := crypto.NewKey()
	if err != nil {
		return nil, err
	}
	return borrowerOf(prvk), nil
}

func borrowerOf(prvk *eddsa.PrivateKey) *Borrower {
	return &Borrower{
		Address:    crypto.AddressOf(prvk.Public()),
		PrivateKey: prvk,
	}
}

// NewScoreSecret draws a fresh salt and packs it with score.
func NewScoreSecret(score uint16) (types.Secret, error) {
	var salt [types.ScoreSaltSize]byte
	if _, err := crand.Read(salt[:]); err != nil {
		return types.Secret{}, err
	}
	return types.NewScoreSecret(score, salt)
}

// RandomSecret is an opaque secret with no score inside. It works for the
// commitment check but not for threshold proofs. The top three bits are
// cleared so it is a canonical field element under either hasher.
func RandomSecret() (types.Secret, error) {
	var s types.Secret
	if _, err := crand.Read(s[:]); err != nil {
		return s, err
	}
	s[0] &= 0x1f
	if s[0] == types.ScoreSecretVersion {
		s[0] = 0
	}
	return s, nil
}

// CommitmentOf is what a borrower submits to register_credit.
func CommitmentOf(h contract.Hasher, secret types.Secret) (types.Commitment, error) {
	return h.Digest(secret)
}
