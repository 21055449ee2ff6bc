package contract

import "github.com/praneet25101-blip/ShieldedLending/zk-lending/types"

// ThresholdVerifier checks a zero-knowledge proof that the score behind a
// commitment is at least minScore. It is implemented outside the ledger
// (see the prover package); the contract only performs the commitment
// equality check.
type ThresholdVerifier interface {
	VerifyThreshold(commitment types.Commitment, minScore types.MinScore, proof []byte) error
}
