package prover

import (
	"bytes"
	"crypto/rand"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/test"
	"github.com/praneet25101-blip/ShieldedLending/zk-lending/contract"
	"github.com/praneet25101-blip/ShieldedLending/zk-lending/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newScoreSecret(t *testing.T, score uint16) types.Secret {
	var salt [types.ScoreSaltSize]byte
	_, err := rand.Read(salt[:])
	require.NoError(t, err)
	s, err := types.NewScoreSecret(score, salt)
	require.NoError(t, err)
	return s
}

func commitmentOf(t *testing.T, s types.Secret) types.Commitment {
	c, err := Commitment(s)
	require.NoError(t, err)
	return c
}

func TestCircuitSolved(t *testing.T) {
	secret := newScoreSecret(t, 720)
	commitment := commitmentOf(t, secret)

	var ok ThresholdCircuit
	require.NoError(t, ok.Assign(secret, commitment, 700))
	require.NoError(t, test.IsSolved(&ThresholdCircuit{}, &ok, ecc.BN254.ScalarField()))

	var equal ThresholdCircuit
	require.NoError(t, equal.Assign(secret, commitment, 720))
	require.NoError(t, test.IsSolved(&ThresholdCircuit{}, &equal, ecc.BN254.ScalarField()))

	// score below the threshold
	var below ThresholdCircuit
	require.NoError(t, below.Assign(secret, commitment, 721))
	require.Error(t, test.IsSolved(&ThresholdCircuit{}, &below, ecc.BN254.ScalarField()))

	// commitment of another secret
	var forged ThresholdCircuit
	require.NoError(t, forged.Assign(secret, commitmentOf(t, newScoreSecret(t, 720)), 700))
	require.Error(t, test.IsSolved(&ThresholdCircuit{}, &forged, ecc.BN254.ScalarField()))
}

func TestCommitmentMatchesContract(t *testing.T) {
	secret := newScoreSecret(t, 650)
	want, err := contract.MiMCHasher{}.Digest(secret)
	require.NoError(t, err)
	require.Equal(t, want, commitmentOf(t, secret))
}

func testProveVerify(t *testing.T, b Backend) {
	sys, err := Setup(b, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, b, sys.Backend())

	secret := newScoreSecret(t, 742)
	commitment := commitmentOf(t, secret)

	proof, err := sys.Prove(secret, 700)
	require.NoError(t, err)
	require.NoError(t, sys.VerifyThreshold(commitment, 700, proof))

	// the proof is bound to its public inputs
	require.ErrorIs(t, sys.VerifyThreshold(commitment, 701, proof), types.ErrVerification)
	require.ErrorIs(t, sys.VerifyThreshold(commitmentOf(t, newScoreSecret(t, 742)), 700, proof), types.ErrVerification)
	require.ErrorIs(t, sys.VerifyThreshold(commitment, 700, proof[:len(proof)/2]), types.ErrVerification)

	// commitment + p reduces to the same public input, but is refused
	var alias types.Commitment
	new(big.Int).Add(fr.Modulus(), new(big.Int).SetBytes(commitment[:])).FillBytes(alias[:])
	require.ErrorIs(t, sys.VerifyThreshold(alias, 700, proof), types.ErrVerification)

	_, err = sys.Prove(secret, 743)
	require.ErrorIs(t, err, ErrBelowThreshold)

	var notScore types.Secret
	notScore[0] = 0x07
	_, err = sys.Prove(notScore, 300)
	require.ErrorIs(t, err, types.ErrScoreSecret)
}

func TestGroth16(t *testing.T) {
	testProveVerify(t, Groth16)
}

func TestPlonk(t *testing.T) {
	testProveVerify(t, Plonk)
}

func TestUnknownBackend(t *testing.T) {
	_, err := Setup("stark", zerolog.Nop())
	require.Error(t, err)
}

func TestSaveLoad(t *testing.T) {
	dir := t.TempDir()
	_, err := Load(dir, zerolog.Nop())
	require.ErrorIs(t, err, ErrNoSetup)

	sys, err := Setup(Groth16, zerolog.Nop())
	require.NoError(t, err)
	require.NoError(t, sys.Save(dir))

	loaded, err := Load(dir, zerolog.Nop())
	require.NoError(t, err)
	require.Equal(t, Groth16, loaded.Backend())

	// a proof from one process verifies in the other
	secret := newScoreSecret(t, 690)
	proof, err := loaded.Prove(secret, 650)
	require.NoError(t, err)
	require.NoError(t, sys.VerifyThreshold(commitmentOf(t, secret), 650, proof))

	var sol bytes.Buffer
	require.NoError(t, loaded.ExportSolidity(&sol))
	require.Contains(t, sol.String(), "pragma solidity")
}
