// Package prover generates and checks zero-knowledge credit threshold proofs.
//
// A proof shows that the prover knows a score secret (see types.NewScoreSecret)
// whose MiMC commitment is public and whose score is at least a public
// minimum, without revealing the score. The ledger itself only checks
// commitment equality; this package is the ThresholdVerifier it delegates to.
package prover

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark/backend"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/backend/plonk"
	"github.com/consensys/gnark/backend/witness"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/constraint/solver"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
	"github.com/consensys/gnark/frontend/cs/scs"
	"github.com/consensys/gnark/test/unsafekzg"
	"github.com/praneet25101-blip/ShieldedLending/utils"
	"github.com/praneet25101-blip/ShieldedLending/zk-lending/contract"
	"github.com/praneet25101-blip/ShieldedLending/zk-lending/types"
	"github.com/rs/zerolog"
)

type Backend string

const (
	Groth16 Backend = "groth16"
	Plonk   Backend = "plonk"
)

var ErrBelowThreshold = errors.New("credit score below threshold")

var _ contract.ThresholdVerifier = (*System)(nil)

// System holds a compiled ThresholdCircuit and its keys for one backend.
type System struct {
	backend Backend
	ccs     constraint.ConstraintSystem

	g16PK groth16.ProvingKey
	g16VK groth16.VerifyingKey
	plPK  plonk.ProvingKey
	plVK  plonk.VerifyingKey

	log zerolog.Logger
}

// Setup compiles the circuit and runs the backend's key setup. The plonk
// backend uses an unsafe, locally generated SRS and the groth16 setup is a
// single-party ceremony: both are for development and testing only.
func Setup(b Backend, log zerolog.Logger) (*System, error) {
	var (
		cc  ThresholdCircuit
		err error
	)
	s := &System{
		backend: b,
		log:     log.With().Str("module", "prover").Str("backend", string(b)).Logger(),
	}

	switch b {
	case Groth16, "":
		s.backend = Groth16
		if s.ccs, err = frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &cc); err != nil {
			return nil, err
		}
		if s.g16PK, s.g16VK, err = groth16.Setup(s.ccs); err != nil {
			return nil, err
		}
	case Plonk:
		if s.ccs, err = frontend.Compile(ecc.BN254.ScalarField(), scs.NewBuilder, &cc); err != nil {
			return nil, err
		}
		srs, srsLagrange, err := unsafekzg.NewSRS(s.ccs)
		if err != nil {
			return nil, err
		}
		if s.plPK, s.plVK, err = plonk.Setup(s.ccs, srs, srsLagrange); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown proving backend %q", b)
	}

	s.log.Info().Int("constraints", s.ccs.GetNbConstraints()).Msg("threshold circuit ready")
	return s, nil
}

func (s *System) Backend() Backend {
	return s.backend
}

// Commitment is the MiMC commitment the circuit checks against.
func Commitment(secret types.Secret) (types.Commitment, error) {
	return contract.MiMCHasher{}.Digest(secret)
}

// Prove creates a proof that the score in secret is at least minScore. The
// returned bytes are the backend's serialized proof.
func (s *System) Prove(secret types.Secret, minScore types.MinScore) ([]byte, error) {
	score, _, err := types.ScoreOf(secret)
	if err != nil {
		return nil, err
	}
	if score < uint16(minScore) {
		return nil, fmt.Errorf("%w: %d < %d", ErrBelowThreshold, score, minScore)
	}

	commitment, err := Commitment(secret)
	if err != nil {
		return nil, err
	}
	var assignment ThresholdCircuit
	if err := assignment.Assign(secret, commitment, minScore); err != nil {
		return nil, err
	}
	wtn, err := frontend.NewWitness(&assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, err
	}

	opt := backend.WithSolverOptions(solver.WithLogger(s.log))
	bufProof := bytes.NewBuffer(nil)
	switch s.backend {
	case Plonk:
		proof, err := plonk.Prove(s.ccs, s.plPK, wtn, opt)
		if err != nil {
			return nil, err
		}
		if _, err := proof.WriteTo(bufProof); err != nil {
			return nil, err
		}
	default:
		proof, err := groth16.Prove(s.ccs, s.g16PK, wtn, opt)
		if err != nil {
			return nil, err
		}
		if _, err := proof.WriteTo(bufProof); err != nil {
			return nil, err
		}
	}

	s.log.Debug().Uint16("min_score", uint16(minScore)).Int("proof_size", bufProof.Len()).Msg("threshold proof created")
	return bufProof.Bytes(), nil
}

// VerifyThreshold checks a serialized proof against a commitment and minimum
// score. Any failure is reported as a *types.VerificationError.
func (s *System) VerifyThreshold(commitment types.Commitment, minScore types.MinScore, bzProof []byte) error {
	// the witness would reduce it, letting c+p pass for c
	var c fr.Element
	if err := c.SetBytesCanonical(commitment[:]); err != nil {
		return verificationError(fmt.Errorf("%w: commitment", utils.ErrNonCanonical))
	}

	var assignment ThresholdCircuit
	assignment.AssignPublic(commitment, minScore)
	pubWtn, err := frontend.NewWitness(&assignment, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return verificationError(err)
	}

	if err := s.verify(bzProof, pubWtn); err != nil {
		s.log.Warn().Err(err).Uint16("min_score", uint16(minScore)).Msg("threshold proof rejected")
		return verificationError(err)
	}
	return nil
}

func (s *System) verify(bzProof []byte, pubWtn witness.Witness) error {
	switch s.backend {
	case Plonk:
		proof := plonk.NewProof(ecc.BN254)
		if _, err := proof.ReadFrom(bytes.NewBuffer(bzProof)); err != nil {
			return err
		}
		return plonk.Verify(proof, s.plVK, pubWtn)
	default:
		proof := groth16.NewProof(ecc.BN254)
		if _, err := proof.ReadFrom(bytes.NewBuffer(bzProof)); err != nil {
			return err
		}
		return groth16.Verify(proof, s.g16VK, pubWtn)
	}
}

func verificationError(err error) error {
	return &types.VerificationError{
		Op:     types.OpProveCreditThreshold,
		Reason: fmt.Sprintf("invalid threshold proof: %v", err),
	}
}
