package prover

import (
	"math/big"

	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/std/hash/mimc"
	"github.com/praneet25101-blip/ShieldedLending/zk-lending/types"
)

var (
	E232 = new(big.Int).Lsh(big.NewInt(1), 232)
	// version byte of a score secret, already shifted into place
	versionTerm = new(big.Int).Lsh(big.NewInt(types.ScoreSecretVersion), 248)
)

// ThresholdCircuit proves knowledge of a score secret whose MiMC digest is
// Commitment and whose score is at least MinScore.
type ThresholdCircuit struct {
	Commitment frontend.Variable `gnark:",public"`
	MinScore   frontend.Variable `gnark:",public"`

	Score frontend.Variable
	Salt  frontend.Variable
}

func (cc *ThresholdCircuit) Define(api frontend.API) error {
	hFunc, err := mimc.NewMiMC(api)
	if err != nil {
		return err
	}

	// range checks, so the packing below is injective
	_ = api.ToBinary(cc.Score, 16)
	_ = api.ToBinary(cc.Salt, 8*types.ScoreSaltSize)
	_ = api.ToBinary(cc.MinScore, 16)

	//
	// secret = version * 2^248 + score * 2^232 + salt
	secret := api.Add(versionTerm, api.Mul(cc.Score, E232), cc.Salt)

	hFunc.Write(secret)
	api.AssertIsEqual(cc.Commitment, hFunc.Sum())

	api.AssertIsLessOrEqual(cc.MinScore, cc.Score)
	return nil
}

// Assign fills the witness from a score secret. The public part is the
// commitment and threshold.
func (cc *ThresholdCircuit) Assign(secret types.Secret, commitment types.Commitment, minScore types.MinScore) error {
	score, salt, err := types.ScoreOf(secret)
	if err != nil {
		return err
	}
	cc.Score = score
	cc.Salt = salt[:]
	cc.AssignPublic(commitment, minScore)
	return nil
}

func (cc *ThresholdCircuit) AssignPublic(commitment types.Commitment, minScore types.MinScore) {
	cc.Commitment = commitment[:]
	cc.MinScore = uint16(minScore)
}
