package types

import (
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/stretchr/testify/require"
)

func TestScoreSecret(t *testing.T) {
	var salt [ScoreSaltSize]byte
	for i := range salt {
		salt[i] = 0xff
	}

	s, err := NewScoreSecret(850, salt)
	require.NoError(t, err)
	require.Equal(t, byte(ScoreSecretVersion), s[0])
	require.Equal(t, []byte{0x03, 0x52}, s[1:3])

	score, salt2, err := ScoreOf(s)
	require.NoError(t, err)
	require.Equal(t, uint16(850), score)
	require.Equal(t, salt, salt2)

	// the largest score secret is still a canonical field element
	require.True(t, new(big.Int).SetBytes(s[:]).Cmp(fr.Modulus()) < 0)

	_, err = NewScoreSecret(299, salt)
	require.ErrorIs(t, err, ErrOutOfRange)
	_, err = NewScoreSecret(851, salt)
	require.ErrorIs(t, err, ErrOutOfRange)

	s[0] = 0x02
	_, _, err = ScoreOf(s)
	require.ErrorIs(t, err, ErrScoreSecret)
}
