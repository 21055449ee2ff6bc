package utils

import (
	"bytes"
	"crypto/sha256"
	"math/big"
	"testing"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestMiMCHash(t *testing.T) {
	in := bytes.Repeat([]byte{0x01}, 32)

	h0, err := MiMCHash(in)
	require.NoError(t, err)
	require.Len(t, h0, HashSize)
	h1, err := MiMCHash(in)
	require.NoError(t, err)
	require.Equal(t, h0, h1)

	other, err := MiMCHash(bytes.Repeat([]byte{0x02}, 32))
	require.NoError(t, err)
	require.NotEqual(t, h0, other)

	_, err = MiMCHash(in[:31])
	require.ErrorIs(t, err, ErrNonCanonical)
}

func TestMiMCHashRejectsModulusAlias(t *testing.T) {
	// x and x + p are the same field element; only x is accepted
	var x [32]byte
	x[31] = 0x07
	alias := new(big.Int).Add(fr.Modulus(), big.NewInt(7)).FillBytes(make([]byte, 32))

	_, err := MiMCHash(x[:])
	require.NoError(t, err)
	_, err = MiMCHash(alias)
	require.ErrorIs(t, err, ErrNonCanonical)

	_, err = MiMCHash(fr.Modulus().FillBytes(make([]byte, 32)))
	require.ErrorIs(t, err, ErrNonCanonical)
	_, err = MiMCHash(bytes.Repeat([]byte{0xff}, 32))
	require.ErrorIs(t, err, ErrNonCanonical)
}

func TestMiMCHashBytes(t *testing.T) {
	a := bytes.Repeat([]byte{0xff}, 40)
	require.Len(t, MiMCHashBytes(a), HashSize)
	require.Equal(t, MiMCHashBytes(a), MiMCHashBytes(bytes.Clone(a)))

	// inputs equal modulo p, or differing only by trailing zeros, do not collide
	p := fr.Modulus().FillBytes(make([]byte, 32))
	require.NotEqual(t, MiMCHashBytes(make([]byte, 32)), MiMCHashBytes(p))
	require.NotEqual(t, MiMCHashBytes([]byte{0x01}), MiMCHashBytes([]byte{0x01, 0x00}))
	require.NotEqual(t, MiMCHashBytes(nil), MiMCHashBytes([]byte{0x00}))
}

func TestSha256Hash(t *testing.T) {
	in := bytes.Repeat([]byte{0xaa}, 32)
	want := sha256.Sum256(in)
	require.Equal(t, want[:], Sha256Hash(in))
	require.Equal(t, want[:], Sha256Hash(in[:10], in[10:]))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewLogger(&buf, "warn", "json")
	require.NoError(t, err)
	require.Equal(t, zerolog.WarnLevel, l.GetLevel())

	l.Info().Msg("dropped")
	require.Zero(t, buf.Len())
	l.Warn().Msg("kept")
	require.Contains(t, buf.String(), "kept")

	_, err = NewLogger(&buf, "loud", "json")
	require.Error(t, err)
}
