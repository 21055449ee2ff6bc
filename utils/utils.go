package utils

import (
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"hash"

	"github.com/consensys/gnark-crypto/ecc/bn254/fr"
	"github.com/consensys/gnark-crypto/ecc/bn254/fr/mimc"
)

// HashSize is the width of every commitment digest.
const HashSize = 32

// packSize is the number of payload bytes per field element in MiMCHashBytes.
// 31 bytes always stay below the BN254 modulus.
const packSize = fr.Bytes - 1

var ErrNonCanonical = errors.New("not a canonical BN254 field element")

func MiMCHasher() hash.Hash {
	return mimc.NewMiMC()
}

// MiMCHash hashes a sequence of field elements. Each input must be exactly
// fr.Bytes long, big-endian and below the modulus; anything else is rejected
// with ErrNonCanonical, so distinct inputs never alias modulo the field.
func MiMCHash(elems ...[]byte) ([]byte, error) {
	hasher := MiMCHasher()
	for i, in := range elems {
		var e fr.Element
		if err := e.SetBytesCanonical(in); err != nil {
			return nil, fmt.Errorf("%w: element %d: %v", ErrNonCanonical, i, err)
		}
		b := e.Bytes()
		if _, err := hasher.Write(b[:]); err != nil {
			return nil, err
		}
	}
	return hasher.Sum(nil), nil
}

// MiMCHashBytes hashes arbitrary bytes. The data is packed 31 bytes per
// field element behind a length element, which keeps the encoding injective.
func MiMCHashBytes(data []byte) []byte {
	hasher := MiMCHasher()

	var block [fr.Bytes]byte
	binary.BigEndian.PutUint64(block[fr.Bytes-8:], uint64(len(data)))
	write := func() {
		if _, err := hasher.Write(block[:]); err != nil {
			panic(err) // top byte is zero, always canonical
		}
	}
	write()

	for i := 0; i < len(data); i += packSize {
		block = [fr.Bytes]byte{}
		end := min(i+packSize, len(data))
		copy(block[1:], data[i:end])
		write()
	}
	return hasher.Sum(nil)
}

func Sha256Hash(ins ...[]byte) []byte {
	hasher := sha256.New()
	for _, in := range ins {
		hasher.Write(in)
	}
	return hasher.Sum(nil)
}
