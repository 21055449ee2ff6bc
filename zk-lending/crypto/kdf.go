package crypto

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/blake2s"
	"golang.org/x/crypto/chacha20poly1305"
)

var ErrDecrypt = errors.New("decryption failed")

const (
	SaltSize = 16

	// argon2id parameters for passphrase stretching
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

var expandPersonalization = []byte("SLendingExpandSd")

// ExpandSeed derives a key stream of outputLen bytes from a 32-byte seed
// with BLAKE2s, in the PRF^expand style: H(seed || counter) for counter
// 1, 2, ...
func ExpandSeed(seed []byte, outputLen int) ([]byte, error) {
	if len(seed) != 32 {
		return nil, fmt.Errorf("seed must be 32 bytes")
	}

	var keyStream []byte
	var counter byte = 1
	for len(keyStream) < outputLen {
		h, err := blake2s.New256(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create blake2s hash: %w", err)
		}
		h.Write(expandPersonalization)
		h.Write(seed)
		h.Write([]byte{counter})
		keyStream = append(keyStream, h.Sum(nil)...)

		counter++
		if counter == 0 {
			return nil, errors.New("KDF counter overflow")
		}
	}
	return keyStream[:outputLen], nil
}

// SealingKey stretches a passphrase with argon2id and expands it into an
// AEAD key and nonce. A fresh salt per record gives a fresh key/nonce pair.
func SealingKey(passphrase, salt []byte) (key, nonce []byte, err error) {
	if len(salt) != SaltSize {
		return nil, nil, fmt.Errorf("salt must be %d bytes", SaltSize)
	}
	seed := argon2.IDKey(passphrase, salt, argonTime, argonMemory, argonThreads, 32)
	stream, err := ExpandSeed(seed, chacha20poly1305.KeySize+chacha20poly1305.NonceSize)
	if err != nil {
		return nil, nil, err
	}
	return stream[:chacha20poly1305.KeySize], stream[chacha20poly1305.KeySize:], nil
}
