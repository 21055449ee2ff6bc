package crypto

import (
	"crypto/cipher"
	"fmt"

	"golang.org/x/crypto/chacha20poly1305"
)

// Seal encrypts plaintext under a key derived from passphrase and salt, and
// binds it to ad. Every sealed record needs its own salt: the nonce comes
// from the same derivation as the key.
func Seal(passphrase, salt, plaintext, ad []byte) ([]byte, error) {
	aead, nonce, err := sealer(passphrase, salt)
	if err != nil {
		return nil, err
	}
	return aead.Seal(nil, nonce, plaintext, ad), nil
}

// Open reverses Seal. A wrong passphrase, a different ad or a modified
// ciphertext all give ErrDecrypt.
func Open(passphrase, salt, ciphertext, ad []byte) ([]byte, error) {
	aead, nonce, err := sealer(passphrase, salt)
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, ad)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecrypt, err)
	}
	return plaintext, nil
}

func sealer(passphrase, salt []byte) (cipher.AEAD, []byte, error) {
	key, nonce, err := SealingKey(passphrase, salt)
	if err != nil {
		return nil, nil, err
	}
	aead, err := chacha20poly1305.New(key)
	if err != nil {
		return nil, nil, err
	}
	return aead, nonce, nil
}
