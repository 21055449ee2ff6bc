package crypto

import (
	crand "crypto/rand"
	"fmt"

	"github.com/consensys/gnark-crypto/ecc/bn254/twistededwards/eddsa"
	"github.com/consensys/gnark-crypto/signature"
	"github.com/praneet25101-blip/ShieldedLending/zk-lending/types"
)

//
// GenerateKey

func NewKey() (*eddsa.PrivateKey, error) {
	return eddsa.GenerateKey(crand.Reader)
}

// KeyFromBytes restores a private key serialized with PrivateKey.Bytes.
func KeyFromBytes(bz []byte) (*eddsa.PrivateKey, error) {
	prvk := new(eddsa.PrivateKey)
	if _, err := prvk.SetBytes(bz); err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	return prvk, nil
}

// AddressOf is the wallet address of a public key: its 32-byte compressed
// encoding.
func AddressOf(pub signature.PublicKey) types.WalletAddress {
	var addr types.WalletAddress
	copy(addr[:], pub.Bytes())
	return addr
}

// PubKeyOf is the inverse of AddressOf. It fails when the address is not a
// point on the curve.
func PubKeyOf(addr types.WalletAddress) (*eddsa.PublicKey, error) {
	pub := new(eddsa.PublicKey)
	if _, err := pub.SetBytes(addr[:]); err != nil {
		return nil, fmt.Errorf("address %s is not a public key: %w", addr, err)
	}
	return pub, nil
}
