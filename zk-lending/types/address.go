package types

import (
	"fmt"
	"strings"

	"github.com/btcsuite/btcutil/base58"
)

const (
	addrPrefix = "sl"
	addrVer    = 0x01
)

// EncodeAddress renders a wallet address as base58check with the "sl" prefix.
func EncodeAddress(addr WalletAddress) string {
	return addrPrefix + base58.CheckEncode(addr[:], addrVer)
}

func DecodeAddress(addr string) (WalletAddress, error) {
	if !strings.HasPrefix(addr, addrPrefix) {
		head := addr
		if len(head) > 2 {
			head = head[:2]
		}
		return WalletAddress{}, fmt.Errorf("wrong prefix: got(%s)", head)
	}
	bz, _ver, err := base58.CheckDecode(addr[len(addrPrefix):])
	if err != nil {
		return WalletAddress{}, err
	}
	if _ver != addrVer {
		return WalletAddress{}, fmt.Errorf("wrong version: expected(%d), got(%d)", addrVer, _ver)
	}
	return NewWalletAddress(bz)
}

// ParseWalletAddress accepts either the "sl" base58check form or 32 bytes of hex.
func ParseWalletAddress(s string) (WalletAddress, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, addrPrefix) {
		return DecodeAddress(s)
	}
	v, err := ParseBytes32(s)
	return WalletAddress(v), err
}
