package wallet

import (
	"errors"
	"strings"

	"github.com/btcsuite/btcutil/base58"
)

// PublicKeyLength is the size of an ed25519 public key, which is what a wallet address encodes.
const PublicKeyLength = 32

var ErrInvalidAddress = errors.New("invalid wallet address")

// Normalize trims addr and checks it is base58 encoding of a 32-byte public key.
func Normalize(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "", ErrInvalidAddress
	}
	if len(base58.Decode(addr)) != PublicKeyLength {
		return "", ErrInvalidAddress
	}
	return addr, nil
}

// Valid reports whether addr is a well-formed wallet address.
func Valid(addr string) bool {
	_, err := Normalize(addr)
	return err == nil
}
