// Package addr validates account identities.
package addr

import (
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"github.com/pkg/errors"
)

type Validator interface {
	Validate(address string) (string, error)
}

// Bech32 accepts lowercase bech32 addresses with the configured human readable part.
type Bech32 struct {
	Prefix string
}

var _ Validator = (*Bech32)(nil)

func NewBech32(prefix string) *Bech32 {
	return &Bech32{Prefix: prefix}
}

// Validate returns the canonical form of address.
func (b *Bech32) Validate(address string) (string, error) {
	if address == "" {
		return "", errors.New("empty address")
	}

	// Mixed case is rejected by the decoder, but an all uppercase address is valid bech32
	if strings.ToLower(address) != address && strings.ToUpper(address) != address {
		return "", errors.Errorf("address %q has mixed case", address)
	}

	hrp, data, err := bech32.Decode(address)
	if err != nil {
		return "", errors.Wrapf(err, "invalid address %q", address)
	}

	if b.Prefix != "" && hrp != b.Prefix {
		return "", errors.Errorf("invalid address prefix %q (expected %q)", hrp, b.Prefix)
	}

	if len(data) == 0 {
		return "", errors.Errorf("address %q has no data", address)
	}

	return strings.ToLower(address), nil
}

// Encode builds an address from raw bytes, mostly useful to mint fixtures.
func Encode(prefix string, raw []byte) (string, error) {
	conv, err := bech32.ConvertBits(raw, 8, 5, true)
	if err != nil {
		return "", errors.Wrap(err, "failed to convert bits")
	}

	return bech32.Encode(prefix, conv)
}

// MustEncode is like Encode but panics on error.
func MustEncode(prefix string, raw []byte) string {
	address, err := Encode(prefix, raw)
	if err != nil {
		panic(err)
	}
	return address
}
