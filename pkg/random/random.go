// Package random provides secure random bytes, strings and fixed-size
// identifiers, plus fast non-cryptographic integers.
package random

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math/big"
	mrand "math/rand/v2"
	"os"
	"path/filepath"

	"github.com/mr-tron/base58"
)

// ErrNegativeLength is returned when a negative size is requested.
var ErrNegativeLength = errors.New("random: length must not be negative")

// secureSource is the entropy source for every Secure* helper.
var secureSource io.Reader = rand.Reader

// SecureBytes returns n bytes read from the system's secure random source.
func SecureBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, ErrNegativeLength
	}
	d := make([]byte, n)
	if _, err := io.ReadFull(secureSource, d); err != nil {
		return nil, fmt.Errorf("failed to read secure random: %w", err)
	}
	return d, nil
}

// SecureString returns a base58 string of exactly n characters.
// Negative n yields an empty string. It panics if the secure random
// source fails, since no string of the requested length can be produced.
func SecureString(n int) string {
	if n <= 0 {
		return ""
	}
	b, err := SecureBytes(n)
	if err != nil {
		panic(err)
	}
	// base58 never encodes n bytes into fewer than n characters.
	d := base58.Encode(b)
	if len(d) > n {
		d = d[:n]
	}
	return d
}

// TmpPath returns a random file path in the temp directory.
// The file is not created.
func TmpPath(n int, suffix string) (string, error) {
	if n < 0 {
		return "", ErrNegativeLength
	}
	return filepath.Join(os.TempDir(), SecureString(n)+suffix), nil
}

// SecureU8 returns a single secure random byte.
func SecureU8() (uint8, error) {
	b, err := SecureBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Uint and the sized variants below are fast and NOT suitable for secrets.
func Uint() uint { return mrand.Uint() }

func Uint8() uint8 { return uint8(mrand.Uint32()) }

func Uint16() uint16 { return uint16(mrand.Uint32()) }

func Uint32() uint32 { return mrand.Uint32() }

func Uint64() uint64 { return mrand.Uint64() }

// H160 is a 20-byte value, the size of an Ethereum-style address.
type H160 [20]byte

func (h H160) String() string { return "0x" + hex.EncodeToString(h[:]) }

// H256 is a 32-byte hash-sized value.
type H256 [32]byte

func (h H256) String() string { return "0x" + hex.EncodeToString(h[:]) }

func SecureH160() (H160, error) {
	var h H160
	b, err := SecureBytes(len(h))
	if err != nil {
		return h, err
	}
	copy(h[:], b)
	return h, nil
}

func SecureH256() (H256, error) {
	var h H256
	b, err := SecureBytes(len(h))
	if err != nil {
		return h, err
	}
	copy(h[:], b)
	return h, nil
}

// SecureU256 returns a uniformly random unsigned 256-bit integer.
func SecureU256() (*big.Int, error) {
	b, err := SecureBytes(32)
	if err != nil {
		return nil, err
	}
	return new(big.Int).SetBytes(b), nil
}
