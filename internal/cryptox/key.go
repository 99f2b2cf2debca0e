package cryptox

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/securechain/securechain/internal/common"
)

// KeySize is the symmetric key length in bytes (256 bits).
const KeySize = 32

// Key is a symmetric file key. Its user-visible form is the 64-character hex
// string returned by String; that string is what the sender hands to the
// recipient out of band.
type Key []byte

// GenerateKey returns a fresh random 256-bit key.
func GenerateKey() Key {
	return Key(common.GenerateRandByteArray(KeySize))
}

// ParseKey decodes the hex form of a key as entered by a recipient.
func ParseKey(s string) (Key, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("key is not valid hex: %w", err)
	}
	if len(raw) != KeySize {
		return nil, fmt.Errorf("key must be %d bytes, got %d", KeySize, len(raw))
	}
	return Key(raw), nil
}

// String returns the hex form of the key.
func (k Key) String() string {
	return hex.EncodeToString(k)
}

// Wipe zeroes the key material in place.
func (k Key) Wipe() {
	common.WipeByteArray(k)
}

// Commit returns the one-way commitment of a key: the hex SHA-256 digest of
// its hex form. The commitment is what the backend stores; it determines
// validity of a submitted key without revealing it.
func Commit(k Key) string {
	sum := sha256.Sum256([]byte(k.String()))
	return hex.EncodeToString(sum[:])
}
