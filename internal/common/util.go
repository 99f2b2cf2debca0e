package common

import "crypto/rand"

// GenerateRandByteArray returns size cryptographically random bytes.
// crypto/rand never fails on supported platforms; a failure here is fatal.
func GenerateRandByteArray(size int) []byte {
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	return buf
}

// WipeByteArray zeroes the buffer in place. Used to drop key material from
// memory as soon as it is no longer needed.
func WipeByteArray(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}
