// Package cryptox implements the client-side cipher layer: symmetric key
// generation, key commitments, and authenticated encryption of file payloads.
//
// Every ciphertext is a self-contained envelope: the nonce or IV needed to
// invert it travels inside the ciphertext, so the only secrets a recipient
// needs are the symmetric key (and, for the hybrid scheme, an RSA private
// key). Keys exist only in memory; nothing in this package logs, caches or
// transmits them.
package cryptox

import "fmt"

// Algorithm selects the encryption scheme for a file. It is stored alongside
// the file record so the correct inverse can be chosen at download time.
type Algorithm string

const (
	// AlgorithmAES256GCM is the default: AES-256 in GCM mode.
	AlgorithmAES256GCM Algorithm = "aes-256-gcm"

	// AlgorithmTripleDES is DES-EDE3 in CBC mode with an HMAC-SHA256 trailer
	// (encrypt-then-MAC), kept for compatibility with older uploads.
	AlgorithmTripleDES Algorithm = "3des-cbc-hmac"

	// AlgorithmRSAHybrid layers AES-256-GCM under an RSA-OAEP-wrapped content
	// key. Decryption requires both the symmetric key and the recipient's RSA
	// private key.
	AlgorithmRSAHybrid Algorithm = "rsa-aes-hybrid"
)

// ParseAlgorithm validates a stored algorithm tag.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch Algorithm(s) {
	case AlgorithmAES256GCM, AlgorithmTripleDES, AlgorithmRSAHybrid:
		return Algorithm(s), nil
	}
	return "", fmt.Errorf("unknown encryption algorithm %q", s)
}

// RequiresPrivateKey reports whether decryption under this algorithm needs an
// additional asymmetric private key.
func (a Algorithm) RequiresPrivateKey() bool {
	return a == AlgorithmRSAHybrid
}
