package cryptox

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/des"
	"crypto/hmac"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"github.com/securechain/securechain/internal/common"
)

// Encrypt encrypts plaintext under key using the given algorithm. The RSA
// public key is consulted only for AlgorithmRSAHybrid and may be nil
// otherwise.
func Encrypt(plaintext []byte, key Key, alg Algorithm, rsaPub *rsa.PublicKey) ([]byte, error) {
	switch alg {
	case AlgorithmAES256GCM:
		return encryptAESGCM(plaintext, key)
	case AlgorithmTripleDES:
		return encryptTripleDES(plaintext, key)
	case AlgorithmRSAHybrid:
		return encryptHybrid(plaintext, key, rsaPub)
	default:
		return nil, fmt.Errorf("unknown encryption algorithm %q", alg)
	}
}

// Decrypt inverts Encrypt. A wrong key or corrupt ciphertext yields an error
// wrapping common.ErrDecryptionFailed, distinguishable from transport errors.
// AlgorithmRSAHybrid additionally requires the recipient's private key and
// fails with common.ErrMissingPrivateKey when it is absent.
func Decrypt(ciphertext []byte, key Key, alg Algorithm, rsaPriv *rsa.PrivateKey) ([]byte, error) {
	switch alg {
	case AlgorithmAES256GCM:
		return decryptAESGCM(ciphertext, key)
	case AlgorithmTripleDES:
		return decryptTripleDES(ciphertext, key)
	case AlgorithmRSAHybrid:
		return decryptHybrid(ciphertext, key, rsaPriv)
	default:
		return nil, fmt.Errorf("unknown encryption algorithm %q", alg)
	}
}

// AES-256-GCM envelope: nonce || sealed.

func encryptAESGCM(plaintext []byte, key Key) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := common.GenerateRandByteArray(aead.NonceSize())
	sealed := aead.Seal(nil, nonce, plaintext, nil)

	return append(nonce, sealed...), nil
}

func decryptAESGCM(ciphertext []byte, key Key) ([]byte, error) {
	aead, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < aead.NonceSize() {
		return nil, fmt.Errorf("%w: ciphertext too short", common.ErrDecryptionFailed)
	}
	nonce, sealed := ciphertext[:aead.NonceSize()], ciphertext[aead.NonceSize():]

	plaintext, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDecryptionFailed, err)
	}
	return plaintext, nil
}

func newGCM(key Key) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Triple-DES envelope: iv || ct || hmac. CBC gives no integrity, so the
// envelope carries an HMAC-SHA256 over iv||ct (encrypt-then-MAC). The DES key
// is the first 24 bytes of the symmetric key; the MAC key is derived from the
// whole key so the two never coincide.

const tdesMACSize = sha256.Size

func tdesKeys(key Key) (encKey, macKey []byte) {
	mac := sha256.Sum256(append([]byte("mac:"), key...))
	return key[:24], mac[:]
}

func encryptTripleDES(plaintext []byte, key Key) ([]byte, error) {
	encKey, macKey := tdesKeys(key)

	block, err := des.NewTripleDESCipher(encKey)
	if err != nil {
		return nil, err
	}

	padded := padPKCS7(plaintext, block.BlockSize())
	iv := common.GenerateRandByteArray(block.BlockSize())

	ct := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ct, padded)

	envelope := append(iv, ct...)
	h := hmac.New(sha256.New, macKey)
	h.Write(envelope)
	return h.Sum(envelope), nil
}

func decryptTripleDES(ciphertext []byte, key Key) ([]byte, error) {
	encKey, macKey := tdesKeys(key)

	block, err := des.NewTripleDESCipher(encKey)
	if err != nil {
		return nil, err
	}

	bs := block.BlockSize()
	if len(ciphertext) < bs+tdesMACSize || (len(ciphertext)-tdesMACSize)%bs != 0 {
		return nil, fmt.Errorf("%w: malformed ciphertext", common.ErrDecryptionFailed)
	}

	body, tag := ciphertext[:len(ciphertext)-tdesMACSize], ciphertext[len(ciphertext)-tdesMACSize:]
	h := hmac.New(sha256.New, macKey)
	h.Write(body)
	if !hmac.Equal(tag, h.Sum(nil)) {
		return nil, fmt.Errorf("%w: integrity check failed", common.ErrDecryptionFailed)
	}

	iv, ct := body[:bs], body[bs:]
	padded := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(padded, ct)

	plaintext, err := unpadPKCS7(padded, bs)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDecryptionFailed, err)
	}
	return plaintext, nil
}

func padPKCS7(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	return append(data, bytes.Repeat([]byte{byte(n)}, n)...)
}

func unpadPKCS7(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("invalid padded length %d", len(data))
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize || n > len(data) {
		return nil, fmt.Errorf("invalid padding")
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, fmt.Errorf("invalid padding")
		}
	}
	return data[:len(data)-n], nil
}

// Hybrid envelope: wrappedLen(2) || RSA-OAEP(contentKey) || nonce || sealed.
// The inner layer is AES-256-GCM under the delivered symmetric key; the outer
// layer is AES-256-GCM under a fresh content key that only the holder of the
// RSA private key can unwrap. Recovering the plaintext therefore requires
// both secrets.

func encryptHybrid(plaintext []byte, key Key, rsaPub *rsa.PublicKey) ([]byte, error) {
	if rsaPub == nil {
		return nil, fmt.Errorf("hybrid encryption requires the recipient's RSA public key")
	}

	inner, err := encryptAESGCM(plaintext, key)
	if err != nil {
		return nil, err
	}

	contentKey := GenerateKey()
	defer contentKey.Wipe()

	wrapped, err := rsa.EncryptOAEP(sha256.New(), rand.Reader, rsaPub, contentKey, nil)
	if err != nil {
		return nil, fmt.Errorf("wrapping content key: %w", err)
	}

	outer, err := encryptAESGCM(inner, contentKey)
	if err != nil {
		return nil, err
	}

	envelope := make([]byte, 2, 2+len(wrapped)+len(outer))
	binary.BigEndian.PutUint16(envelope, uint16(len(wrapped)))
	envelope = append(envelope, wrapped...)
	return append(envelope, outer...), nil
}

func decryptHybrid(ciphertext []byte, key Key, rsaPriv *rsa.PrivateKey) ([]byte, error) {
	if rsaPriv == nil {
		return nil, common.ErrMissingPrivateKey
	}

	if len(ciphertext) < 2 {
		return nil, fmt.Errorf("%w: malformed ciphertext", common.ErrDecryptionFailed)
	}
	wrappedLen := int(binary.BigEndian.Uint16(ciphertext))
	if len(ciphertext) < 2+wrappedLen {
		return nil, fmt.Errorf("%w: malformed ciphertext", common.ErrDecryptionFailed)
	}
	wrapped, outer := ciphertext[2:2+wrappedLen], ciphertext[2+wrappedLen:]

	contentKey, err := rsa.DecryptOAEP(sha256.New(), rand.Reader, rsaPriv, wrapped, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: unwrapping content key: %v", common.ErrDecryptionFailed, err)
	}
	defer common.WipeByteArray(contentKey)

	inner, err := decryptAESGCM(outer, Key(contentKey))
	if err != nil {
		return nil, err
	}

	return decryptAESGCM(inner, key)
}
