// Package crypto seals seen-set snapshots at rest.
//
// Snapshots name coders and problems; when they are kept somewhere shared, such
// as a Gist, an Encryptor wraps each value with AES-256-GCM under a key derived
// from a passphrase.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/pbkdf2"
)

const (
	iterations = 100000
	keySize    = 32 // AES-256

	// sealedPrefix marks values written by Encrypt. Values without it were
	// stored before encryption was turned on and are returned as they are.
	sealedPrefix = "enc:v1:"
)

// ErrCiphertextTooShort is returned for sealed values shorter than a nonce
var ErrCiphertextTooShort = errors.New("ciphertext too short")

// Encryptor handles encryption and decryption of stored snapshots
type Encryptor struct {
	aead cipher.AEAD
}

// NewEncryptor creates a new encryptor with the given passphrase.
// An empty passphrase yields nil, which encrypts nothing.
func NewEncryptor(passphrase string) *Encryptor {
	if passphrase == "" {
		return nil
	}

	// Salt is derived from the passphrase; nothing is stored beside the data.
	salt := sha256.Sum256([]byte(passphrase + "timus-feed-salt"))
	key := pbkdf2.Key([]byte(passphrase), salt[:], iterations, keySize, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		// keySize is a valid AES key length
		panic(err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		panic(err)
	}

	return &Encryptor{aead: aead}
}

// IsSealed reports whether a stored value was produced by Encrypt
func IsSealed(value []byte) bool {
	return strings.HasPrefix(string(value), sealedPrefix)
}

// Encrypt seals plaintext. A nil Encryptor returns the input unchanged.
func (e *Encryptor) Encrypt(plaintext []byte) ([]byte, error) {
	if e == nil {
		return plaintext, nil
	}

	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}

	sealed := e.aead.Seal(nonce, nonce, plaintext, nil)
	return []byte(sealedPrefix + base64.StdEncoding.EncodeToString(sealed)), nil
}

// Decrypt opens a value produced by Encrypt. Values without the sealed prefix
// are returned unchanged; sealed values that fail to open are an error.
func (e *Encryptor) Decrypt(value []byte) ([]byte, error) {
	if !IsSealed(value) {
		return value, nil
	}
	if e == nil {
		return nil, errors.New("value is encrypted but no key is configured")
	}

	data, err := base64.StdEncoding.DecodeString(string(value[len(sealedPrefix):]))
	if err != nil {
		return nil, fmt.Errorf("decoding sealed value: %w", err)
	}

	nonceSize := e.aead.NonceSize()
	if len(data) < nonceSize {
		return nil, ErrCiphertextTooShort
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := e.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("opening sealed value: %w", err)
	}
	return plaintext, nil
}
