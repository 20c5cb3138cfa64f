package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

const (
	// KeySize - размер master key для AES-256
	KeySize = 32
	// NonceSize - размер nonce для AES-GCM (12 bytes стандартный размер)
	NonceSize = 12
	// TagSize - размер authentication tag GCM
	TagSize = 16

	blobVersion   = "v1"
	blobSeparator = ":"
)

// ErrDecryption is returned by Open when a sealed blob cannot be
// authenticated: it was tampered with, corrupted, or sealed under another key.
var ErrDecryption = errors.New("failed to decrypt: authentication failed or corrupted data")

// blobEncoding is strict so that every change to an encoded part changes
// the decoded bytes or fails decoding.
var blobEncoding = base64.RawStdEncoding.Strict()

// Sealer encrypts and decrypts secret values with a process-wide master key
// using AES-256-GCM.
//
// Sealed blob format: v1:<nonce>:<tag>:<ciphertext>, each part base64
// (standard alphabet, no padding).
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer creates a Sealer for the given 32-byte master key.
func NewSealer(key []byte) (*Sealer, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("encryption key must be %d bytes, got %d", KeySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	return &Sealer{aead: aead}, nil
}

// Seal encrypts plaintext under a fresh random nonce and returns the sealed blob.
func (s *Sealer) Seal(plaintext []byte) (string, error) {
	// Новый nonce на каждый вызов, повтор nonce с тем же ключом недопустим
	nonce := make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	// GCM добавляет authentication tag в конец ciphertext
	sealed := s.aead.Seal(nil, nonce, plaintext, nil)
	ciphertext := sealed[:len(sealed)-TagSize]
	tag := sealed[len(sealed)-TagSize:]

	return strings.Join([]string{
		blobVersion,
		blobEncoding.EncodeToString(nonce),
		blobEncoding.EncodeToString(tag),
		blobEncoding.EncodeToString(ciphertext),
	}, blobSeparator), nil
}

// Open verifies and decrypts a blob produced by Seal.
// Any parse or authentication failure yields ErrDecryption and no plaintext.
func (s *Sealer) Open(blob string) ([]byte, error) {
	parts := strings.Split(blob, blobSeparator)
	if len(parts) != 4 || parts[0] != blobVersion {
		return nil, ErrDecryption
	}

	nonce, err := blobEncoding.DecodeString(parts[1])
	if err != nil || len(nonce) != NonceSize {
		return nil, ErrDecryption
	}

	tag, err := blobEncoding.DecodeString(parts[2])
	if err != nil || len(tag) != TagSize {
		return nil, ErrDecryption
	}

	ciphertext, err := blobEncoding.DecodeString(parts[3])
	if err != nil {
		return nil, ErrDecryption
	}

	sealed := make([]byte, 0, len(ciphertext)+TagSize)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := s.aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, ErrDecryption
	}

	return plaintext, nil
}
