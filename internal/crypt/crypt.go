// Package crypt holds the primitives behind encrypted data files:
// PBKDF2-HMAC-SHA1 key derivation, a SHA-256 password check value and
// AES-256 in CBC mode.
package crypt

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"

	"golang.org/x/crypto/pbkdf2"
)

const (
	KeySize        = 32
	SaltSize       = 16
	HashSize       = sha256.Size
	BlockSize      = aes.BlockSize
	Iterations     = 4096
	MaxPasswordLen = 32
)

var ErrBlockSize = errors.New("data is not a multiple of the cipher block size")

// truncatePassword keeps at most MaxPasswordLen bytes. Both the key and
// the check hash are computed over the same truncated bytes.
func truncatePassword(password []byte) []byte {
	if len(password) > MaxPasswordLen {
		return password[:MaxPasswordLen]
	}
	return password
}

// DeriveKey returns the AES-256 key for password and salt.
func DeriveKey(password, salt []byte) []byte {
	return pbkdf2.Key(truncatePassword(password), salt, Iterations, KeySize, sha1.New)
}

// HashPassword returns the unsalted check value stored in file headers.
// It only answers "is this the right password"; it is never a key.
func HashPassword(password []byte) [HashSize]byte {
	return sha256.Sum256(truncatePassword(password))
}

// CheckPassword compares password against a stored check value.
func CheckPassword(password []byte, hash [HashSize]byte) bool {
	got := HashPassword(password)
	return subtle.ConstantTimeCompare(got[:], hash[:]) == 1
}

func NewSalt() ([SaltSize]byte, error) {
	var salt [SaltSize]byte
	if _, err := rand.Read(salt[:]); err != nil {
		return salt, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

// EncryptCBC encrypts plaintext under a random IV that is not returned.
// Callers put a throwaway block first so the IV never matters on decryption.
func EncryptCBC(key, plaintext []byte) ([]byte, error) {
	if len(plaintext)%BlockSize != 0 {
		return nil, fmt.Errorf("encrypt %d bytes: %w", len(plaintext), ErrBlockSize)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	iv := make([]byte, BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, fmt.Errorf("generate iv: %w", err)
	}
	out := make([]byte, len(plaintext))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out, plaintext)
	return out, nil
}

// DecryptCBC decrypts with an all-zero IV. Only the first block depends on
// the IV, so it comes back as garbage and must be discarded.
func DecryptCBC(key, ciphertext []byte) ([]byte, error) {
	if len(ciphertext)%BlockSize != 0 {
		return nil, fmt.Errorf("decrypt %d bytes: %w", len(ciphertext), ErrBlockSize)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, make([]byte, BlockSize)).CryptBlocks(out, ciphertext)
	return out, nil
}
