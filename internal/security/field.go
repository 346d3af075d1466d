package security

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const (
	SaltSize  = 16
	fieldInfo = "kiln-profile-field"
)

var (
	ErrEmptyKey       = errors.New("key material is empty")
	ErrMalformed      = errors.New("sealed value is malformed")
	ErrAuthentication = errors.New("sealed value failed authentication")
)

// FieldCipher seals single profile values under a passphrase-like key.
// Each Seal draws a fresh salt and nonce, so equal plaintexts never
// produce equal output.
type FieldCipher struct {
	key []byte
}

func NewFieldCipher(key string) (*FieldCipher, error) {
	if key == "" {
		return nil, ErrEmptyKey
	}
	return &FieldCipher{key: []byte(key)}, nil
}

func DeriveKey(key []byte, salt []byte) ([]byte, error) {
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}
	h := hkdf.New(sha256.New, key, salt, []byte(fieldInfo))
	out := make([]byte, chacha20poly1305.KeySize)
	if _, err := io.ReadFull(h, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Seal encrypts plaintext and binds it to name, which must be passed
// unchanged to Open.
func (c *FieldCipher) Seal(name string, plaintext []byte) (string, error) {
	salt := make([]byte, SaltSize)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}
	nonce := make([]byte, chacha20poly1305.NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	aead, err := c.aead(salt)
	if err != nil {
		return "", err
	}
	out := make([]byte, 0, SaltSize+len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	out = aead.Seal(out, nonce, plaintext, []byte(name))
	return base64.RawStdEncoding.EncodeToString(out), nil
}

func (c *FieldCipher) Open(name string, sealed string) ([]byte, error) {
	raw, err := base64.RawStdEncoding.DecodeString(sealed)
	if err != nil {
		return nil, ErrMalformed
	}
	if len(raw) < SaltSize+chacha20poly1305.NonceSize+chacha20poly1305.Overhead {
		return nil, ErrMalformed
	}
	salt := raw[:SaltSize]
	nonce := raw[SaltSize : SaltSize+chacha20poly1305.NonceSize]
	ciphertext := raw[SaltSize+chacha20poly1305.NonceSize:]
	aead, err := c.aead(salt)
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, []byte(name))
	if err != nil {
		return nil, ErrAuthentication
	}
	return plaintext, nil
}

func (c *FieldCipher) aead(salt []byte) (cipher.AEAD, error) {
	key, err := DeriveKey(c.key, salt)
	if err != nil {
		return nil, err
	}
	return chacha20poly1305.New(key)
}
