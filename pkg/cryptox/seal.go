package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// sealedPrefix marks a value produced by Sealer.SealString. Values without it
// are treated as legacy plaintext when opened.
const sealedPrefix = "gcm1:"

var ErrSealedValue = errors.New("cryptox: cannot open sealed value")

// Sealer encrypts token secrets at rest with AES-256-GCM.
// Output layout before encoding: [12-byte nonce][ciphertext][16-byte tag].
type Sealer struct {
	aead      cipher.AEAD
	ephemeral bool
}

// NewSealer derives a 256-bit key from arbitrary key material.
func NewSealer(material []byte) (*Sealer, error) {
	if len(material) == 0 {
		return nil, errors.New("cryptox: empty key material")
	}
	key := sha256.Sum256(material)

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &Sealer{aead: gcm}, nil
}

// LoadSealer picks key material from, in order: the file at path, the
// envKey environment variable, or a random key that only lives as long as the
// process (secrets written with it are unreadable after a restart).
func LoadSealer(path, envKey string) (*Sealer, error) {
	switch {
	case path != "":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read master key file: %w", err)
		}
		return NewSealer([]byte(strings.TrimSpace(string(data))))
	case envKey != "" && os.Getenv(envKey) != "":
		return NewSealer([]byte(os.Getenv(envKey)))
	default:
		material := make([]byte, 32)
		if _, err := rand.Read(material); err != nil {
			return nil, fmt.Errorf("failed to generate ephemeral master key: %w", err)
		}
		s, err := NewSealer(material)
		if err != nil {
			return nil, err
		}
		s.ephemeral = true
		return s, nil
	}
}

// Ephemeral reports whether the key was generated for this process only.
func (s *Sealer) Ephemeral() bool { return s.ephemeral }

func (s *Sealer) Seal(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return s.aead.Seal(nonce, nonce, plaintext, nil), nil
}

func (s *Sealer) Open(sealed []byte) ([]byte, error) {
	n := s.aead.NonceSize()
	if len(sealed) < n {
		return nil, fmt.Errorf("%w: ciphertext too short", ErrSealedValue)
	}
	plaintext, err := s.aead.Open(nil, sealed[:n], sealed[n:], nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSealedValue, err)
	}
	return plaintext, nil
}

// SealString seals a string column value. Empty strings stay empty so that
// optional columns remain distinguishable.
func (s *Sealer) SealString(v string) (string, error) {
	if v == "" {
		return "", nil
	}
	out, err := s.Seal([]byte(v))
	if err != nil {
		return "", err
	}
	return sealedPrefix + base64.RawStdEncoding.EncodeToString(out), nil
}

func (s *Sealer) OpenString(v string) (string, error) {
	raw, ok := strings.CutPrefix(v, sealedPrefix)
	if !ok {
		return v, nil
	}
	data, err := base64.RawStdEncoding.DecodeString(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSealedValue, err)
	}
	out, err := s.Open(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
