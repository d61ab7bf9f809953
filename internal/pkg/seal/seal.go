// Package seal encrypts small records before they reach the key-value store.
package seal

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/nacl/secretbox"
)

const (
	keySize   = 32
	nonceSize = 24
)

var ErrOpen = errors.New("seal: message authentication failed")

// Box seals and opens messages with a single symmetric key.
type Box struct {
	key [keySize]byte
}

// New builds a Box from a hex-encoded 32-byte key.
func New(hexKey string) (*Box, error) {
	raw, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, fmt.Errorf("seal: decode key: %w", err)
	}
	if len(raw) != keySize {
		return nil, fmt.Errorf("seal: key must be %d bytes, got %d", keySize, len(raw))
	}
	b := &Box{}
	copy(b.key[:], raw)
	return b, nil
}

// NewRandom builds a Box with a fresh key. Sealed data does not survive a restart.
func NewRandom() (*Box, error) {
	b := &Box{}
	if _, err := rand.Read(b.key[:]); err != nil {
		return nil, fmt.Errorf("seal: generate key: %w", err)
	}
	return b, nil
}

// Seal returns nonce || ciphertext.
func (b *Box) Seal(msg []byte) ([]byte, error) {
	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return nil, fmt.Errorf("seal: generate nonce: %w", err)
	}
	return secretbox.Seal(nonce[:], msg, &nonce, &b.key), nil
}

func (b *Box) Open(sealed []byte) ([]byte, error) {
	if len(sealed) < nonceSize+secretbox.Overhead {
		return nil, ErrOpen
	}
	var nonce [nonceSize]byte
	copy(nonce[:], sealed[:nonceSize])
	out, ok := secretbox.Open(nil, sealed[nonceSize:], &nonce, &b.key)
	if !ok {
		return nil, ErrOpen
	}
	return out, nil
}
