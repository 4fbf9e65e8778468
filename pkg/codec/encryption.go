package codec

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/sessionlock/pkg/domain"
	"github.com/aretw0/sessionlock/pkg/ports"
)

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new payloads.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

type encryptingSerializer struct {
	next   ports.ItemSerializer
	config EncryptionConfig
}

// NewEncryptingSerializer wraps next so that payload blobs are sealed with AES-GCM.
// The record fields around the payload stay in clear text so lock state remains readable.
func NewEncryptingSerializer(next ports.ItemSerializer, config EncryptionConfig) (ports.ItemSerializer, error) {
	if len(config.ActiveKey) != 32 {
		return nil, fmt.Errorf("%w: active key must be 32 bytes (AES-256)", domain.ErrInvalidConfig)
	}
	for i, k := range config.FallbackKeys {
		if len(k) != 32 {
			return nil, fmt.Errorf("%w: fallback key %d must be 32 bytes", domain.ErrInvalidConfig, i)
		}
	}
	if next == nil {
		next = GobSerializer{}
	}
	return &encryptingSerializer{next: next, config: config}, nil
}

func (s *encryptingSerializer) Serialize(items *domain.Items) ([]byte, error) {
	plainText, err := s.next.Serialize(items)
	if err != nil {
		return nil, err
	}

	ciphertext, err := encrypt(plainText, s.config.ActiveKey)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt items: %w", err)
	}
	return ciphertext, nil
}

func (s *encryptingSerializer) Deserialize(data []byte) (*domain.Items, error) {
	plainText, err := decryptWithRotation(data, s.config.ActiveKey, s.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMalformedPayload, err)
	}
	return s.next.Deserialize(plainText)
}

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}

	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}

	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	return gcm.Open(nil, nonce, ciphertext[gcm.NonceSize():], nil)
}
