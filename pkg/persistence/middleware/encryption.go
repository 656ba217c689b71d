package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/steltz/stepper/pkg/domain"
	"github.com/steltz/stepper/pkg/ports"
)

// EnvelopeKey is the only answer key of an encrypted submission.
const EnvelopeKey = "__encrypted__"

// ErrNotReadable is returned by Get when the wrapped sink cannot read back.
var ErrNotReadable = errors.New("sink does not support reading submissions")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.CompletionSink
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that seals the answers of each
// submission with AES-GCM. ID, session and time stay readable for indexing.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if len(config.ActiveKey) != 32 {
		return nil, errors.New("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.CompletionSink) ports.CompletionSink {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}, nil
}

func (m *encryptionMiddleware) Submit(ctx context.Context, sub domain.Submission) error {
	plainText, err := json.Marshal(sub.Answers)
	if err != nil {
		return fmt.Errorf("failed to marshal answers: %w", err)
	}

	ciphertext, err := encrypt(plainText, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt answers: %w", err)
	}

	sub.Answers = map[string]string{
		EnvelopeKey: base64.StdEncoding.EncodeToString(ciphertext),
	}
	return m.next.Submit(ctx, sub)
}

// Get reads the envelope back from the wrapped sink and opens it.
func (m *encryptionMiddleware) Get(ctx context.Context, id string) (domain.Submission, error) {
	sub, err := get(ctx, m.next, id)
	if err != nil {
		return domain.Submission{}, err
	}

	encryptedStr, ok := sub.Answers[EnvelopeKey]
	if !ok {
		// Fail secure: a configured key means every submission is sealed.
		return domain.Submission{}, errors.New("submission is missing encrypted data envelope")
	}

	ciphertext, err := base64.StdEncoding.DecodeString(encryptedStr)
	if err != nil {
		return domain.Submission{}, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return domain.Submission{}, fmt.Errorf("failed to decrypt answers: %w", err)
	}

	var answers map[string]string
	if err := json.Unmarshal(plainText, &answers); err != nil {
		return domain.Submission{}, fmt.Errorf("failed to unmarshal decrypted answers: %w", err)
	}
	sub.Answers = answers
	return sub, nil
}

// Helpers

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
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
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	return gcm.Open(nil, nonce, ciphertext[gcm.NonceSize():], nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
