package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"io"
	"log/slog"
	"strings"
)

// ErrDecryptionFailed is returned for any ciphertext the vault cannot open:
// wrong key, truncation, or tampering. Stored tokens that hit this error are
// unusable and the account must be reconnected.
var ErrDecryptionFailed = errors.New("decryption failed")

var ErrMissingKey = errors.New("token encryption key is not configured")

// Vault encrypts OAuth tokens before they reach the database and decrypts
// them on the way out. AES-256-GCM with a fresh nonce per call; the nonce is
// prepended to the output, colon-delimited, so a ciphertext is self-contained
// given the vault key.
type Vault struct {
	key []byte
}

// NewVault builds a vault from a 64-hex-char key. In production a missing or
// malformed key is a hard error. Outside production an ephemeral random key
// is generated instead, which makes stored tokens unrecoverable across
// restarts, so it is logged as unsafe.
func NewVault(hexKey string, production bool) (*Vault, error) {
	if hexKey == "" {
		if production {
			return nil, ErrMissingKey
		}
		key := make([]byte, 32)
		if _, err := io.ReadFull(rand.Reader, key); err != nil {
			return nil, err
		}
		slog.Warn("TOKEN_ENCRYPTION_KEY not set, using an ephemeral key; stored tokens will not survive a restart")
		return &Vault{key: key}, nil
	}

	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, errors.New("token encryption key must be hex encoded")
	}
	if len(key) != 32 {
		return nil, errors.New("token encryption key must be 32 bytes")
	}
	return &Vault{key: key}, nil
}

func (v *Vault) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(v.key)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	nonce := make([]byte, aesGCM.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		slog.Info(err.Error())
		return "", err
	}

	ciphertext := aesGCM.Seal(nil, nonce, []byte(plaintext), nil)

	return hex.EncodeToString(nonce) + ":" + hex.EncodeToString(ciphertext), nil
}

func (v *Vault) Decrypt(encrypted string) (string, error) {
	parts := strings.SplitN(encrypted, ":", 2)
	if len(parts) != 2 {
		return "", ErrDecryptionFailed
	}

	nonce, err := hex.DecodeString(parts[0])
	if err != nil {
		return "", ErrDecryptionFailed
	}
	ciphertext, err := hex.DecodeString(parts[1])
	if err != nil {
		return "", ErrDecryptionFailed
	}

	block, err := aes.NewCipher(v.key)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		slog.Info(err.Error())
		return "", err
	}

	if len(nonce) != aesGCM.NonceSize() {
		return "", ErrDecryptionFailed
	}

	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrDecryptionFailed
	}

	return string(plaintext), nil
}
