package config

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/scrypt"
)

const (
	passFile = ".pass"
	saltFile = ".salt"
	keyLen   = 32
	saltLen  = 32
	nonceLen = 12
)

// Crypto encrypts the database URL at rest with AES-GCM. The key is derived
// via scrypt from a random passphrase and salt stored under the user's
// config directory, so config files are only readable on the machine that
// wrote them.
type Crypto struct {
	key []byte
}

// NewCrypto loads or generates the key material.
func NewCrypto() (*Crypto, error) {
	configDir, err := configDir()
	if err != nil {
		return nil, err
	}

	pass, err := loadOrGenerate(filepath.Join(configDir, passFile), keyLen)
	if err != nil {
		return nil, err
	}
	salt, err := loadOrGenerate(filepath.Join(configDir, saltFile), saltLen)
	if err != nil {
		return nil, err
	}

	key, err := deriveKey(pass, salt)
	if err != nil {
		return nil, err
	}
	return &Crypto{key: key}, nil
}

// Encrypt seals plaintext and returns base64(nonce || ciphertext).
func (c *Crypto) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}

	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	ciphertext := aesgcm.Seal(nil, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(append(nonce, ciphertext...)), nil
}

// Decrypt reverses Encrypt.
func (c *Crypto) Decrypt(encrypted string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return "", err
	}
	if len(data) < nonceLen {
		return "", errors.New("invalid encrypted data")
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	plaintext, err := aesgcm.Open(nil, data[:nonceLen], data[nonceLen:], nil)
	if err != nil {
		return "", err
	}
	return string(plaintext), nil
}

func loadOrGenerate(path string, length int) ([]byte, error) {
	if data, err := os.ReadFile(path); err == nil && len(data) == length {
		return data, nil
	}

	data := make([]byte, length)
	if _, err := rand.Read(data); err != nil {
		return nil, err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return nil, err
	}
	return data, nil
}

func configDir() (string, error) {
	// Overridable for tests and containers.
	if dir := os.Getenv(envPrefix + "CONFIG_DIR"); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return "", err
		}
		return dir, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(homeDir, ".sql-batch-runner")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

func deriveKey(pass, salt []byte) ([]byte, error) {
	return scrypt.Key(pass, salt, 32768, 8, 1, keyLen)
}
