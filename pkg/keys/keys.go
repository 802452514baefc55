// Package keys encrypts custodial secp256k1 signing keys for storage in configuration.
// Keys are sealed with AES-256-GCM under a key derived from the master key with HKDF-SHA256.
package keys

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/hkdf"
)

const (
	masterKeySize = 32
	privateKeyLen = 32
)

// hkdfInfo binds derived keys to this use; changing it invalidates every stored key.
var hkdfInfo = []byte("registrar-signer-key-v1")

// KeyCipher seals and opens signing keys
type KeyCipher interface {
	Encrypt(privateKey []byte) (string, error)
	Decrypt(encrypted string) ([]byte, error)
}

// MasterKeyCipher implements KeyCipher for a 32-byte master key
type MasterKeyCipher struct {
	aead cipher.AEAD
}

// NewMasterKeyCipher derives the sealing key from masterKey
func NewMasterKeyCipher(masterKey []byte) (*MasterKeyCipher, error) {
	if len(masterKey) != masterKeySize {
		return nil, fmt.Errorf("master key must be %d bytes (AES-256)", masterKeySize)
	}

	derived := make([]byte, masterKeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, masterKey, nil, hkdfInfo), derived); err != nil {
		return nil, fmt.Errorf("failed to derive sealing key: %w", err)
	}

	block, err := aes.NewCipher(derived)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &MasterKeyCipher{aead: aead}, nil
}

// Encrypt returns base64(nonce || ciphertext || tag)
func (c *MasterKeyCipher) Encrypt(privateKey []byte) (string, error) {
	if len(privateKey) != privateKeyLen {
		return "", fmt.Errorf("private key must be %d bytes (secp256k1)", privateKeyLen)
	}

	nonce := make([]byte, c.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := c.aead.Seal(nonce, nonce, privateKey, nil)
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Decrypt reverses Encrypt
func (c *MasterKeyCipher) Decrypt(encrypted string) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}

	nonceSize := c.aead.NonceSize()
	if len(raw) < nonceSize {
		return nil, fmt.Errorf("ciphertext too short")
	}
	plaintext, err := c.aead.Open(nil, raw[:nonceSize], raw[nonceSize:], nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	if len(plaintext) != privateKeyLen {
		return nil, fmt.Errorf("decrypted key has wrong size: got %d, want %d", len(plaintext), privateKeyLen)
	}
	return plaintext, nil
}

// LoadSigners decrypts every sealed key and indexes it by its Ethereum address
func LoadSigners(kc KeyCipher, sealed []string) (map[common.Address]*ecdsa.PrivateKey, error) {
	signers := make(map[common.Address]*ecdsa.PrivateKey, len(sealed))
	for i, enc := range sealed {
		raw, err := kc.Decrypt(enc)
		if err != nil {
			return nil, fmt.Errorf("signer key %d: %w", i, err)
		}
		pk, err := crypto.ToECDSA(raw)
		if err != nil {
			return nil, fmt.Errorf("signer key %d: invalid secp256k1 key: %w", i, err)
		}
		signers[crypto.PubkeyToAddress(pk.PublicKey)] = pk
	}
	return signers, nil
}

// GenerateSignerKey creates a new secp256k1 key and returns it with its address
func GenerateSignerKey() ([]byte, common.Address, error) {
	pk, err := crypto.GenerateKey()
	if err != nil {
		return nil, common.Address{}, fmt.Errorf("failed to generate secp256k1 keypair: %w", err)
	}
	return crypto.FromECDSA(pk), crypto.PubkeyToAddress(pk.PublicKey), nil
}

// GenerateMasterKey returns 32 random bytes suitable for NewMasterKeyCipher
func GenerateMasterKey() ([]byte, error) {
	key := make([]byte, masterKeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("failed to generate master key: %w", err)
	}
	return key, nil
}

// MasterKeyFromBase64 decodes a base64-encoded master key
func MasterKeyFromBase64(encoded string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode master key: %w", err)
	}
	if len(key) != masterKeySize {
		return nil, fmt.Errorf("master key must be %d bytes, got %d", masterKeySize, len(key))
	}
	return key, nil
}

// MasterKeyToBase64 encodes a master key for an environment variable
func MasterKeyToBase64(key []byte) string {
	return base64.StdEncoding.EncodeToString(key)
}
