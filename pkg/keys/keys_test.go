package keys

import (
	"bytes"
	"testing"
)

func newCipher(t *testing.T) (*MasterKeyCipher, []byte) {
	t.Helper()
	master, err := GenerateMasterKey()
	if err != nil {
		t.Fatalf("GenerateMasterKey() error = %v", err)
	}
	c, err := NewMasterKeyCipher(master)
	if err != nil {
		t.Fatalf("NewMasterKeyCipher() error = %v", err)
	}
	return c, master
}

func TestEncryptDecrypt(t *testing.T) {
	c, _ := newCipher(t)
	priv, _, err := GenerateSignerKey()
	if err != nil {
		t.Fatalf("GenerateSignerKey() error = %v", err)
	}

	sealed, err := c.Encrypt(priv)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	again, _ := c.Encrypt(priv)
	if sealed == again {
		t.Fatal("expected a fresh nonce per encryption")
	}

	opened, err := c.Decrypt(sealed)
	if err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if !bytes.Equal(opened, priv) {
		t.Fatal("decrypted key does not match original")
	}
}

func TestDecryptWithWrongMasterKey(t *testing.T) {
	c1, _ := newCipher(t)
	c2, _ := newCipher(t)
	priv, _, _ := GenerateSignerKey()

	sealed, err := c1.Encrypt(priv)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}
	if _, err := c2.Decrypt(sealed); err == nil {
		t.Fatal("expected decryption with another master key to fail")
	}
}

func TestNewMasterKeyCipher_InvalidSize(t *testing.T) {
	if _, err := NewMasterKeyCipher(make([]byte, 16)); err == nil {
		t.Fatal("expected error for 16-byte master key")
	}
}

func TestEncrypt_InvalidKeySize(t *testing.T) {
	c, _ := newCipher(t)
	if _, err := c.Encrypt(make([]byte, 31)); err == nil {
		t.Fatal("expected error for short private key")
	}
}

func TestLoadSigners(t *testing.T) {
	c, _ := newCipher(t)
	priv, addr, _ := GenerateSignerKey()
	sealed, _ := c.Encrypt(priv)

	signers, err := LoadSigners(c, []string{sealed})
	if err != nil {
		t.Fatalf("LoadSigners() error = %v", err)
	}
	if _, ok := signers[addr]; !ok {
		t.Fatalf("expected signer for %s", addr.Hex())
	}

	if _, err := LoadSigners(c, []string{"not-base64!"}); err == nil {
		t.Fatal("expected error for malformed sealed key")
	}
}

func TestMasterKeyBase64RoundTrip(t *testing.T) {
	_, master := newCipher(t)
	decoded, err := MasterKeyFromBase64(MasterKeyToBase64(master))
	if err != nil {
		t.Fatalf("MasterKeyFromBase64() error = %v", err)
	}
	if !bytes.Equal(decoded, master) {
		t.Fatal("master key changed across encoding")
	}
	if _, err := MasterKeyFromBase64("c2hvcnQ="); err == nil {
		t.Fatal("expected error for short master key")
	}
}
