// Package csetest provides disposable RSA key pairs for testing code that
// produces card tokens.
//
// The gateway private key is never available outside the gateway, so tests
// encrypt under a throwaway key pair instead and open the resulting tokens
// with Decrypt:
//
//	kp := csetest.Shared(t)
//	enc, _ := cse.NewEncryptor(kp.Provider(t))
//	token, _ := enc.EncryptCardData(ctx, number, year, month, cvc, name)
//	plaintext, _ := kp.Decrypt(token)
package csetest

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/rbaliyan/cse"
	"github.com/youmark/pkcs8"
)

// DefaultBits is the modulus size of generated key pairs.
const DefaultBits = 2048

// tokenPrefix is the version tag every token starts with.
const tokenPrefix = "001"

// pemType is the PEM block type of an encrypted PKCS#8 private key.
const pemType = "ENCRYPTED PRIVATE KEY"

// KeyPair is a throwaway RSA key pair.
type KeyPair struct {
	Private *rsa.PrivateKey
}

// GenerateKeyPair creates a key pair with a modulus of the given size.
func GenerateKeyPair(bits int) (*KeyPair, error) {
	priv, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("csetest: generate key: %w", err)
	}
	return &KeyPair{Private: priv}, nil
}

var shared = sync.OnceValues(func() (*KeyPair, error) {
	return GenerateKeyPair(DefaultBits)
})

// Shared returns a key pair generated once per test binary.
func Shared(tb testing.TB) *KeyPair {
	tb.Helper()
	kp, err := shared()
	if err != nil {
		tb.Fatalf("csetest: %v", err)
	}
	return kp
}

// RawKey returns the public key material in the form the gateway key is embedded.
func (k *KeyPair) RawKey() cse.RawKey {
	return cse.RawKeyFromPublicKey(&k.Private.PublicKey)
}

// Provider returns a StaticKeyProvider for the public half of the pair.
func (k *KeyPair) Provider(tb testing.TB) *cse.StaticKeyProvider {
	tb.Helper()
	p, err := cse.NewStaticKeyProvider(k.RawKey(), "csetest")
	if err != nil {
		tb.Fatalf("csetest: provider: %v", err)
	}
	return p
}

// Decrypt opens a token produced under the public half of the pair and
// returns the plaintext.
func (k *KeyPair) Decrypt(token string) (string, error) {
	if !strings.HasPrefix(token, tokenPrefix) {
		return "", fmt.Errorf("csetest: token does not start with %q", tokenPrefix)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(token[len(tokenPrefix):])
	if err != nil {
		return "", fmt.Errorf("csetest: decode token: %w", err)
	}
	plaintext, err := rsa.DecryptOAEP(sha1.New(), nil, k.Private, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("csetest: decrypt token: %w", err)
	}
	return string(plaintext), nil
}

// DecryptFields is Decrypt split on the field separator. Cardholder names
// containing commas come back split as well.
func (k *KeyPair) DecryptFields(token string) ([]string, error) {
	plaintext, err := k.Decrypt(token)
	if err != nil {
		return nil, err
	}
	return strings.Split(plaintext, ","), nil
}

// MarshalEncryptedPEM encodes the private key as a password protected
// PKCS#8 PEM block, so a key pair can be shared with a gateway test double.
func (k *KeyPair) MarshalEncryptedPEM(password []byte) ([]byte, error) {
	if len(password) == 0 {
		return nil, errors.New("csetest: password is required")
	}
	der, err := pkcs8.MarshalPrivateKey(k.Private, password, nil)
	if err != nil {
		return nil, fmt.Errorf("csetest: marshal PKCS#8: %w", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: pemType, Bytes: der}), nil
}

// LoadEncryptedPEM reads the first encrypted PKCS#8 RSA key from pemBytes.
func LoadEncryptedPEM(pemBytes, password []byte) (*KeyPair, error) {
	if len(password) == 0 {
		return nil, errors.New("csetest: password is required")
	}

	for len(pemBytes) > 0 {
		var block *pem.Block
		block, pemBytes = pem.Decode(pemBytes)
		if block == nil {
			break
		}
		if block.Type != pemType {
			continue
		}

		priv, err := pkcs8.ParsePKCS8PrivateKeyRSA(block.Bytes, password)
		if err != nil {
			return nil, fmt.Errorf("csetest: decrypt PKCS#8: %w", err)
		}
		return &KeyPair{Private: priv}, nil
	}

	return nil, errors.New("csetest: no ENCRYPTED PRIVATE KEY block found in PEM")
}
