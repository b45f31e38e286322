package cse

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha1"
	"io"
)

// Encrypter is the RSA encryption primitive the Encryptor delegates to.
type Encrypter interface {
	// Encrypt encrypts plaintext under pub. Errors are reported to the caller
	// wrapped in an *EncryptionError.
	Encrypt(pub *rsa.PublicKey, plaintext []byte) ([]byte, error)
}

// EncrypterFunc adapts a function to the Encrypter interface.
type EncrypterFunc func(pub *rsa.PublicKey, plaintext []byte) ([]byte, error)

// Encrypt calls f(pub, plaintext).
func (f EncrypterFunc) Encrypt(pub *rsa.PublicKey, plaintext []byte) ([]byte, error) {
	return f(pub, plaintext)
}

// oaepSHA1 encrypts with RSA-OAEP using SHA-1 for both the hash and MGF1,
// with an empty label. This is the padding the gateway decrypts.
type oaepSHA1 struct {
	random io.Reader
}

// OAEPSHA1 returns the RSA-OAEP/SHA-1 encrypter reading randomness from
// random. A nil random uses crypto/rand.
func OAEPSHA1(random io.Reader) Encrypter {
	if random == nil {
		random = rand.Reader
	}
	return oaepSHA1{random: random}
}

func (o oaepSHA1) Encrypt(pub *rsa.PublicKey, plaintext []byte) ([]byte, error) {
	return rsa.EncryptOAEP(sha1.New(), o.random, pub, plaintext, nil)
}
