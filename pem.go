package cse

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
)

// PEM block types accepted by RawKeyFromPEM.
const (
	pemPublicKey    = "PUBLIC KEY"
	pemRSAPublicKey = "RSA PUBLIC KEY"
)

// RawKeyFromPKIX extracts the raw material of a DER encoded
// SubjectPublicKeyInfo holding an RSA key, as returned by cloud KMS
// public key endpoints.
func RawKeyFromPKIX(der []byte) (RawKey, error) {
	pub, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return RawKey{}, fmt.Errorf("%w: %v", ErrInvalidKeyMaterial, err)
	}
	rsaPub, ok := pub.(*rsa.PublicKey)
	if !ok {
		return RawKey{}, fmt.Errorf("%w: expected an RSA key, got %T", ErrInvalidKeyMaterial, pub)
	}
	return RawKeyFromPublicKey(rsaPub), nil
}

// RawKeyFromPEM extracts the raw material of the first PEM block in data.
// Both "PUBLIC KEY" (SubjectPublicKeyInfo) and "RSA PUBLIC KEY" (PKCS #1)
// blocks are accepted.
func RawKeyFromPEM(data []byte) (RawKey, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return RawKey{}, fmt.Errorf("%w: no PEM block found", ErrInvalidKeyMaterial)
	}

	switch block.Type {
	case pemPublicKey:
		return RawKeyFromPKIX(block.Bytes)
	case pemRSAPublicKey:
		pub, err := x509.ParsePKCS1PublicKey(block.Bytes)
		if err != nil {
			return RawKey{}, fmt.Errorf("%w: %v", ErrInvalidKeyMaterial, err)
		}
		return RawKeyFromPublicKey(pub), nil
	default:
		return RawKey{}, fmt.Errorf("%w: unsupported PEM block %q", ErrInvalidKeyMaterial, block.Type)
	}
}
