package cse_test

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"testing"

	"github.com/rbaliyan/cse"
	"github.com/rbaliyan/cse/csetest"
)

func TestRawKeyFromPEM(t *testing.T) {
	kp := csetest.Shared(t)
	want := kp.RawKey()

	pkix, err := x509.MarshalPKIXPublicKey(&kp.Private.PublicKey)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		block *pem.Block
	}{
		{"pkix", &pem.Block{Type: "PUBLIC KEY", Bytes: pkix}},
		{"pkcs1", &pem.Block{Type: "RSA PUBLIC KEY", Bytes: x509.MarshalPKCS1PublicKey(&kp.Private.PublicKey)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := cse.RawKeyFromPEM(pem.EncodeToMemory(tt.block))
			if err != nil {
				t.Fatalf("RawKeyFromPEM: %v", err)
			}
			if !bytes.Equal(got.Modulus, want.Modulus) || !bytes.Equal(got.Exponent, want.Exponent) {
				t.Error("key material did not match the generated key")
			}
		})
	}
}

func TestRawKeyFromPEMErrors(t *testing.T) {
	ecKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	ecDER, err := x509.MarshalPKIXPublicKey(&ecKey.PublicKey)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"not pem", []byte("hello")},
		{"wrong block", pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: []byte{1}})},
		{"garbage pkix", pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: []byte{1, 2, 3}})},
		{"garbage pkcs1", pem.EncodeToMemory(&pem.Block{Type: "RSA PUBLIC KEY", Bytes: []byte{1, 2, 3}})},
		{"ec key", pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: ecDER})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := cse.RawKeyFromPEM(tt.data); !cse.IsInvalidKeyMaterial(err) {
				t.Errorf("expected ErrInvalidKeyMaterial, got %v", err)
			}
		})
	}
}

func TestRawKeyFromPKIXBuildsProvider(t *testing.T) {
	kp := csetest.Shared(t)
	der, err := x509.MarshalPKIXPublicKey(&kp.Private.PublicKey)
	if err != nil {
		t.Fatal(err)
	}

	raw, err := cse.RawKeyFromPKIX(der)
	if err != nil {
		t.Fatalf("RawKeyFromPKIX: %v", err)
	}
	p, err := cse.NewStaticKeyProvider(raw, "pkix")
	if err != nil {
		t.Fatalf("NewStaticKeyProvider: %v", err)
	}
	key, err := p.CurrentKey()
	if err != nil {
		t.Fatal(err)
	}
	if key.Public.N.Cmp(kp.Private.N) != 0 {
		t.Error("imported modulus does not match")
	}
}
