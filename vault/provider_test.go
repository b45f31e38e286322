package vault

import (
	"context"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"testing"

	"github.com/rbaliyan/cse"
	"github.com/rbaliyan/cse/csetest"
)

type mockClient struct {
	keys   map[string]string // "keyName:version" -> PEM
	failOn string
}

func (m *mockClient) TransitPublicKey(ctx context.Context, keyName string, version int) (string, error) {
	if keyName == m.failOn {
		return "", fmt.Errorf("vault: permission denied")
	}
	p, ok := m.keys[fmt.Sprintf("%s:%d", keyName, version)]
	if !ok {
		return "", fmt.Errorf("vault: key not found")
	}
	return p, nil
}

func testPEM(t *testing.T) string {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(&csetest.Shared(t).Private.PublicKey)
	if err != nil {
		t.Fatal(err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
}

func TestNew(t *testing.T) {
	client := &mockClient{keys: map[string]string{"transit-key:0": testPEM(t)}}

	provider, err := New(context.Background(), client, "transit-key")
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	key, err := provider.CurrentKey()
	if err != nil {
		t.Fatalf("CurrentKey: %v", err)
	}
	if key.ID != "transit-key" {
		t.Errorf("CurrentKey().ID: got %q, want %q", key.ID, "transit-key")
	}
	if key.Public.N.Cmp(csetest.Shared(t).Private.N) != 0 {
		t.Error("imported modulus does not match the transit key")
	}
}

func TestNewEncryptsUnderTransitKey(t *testing.T) {
	client := &mockClient{keys: map[string]string{"transit-key:0": testPEM(t)}}

	provider, err := New(context.Background(), client, "transit-key")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	enc, err := cse.NewEncryptor(provider)
	if err != nil {
		t.Fatal(err)
	}

	token, err := enc.EncryptCardData(context.Background(), "378282246310005", "2031", "12", "1234", "")
	if err != nil {
		t.Fatalf("EncryptCardData: %v", err)
	}
	fields, err := csetest.Shared(t).DecryptFields(token)
	if err != nil {
		t.Fatalf("DecryptFields: %v", err)
	}
	if len(fields) != 5 || fields[0] != "378282246310005" || fields[4] != "" {
		t.Errorf("unexpected fields %q", fields)
	}
}

func TestNewWithVersion(t *testing.T) {
	client := &mockClient{keys: map[string]string{"transit-key:3": testPEM(t)}}

	provider, err := New(context.Background(), client, "transit-key", WithVersion(3))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	key, _ := provider.CurrentKey()
	if key.ID != "transit-key:v3" {
		t.Errorf("got %q, want %q", key.ID, "transit-key:v3")
	}
}

func TestNewWithKeyID(t *testing.T) {
	client := &mockClient{keys: map[string]string{"transit-key:0": testPEM(t)}}

	provider, err := New(context.Background(), client, "transit-key", WithKeyID("gateway"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	key, _ := provider.CurrentKey()
	if key.ID != "gateway" {
		t.Errorf("got %q, want %q", key.ID, "gateway")
	}
}

func TestNewReadFailure(t *testing.T) {
	client := &mockClient{failOn: "transit-key"}

	if _, err := New(context.Background(), client, "transit-key"); err == nil {
		t.Error("expected error for read failure")
	}
}

func TestNewRejectsMalformedPEM(t *testing.T) {
	client := &mockClient{keys: map[string]string{"transit-key:0": "-----BEGIN NOTHING-----"}}

	_, err := New(context.Background(), client, "transit-key")
	if !cse.IsInvalidKeyMaterial(err) {
		t.Errorf("expected ErrInvalidKeyMaterial, got %v", err)
	}
}

func TestNewArgumentErrors(t *testing.T) {
	if _, err := New(context.Background(), nil, "transit-key"); err == nil {
		t.Error("expected error for nil client")
	}
	if _, err := New(context.Background(), &mockClient{}, ""); err == nil {
		t.Error("expected error for empty key name")
	}
	if _, err := New(context.Background(), &mockClient{}, "transit-key", WithVersion(-1)); err == nil {
		t.Error("expected error for negative version")
	}
}
