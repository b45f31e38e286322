package cse

import (
	"fmt"
	"sync"
)

// GatewayKeyID identifies the embedded gateway key.
const GatewayKeyID = "gateway"

// StaticKeyProvider is a KeyProvider backed by in-memory key material.
// The key structure is built and imported once at construction; the provider
// is read-only afterwards and safe for concurrent use.
type StaticKeyProvider struct {
	key Key
	raw RawKey
}

// NewStaticKeyProvider builds and imports the key structure for raw.
// The id identifies this key. Key bytes are copied internally.
func NewStaticKeyProvider(raw RawKey, id string) (*StaticKeyProvider, error) {
	if len(raw.Modulus) == 0 || len(raw.Exponent) == 0 {
		return nil, fmt.Errorf("%w: modulus and exponent must not be empty", ErrInvalidKeyMaterial)
	}
	if id == "" {
		return nil, fmt.Errorf("%w: key ID must not be empty", ErrInvalidKeyMaterial)
	}

	raw = raw.copy()
	s := BuildKeyStructure(raw.Modulus, raw.Exponent)
	pub, err := s.PublicKey()
	if err != nil {
		return nil, err
	}

	return &StaticKeyProvider{
		key: Key{ID: id, Structure: s, Public: pub},
		raw: raw,
	}, nil
}

// CurrentKey returns the imported key. The returned DER slice is a copy.
func (p *StaticKeyProvider) CurrentKey() (Key, error) {
	return p.key.copy(), nil
}

// RawKey returns a copy of the material the provider was built from.
func (p *StaticKeyProvider) RawKey() RawKey {
	return p.raw.copy()
}

var gatewayProvider = sync.OnceValues(func() (*StaticKeyProvider, error) {
	return NewStaticKeyProvider(GatewayKey(), GatewayKeyID)
})

// GatewayProvider returns the provider for the embedded gateway key.
// The key is built on first use and shared afterwards.
func GatewayProvider() (*StaticKeyProvider, error) {
	return gatewayProvider()
}

// MustGatewayProvider is like GatewayProvider but panics if the embedded key
// cannot be imported, which only happens with corrupt build-time material.
func MustGatewayProvider() *StaticKeyProvider {
	p, err := gatewayProvider()
	if err != nil {
		panic(err)
	}
	return p
}

// Compile-time interface check.
var _ KeyProvider = (*StaticKeyProvider)(nil)
