// Package vault provides a KeyProvider backed by a HashiCorp Vault Transit RSA key.
//
// The PEM public key of a Transit key version is read at construction time
// and cached in memory.
//
// Usage:
//
//	client := myTransitClient{api: vaultapi.NewClient(cfg)}
//	provider, err := vault.New(ctx, client, "card-encryption")
//	enc, err := cse.NewEncryptor(provider)
package vault

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rbaliyan/cse"
)

// Client abstracts reading a Transit key's public half.
// This allows injecting a mock for testing or wrapping any Vault client library.
type Client interface {
	// TransitPublicKey returns the PEM encoded public key of the given
	// version of the named Transit key (the keys.<version>.public_key field
	// of GET /transit/keys/:name). Version 0 selects the latest version.
	TransitPublicKey(ctx context.Context, keyName string, version int) (string, error)
}

// Option configures a Provider.
type Option func(*options)

type options struct {
	id      string
	version int
}

// WithKeyID sets the ID reported by the provider's key.
// Defaults to "<keyName>:v<version>", or the key name for the latest version.
func WithKeyID(id string) Option {
	return func(o *options) { o.id = id }
}

// WithVersion pins the Transit key version.
func WithVersion(version int) Option {
	return func(o *options) { o.version = version }
}

// New creates a KeyProvider from the public key of the Transit key transitKeyName.
// The Vault client is not retained after construction.
func New(ctx context.Context, client Client, transitKeyName string, opts ...Option) (*cse.StaticKeyProvider, error) {
	if client == nil {
		return nil, fmt.Errorf("vault: client is nil")
	}
	if transitKeyName == "" {
		return nil, fmt.Errorf("vault: transit key name is required")
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.version < 0 {
		return nil, fmt.Errorf("vault: invalid key version %d", o.version)
	}

	publicKey, err := client.TransitPublicKey(ctx, transitKeyName, o.version)
	if err != nil {
		return nil, fmt.Errorf("vault: failed to read public key %q: %w", transitKeyName, err)
	}

	raw, err := cse.RawKeyFromPEM([]byte(publicKey))
	if err != nil {
		return nil, fmt.Errorf("vault: key %q: %w", transitKeyName, err)
	}

	id := o.id
	if id == "" {
		id = transitKeyName
		if o.version > 0 {
			id += ":v" + strconv.Itoa(o.version)
		}
	}

	provider, err := cse.NewStaticKeyProvider(raw, id)
	if err != nil {
		return nil, fmt.Errorf("vault: %w", err)
	}
	return provider, nil
}
