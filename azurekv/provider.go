// Package azurekv provides a KeyProvider backed by an Azure Key Vault RSA key.
//
// The public JSON Web Key is fetched with GetKey at construction time and
// cached in memory. Card data encrypted under it is decrypted in Key Vault
// with the RSA-OAEP algorithm.
//
// Usage:
//
//	cred, err := azidentity.NewDefaultAzureCredential(nil)
//	client, err := azkeys.NewClient("https://my-vault.vault.azure.net/", cred, nil)
//
//	provider, err := azurekv.New(ctx, client, "card-encryption")
//	enc, err := cse.NewEncryptor(provider)
package azurekv

import (
	"context"
	"crypto/rsa"
	"fmt"
	"math/big"

	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azkeys"
	"github.com/rbaliyan/cse"
)

// Client is the subset of the Azure Key Vault API used by this provider.
type Client interface {
	GetKey(ctx context.Context, name string, version string, options *azkeys.GetKeyOptions) (azkeys.GetKeyResponse, error)
}

// Option configures a Provider.
type Option func(*options)

type options struct {
	id      string
	version string
}

// WithKeyID sets the ID reported by the provider's key.
// Defaults to the key identifier (kid) returned by Key Vault.
func WithKeyID(id string) Option {
	return func(o *options) { o.id = id }
}

// WithVersion pins the key version. The latest version is used by default.
func WithVersion(version string) Option {
	return func(o *options) { o.version = version }
}

// New creates a KeyProvider from the public part of the Key Vault key named keyName.
// The key must be of type RSA or RSA-HSM. The Key Vault client is not
// retained after construction.
func New(ctx context.Context, client Client, keyName string, opts ...Option) (*cse.StaticKeyProvider, error) {
	if client == nil {
		return nil, fmt.Errorf("azurekv: client is nil")
	}
	if keyName == "" {
		return nil, fmt.Errorf("azurekv: key name is required")
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	resp, err := client.GetKey(ctx, keyName, o.version, nil)
	if err != nil {
		return nil, fmt.Errorf("azurekv: failed to get key %q: %w", keyName, err)
	}

	pub, err := publicKey(resp.Key)
	if err != nil {
		return nil, fmt.Errorf("azurekv: key %q: %w", keyName, err)
	}

	id := o.id
	if id == "" && resp.Key.KID != nil {
		id = string(*resp.Key.KID)
	}
	if id == "" {
		id = keyName
	}

	provider, err := cse.NewStaticKeyProvider(cse.RawKeyFromPublicKey(pub), id)
	if err != nil {
		return nil, fmt.Errorf("azurekv: %w", err)
	}
	return provider, nil
}

// publicKey converts the n and e members of an RSA JSON Web Key.
// Both are unsigned big-endian integers.
func publicKey(jwk *azkeys.JSONWebKey) (*rsa.PublicKey, error) {
	if jwk == nil {
		return nil, fmt.Errorf("%w: response has no key", cse.ErrInvalidKeyMaterial)
	}
	if jwk.Kty == nil || (*jwk.Kty != azkeys.KeyTypeRSA && *jwk.Kty != azkeys.KeyTypeRSAHSM) {
		return nil, fmt.Errorf("%w: not an RSA key", cse.ErrInvalidKeyMaterial)
	}
	if len(jwk.N) == 0 || len(jwk.E) == 0 {
		return nil, fmt.Errorf("%w: missing modulus or exponent", cse.ErrInvalidKeyMaterial)
	}

	e := new(big.Int).SetBytes(jwk.E)
	if !e.IsInt64() || e.Int64() > 1<<31-1 || e.Int64() < 2 {
		return nil, fmt.Errorf("%w: unsupported public exponent", cse.ErrInvalidKeyMaterial)
	}
	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(jwk.N),
		E: int(e.Int64()),
	}, nil
}
