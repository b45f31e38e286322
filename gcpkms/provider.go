// Package gcpkms provides a KeyProvider backed by a Google Cloud KMS
// asymmetric decryption key.
//
// The PEM public key of a CryptoKeyVersion is fetched with GetPublicKey at
// construction time, checked against its CRC32C checksum and cached in memory.
//
// Usage:
//
//	client, err := kms.NewKeyManagementClient(ctx)
//	provider, err := gcpkms.New(ctx, client,
//	    "projects/p/locations/global/keyRings/r/cryptoKeys/k/cryptoKeyVersions/1")
//	enc, err := cse.NewEncryptor(provider)
package gcpkms

import (
	"context"
	"fmt"
	"hash/crc32"

	kmspb "cloud.google.com/go/kms/apiv1/kmspb"
	"github.com/rbaliyan/cse"
)

// Client is the subset of the GCP Cloud KMS API used by this provider.
type Client interface {
	GetPublicKey(ctx context.Context, req *kmspb.GetPublicKeyRequest) (*kmspb.PublicKey, error)
}

// Option configures a Provider.
type Option func(*options)

type options struct {
	id string
}

// WithKeyID sets the ID reported by the provider's key.
// Defaults to the CryptoKeyVersion resource name.
func WithKeyID(id string) Option {
	return func(o *options) { o.id = id }
}

// oaepSHA1 lists the key version algorithms that decrypt RSA-OAEP/SHA-1.
var oaepSHA1 = map[kmspb.CryptoKeyVersion_CryptoKeyVersionAlgorithm]bool{
	kmspb.CryptoKeyVersion_RSA_DECRYPT_OAEP_2048_SHA1: true,
	kmspb.CryptoKeyVersion_RSA_DECRYPT_OAEP_3072_SHA1: true,
	kmspb.CryptoKeyVersion_RSA_DECRYPT_OAEP_4096_SHA1: true,
}

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// New creates a KeyProvider from the public key of the CryptoKeyVersion
// resourceName (projects/*/locations/*/keyRings/*/cryptoKeys/*/cryptoKeyVersions/*).
//
// The version algorithm must be one of the RSA_DECRYPT_OAEP_*_SHA1 family.
// The KMS client is not retained after construction.
func New(ctx context.Context, client Client, resourceName string, opts ...Option) (*cse.StaticKeyProvider, error) {
	if client == nil {
		return nil, fmt.Errorf("gcpkms: client is nil")
	}
	if resourceName == "" {
		return nil, fmt.Errorf("gcpkms: resource name is required")
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	resp, err := client.GetPublicKey(ctx, &kmspb.GetPublicKeyRequest{Name: resourceName})
	if err != nil {
		return nil, fmt.Errorf("gcpkms: failed to get public key %q: %w", resourceName, err)
	}

	if !oaepSHA1[resp.GetAlgorithm()] {
		return nil, fmt.Errorf("gcpkms: %w: key %q has algorithm %s",
			cse.ErrInvalidKeyMaterial, resourceName, resp.GetAlgorithm())
	}
	if sum := resp.GetPemCrc32C(); sum != nil {
		if int64(crc32.Checksum([]byte(resp.GetPem()), castagnoli)) != sum.GetValue() {
			return nil, fmt.Errorf("gcpkms: public key %q failed CRC32C verification", resourceName)
		}
	}

	raw, err := cse.RawKeyFromPEM([]byte(resp.GetPem()))
	if err != nil {
		return nil, fmt.Errorf("gcpkms: key %q: %w", resourceName, err)
	}

	id := o.id
	if id == "" {
		id = resp.GetName()
	}
	if id == "" {
		id = resourceName
	}

	provider, err := cse.NewStaticKeyProvider(raw, id)
	if err != nil {
		return nil, fmt.Errorf("gcpkms: %w", err)
	}
	return provider, nil
}
