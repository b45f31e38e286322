// Package awskms provides a KeyProvider backed by an AWS KMS asymmetric key.
//
// The public half of an RSA_2048 (or larger) ENCRYPT_DECRYPT key is fetched
// with GetPublicKey at construction time and cached in memory. Card data
// encrypted under it can only be decrypted inside KMS.
//
// Usage:
//
//	cfg, err := awsconfig.LoadDefaultConfig(ctx)
//	kmsClient := kms.NewFromConfig(cfg)
//
//	provider, err := awskms.New(ctx, kmsClient, "alias/card-encryption")
//	enc, err := cse.NewEncryptor(provider)
package awskms

import (
	"context"
	"fmt"
	"slices"

	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/kms/types"
	"github.com/rbaliyan/cse"
)

// Client is the subset of the AWS KMS API used by this provider.
type Client interface {
	GetPublicKey(ctx context.Context, params *kms.GetPublicKeyInput, optFns ...func(*kms.Options)) (*kms.GetPublicKeyOutput, error)
}

// Option configures a Provider.
type Option func(*options)

type options struct {
	id          string
	grantTokens []string
}

// WithKeyID sets the ID reported by the provider's key.
// Defaults to the KeyId returned by KMS, which is the key ARN.
func WithKeyID(id string) Option {
	return func(o *options) { o.id = id }
}

// WithGrantTokens passes grant tokens to GetPublicKey.
func WithGrantTokens(tokens ...string) Option {
	return func(o *options) { o.grantTokens = append(o.grantTokens, tokens...) }
}

// New creates a KeyProvider from the public key of the KMS key identified by
// keyID (key ID, key ARN, alias name or alias ARN).
//
// The key must be an RSA key with ENCRYPT_DECRYPT usage that supports
// RSAES_OAEP_SHA_1. The KMS client is not retained after construction.
func New(ctx context.Context, client Client, keyID string, opts ...Option) (*cse.StaticKeyProvider, error) {
	if client == nil {
		return nil, fmt.Errorf("awskms: client is nil")
	}
	if keyID == "" {
		return nil, fmt.Errorf("awskms: key ID is required")
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}

	out, err := client.GetPublicKey(ctx, &kms.GetPublicKeyInput{
		KeyId:       &keyID,
		GrantTokens: o.grantTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("awskms: failed to get public key %q: %w", keyID, err)
	}

	if out.KeyUsage != "" && out.KeyUsage != types.KeyUsageTypeEncryptDecrypt {
		return nil, fmt.Errorf("awskms: %w: key %q has usage %s", cse.ErrInvalidKeyMaterial, keyID, out.KeyUsage)
	}
	if len(out.EncryptionAlgorithms) > 0 &&
		!slices.Contains(out.EncryptionAlgorithms, types.EncryptionAlgorithmSpecRsaesOaepSha1) {
		return nil, fmt.Errorf("awskms: %w: key %q does not support %s",
			cse.ErrInvalidKeyMaterial, keyID, types.EncryptionAlgorithmSpecRsaesOaepSha1)
	}

	raw, err := cse.RawKeyFromPKIX(out.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("awskms: key %q: %w", keyID, err)
	}

	id := o.id
	if id == "" && out.KeyId != nil {
		id = *out.KeyId
	}
	if id == "" {
		id = keyID
	}

	provider, err := cse.NewStaticKeyProvider(raw, id)
	if err != nil {
		return nil, fmt.Errorf("awskms: %w", err)
	}
	return provider, nil
}
