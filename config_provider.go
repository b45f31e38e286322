package cse

import (
	"context"
	"fmt"

	"github.com/rbaliyan/config"
)

// ValueGetter is the subset of a config store used by NewConfigKeyProvider.
type ValueGetter interface {
	Get(ctx context.Context, namespace, key string) (config.Value, error)
}

// storedKey is the config value layout of RSA key material.
type storedKey struct {
	ID       string `json:"id,omitempty"`
	Modulus  string `json:"modulus"`
	Exponent string `json:"exponent"`
}

// NewConfigKeyProvider reads key material from a config store and builds a
// StaticKeyProvider from it. The value at namespace/key must decode to
//
//	{"id": "optional-id", "modulus": "<base64>", "exponent": "<base64>"}
//
// The config key is used as the key ID when the value carries none.
// The store is not retained after construction.
func NewConfigKeyProvider(ctx context.Context, store ValueGetter, namespace, key string) (*StaticKeyProvider, error) {
	if store == nil {
		return nil, fmt.Errorf("cse: NewConfigKeyProvider store is nil")
	}

	val, err := store.Get(ctx, namespace, key)
	if err != nil {
		return nil, fmt.Errorf("cse: failed to read key %q: %w", key, err)
	}

	var sk storedKey
	if err := val.Unmarshal(ctx, &sk); err != nil {
		return nil, fmt.Errorf("%w: config value %q: %v", ErrInvalidKeyMaterial, key, err)
	}

	raw, err := RawKeyFromBase64(sk.Modulus, sk.Exponent)
	if err != nil {
		return nil, err
	}

	id := sk.ID
	if id == "" {
		id = key
	}
	return NewStaticKeyProvider(raw, id)
}
