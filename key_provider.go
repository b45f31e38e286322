package cse

import "crypto/rsa"

// Key represents an imported RSA public key ready for encryption.
type Key struct {
	// ID identifies the key material (e.g., "gateway" or a KMS key version).
	ID string

	// Structure is the DER structure the key was imported from.
	Structure KeyStructure

	// Public is the imported key.
	Public *rsa.PublicKey
}

// copy returns a Key with a copied DER slice, preventing callers from mutating internal state.
func (k Key) copy() Key {
	s := k.Structure
	s.DER = append([]byte(nil), s.DER...)
	return Key{ID: k.ID, Structure: s, Public: k.Public}
}

// KeyProvider abstracts retrieval of the public key used for encryption.
// Implementations must be safe for concurrent use.
type KeyProvider interface {
	// CurrentKey returns the key to use for new encryptions.
	CurrentKey() (Key, error)
}
