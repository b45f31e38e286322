package cse

import (
	"context"
	"fmt"

	"github.com/rbaliyan/config/codec"
)

// CodecName is the name under which Codec registers.
const CodecName = "cse"

// Codec is a write-only codec that stores card data as encrypted tokens.
// On Encode, a Card (or *Card) is encrypted and the token bytes returned.
// Decode always fails with ErrDecodeUnsupported: only the gateway holds the
// private key.
//
// Codec is safe for concurrent use if the underlying Encryptor is.
type Codec struct {
	enc *Encryptor
}

// Compile-time interface check.
var _ codec.Codec = (*Codec)(nil)

// NewCodec creates a codec encrypting with enc.
// Returns an error if enc is nil.
func NewCodec(enc *Encryptor) (*Codec, error) {
	if enc == nil {
		return nil, fmt.Errorf("cse: NewCodec encryptor is nil")
	}
	return &Codec{enc: enc}, nil
}

// Name returns "cse".
func (c *Codec) Name() string {
	return CodecName
}

// Encode encrypts a Card or *Card into token bytes.
func (c *Codec) Encode(ctx context.Context, v any) ([]byte, error) {
	var card Card
	switch v := v.(type) {
	case Card:
		card = v
	case *Card:
		if v == nil {
			return nil, fmt.Errorf("cse: cannot encode nil *Card")
		}
		card = *v
	default:
		return nil, fmt.Errorf("cse: cannot encode %T, want Card", v)
	}

	token, err := c.enc.EncryptCard(ctx, card)
	if err != nil {
		return nil, err
	}
	return []byte(token), nil
}

// Decode always returns ErrDecodeUnsupported. Stored tokens are opaque to
// the config layer; wrap them with config.NewRawValue rather than
// config.NewValueFromBytes, which decodes eagerly.
func (c *Codec) Decode(ctx context.Context, data []byte, v any) error {
	return ErrDecodeUnsupported
}
