package cse

import "errors"

var (
	// ErrKeyConstruction is returned when the key import rejects an encoded
	// key structure. With embedded key material this is a build defect.
	ErrKeyConstruction = errors.New("cse: key construction failed")

	// ErrInvalidKeyMaterial is returned when raw modulus or exponent input is
	// empty or cannot be decoded.
	ErrInvalidKeyMaterial = errors.New("cse: invalid key material")

	// ErrEncryption is matched by every *EncryptionError.
	ErrEncryption = errors.New("cse: encryption failed")

	// ErrDecodeUnsupported is returned by Codec.Decode; tokens can only be
	// opened by the holder of the private key.
	ErrDecodeUnsupported = errors.New("cse: decoding encrypted card data is not supported")

	// ErrInvalidBrand is returned when a brand name is not recognised.
	ErrInvalidBrand = errors.New("cse: invalid card brand")

	// ErrInvalidCard is returned by Card.Validate when any field is invalid.
	ErrInvalidCard = errors.New("cse: invalid card data")
)

// EncryptionError reports a failure of the RSA encryption primitive.
type EncryptionError struct {
	Message string
	Err     error
}

func (e *EncryptionError) Error() string {
	if e.Err == nil {
		return "cse: " + e.Message
	}
	return "cse: " + e.Message + ": " + e.Err.Error()
}

func (e *EncryptionError) Unwrap() error { return e.Err }

// Is reports ErrEncryption as a match so callers can use errors.Is.
func (e *EncryptionError) Is(target error) bool { return target == ErrEncryption }

// FieldError names a single invalid card field.
type FieldError struct {
	Field string
}

func (e *FieldError) Error() string { return "invalid " + e.Field }

// Is reports ErrInvalidCard as a match so callers can use errors.Is.
func (e *FieldError) Is(target error) bool { return target == ErrInvalidCard }

// IsKeyConstruction returns true if the error is or wraps ErrKeyConstruction.
func IsKeyConstruction(err error) bool {
	return errors.Is(err, ErrKeyConstruction)
}

// IsInvalidKeyMaterial returns true if the error is or wraps ErrInvalidKeyMaterial.
func IsInvalidKeyMaterial(err error) bool {
	return errors.Is(err, ErrInvalidKeyMaterial)
}

// IsEncryptionFailed returns true if the error is or wraps an EncryptionError.
func IsEncryptionFailed(err error) bool {
	return errors.Is(err, ErrEncryption)
}

// IsDecodeUnsupported returns true if the error is or wraps ErrDecodeUnsupported.
func IsDecodeUnsupported(err error) bool {
	return errors.Is(err, ErrDecodeUnsupported)
}

// IsInvalidBrand returns true if the error is or wraps ErrInvalidBrand.
func IsInvalidBrand(err error) bool {
	return errors.Is(err, ErrInvalidBrand)
}

// IsInvalidCard returns true if the error is or wraps ErrInvalidCard.
func IsInvalidCard(err error) bool {
	return errors.Is(err, ErrInvalidCard)
}

// InvalidFields returns the names of the fields reported invalid in err.
func InvalidFields(err error) []string {
	var fields []string
	var walk func(error)
	walk = func(err error) {
		switch e := err.(type) {
		case nil:
		case *FieldError:
			fields = append(fields, e.Field)
		case interface{ Unwrap() []error }:
			for _, inner := range e.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			walk(e.Unwrap())
		}
	}
	walk(err)
	return fields
}
