package cse

import (
	"bytes"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"math/big"

	log "github.com/sirupsen/logrus"
)

// Gateway public key material, base64 encoded. The modulus carries a leading
// zero byte so that it encodes as a positive DER INTEGER.
const (
	gatewayModulus  = "AODXS2u1iKvsoHE6OLRhbvHnO6kcLWdYyxIyp7V37OeoGlrWmEsXPnq+5Yxttq27+NU+a2mH3c7z6ld2HExQji6XSSCZM076K2PiA0dPZDerhyhrrUo3ZA6WKyhR3lP8dFuz9BlFtknNeAexvy/AtnjEqpAwDLQDcrzgh3ZP9nIWDoGKiLmXyJ02jRMx22G+ovg+bCnrtQ9eRtrhBWPoJLi5rQ6t8T1MyvxvoWhuCrCC+SSm7fpFd/w4m7tzlKYjAzdWKaHKmlEebKBZioiYtTx7YEGdGsnV8b3hyEYbRPuRYC+8N9O4DqmzCeKt31wwGUMygcJTWJ8IAGhVtT0s5Pc="
	gatewayExponent = "AQAB"
)

// RawKey is the unencoded RSA public key material: the big-endian bytes of
// the modulus and the public exponent, exactly as they appear in the DER
// INTEGER fields.
type RawKey struct {
	Modulus  []byte
	Exponent []byte
}

// copy returns a RawKey with copied byte slices, preventing callers from mutating internal state.
func (k RawKey) copy() RawKey {
	return RawKey{
		Modulus:  append([]byte(nil), k.Modulus...),
		Exponent: append([]byte(nil), k.Exponent...),
	}
}

// GatewayKey returns the embedded payment gateway key material.
func GatewayKey() RawKey {
	k, err := RawKeyFromBase64(gatewayModulus, gatewayExponent)
	if err != nil {
		panic(fmt.Sprintf("cse: embedded gateway key: %v", err))
	}
	return k
}

// RawKeyFromBase64 decodes standard base64 modulus and exponent strings.
func RawKeyFromBase64(modulus, exponent string) (RawKey, error) {
	m, err := base64.StdEncoding.DecodeString(modulus)
	if err != nil {
		return RawKey{}, fmt.Errorf("%w: modulus: %v", ErrInvalidKeyMaterial, err)
	}
	e, err := base64.StdEncoding.DecodeString(exponent)
	if err != nil {
		return RawKey{}, fmt.Errorf("%w: exponent: %v", ErrInvalidKeyMaterial, err)
	}
	if len(m) == 0 || len(e) == 0 {
		return RawKey{}, fmt.Errorf("%w: modulus and exponent must not be empty", ErrInvalidKeyMaterial)
	}
	return RawKey{Modulus: m, Exponent: e}, nil
}

// RawKeyFromPublicKey extracts the raw material of pub. A zero byte is
// prepended to any value whose high bit is set, so the result always encodes
// as positive DER INTEGERs.
func RawKeyFromPublicKey(pub *rsa.PublicKey) RawKey {
	return RawKey{
		Modulus:  signedBytes(pub.N),
		Exponent: signedBytes(big.NewInt(int64(pub.E))),
	}
}

func signedBytes(n *big.Int) []byte {
	b := n.Bytes()
	if len(b) == 0 || b[0]&0x80 != 0 {
		b = append([]byte{0}, b...)
	}
	return b
}

// KeyStructure is the DER encoded RSAPublicKey SEQUENCE built from a RawKey,
// together with the key size hint handed to the key import.
type KeyStructure struct {
	// DER is SEQUENCE { INTEGER modulus, INTEGER exponent }.
	DER []byte

	// Bits is the size hint, eight times the modulus byte length.
	Bits int
}

// BuildKeyStructure encodes modulus and exponent as a DER SEQUENCE of two
// INTEGERs. The bytes are used verbatim, so the output is identical for
// identical input.
func BuildKeyStructure(modulus, exponent []byte) KeyStructure {
	var body bytes.Buffer
	body.Grow(fieldSize(len(modulus)) + fieldSize(len(exponent)))
	writeField(&body, tagInteger, modulus)
	writeField(&body, tagInteger, exponent)

	var buf bytes.Buffer
	buf.Grow(fieldSize(body.Len()))
	writeField(&buf, tagSequence, body.Bytes())

	return KeyStructure{
		DER:  buf.Bytes(),
		Bits: len(modulus) * 8,
	}
}

// PublicKey imports the structure as an RSA public key.
// Any rejection is reported as ErrKeyConstruction.
func (s KeyStructure) PublicKey() (*rsa.PublicKey, error) {
	pub, err := x509.ParsePKCS1PublicKey(s.DER)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyConstruction, err)
	}
	if n := pub.N.BitLen(); n > s.Bits {
		return nil, fmt.Errorf("%w: modulus is %d bits, size hint is %d", ErrKeyConstruction, n, s.Bits)
	}
	log.WithField("bits", s.Bits).Debug("cse: imported public key structure")
	return pub, nil
}
