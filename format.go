package cse

import (
	"bytes"
	"math/bits"
)

// DER encoding constants.
const (
	// tagInteger is the universal ASN.1 tag for INTEGER.
	tagInteger = 0x02

	// tagSequence is the universal ASN.1 tag for a constructed SEQUENCE.
	tagSequence = 0x30

	// longFormFlag marks a length field whose low bits carry the number of
	// length bytes that follow.
	longFormFlag = 0x80

	// maxShortLength is the largest count that fits the single-byte form.
	maxShortLength = 127
)

// Token format constants.
const (
	// tokenVersion prefixes every encrypted token.
	tokenVersion = "001"

	// fieldSeparator joins the card fields in the plaintext.
	fieldSeparator = ","
)

// lengthField returns the DER definite-length encoding of count.
// Counts up to 127 use the short form (one byte). Larger counts use the long
// form: 0x80|M followed by the M big-endian bytes of count, with M minimal.
func lengthField(count int) []byte {
	if count <= maxShortLength {
		return []byte{byte(count)}
	}

	n := (bits.Len(uint(count)) + 7) / 8
	out := make([]byte, n+1)
	out[0] = longFormFlag | byte(n)
	for i := n; i > 0; i-- {
		out[i] = byte(count)
		count >>= 8
	}
	return out
}

// writeField writes a tag-length-value triple to buf.
func writeField(buf *bytes.Buffer, tag byte, value []byte) {
	buf.WriteByte(tag)
	buf.Write(lengthField(len(value)))
	buf.Write(value)
}

// fieldSize returns the encoded size of a tag-length-value triple.
func fieldSize(valueLen int) int {
	return 1 + len(lengthField(valueLen)) + valueLen
}
