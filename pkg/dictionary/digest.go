package dictionary

import (
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"
)

// DigestSize is the length of a dictionary digest in bytes
const DigestSize = 20

// Digest is a content fingerprint of a dictionary
type Digest [DigestSize]byte

func (g Digest) String() string { return hex.EncodeToString(g[:]) }

// IsZero reports whether the digest is unset
func (g Digest) IsZero() bool { return g == Digest{} }

// ParseDigest decodes a hex digest
func ParseDigest(s string) (Digest, error) {
	var g Digest
	b, err := hex.DecodeString(s)
	if err != nil {
		return g, err
	}
	if len(b) != DigestSize {
		return g, fmt.Errorf("digest has %d bytes, want %d", len(b), DigestSize)
	}
	copy(g[:], b)
	return g, nil
}

// DigestWriter is an io.Writer that fingerprints everything written to it
type DigestWriter struct {
	h *blake3.Hasher
}

// NewDigestWriter creates an empty DigestWriter
func NewDigestWriter() *DigestWriter {
	return &DigestWriter{h: blake3.New()}
}

func (w *DigestWriter) Write(p []byte) (int, error) {
	return w.h.Write(p)
}

// Sum returns the digest of the data written so far
func (w *DigestWriter) Sum() Digest {
	var g Digest
	copy(g[:], w.h.Sum(nil))
	return g
}

// Digest fingerprints the compact form of d. Dictionaries with the same
// entries in the same order have the same digest.
func (d *Dictionary) Digest() Digest {
	w := NewDigestWriter()
	_ = d.WriteCompact(w)
	return w.Sum()
}
