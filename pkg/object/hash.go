package object

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// HashSize is the length of a hex-encoded Hash.
const HashSize = sha256.Size * 2

// HashBytes computes the raw SHA-256 hash of data and returns it as a
// lowercase hex-encoded Hash.
func HashBytes(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

func envelopeHeader(objType ObjectType, n int) string {
	return fmt.Sprintf("%s %d\x00", objType, n)
}

// Envelope returns the hashed and stored framing "type len\0content".
func Envelope(objType ObjectType, data []byte) []byte {
	header := envelopeHeader(objType, len(data))
	raw := make([]byte, 0, len(header)+len(data))
	raw = append(raw, header...)
	return append(raw, data...)
}

// HashObject computes the SHA-256 of the envelope "type len\0content",
// mirroring Git's object hashing but with SHA-256.
func HashObject(objType ObjectType, data []byte) Hash {
	h := sha256.New()
	h.Write([]byte(envelopeHeader(objType, len(data))))
	h.Write(data)
	return Hash(hex.EncodeToString(h.Sum(nil)))
}

// ValidateHash checks that h is a full-length lowercase hex digest.
func ValidateHash(h Hash) error {
	if len(h) != HashSize {
		return fmt.Errorf("%w: %q has length %d, want %d", ErrInvalidHash, h, len(h), HashSize)
	}
	for i := 0; i < len(h); i++ {
		c := h[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return fmt.Errorf("%w: %q contains %q", ErrInvalidHash, h, c)
		}
	}
	return nil
}

// Short returns the first 8 characters of h, used for display.
func (h Hash) Short() string {
	if len(h) > 8 {
		return string(h[:8])
	}
	return string(h)
}
