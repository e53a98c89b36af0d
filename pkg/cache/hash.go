package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash"
	"io"
)

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Digest computes the SHA-256 of everything read through it, so a graph file
// can be parsed and hashed in one pass. Graph files can be several gigabytes.
type Digest struct {
	r io.Reader
	h hash.Hash
}

// NewDigest wraps r.
func NewDigest(r io.Reader) *Digest {
	h := sha256.New()
	return &Digest{r: io.TeeReader(r, h), h: h}
}

func (d *Digest) Read(p []byte) (int, error) { return d.r.Read(p) }

// Sum drains whatever the consumer left unread and returns the hex digest of
// the whole stream.
func (d *Digest) Sum() (string, error) {
	if _, err := io.Copy(io.Discard, d.r); err != nil {
		return "", err
	}
	return hex.EncodeToString(d.h.Sum(nil)), nil
}
