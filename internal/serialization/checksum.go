package serialization

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/zeebo/blake3"
)

// ComputeChecksum returns the BLAKE3-256 digest of data. It equals
// (*tensor.Storage).Digest for a storage holding the same bytes.
func ComputeChecksum(data []byte) [ChecksumSize]byte {
	return blake3.Sum256(data)
}

// ChecksumReader hashes everything read from r.
func ChecksumReader(r io.Reader) ([ChecksumSize]byte, error) {
	var sum [ChecksumSize]byte
	h := blake3.New()
	if _, err := io.Copy(h, r); err != nil {
		return sum, fmt.Errorf("hashing: %w", err)
	}
	copy(sum[:], h.Sum(nil))
	return sum, nil
}

// ValidateChecksum checks data against a digest stored in a header.
func ValidateChecksum(data, stored []byte) error {
	computed := ComputeChecksum(data)
	if !bytes.Equal(computed[:], stored) {
		return fmt.Errorf("%w: stored %s, computed %s",
			ErrChecksumMismatch, shortHex(stored), shortHex(computed[:]))
	}
	return nil
}

func shortHex(b []byte) string {
	if len(b) > 8 {
		b = b[:8]
	}
	return hex.EncodeToString(b)
}
