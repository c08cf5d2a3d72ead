package serialization

import (
	"fmt"

	"github.com/born-ml/ndbuf/internal/tensor"
)

// Validation limits for security and resource protection.
const (
	MaxHeaderSize   = 1024 * 1024 // 1MB - maximum header size
	MaxPayloadSize  = 4 << 30     // 4GB - maximum storage size
	MaxRank         = 64          // Maximum number of dimensions
	MaxMetadataSize = 256 * 1024  // 256KB - maximum metadata size

	maxMetadataKeys = MaxMetadataSize / 16
)

// ValidationLevel controls the strictness of validation.
type ValidationLevel int

const (
	// ValidationStrict performs all validation checks (default).
	ValidationStrict ValidationLevel = iota
	// ValidationNormal skips metadata limits.
	ValidationNormal
	// ValidationNone skips header validation. Views are still bounds
	// checked when they are constructed.
	ValidationNone
)

// ValidateHeader checks a decoded header against the fixed-size prefix.
func ValidateHeader(h *Header, flags uint32, level ValidationLevel) error {
	if level == ValidationNone {
		return nil
	}

	if _, err := tensor.ParseFormat(h.Format); err != nil {
		return &ValidationError{Type: "unsupported_format", Field: "format", Details: err.Error()}
	}
	if len(h.Shape) != len(h.Strides) {
		return &ValidationError{
			Type:    "rank_mismatch",
			Field:   "strides",
			Details: fmt.Sprintf("%d extents, %d strides", len(h.Shape), len(h.Strides)),
		}
	}
	if len(h.Shape) > MaxRank {
		return &ValidationError{Type: "rank_too_large", Field: "shape", Details: fmt.Sprintf("rank %d > max %d", len(h.Shape), MaxRank)}
	}

	// Negative lengths could cause oversized allocations after conversion.
	if h.ByteLen < 0 || h.PayloadLen < 0 {
		return &ValidationError{
			Type:    "negative_size",
			Details: fmt.Sprintf("byte_len=%d, payload_len=%d", h.ByteLen, h.PayloadLen),
		}
	}
	if h.ByteLen > MaxPayloadSize || h.PayloadLen > MaxPayloadSize {
		return fmt.Errorf("%w: byte_len=%d, payload_len=%d", ErrPayloadTooLarge, h.ByteLen, h.PayloadLen)
	}
	if flags&FlagCompressed == 0 && h.PayloadLen != h.ByteLen {
		return &ValidationError{
			Type:    "payload_size",
			Field:   "payload_len",
			Details: fmt.Sprintf("uncompressed payload of %d bytes for %d-byte storage", h.PayloadLen, h.ByteLen),
		}
	}
	if len(h.Checksum) != ChecksumSize {
		return &ValidationError{
			Type:    "invalid_checksum",
			Field:   "checksum",
			Details: fmt.Sprintf("length %d, want %d", len(h.Checksum), ChecksumSize),
		}
	}

	if level == ValidationStrict {
		if err := validateMetadata(h.Metadata); err != nil {
			return err
		}
	}
	return nil
}

func validateMetadata(metadata map[string]string) error {
	if len(metadata) > maxMetadataKeys {
		return &ValidationError{
			Type:    "metadata_too_large",
			Field:   "metadata",
			Details: fmt.Sprintf("%d keys, max %d", len(metadata), maxMetadataKeys),
		}
	}
	size := 0
	for k, v := range metadata {
		size += len(k) + len(v)
	}
	if size > MaxMetadataSize {
		return &ValidationError{
			Type:    "metadata_too_large",
			Field:   "metadata",
			Details: fmt.Sprintf("%d bytes, max %d", size, MaxMetadataSize),
		}
	}
	return nil
}
