package serialization

import (
	"errors"
	"fmt"
)

// Sentinel errors for malformed or corrupted .ndb data.
var (
	ErrInvalidMagic       = errors.New("not an .ndb file")
	ErrUnsupportedVersion = errors.New("unsupported .ndb version")
	ErrHeaderTooLarge     = errors.New(".ndb header too large")
	ErrPayloadTooLarge    = errors.New(".ndb payload too large")
	ErrChecksumMismatch   = errors.New("storage checksum mismatch")
)

// ValidationError reports a header that decodes but describes an
// impossible view.
type ValidationError struct {
	Type    string // Machine-readable kind, e.g. "rank_mismatch"
	Field   string // Offending header field, if any
	Details string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid header: " + e.Type + ": " + e.Details
	}
	return fmt.Sprintf("invalid header field %s: %s: %s", e.Field, e.Type, e.Details)
}
