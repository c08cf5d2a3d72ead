package serialization

import (
	"reflect"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Format constants.
const (
	MagicBytes      = "NDBF"
	FormatVersion   = 1  // v1: CBOR header, BLAKE3 checksum
	FixedHeaderSize = 20 // magic + version + flags + header size
	ChecksumSize    = 32 // BLAKE3-256 digest size
)

// Flags for the .ndb format.
const (
	FlagCompressed  uint32 = 1 << 0 // bit 0: payload is an LZ4 block
	FlagHasMetadata uint32 = 1 << 1 // bit 1: custom metadata included
)

// Header is the CBOR header of a .ndb file.
type Header struct {
	Format     string            `cbor:"format"`             // One-character format tag
	Shape      []int             `cbor:"shape"`              // View extents
	Strides    []int             `cbor:"strides"`            // View byte strides
	ByteLen    int64             `cbor:"byte_len"`           // Uncompressed storage length
	PayloadLen int64             `cbor:"payload_len"`        // Stored payload length
	Checksum   []byte            `cbor:"checksum"`           // BLAKE3 of uncompressed storage
	CreatedAt  time.Time         `cbor:"created_at"`         // When the file was written
	Metadata   map[string]string `cbor:"metadata,omitempty"` // Custom metadata
}

// encMode encodes headers deterministically so identical views produce
// identical files.
var encMode cbor.EncMode

// decMode ignores unknown header fields for forward compatibility.
var decMode cbor.DecMode

func init() {
	var err error

	encOptions := cbor.CoreDetEncOptions()
	encOptions.Time = cbor.TimeRFC3339Nano
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("serialization: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DefaultMapType:   reflect.TypeOf(map[string]any(nil)),
		MaxArrayElements: MaxRank,
	}.DecMode()
	if err != nil {
		panic("serialization: CBOR decoder initialization failed: " + err.Error())
	}
}
