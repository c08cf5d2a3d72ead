package serialization

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/born-ml/ndbuf/internal/tensor"
)

// ReadOptions configures Read.
type ReadOptions struct {
	SkipChecksumValidation bool            // Skip checksum validation (faster but less safe)
	ValidationLevel        ValidationLevel // Validation strictness level
}

// ReadHeader reads the fixed prefix and CBOR header, leaving r positioned
// at the payload. It returns the header and the flags word.
func ReadHeader(r io.Reader, level ValidationLevel) (*Header, uint32, error) {
	prefix := make([]byte, FixedHeaderSize)
	if _, err := io.ReadFull(r, prefix); err != nil {
		return nil, 0, fmt.Errorf("failed to read fixed header: %w", err)
	}
	if string(prefix[0:4]) != MagicBytes {
		return nil, 0, ErrInvalidMagic
	}

	version := binary.LittleEndian.Uint32(prefix[4:8])
	if version != FormatVersion {
		return nil, 0, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}
	flags := binary.LittleEndian.Uint32(prefix[8:12])

	headerSize := binary.LittleEndian.Uint64(prefix[12:20])
	if headerSize > MaxHeaderSize {
		return nil, 0, ErrHeaderTooLarge
	}

	headerCBOR := make([]byte, headerSize)
	if _, err := io.ReadFull(r, headerCBOR); err != nil {
		return nil, 0, fmt.Errorf("failed to read header: %w", err)
	}

	var header Header
	if err := decMode.Unmarshal(headerCBOR, &header); err != nil {
		return nil, 0, fmt.Errorf("failed to unmarshal header: %w", err)
	}
	if err := ValidateHeader(&header, flags, level); err != nil {
		return nil, 0, fmt.Errorf("validation failed: %w", err)
	}
	return &header, flags, nil
}

// Read loads a view from .ndb data. The returned view owns the only
// reference to a fresh storage; release it when done.
func Read(r io.Reader, opts ReadOptions) (*tensor.View, *Header, error) {
	header, flags, err := ReadHeader(r, opts.ValidationLevel)
	if err != nil {
		return nil, nil, err
	}

	dtype, err := tensor.ParseFormat(header.Format)
	if err != nil {
		return nil, nil, err
	}
	if header.PayloadLen < 0 || header.PayloadLen > MaxPayloadSize ||
		header.ByteLen < 0 || header.ByteLen > MaxPayloadSize {
		return nil, nil, fmt.Errorf("%w: byte_len=%d, payload_len=%d", ErrPayloadTooLarge, header.ByteLen, header.PayloadLen)
	}

	payload := make([]byte, header.PayloadLen)
	if _, err := io.ReadFull(r, payload); err != nil {
		return nil, nil, fmt.Errorf("failed to read payload: %w", err)
	}

	data := payload
	if flags&FlagCompressed != 0 {
		data, err = decompressLZ4(payload, int(header.ByteLen))
		if err != nil {
			return nil, nil, err
		}
	} else if int64(len(data)) != header.ByteLen {
		return nil, nil, fmt.Errorf("payload is %d bytes, header says %d", len(data), header.ByteLen)
	}

	if !opts.SkipChecksumValidation {
		if err := ValidateChecksum(data, header.Checksum); err != nil {
			return nil, nil, err
		}
	}

	view, err := tensor.NewView(tensor.FromBytes(data), header.Shape, header.Strides, dtype)
	if err != nil {
		return nil, nil, err
	}
	return view, header, nil
}

// ReadFile loads a view from a .ndb file.
func ReadFile(path string, opts ReadOptions) (*tensor.View, *Header, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for loading
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return Read(file, opts)
}
