package serialization

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pierrec/lz4/v4"

	"github.com/born-ml/ndbuf/internal/tensor"
)

// errIncompressible means LZ4 output would not be smaller than the input.
var errIncompressible = errors.New("incompressible")

// WriteOptions configures Write.
type WriteOptions struct {
	Compress  bool              // LZ4-compress the payload when it shrinks
	Metadata  map[string]string // Custom metadata stored in the header
	CreatedAt time.Time         // Defaults to time.Now()
}

// Write stores v and its whole backing storage in .ndb format.
func Write(w io.Writer, v *tensor.View, opts WriteOptions) error {
	if v == nil || v.Released() {
		return fmt.Errorf("write: %w", tensor.ErrReleased)
	}

	data := v.Storage().Bytes()
	checksum := v.Storage().Digest()

	flags := uint32(0)
	payload := data
	if opts.Compress {
		compressed, err := compressLZ4(data)
		switch {
		case err == nil:
			payload = compressed
			flags |= FlagCompressed
		case !errors.Is(err, errIncompressible):
			return err
		}
	}
	if len(opts.Metadata) > 0 {
		flags |= FlagHasMetadata
	}

	createdAt := opts.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	header := Header{
		Format:     string(v.DType().Format()),
		Shape:      append([]int{}, v.Shape()...),
		Strides:    append([]int{}, v.Strides()...),
		ByteLen:    int64(len(data)),
		PayloadLen: int64(len(payload)),
		Checksum:   checksum[:],
		CreatedAt:  createdAt.UTC(),
		Metadata:   opts.Metadata,
	}

	headerCBOR, err := encMode.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}
	if len(headerCBOR) > MaxHeaderSize {
		return ErrHeaderTooLarge
	}

	prefix := make([]byte, FixedHeaderSize)
	copy(prefix[0:4], MagicBytes)
	binary.LittleEndian.PutUint32(prefix[4:8], FormatVersion)
	binary.LittleEndian.PutUint32(prefix[8:12], flags)
	binary.LittleEndian.PutUint64(prefix[12:20], uint64(len(headerCBOR)))

	if _, err := w.Write(prefix); err != nil {
		return fmt.Errorf("failed to write fixed header: %w", err)
	}
	if _, err := w.Write(headerCBOR); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("failed to write payload: %w", err)
	}
	return nil
}

// WriteFile writes v to path in .ndb format.
func WriteFile(path string, v *tensor.View, opts WriteOptions) error {
	//nolint:gosec // G304: File path comes from user input, which is expected for saving
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := Write(file, v, opts); err != nil {
		_ = file.Close() // Best effort close on error
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	return nil
}

func compressLZ4(data []byte) ([]byte, error) {
	// CompressBlockBound returns the maximum compressed size.
	destination := make([]byte, lz4.CompressBlockBound(len(data)))

	written, err := lz4.CompressBlock(data, destination, nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	// CompressBlock returns 0 for incompressible data.
	if written == 0 || written >= len(data) {
		return nil, errIncompressible
	}
	return destination[:written], nil
}

func decompressLZ4(compressed []byte, uncompressedSize int) ([]byte, error) {
	destination := make([]byte, uncompressedSize)
	read, err := lz4.UncompressBlock(compressed, destination)
	if err != nil {
		return nil, fmt.Errorf("lz4 decompress: %w", err)
	}
	if read != uncompressedSize {
		return nil, fmt.Errorf("lz4 decompress: got %d bytes, expected %d", read, uncompressedSize)
	}
	return destination, nil
}
