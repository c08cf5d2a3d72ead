// Package serialization reads and writes .ndb snapshots.
//
// An .ndb file holds one view together with its complete storage, so
// strided and partial views round-trip exactly:
//
//	offset  size  field
//	0       4     magic "NDBF"
//	4       4     version, uint32 little-endian
//	8       4     flags, uint32 little-endian (bit 0: LZ4 payload)
//	12      8     header length, uint64 little-endian
//	20      n     header, deterministic CBOR
//	20+n    m     payload
//
// The header carries the format tag, shape, byte strides, storage length,
// payload length and BLAKE3 digest of the uncompressed storage. Elements
// keep the writer's native byte order.
//
//	err := serialization.WriteFile("images.ndb", view, serialization.WriteOptions{Compress: true})
//	...
//	view, header, err := serialization.ReadFile("images.ndb", serialization.ReadOptions{})
//	...
//	defer view.Release()
package serialization
