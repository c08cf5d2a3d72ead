package tensor

import (
	"sync/atomic"
	"unsafe"

	"github.com/zeebo/blake3"
)

// Storage is a reference-counted byte buffer.
// It carries no type or shape; Views interpret it.
//
// Every View share and every exported buffer descriptor holds one
// reference. Releasing the last reference marks the storage dead; the
// bytes themselves are left to the garbage collector, so a release from
// a finalizer goroutine never writes state other goroutines read.
type Storage struct {
	data     []byte
	refCount atomic.Int32
	exports  atomic.Int32 // Live exported descriptors (subset of refCount)
	released atomic.Bool
}

// FromBytes copies src into a new Storage. The result never aliases src.
func FromBytes(src []byte) *Storage {
	data := make([]byte, len(src))
	copy(data, src)
	return &Storage{data: data}
}

// Len returns the total byte count.
func (s *Storage) Len() int {
	return len(s.data)
}

// Pointer returns the address of the first byte, or nil for an empty
// storage. It is valid only while a reference is held.
//
//nolint:gosec // unsafe.Pointer is the whole point of an exportable buffer
func (s *Storage) Pointer() unsafe.Pointer {
	s.mustLive()
	if len(s.data) == 0 {
		return nil
	}
	return unsafe.Pointer(unsafe.SliceData(s.data))
}

// Bytes returns the stored bytes.
// WARNING: the slice aliases storage memory. Treat it as read-only;
// writes belong to exported buffer descriptors.
func (s *Storage) Bytes() []byte {
	s.mustLive()
	return s.data
}

// Digest returns the BLAKE3 hash of the stored bytes.
func (s *Storage) Digest() [32]byte {
	s.mustLive()
	return blake3.Sum256(s.data)
}

// Refs returns the current number of references.
func (s *Storage) Refs() int {
	return int(s.refCount.Load())
}

// Released reports whether the last reference has been dropped.
func (s *Storage) Released() bool {
	return s.released.Load()
}

// Retain adds a reference. Retaining a released storage panics.
func (s *Storage) Retain() {
	s.mustLive()
	s.refCount.Add(1)
}

// Release drops a reference and marks the storage dead when none remain.
func (s *Storage) Release() {
	n := s.refCount.Add(-1)
	switch {
	case n < 0:
		panic("tensor: storage released more times than retained")
	case n == 0:
		s.released.Store(true)
	}
}

// Pin retains the storage on behalf of an exported descriptor.
// Pinned storage stays allocated until every descriptor is unpinned.
func (s *Storage) Pin() {
	s.Retain()
	s.exports.Add(1)
}

// Unpin reverses Pin.
func (s *Storage) Unpin() {
	if s.exports.Add(-1) < 0 {
		panic("tensor: storage unpinned more times than pinned")
	}
	s.Release()
}

// Pinned reports whether any exported descriptor is still live.
func (s *Storage) Pinned() bool {
	return s.exports.Load() > 0
}

func (s *Storage) mustLive() {
	if s.released.Load() {
		panic("tensor: use of released storage")
	}
}
