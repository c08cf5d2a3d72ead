// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package buffer exports tensor views to native consumers through
// descriptors compatible with the C buffer protocol.
//
// A Descriptor pins the view's storage until Release is called. Its
// fields mirror Py_buffer: Buf, Len, ItemSize, ReadOnly, NDim, Format,
// Shape, Strides and SubOffsets. Raw returns the same data as a C-layout
// record whose pointers stay valid until Release.
//
// Example:
//
//	d, err := buffer.Export(v, buffer.FlagFull)
//	if err != nil {
//	    return err
//	}
//	defer d.Release()
//	raw := d.Raw() // hand to C
package buffer

import (
	"github.com/born-ml/ndbuf/internal/buffer"
	"github.com/born-ml/ndbuf/tensor"
)

// Descriptor describes an exported view.
type Descriptor = buffer.Descriptor

// CBuffer is the C-layout form of a Descriptor.
type CBuffer = buffer.CBuffer

// Flags describe what a consumer can handle.
type Flags = buffer.Flags

// Request flags, with the bit values of the native protocol.
const (
	FlagSimple      = buffer.FlagSimple
	FlagWritable    = buffer.FlagWritable
	FlagFormat      = buffer.FlagFormat
	FlagND          = buffer.FlagND
	FlagStrides     = buffer.FlagStrides
	FlagCContiguous = buffer.FlagCContiguous
	FlagRecords     = buffer.FlagRecords
	FlagFull        = buffer.FlagFull
)

// ErrNotContiguous is returned when a consumer that cannot handle
// strides requests a non-contiguous view.
var ErrNotContiguous = buffer.ErrNotContiguous

// Export produces a descriptor for v. Release it when the consumer is done.
func Export(v *tensor.View, flags Flags) (*Descriptor, error) {
	return buffer.Export(v, flags)
}

// ParseFlags parses a list of flag names such as "WRITABLE|FORMAT|STRIDES".
func ParseFlags(s string) (Flags, error) {
	return buffer.ParseFlags(s)
}
