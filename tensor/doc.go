// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides typed byte storage and strided views over it.
//
// # Overview
//
// A Storage is a reference-counted block of bytes. A View interprets a
// Storage as an n-dimensional array of one element type:
//   - Shape gives the extent of each dimension
//   - Strides give the byte distance between consecutive indices
//   - DataType gives the element type and its one-character format tag
//
// Several views may share one storage; a write through any of them is
// visible through all. The storage stays alive until the last view and
// the last exported descriptor (see package buffer) are released.
//
// # Basic Usage
//
//	s := tensor.FromBytes([]byte{1, 2, 3, 4, 5, 6})
//	v, err := tensor.NewContiguous(s, tensor.Shape{2, 3}, tensor.Uint8)
//	if err != nil {
//	    return err
//	}
//	defer v.Release()
//
//	x, _ := v.At(1, 2) // uint8(6)
//	fmt.Println(v)     // View(shape=[2 3], strides=[3 1], format="B", data=[1, 2, 3, 4, 5, 6]...)
//
// # Format Tags
//
//	?  Bool      b  Int8     h  Int16    i  Int32     q  Int64
//	B  Uint8     e  Float16  f  Float32  d  Float64   v  BFloat16
//
// An unknown tag fails with ErrUnsupportedFormat.
//
// # Layout Validation
//
// NewView and (*View).Reshape reject any shape and stride combination
// that would address bytes outside the storage, returning an error
// wrapping ErrShapeMismatch.
package tensor
