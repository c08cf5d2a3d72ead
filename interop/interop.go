// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package interop exposes tensor views to a host runtime as a
// buffer-protocol object type.
//
// Construct builds a Buffer from host data (raw bytes or typed slices)
// with a shape, byte strides and a format tag. A Module groups object
// types and registers them with a Host exactly once.
//
// Example:
//
//	b, err := interop.Construct([]float32{1, 2, 3, 4}, []int{2, 2}, nil, "f")
//	if err != nil {
//	    return err
//	}
//	defer b.Release()
//	fmt.Println(b) // Buffer(shape=[2 2], strides=[8 4], format="f", data=[1, 2, 3, 4]...)
package interop

import (
	"github.com/born-ml/ndbuf/internal/interop"
	"github.com/born-ml/ndbuf/tensor"
)

// Buffer is the host-visible wrapper around a view.
type Buffer = interop.Buffer

// Module is a named set of object types.
type Module = interop.Module

// Host registers object types with a runtime.
type Host = interop.Host

// Constructor builds a Buffer from host arguments.
type Constructor = interop.Constructor

// CoreModuleName is the name of the module returned by NewCoreModule.
const CoreModuleName = interop.CoreModuleName

// Construct builds a Buffer over a fresh copy of data.
// Strides default to row-major when nil.
func Construct(data any, shape, strides []int, format string) (*Buffer, error) {
	return interop.Construct(data, shape, strides, format)
}

// Wrap returns a Buffer sharing v's storage.
func Wrap(v *tensor.View) *Buffer {
	return interop.Wrap(v)
}

// NewModule returns an empty module.
func NewModule(name string) *Module {
	return interop.NewModule(name)
}

// NewCoreModule returns the module exposing the Buffer type.
func NewCoreModule() *Module {
	return interop.NewCoreModule()
}
