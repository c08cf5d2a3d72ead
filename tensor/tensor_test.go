// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"errors"
	"testing"

	"github.com/born-ml/ndbuf/tensor"
)

// TestPublicAPI exercises the public aliases end to end.
func TestPublicAPI(t *testing.T) {
	s := tensor.FromBytes([]byte{1, 2, 3, 4, 5, 6})
	v, err := tensor.NewContiguous(s, tensor.Shape{2, 3}, tensor.Uint8)
	if err != nil {
		t.Fatalf("NewContiguous failed: %v", err)
	}
	defer v.Release()

	if !v.Shape().Equal(tensor.Shape{2, 3}) {
		t.Errorf("Shape() = %v, want [2 3]", v.Shape())
	}
	if v.DType() != tensor.Uint8 {
		t.Errorf("DType() = %v, want uint8", v.DType())
	}

	got, err := v.At(1, 2)
	if err != nil {
		t.Fatalf("At failed: %v", err)
	}
	if got != uint8(6) {
		t.Errorf("At(1, 2) = %v, want 6", got)
	}

	want := `View(shape=[2 3], strides=[3 1], format="B", data=[1, 2, 3, 4, 5, 6]...)`
	if v.String() != want {
		t.Errorf("String() = %q, want %q", v.String(), want)
	}
}

func TestPublicFormats(t *testing.T) {
	if len(tensor.DataTypes()) != 10 {
		t.Errorf("DataTypes() has %d entries, want 10", len(tensor.DataTypes()))
	}
	for _, dt := range tensor.DataTypes() {
		parsed, err := tensor.FromTag(dt.Format())
		if err != nil || parsed != dt {
			t.Errorf("FromTag(%q) = %v, %v; want %v", dt.Format(), parsed, err, dt)
		}
	}

	_, err := tensor.ParseFormat("x")
	if !errors.Is(err, tensor.ErrUnsupportedFormat) {
		t.Errorf("ParseFormat(x) error = %v, want ErrUnsupportedFormat", err)
	}
	var fe *tensor.FormatError
	if !errors.As(err, &fe) || fe.Tag != "x" {
		t.Errorf("expected *FormatError for tag x, got %v", err)
	}
}

func TestPublicShapeMismatch(t *testing.T) {
	_, err := tensor.NewView(tensor.FromBytes(make([]byte, 4)), tensor.Shape{2, 2}, []int{4, 2}, tensor.Uint8)
	if !errors.Is(err, tensor.ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}
	var se *tensor.ShapeError
	if !errors.As(err, &se) {
		t.Fatalf("expected *ShapeError, got %T", err)
	}
	if se.StorageLen != 4 {
		t.Errorf("StorageLen = %d, want 4", se.StorageLen)
	}
}
