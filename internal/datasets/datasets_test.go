package datasets

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/ndbuf/internal/tensor"
)

// idxFile builds an IDX file with the given type code, extents and raw
// big-endian body.
func idxFile(code byte, dims []uint32, body []byte) []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0, 0, code, byte(len(dims))})
	for _, d := range dims {
		_ = binary.Write(&buf, binary.BigEndian, d)
	}
	buf.Write(body)
	return buf.Bytes()
}

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(data)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestParseIDXUint8(t *testing.T) {
	data := idxFile(0x08, []uint32{2, 2, 3}, []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11})

	v, err := ParseIDX(data)
	require.NoError(t, err)
	defer v.Release()

	assert.Equal(t, tensor.Uint8, v.DType())
	assert.Equal(t, tensor.Shape{2, 2, 3}, v.Shape())
	assert.Equal(t, []int{6, 3, 1}, v.Strides())
	assert.True(t, v.IsContiguous())

	got, err := v.At(1, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, uint8(11), got)
}

func TestParseIDXConvertsByteOrder(t *testing.T) {
	body := make([]byte, 8)
	binary.BigEndian.PutUint32(body[0:], math.Float32bits(1.5))
	binary.BigEndian.PutUint32(body[4:], math.Float32bits(-2))

	v, err := ParseIDX(idxFile(0x0D, []uint32{2}, body))
	require.NoError(t, err)
	defer v.Release()

	assert.Equal(t, tensor.Float32, v.DType())
	first, err := v.At(0)
	require.NoError(t, err)
	second, err := v.At(1)
	require.NoError(t, err)
	assert.Equal(t, float32(1.5), first)
	assert.Equal(t, float32(-2), second)

	ints := make([]byte, 4)
	binary.BigEndian.PutUint16(ints[0:], 0x0102)
	binary.BigEndian.PutUint16(ints[2:], 0xfffe)
	v16, err := ParseIDX(idxFile(0x0B, []uint32{2}, ints))
	require.NoError(t, err)
	defer v16.Release()

	a, err := v16.At(0)
	require.NoError(t, err)
	b, err := v16.At(1)
	require.NoError(t, err)
	assert.Equal(t, int16(0x0102), a)
	assert.Equal(t, int16(-2), b)
}

func TestParseIDXLargeInt32(t *testing.T) {
	const n = 50000
	body := make([]byte, 4*n)
	for i := range n {
		binary.BigEndian.PutUint32(body[4*i:], uint32(i-n/2))
	}

	v, err := ParseIDX(idxFile(0x0C, []uint32{n}, body))
	require.NoError(t, err)
	defer v.Release()

	for _, i := range []int{0, 1, n / 2, n - 1} {
		got, err := v.At(i)
		require.NoError(t, err)
		assert.Equal(t, int32(i-n/2), got, "element %d", i)
	}
}

func TestParseIDXIgnoresTrailingBytes(t *testing.T) {
	v, err := ParseIDX(idxFile(0x08, []uint32{2}, []byte{7, 8, 9}))
	require.NoError(t, err)
	defer v.Release()
	assert.Equal(t, 2, v.Storage().Len())
}

func TestParseIDXInvalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short", []byte{0, 0, 8}},
		{"bad magic", []byte{1, 0, 8, 1, 0, 0, 0, 1, 0}},
		{"unknown type", idxFile(0x0A, []uint32{1}, []byte{0})},
		{"truncated extents", []byte{0, 0, 8, 2, 0, 0, 0, 1}},
		{"truncated body", idxFile(0x08, []uint32{4}, []byte{1, 2})},
		{"extents overflow", idxFile(0x08, []uint32{0xffffffff, 0xffffffff}, []byte{1, 2, 3})},
		{"extents overflow int32", idxFile(0x0C, []uint32{0x80000000, 0x80000000, 4}, make([]byte, 16))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseIDX(tt.data)
			assert.ErrorIs(t, err, ErrInvalidIDX)
		})
	}
}

func TestFetchDecompressesGzip(t *testing.T) {
	plain := []byte("plain body")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/plain":
			_, _ = w.Write(plain)
		case "/gz":
			_, _ = w.Write(gzipBytes(t, plain))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := NewFetcher(nil)

	got, err := f.Fetch(context.Background(), srv.URL+"/plain")
	require.NoError(t, err)
	assert.Equal(t, plain, got)

	got, err = f.Fetch(context.Background(), srv.URL+"/gz")
	require.NoError(t, err)
	assert.Equal(t, plain, got)

	_, err = f.Fetch(context.Background(), srv.URL+"/missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestFetchLogsToTextHandler(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(gzipBytes(t, []byte("abcd")))
	}))
	defer srv.Close()

	var logs bytes.Buffer
	f := NewFetcher(slog.New(slog.NewTextHandler(&logs, nil)))
	_, err := f.Fetch(context.Background(), srv.URL)
	require.NoError(t, err)

	assert.Contains(t, logs.String(), `msg="fetched dataset file"`)
	assert.Contains(t, logs.String(), "decompressed=4")
}

func TestFetchEnforcesLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(gzipBytes(t, make([]byte, 1024)))
	}))
	defer srv.Close()

	f := &Fetcher{MaxBytes: 512}
	_, err := f.Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")
}

func TestFetchHonorsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("x"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewFetcher(nil).Fetch(ctx, srv.URL)
	assert.True(t, errors.Is(err, context.Canceled), "got %v", err)
}

func mnistServer(t *testing.T, labelsRank int) *httptest.Server {
	t.Helper()
	images := gzipBytes(t, idxFile(0x08, []uint32{2, 28, 28}, make([]byte, 2*28*28)))
	labelDims := []uint32{2}
	if labelsRank == 2 {
		labelDims = []uint32{2, 1}
	}
	labels := gzipBytes(t, idxFile(0x08, labelDims, []byte{3, 7}))

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := strings.TrimPrefix(r.URL.Path, "/mnist/")
		switch name {
		case MNISTTrainImages, MNISTTestImages:
			_, _ = w.Write(images)
		case MNISTTrainLabels, MNISTTestLabels:
			_, _ = w.Write(labels)
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestFetchMNIST(t *testing.T) {
	srv := mnistServer(t, 1)
	defer srv.Close()

	m, err := NewFetcher(nil).FetchMNIST(context.Background(), srv.URL+"/mnist")
	require.NoError(t, err)
	defer m.Release()

	assert.Equal(t, tensor.Shape{2, 28, 28}, m.TrainImages.Shape())
	assert.Equal(t, tensor.Shape{2, 28, 28}, m.TestImages.Shape())
	assert.Equal(t, tensor.Shape{2}, m.TrainLabels.Shape())

	label, err := m.TestLabels.At(1)
	require.NoError(t, err)
	assert.Equal(t, uint8(7), label)

	assert.Len(t, m.Views(), 4)
}

func TestFetchMNISTRejectsWrongRank(t *testing.T) {
	srv := mnistServer(t, 2)
	defer srv.Close()

	_, err := NewFetcher(nil).FetchMNIST(context.Background(), srv.URL+"/mnist/")
	assert.ErrorIs(t, err, ErrInvalidIDX)
}
