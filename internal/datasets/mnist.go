package datasets

import (
	"context"
	"fmt"
	"strings"

	"github.com/born-ml/ndbuf/internal/tensor"
)

// DefaultMNISTBaseURL hosts the gzipped MNIST IDX files.
const DefaultMNISTBaseURL = "https://raw.githubusercontent.com/fgnt/mnist/master/"

// MNIST file names, relative to the base URL.
const (
	MNISTTrainImages = "train-images-idx3-ubyte.gz"
	MNISTTrainLabels = "train-labels-idx1-ubyte.gz"
	MNISTTestImages  = "t10k-images-idx3-ubyte.gz"
	MNISTTestLabels  = "t10k-labels-idx1-ubyte.gz"
)

// MNIST holds the four MNIST splits as uint8 views.
// Images have shape [n, 28, 28]; labels have shape [n].
type MNIST struct {
	TrainImages *tensor.View
	TrainLabels *tensor.View
	TestImages  *tensor.View
	TestLabels  *tensor.View
}

// Views returns the splits keyed by file name.
func (m *MNIST) Views() map[string]*tensor.View {
	return map[string]*tensor.View{
		MNISTTrainImages: m.TrainImages,
		MNISTTrainLabels: m.TrainLabels,
		MNISTTestImages:  m.TestImages,
		MNISTTestLabels:  m.TestLabels,
	}
}

// Release drops every split's storage reference.
func (m *MNIST) Release() {
	for _, v := range []*tensor.View{m.TrainImages, m.TrainLabels, m.TestImages, m.TestLabels} {
		if v != nil {
			v.Release()
		}
	}
}

// FetchMNIST downloads and parses all four MNIST files from baseURL
// (DefaultMNISTBaseURL when empty).
func (f *Fetcher) FetchMNIST(ctx context.Context, baseURL string) (*MNIST, error) {
	if baseURL == "" {
		baseURL = DefaultMNISTBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	m := &MNIST{}
	targets := []struct {
		name string
		dst  **tensor.View
		rank int
	}{
		{MNISTTrainImages, &m.TrainImages, 3},
		{MNISTTrainLabels, &m.TrainLabels, 1},
		{MNISTTestImages, &m.TestImages, 3},
		{MNISTTestLabels, &m.TestLabels, 1},
	}

	for _, target := range targets {
		data, err := f.Fetch(ctx, baseURL+target.name)
		if err != nil {
			m.Release()
			return nil, err
		}
		view, err := ParseIDX(data)
		if err != nil {
			m.Release()
			return nil, fmt.Errorf("parse %s: %w", target.name, err)
		}
		if view.DType() != tensor.Uint8 || view.NDim() != target.rank {
			view.Release()
			m.Release()
			return nil, fmt.Errorf("parse %s: %w: got %s rank %d, want uint8 rank %d",
				target.name, ErrInvalidIDX, view.DType(), view.NDim(), target.rank)
		}
		*target.dst = view
	}
	return m, nil
}
