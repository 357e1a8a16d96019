package openpose

import (
	"encoding/binary"
	"fmt"

	"gocv.io/x/gocv"
)

// matTypeCV16F is OpenCV's CV_16F depth which GoCV does not export
const matTypeCV16F = gocv.MatType(7)

// Tensor is a 4 dimensional float32 tensor in NCHW layout as output by the
// OpenPose network, eg: (1, 57, 46, 46)
type Tensor struct {
	// Shape holds the N, C, H, W dimensions
	Shape [4]int
	// Data is the row-major tensor data
	Data []float32
}

// NewTensor returns a Tensor of the given NCHW shape.  If data is nil a zero
// filled buffer is allocated, otherwise its length must match the shape.
func NewTensor(shape [4]int, data []float32) (*Tensor, error) {

	size := 1

	for i, d := range shape {
		if d <= 0 {
			return nil, fmt.Errorf("tensor dimension %d must be positive, got %d", i, d)
		}
		size *= d
	}

	if data == nil {
		data = make([]float32, size)
	}

	if len(data) != size {
		return nil, fmt.Errorf("tensor data length %d does not match shape %v (%d)",
			len(data), shape, size)
	}

	return &Tensor{
		Shape: shape,
		Data:  data,
	}, nil
}

// NewTensorFromFloat16 returns a Tensor from a half precision buffer, the
// values are converted to float32
func NewTensorFromFloat16(shape [4]int, buf []uint16) (*Tensor, error) {
	return NewTensor(shape, convertFloat16BufferToFloat32(buf))
}

// NewTensorFromMat copies a 4 dimensional FP32 or FP16 Mat, as returned by
// gocv.Net.Forward(), into a Tensor.  The Mat can be closed afterwards.
func NewTensorFromMat(m gocv.Mat) (*Tensor, error) {

	dims := m.Size()

	if len(dims) != 4 {
		return nil, fmt.Errorf("expected 4 dimensional output, got %d dimensions %v",
			len(dims), dims)
	}

	shape := [4]int{dims[0], dims[1], dims[2], dims[3]}

	// make mat continuous
	if !m.IsContinuous() {
		m = m.Clone()
		defer m.Close()
	}

	switch m.Type() {
	case gocv.MatTypeCV32F:
		data, err := m.DataPtrFloat32()

		if err != nil {
			return nil, fmt.Errorf("error getting data pointer to Mat: %w", err)
		}

		// copy out of C memory
		buf := make([]float32, len(data))
		copy(buf, data)

		return NewTensor(shape, buf)

	case matTypeCV16F:
		raw := m.ToBytes()
		half := make([]uint16, len(raw)/2)

		for i := range half {
			half[i] = binary.LittleEndian.Uint16(raw[i*2:])
		}

		return NewTensorFromFloat16(shape, half)

	default:
		return nil, fmt.Errorf("unsupported output Mat type %d", int(m.Type()))
	}
}

// Batch returns the N dimension
func (t *Tensor) Batch() int {
	return t.Shape[0]
}

// Channels returns the C dimension
func (t *Tensor) Channels() int {
	return t.Shape[1]
}

// Height returns the H dimension, the number of heatmap grid rows
func (t *Tensor) Height() int {
	return t.Shape[2]
}

// Width returns the W dimension, the number of heatmap grid columns
func (t *Tensor) Width() int {
	return t.Shape[3]
}

// Channel returns the heatmap for channel c of the first batch item as a
// slice of the tensor data laid out as row-major H x W
func (t *Tensor) Channel(c int) []float32 {
	plane := t.Shape[2] * t.Shape[3]
	return t.Data[c*plane : (c+1)*plane]
}

// At returns the value at channel c, row y, column x of the first batch item
func (t *Tensor) At(c, y, x int) float32 {
	return t.Data[(c*t.Shape[2]+y)*t.Shape[3]+x]
}

// Set assigns the value at channel c, row y, column x of the first batch item
func (t *Tensor) Set(c, y, x int, v float32) {
	t.Data[(c*t.Shape[2]+y)*t.Shape[3]+x] = v
}

// String returns the tensor shape
func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor(n=%d, c=%d, h=%d, w=%d)",
		t.Shape[0], t.Shape[1], t.Shape[2], t.Shape[3])
}
