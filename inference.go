package openpose

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// BlobParams defines how an image is converted into the network input blob
type BlobParams struct {
	// Width and Height are the input tensor dimensions the image is resized to
	Width  int
	Height int
	// Scale multiplies pixel values after mean subtraction
	Scale float64
	// Mean is subtracted from each channel
	Mean gocv.Scalar
	// SwapRB swaps the first and last channels
	SwapRB bool
	// Crop center crops after resizing to keep aspect instead of stretching
	Crop bool
}

// DefaultBlobParams returns the preprocessing used by the OpenPose graph_opt.pb
// model:
// - Input Size: 368x368
// - Scale: 1.0
// - Mean: (127.5, 127.5, 127.5)
// - SwapRB: true
// - Crop: false
func DefaultBlobParams() BlobParams {
	return BlobParams{
		Width:  368,
		Height: 368,
		Scale:  1.0,
		Mean:   gocv.NewScalar(127.5, 127.5, 127.5, 0),
		SwapRB: true,
		Crop:   false,
	}
}

// Outputs holds the result of an inference pass
type Outputs struct {
	// Heatmap is the network output tensor, the first NumBodyParts channels
	// are the body part confidence maps
	Heatmap *Tensor
	// InputWidth and InputHeight are the blob dimensions fed to the network
	InputWidth  int
	InputHeight int
}

// Inference runs the model on the given BGR image and returns the heatmap
// output.  The image is not modified.
func (r *Runtime) Inference(img gocv.Mat) (*Outputs, error) {

	if img.Empty() {
		return nil, fmt.Errorf("%w: image is empty", ErrUnreadableImage)
	}

	blob := gocv.BlobFromImage(img, r.params.Scale,
		image.Pt(r.params.Width, r.params.Height), r.params.Mean,
		r.params.SwapRB, r.params.Crop)
	defer blob.Close()

	r.net.SetInput(blob, "")

	// run the model
	out := r.net.Forward("")
	defer out.Close()

	if out.Empty() {
		return nil, fmt.Errorf("model returned an empty output")
	}

	heatmap, err := NewTensorFromMat(out)

	if err != nil {
		return nil, fmt.Errorf("error reading output tensor: %w", err)
	}

	if heatmap.Channels() < NumBodyParts {
		return nil, fmt.Errorf("%w: model output has %d channels, need %d",
			ErrBodyPartMismatch, heatmap.Channels(), NumBodyParts)
	}

	return &Outputs{
		Heatmap:     heatmap,
		InputWidth:  r.params.Width,
		InputHeight: r.params.Height,
	}, nil
}
