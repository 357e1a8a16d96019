package openpose

import (
	"fmt"
	"io"

	"gocv.io/x/gocv"
)

// Query the runtime and loaded model to get the layer and input information
// as well as OpenCV version in text/human readable format
func (r *Runtime) Query(w io.Writer) error {

	fmt.Fprintf(w, "GoCV Version: %s, OpenCV Version: %s\n", gocv.Version(),
		gocv.OpenCVVersion())

	fmt.Fprintf(w, "Model File: %s\n", r.modelFile)

	names := r.net.GetLayerNames()

	if len(names) == 0 {
		return fmt.Errorf("model has no layers")
	}

	fmt.Fprintf(w, "Model Layer Number: %d\n", len(names))

	fmt.Fprintf(w, "Output layers:\n")

	// layer ids are 1 based, id 0 is the input layer
	for _, id := range r.net.GetUnconnectedOutLayers() {
		if id < 1 || id > len(names) {
			continue
		}
		fmt.Fprintf(w, "  id=%d, name=%s\n", id, names[id-1])
	}

	p := r.params

	fmt.Fprintf(w, "Input blob:\n")
	fmt.Fprintf(w, "  size=%dx%d, scale=%f, mean=[%.1f, %.1f, %.1f], swap_rb=%t, crop=%t\n",
		p.Width, p.Height, p.Scale, p.Mean.Val1, p.Mean.Val2, p.Mean.Val3,
		p.SwapRB, p.Crop)

	return nil
}
