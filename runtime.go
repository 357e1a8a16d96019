package openpose

import (
	"fmt"
	"os"

	"gocv.io/x/gocv"
)

// Runtime defines the OpenCV DNN run time instance holding the loaded model.
// A Runtime is not safe for concurrent use, use a Pool to share models
// between goroutines.
type Runtime struct {
	// net is the OpenCV DNN network
	net gocv.Net
	// modelFile is the path of the loaded model
	modelFile string
	// params are the input blob preprocessing parameters
	params BlobParams
	// closed is set once the network has been released
	closed bool
}

// NewRuntime returns a run time instance with the model loaded.  Provide the
// full path and filename of the TensorFlow frozen graph, eg: graph_opt.pb
func NewRuntime(modelFile string) (*Runtime, error) {

	// check file exists in Go, before passing to C
	info, err := os.Stat(modelFile)

	if err != nil {
		return nil, fmt.Errorf("%w at %s, error: %v", ErrModelNotFound, modelFile, err)
	}

	if info.IsDir() {
		return nil, fmt.Errorf("%w, %s is a directory", ErrModelNotFound, modelFile)
	}

	net := gocv.ReadNetFromTensorflow(modelFile)

	if net.Empty() {
		net.Close()
		return nil, fmt.Errorf("failed to load model from %s", modelFile)
	}

	return &Runtime{
		net:       net,
		modelFile: modelFile,
		params:    DefaultBlobParams(),
	}, nil
}

// Close unloads the model and releases the C resources of the network.
// Calling Close more than once is a no-op.
func (r *Runtime) Close() error {

	if r.closed {
		return nil
	}

	r.closed = true
	return r.net.Close()
}

// SetBackend sets the preferred computation backend, eg: gocv.NetBackendOpenCV
func (r *Runtime) SetBackend(backend gocv.NetBackendType) error {

	err := r.net.SetPreferableBackend(backend)

	if err != nil {
		return fmt.Errorf("error setting backend: %w", err)
	}

	return nil
}

// SetTarget sets the preferred computation target device, eg: gocv.NetTargetCPU
func (r *Runtime) SetTarget(target gocv.NetTargetType) error {

	err := r.net.SetPreferableTarget(target)

	if err != nil {
		return fmt.Errorf("error setting target: %w", err)
	}

	return nil
}

// SetBlobParams overrides the default input preprocessing parameters
func (r *Runtime) SetBlobParams(p BlobParams) {
	r.params = p
}

// BlobParams returns the input preprocessing parameters in use
func (r *Runtime) BlobParams() BlobParams {
	return r.params
}

// ModelFile returns the path of the loaded model
func (r *Runtime) ModelFile() string {
	return r.modelFile
}
