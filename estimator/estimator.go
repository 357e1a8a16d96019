/*
Package estimator chains inference, keypoint decoding and skeleton rendering
for a single image.
*/
package estimator

import (
	"fmt"
	"time"

	"github.com/swdee/go-openpose"
	"github.com/swdee/go-openpose/postprocess"
	"github.com/swdee/go-openpose/postprocess/result"
	"github.com/swdee/go-openpose/render"
	"gocv.io/x/gocv"
)

// Inferencer runs the pose network over an image, it is satisfied by
// *openpose.Runtime
type Inferencer interface {
	Inference(img gocv.Mat) (*openpose.Outputs, error)
}

var _ Inferencer = (*openpose.Runtime)(nil)

// Timing holds the time spent in each stage of an estimation
type Timing struct {
	Inference   time.Duration
	PostProcess time.Duration
	Rendering   time.Duration
}

// Total returns the sum of all stages
func (t Timing) Total() time.Duration {
	return t.Inference + t.PostProcess + t.Rendering
}

// Result is the outcome of estimating the pose in one image
type Result struct {
	// Image is a copy of the source image with the skeleton drawn on it
	Image gocv.Mat
	// Pose holds the decoded keypoints
	Pose result.Pose
	// Edges are the pose pairs that were drawn
	Edges []openpose.PosePair
	// Timing of each stage
	Timing Timing
}

// Close frees the annotated image
func (r *Result) Close() error {
	return r.Image.Close()
}

// Estimator runs the full pose estimation pipeline
type Estimator struct {
	inf   Inferencer
	style render.PoseStyle
}

// New returns an Estimator using the given inferencer and drawing style
func New(inf Inferencer, style render.PoseStyle) *Estimator {
	return &Estimator{
		inf:   inf,
		style: style,
	}
}

// Estimate detects the pose in img keeping keypoints whose confidence is
// above threshold and returns the annotated copy.  img is left untouched.
// On error no Result is returned.
func (e *Estimator) Estimate(img gocv.Mat, threshold float64) (*Result, error) {

	if img.Empty() {
		return nil, fmt.Errorf("%w: image is empty", openpose.ErrUnreadableImage)
	}

	start := time.Now()

	outputs, err := e.inf.Inference(img)

	if err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	endInference := time.Now()

	decoder := postprocess.NewOpenPose(postprocess.OpenPoseParams{
		Threshold: threshold,
	})

	pose, err := decoder.DecodeKeyPoints(outputs, img.Cols(), img.Rows())

	if err != nil {
		return nil, fmt.Errorf("error decoding keypoints: %w", err)
	}

	endDecode := time.Now()

	annotated := img.Clone()
	edges := render.PoseSkeleton(&annotated, pose, e.style)

	endRendering := time.Now()

	return &Result{
		Image: annotated,
		Pose:  pose,
		Edges: edges,
		Timing: Timing{
			Inference:   endInference.Sub(start),
			PostProcess: endDecode.Sub(endInference),
			Rendering:   endRendering.Sub(endDecode),
		},
	}, nil
}
