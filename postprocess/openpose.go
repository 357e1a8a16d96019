package postprocess

import (
	"errors"
	"fmt"
	"math"

	"github.com/swdee/go-openpose"
	"github.com/swdee/go-openpose/postprocess/result"
	"gonum.org/v1/gonum/floats"
)

// ErrInvalidThreshold is returned for thresholds outside of [0, 1] or
// percentages that are not a multiple of ThresholdStep
var ErrInvalidThreshold = errors.New("invalid threshold")

// OpenPose defines the struct for OpenPose heatmap inference post processing
type OpenPose struct {
	// Params are the keypoint decoding parameters
	Params OpenPoseParams
}

// OpenPoseParams defines the struct containing the parameters used to decode
// heatmaps into keypoints
type OpenPoseParams struct {
	// Threshold is the confidence a heatmap peak must strictly exceed for the
	// keypoint to be accepted, in the range [0, 1]
	Threshold float64
}

// OpenPoseDefaultParams returns an instance of OpenPoseParams with the
// threshold at 0, matching the detection slider's starting position
func OpenPoseDefaultParams() OpenPoseParams {
	return OpenPoseParams{
		Threshold: 0,
	}
}

// NewOpenPose returns an instance of the OpenPose post processor
func NewOpenPose(p OpenPoseParams) *OpenPose {
	return &OpenPose{
		Params: p,
	}
}

// DecodeKeyPoints takes the inference outputs and the dimensions of the
// original image and returns the pose keypoints using the configured threshold
func (o *OpenPose) DecodeKeyPoints(outputs *openpose.Outputs,
	frameWidth, frameHeight int) (result.Pose, error) {

	if outputs == nil || outputs.Heatmap == nil {
		return result.Pose{}, fmt.Errorf("no heatmap in outputs")
	}

	return DecodeHeatmaps(outputs.Heatmap, frameWidth, frameHeight, o.Params.Threshold)
}

// DecodeHeatmaps converts the first NumBodyParts channels of the heatmap
// tensor into keypoints.  For each channel the first grid cell holding the
// maximum confidence is scaled linearly into frame pixel coordinates.  The
// keypoint is Found only if its confidence is strictly greater than threshold.
func DecodeHeatmaps(heatmap *openpose.Tensor, frameWidth, frameHeight int,
	threshold float64) (result.Pose, error) {

	var pose result.Pose

	if heatmap == nil {
		return pose, fmt.Errorf("no heatmap tensor given")
	}

	if err := validateThreshold(threshold); err != nil {
		return pose, err
	}

	if frameWidth <= 0 || frameHeight <= 0 {
		return pose, fmt.Errorf("invalid frame size %dx%d", frameWidth, frameHeight)
	}

	if heatmap.Channels() < openpose.NumBodyParts {
		return pose, fmt.Errorf("%w: heatmap has %d channels, need %d",
			openpose.ErrBodyPartMismatch, heatmap.Channels(), openpose.NumBodyParts)
	}

	gridH := heatmap.Height()
	gridW := heatmap.Width()

	// reused per channel as gonum works on float64
	buf := make([]float64, gridH*gridW)

	for i := 0; i < openpose.NumBodyParts; i++ {

		for j, v := range heatmap.Channel(i) {
			buf[j] = float64(v)
		}

		idx := floats.MaxIdx(buf)
		conf := buf[idx]
		gridX := idx % gridW
		gridY := idx / gridW

		kp := result.KeyPoint{
			Part:  openpose.BodyPart(i),
			Score: float32(conf),
		}

		// NaN never exceeds the threshold
		if conf > threshold {
			kp.X = scaleToFrame(frameWidth, gridX, gridW)
			kp.Y = scaleToFrame(frameHeight, gridY, gridH)
			kp.Found = true
		}

		pose[i] = kp
	}

	return pose, nil
}

// scaleToFrame maps a heatmap grid position to a frame pixel position
// truncating toward zero
func scaleToFrame(frameDim, gridPos, gridDim int) int {
	return int(float64(frameDim) * float64(gridPos) / float64(gridDim))
}

// validateThreshold checks the threshold is a fraction in [0, 1]
func validateThreshold(threshold float64) error {

	if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
		return fmt.Errorf("%w: %v is outside of [0, 1]", ErrInvalidThreshold, threshold)
	}

	return nil
}
