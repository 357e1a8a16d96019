package postprocess

import "fmt"

const (
	// ThresholdMaxPercent is the upper bound of the detection threshold control
	ThresholdMaxPercent = 100
	// ThresholdStep is the increment the threshold control moves in
	ThresholdStep = 5
)

// ThresholdFromPercent converts the detection threshold control value, 0 to
// 100 in steps of 5, into the fraction used for decoding, eg: 35 -> 0.35
func ThresholdFromPercent(percent int) (float64, error) {

	if percent < 0 || percent > ThresholdMaxPercent {
		return 0, fmt.Errorf("%w: %d is outside of 0-%d", ErrInvalidThreshold,
			percent, ThresholdMaxPercent)
	}

	if percent%ThresholdStep != 0 {
		return 0, fmt.Errorf("%w: %d is not a multiple of %d", ErrInvalidThreshold,
			percent, ThresholdStep)
	}

	return float64(percent) / 100, nil
}
