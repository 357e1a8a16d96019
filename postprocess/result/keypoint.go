package result

import (
	"fmt"
	"image"

	"github.com/swdee/go-openpose"
)

// KeyPoint is a single decoded body part location in original image pixel
// coordinates
type KeyPoint struct {
	// Part is the body part the keypoint belongs to
	Part openpose.BodyPart
	// X and Y are the pixel coordinates, only meaningful when Found is true
	X int
	Y int
	// Score is the peak heatmap confidence of the part
	Score float32
	// Found is true when Score exceeded the detection threshold
	Found bool
}

// Point returns the keypoint location and whether it was found
func (k KeyPoint) Point() (image.Point, bool) {
	if !k.Found {
		return image.Point{}, false
	}
	return image.Pt(k.X, k.Y), true
}

// String returns the keypoint as "Part(x,y)" or "Part(absent)"
func (k KeyPoint) String() string {
	if !k.Found {
		return fmt.Sprintf("%s(absent)", k.Part)
	}
	return fmt.Sprintf("%s(%d,%d)", k.Part, k.X, k.Y)
}

// Pose holds exactly one KeyPoint per body part in channel order
type Pose [openpose.NumBodyParts]KeyPoint

// Get returns the keypoint for the given body part
func (p *Pose) Get(part openpose.BodyPart) KeyPoint {
	return p[part]
}

// Found returns the keypoints that were detected, in channel order
func (p *Pose) Found() []KeyPoint {

	found := make([]KeyPoint, 0, len(p))

	for _, kp := range p {
		if kp.Found {
			found = append(found, kp)
		}
	}

	return found
}

// Count returns the number of keypoints detected
func (p *Pose) Count() int {

	n := 0

	for _, kp := range p {
		if kp.Found {
			n++
		}
	}

	return n
}

// Edges returns the skeleton pose pairs that have both keypoints detected,
// in drawing order
func (p *Pose) Edges() []openpose.PosePair {

	edges := make([]openpose.PosePair, 0, openpose.NumPosePairs)

	for _, pair := range openpose.PosePairs() {
		if p[pair.From].Found && p[pair.To].Found {
			edges = append(edges, pair)
		}
	}

	return edges
}
