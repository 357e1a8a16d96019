package render

import (
	"image/color"

	"github.com/swdee/go-openpose"
	"github.com/swdee/go-openpose/postprocess/result"
	"gocv.io/x/gocv"
)

// PoseStyle defines how the skeleton is drawn
type PoseStyle struct {
	// LineColor and LineThickness are used for the limbs between joints
	LineColor     color.RGBA
	LineThickness int
	// JointColor and JointRadius are used for the filled joint markers
	JointColor  color.RGBA
	JointRadius int
	// Labels draws the body part name next to each drawn joint
	Labels bool
	// Font is used when Labels is set
	Font Font
}

// DefaultPoseStyle returns green limbs of thickness 3 with red joint markers
// of radius 3 and no labels
func DefaultPoseStyle() PoseStyle {
	return PoseStyle{
		LineColor:     Green,
		LineThickness: 3,
		JointColor:    Red,
		JointRadius:   3,
		Labels:        false,
		Font:          DefaultFont(),
	}
}

// PoseSkeleton renders the skeleton of the pose onto img.  A limb is drawn
// for each pose pair with both keypoints found followed by a marker on each
// of its joints.  The pose pairs drawn are returned in drawing order.
func PoseSkeleton(img *gocv.Mat, pose result.Pose, style PoseStyle) []openpose.PosePair {

	drawn := make([]openpose.PosePair, 0, openpose.NumPosePairs)
	var joints [openpose.NumBodyParts]bool

	for _, pair := range openpose.PosePairs() {
		from, okFrom := pose[pair.From].Point()
		to, okTo := pose[pair.To].Point()

		if !okFrom || !okTo {
			continue
		}

		gocv.Line(img, from, to, style.LineColor, style.LineThickness)
		gocv.Circle(img, from, style.JointRadius, style.JointColor, -1)
		gocv.Circle(img, to, style.JointRadius, style.JointColor, -1)

		joints[pair.From] = true
		joints[pair.To] = true
		drawn = append(drawn, pair)
	}

	if style.Labels {
		for part, ok := range joints {
			if !ok {
				continue
			}
			pt, _ := pose[part].Point()
			style.Font.Label(img, openpose.BodyPart(part).String(), pt)
		}
	}

	return drawn
}
