package openpose

import "fmt"

// BodyPart is the index of a keypoint channel in the OpenPose heatmap output
type BodyPart int

// body parts in the channel order of the COCO trained OpenPose model
const (
	Nose BodyPart = iota
	Neck
	RShoulder
	RElbow
	RWrist
	LShoulder
	LElbow
	LWrist
	RHip
	RKnee
	RAnkle
	LHip
	LKnee
	LAnkle
	REye
	LEye
	REar
	LEar
	// Background is the sentinel channel, it is decoded but never drawn
	Background
)

// NumBodyParts is the number of heatmap channels used by the decoder
const NumBodyParts = 19

var bodyPartNames = [NumBodyParts]string{
	"Nose", "Neck", "RShoulder", "RElbow", "RWrist", "LShoulder", "LElbow",
	"LWrist", "RHip", "RKnee", "RAnkle", "LHip", "LKnee", "LAnkle", "REye",
	"LEye", "REar", "LEar", "Background",
}

// String returns the name of the body part
func (b BodyPart) String() string {
	if !b.Valid() {
		return fmt.Sprintf("BodyPart(%d)", int(b))
	}

	return bodyPartNames[b]
}

// Valid reports whether b is one of the defined body parts
func (b BodyPart) Valid() bool {
	return b >= Nose && b <= Background
}

// ParseBodyPart returns the BodyPart for the given name, eg: "RShoulder"
func ParseBodyPart(name string) (BodyPart, error) {

	for i, n := range bodyPartNames {
		if n == name {
			return BodyPart(i), nil
		}
	}

	return 0, fmt.Errorf("unknown body part %q", name)
}

// BodyParts returns all body parts in channel order
func BodyParts() [NumBodyParts]BodyPart {

	var parts [NumBodyParts]BodyPart

	for i := range parts {
		parts[i] = BodyPart(i)
	}

	return parts
}

// PosePair is a skeleton edge drawn between two body parts
type PosePair struct {
	From BodyPart
	To   BodyPart
}

// String returns the pair formatted as "From-To"
func (p PosePair) String() string {
	return p.From.String() + "-" + p.To.String()
}

// NumPosePairs is the number of edges in the skeleton
const NumPosePairs = 17

var posePairs = [NumPosePairs]PosePair{
	{Neck, RShoulder}, {Neck, LShoulder}, {RShoulder, RElbow}, {RElbow, RWrist},
	{LShoulder, LElbow}, {LElbow, LWrist}, {Neck, RHip}, {RHip, RKnee},
	{RKnee, RAnkle}, {Neck, LHip}, {LHip, LKnee}, {LKnee, LAnkle},
	{Neck, Nose}, {Nose, REye}, {REye, REar}, {Nose, LEye}, {LEye, LEar},
}

// PosePairs returns the skeleton edges in drawing order.  The array is
// returned by value so callers can not alter the table.
func PosePairs() [NumPosePairs]PosePair {
	return posePairs
}
