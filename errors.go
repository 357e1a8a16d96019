package openpose

import "errors"

var (
	// ErrModelNotFound is returned when the model file given to NewRuntime
	// does not exist or is not a regular file
	ErrModelNotFound = errors.New("model file not found")

	// ErrUnreadableImage is returned when an image can not be decoded or is
	// empty
	ErrUnreadableImage = errors.New("unreadable image")

	// ErrBodyPartMismatch is returned when the heatmap tensor output by the
	// model has fewer channels than there are body parts
	ErrBodyPartMismatch = errors.New("heatmap channel count does not match body parts")
)
