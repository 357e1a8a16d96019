//go:build integration
// +build integration

package openpose

import (
	"os"
	"testing"

	"gocv.io/x/gocv"
)

func TestOpenPoseInference(t *testing.T) {

	modelFile := os.Getenv("OPENPOSE_MODEL")

	if modelFile == "" {
		t.Fatalf("No Model file provided in OPENPOSE_MODEL")
	}

	imgFile := os.Getenv("OPENPOSE_IMAGE")

	if imgFile == "" {
		t.Fatalf("No Image file provided in OPENPOSE_IMAGE")
	}

	// Initialize runtime
	rt, err := NewRuntime(modelFile)

	if err != nil {
		t.Fatalf("NewRuntime failed: %v", err)
	}

	defer rt.Close()

	if err := rt.Query(os.Stdout); err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	// load image
	img := gocv.IMRead(imgFile, gocv.IMReadColor)

	if img.Empty() {
		t.Fatalf("Error reading image from: %s", imgFile)
	}

	defer img.Close()

	outputs, err := rt.Inference(img)

	if err != nil {
		t.Fatalf("Inference failed: %v", err)
	}

	heatmap := outputs.Heatmap

	// graph_opt.pb outputs 19 heatmaps + 38 PAFs on a 46x46 grid
	if heatmap.Batch() != 1 || heatmap.Channels() < NumBodyParts {
		t.Fatalf("unexpected output shape %s", heatmap)
	}

	if heatmap.Height() != 46 || heatmap.Width() != 46 {
		t.Errorf("expected 46x46 grid for 368x368 input, got %dx%d",
			heatmap.Width(), heatmap.Height())
	}
}
