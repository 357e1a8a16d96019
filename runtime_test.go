package openpose

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestNewRuntimeMissingModel(t *testing.T) {

	dir := t.TempDir()

	tests := []string{
		filepath.Join(dir, "missing.pb"),
		dir,
	}

	for _, file := range tests {
		_, err := NewRuntime(file)

		if !errors.Is(err, ErrModelNotFound) {
			t.Errorf("%s: expected ErrModelNotFound, got %v", file, err)
		}
	}
}

func TestNewPoolInvalid(t *testing.T) {

	if _, err := NewPool(0, "graph_opt.pb"); err == nil {
		t.Errorf("expected error for empty pool")
	}

	_, err := NewPool(2, filepath.Join(t.TempDir(), "missing.pb"))

	if !errors.Is(err, ErrModelNotFound) {
		t.Errorf("expected ErrModelNotFound, got %v", err)
	}
}

func TestDefaultBlobParams(t *testing.T) {

	p := DefaultBlobParams()

	if p.Width != 368 || p.Height != 368 {
		t.Errorf("expected 368x368 input, got %dx%d", p.Width, p.Height)
	}

	if p.Mean.Val1 != 127.5 || p.Mean.Val2 != 127.5 || p.Mean.Val3 != 127.5 {
		t.Errorf("unexpected mean %v", p.Mean)
	}

	if p.Scale != 1.0 || !p.SwapRB || p.Crop {
		t.Errorf("unexpected blob params %+v", p)
	}
}
