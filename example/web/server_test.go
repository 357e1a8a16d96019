package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/swdee/go-openpose"
	"github.com/swdee/go-openpose/estimator"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// fakeInferencer returns a fixed heatmap instead of running a model
type fakeInferencer struct {
	heatmap *openpose.Tensor
}

func (f *fakeInferencer) Inference(img gocv.Mat) (*openpose.Outputs, error) {
	return &openpose.Outputs{Heatmap: f.heatmap, InputWidth: 368, InputHeight: 368}, nil
}

// pngBytes returns a black PNG of the given size
func pngBytes(t *testing.T, w, h int) []byte {

	img := image.NewRGBA(image.Rect(0, 0, w, h))

	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 255
	}

	var buf bytes.Buffer

	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode failed: %v", err)
	}

	return buf.Bytes()
}

// newTestServer returns a server using a fake model where Neck, Nose and
// REye are detected with confidence 0.9, 0.6 and 0.3
func newTestServer(t *testing.T, channels int) (*Server, *Config) {

	gin.SetMode(gin.TestMode)

	heatmap, err := openpose.NewTensor([4]int{1, channels, 46, 46}, nil)

	if err != nil {
		t.Fatalf("NewTensor failed: %v", err)
	}

	if channels >= openpose.NumBodyParts {
		heatmap.Set(int(openpose.Neck), 23, 23, 0.9)
		heatmap.Set(int(openpose.Nose), 10, 23, 0.6)
		heatmap.Set(int(openpose.REye), 8, 20, 0.3)
	}

	cfg, err := LoadConfig(viper.New(), "")

	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	cfg.Image.Fallback = filepath.Join(t.TempDir(), "fallback.png")

	if err := os.WriteFile(cfg.Image.Fallback, pngBytes(t, 92, 92), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	acquire := func() (estimator.Inferencer, func()) {
		return &fakeInferencer{heatmap: heatmap}, func() {}
	}

	return NewServer(cfg, zap.NewNop(), acquire), cfg
}

// uploadRequest builds a multipart request with an optional image and
// threshold field
func uploadRequest(t *testing.T, img []byte, threshold string) *http.Request {

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	if img != nil {
		fw, err := mw.CreateFormFile("image", "upload.png")

		if err != nil {
			t.Fatalf("CreateFormFile failed: %v", err)
		}

		fw.Write(img)
	}

	if threshold != "" {
		mw.WriteField("threshold", threshold)
	}

	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/estimate", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return req
}

func TestEstimateUpload(t *testing.T) {

	srv, _ := newTestServer(t, 57)
	router := srv.Router()

	tests := []struct {
		threshold string
		keypoints string
		edges     string
	}{
		{"0", "3", "2"},
		{"50", "2", "1"},
		{"95", "0", "0"},
	}

	for _, tc := range tests {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, uploadRequest(t, pngBytes(t, 368, 368), tc.threshold))

		if w.Code != http.StatusOK {
			t.Fatalf("threshold %s: expected 200, got %d: %s", tc.threshold, w.Code, w.Body.String())
		}

		if ct := w.Header().Get("Content-Type"); ct != "image/png" {
			t.Errorf("threshold %s: expected image/png, got %s", tc.threshold, ct)
		}

		if got := w.Header().Get("X-Pose-Keypoints"); got != tc.keypoints {
			t.Errorf("threshold %s: expected %s keypoints, got %s", tc.threshold, tc.keypoints, got)
		}

		if got := w.Header().Get("X-Pose-Edges"); got != tc.edges {
			t.Errorf("threshold %s: expected %s edges, got %s", tc.threshold, tc.edges, got)
		}

		out, err := png.Decode(w.Body)

		if err != nil {
			t.Fatalf("threshold %s: response is not a PNG: %v", tc.threshold, err)
		}

		if out.Bounds().Dx() != 368 || out.Bounds().Dy() != 368 {
			t.Errorf("threshold %s: expected 368x368 output, got %v", tc.threshold, out.Bounds())
		}
	}
}

func TestEstimateFallbackImage(t *testing.T) {

	srv, _ := newTestServer(t, 19)
	router := srv.Router()

	// multipart form with no file
	w := httptest.NewRecorder()
	router.ServeHTTP(w, uploadRequest(t, nil, "50"))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	out, err := png.Decode(w.Body)

	if err != nil {
		t.Fatalf("response is not a PNG: %v", err)
	}

	if out.Bounds().Dx() != 92 {
		t.Errorf("expected fallback image size 92, got %v", out.Bounds())
	}

	// url encoded form, threshold in query string
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/estimate?threshold=95",
		strings.NewReader(url.Values{}.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	if got := w.Header().Get("X-Pose-Keypoints"); got != "0" {
		t.Errorf("expected 0 keypoints at threshold 95, got %s", got)
	}
}

func TestEstimateErrors(t *testing.T) {

	tests := []struct {
		name     string
		channels int
		img      []byte
		thres    string
		fallback bool
		status   int
	}{
		{"bad threshold step", 19, nil, "7", false, http.StatusBadRequest},
		{"threshold not a number", 19, nil, "high", false, http.StatusBadRequest},
		{"threshold too high", 19, nil, "105", false, http.StatusBadRequest},
		{"garbage upload", 19, []byte("not an image"), "50", false, http.StatusBadRequest},
		{"missing fallback", 19, nil, "50", true, http.StatusInternalServerError},
		{"channel mismatch", 18, nil, "50", false, http.StatusInternalServerError},
	}

	for _, tc := range tests {
		srv, cfg := newTestServer(t, tc.channels)

		if tc.fallback {
			cfg.Image.Fallback = filepath.Join(t.TempDir(), "missing.png")
		}

		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, uploadRequest(t, tc.img, tc.thres))

		if w.Code != tc.status {
			t.Errorf("%s: expected %d, got %d", tc.name, tc.status, w.Code)
			continue
		}

		var resp ErrorResponse

		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Errorf("%s: expected JSON error body: %v", tc.name, err)
			continue
		}

		if resp.Success || resp.Error == "" {
			t.Errorf("%s: unexpected error body %+v", tc.name, resp)
		}
	}
}

func TestUploadTooLarge(t *testing.T) {

	srv, cfg := newTestServer(t, 19)
	cfg.Image.MaxSize = 10

	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, uploadRequest(t, pngBytes(t, 32, 32), "50"))

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestIndexAndHealth(t *testing.T) {

	srv, _ := newTestServer(t, 19)
	router := srv.Router()

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `name="threshold"`) {
		t.Errorf("expected upload form, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"ok"`) {
		t.Errorf("unexpected health response %d %s", w.Code, w.Body.String())
	}
}

func TestEstimateModelClosed(t *testing.T) {

	_, cfg := newTestServer(t, 19)

	released := false
	acquire := func() (estimator.Inferencer, func()) {
		return nil, func() { released = true }
	}

	w := httptest.NewRecorder()
	NewServer(cfg, zap.NewNop(), acquire).Router().ServeHTTP(w, uploadRequest(t, nil, "50"))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}

	if !released {
		t.Errorf("release was not called")
	}
}
