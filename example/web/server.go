package main

import (
	_ "embed"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/swdee/go-openpose"
	"github.com/swdee/go-openpose/estimator"
	"github.com/swdee/go-openpose/postprocess"
	"github.com/swdee/go-openpose/preprocess"
	"github.com/swdee/go-openpose/render"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

//go:embed index.html
var indexHTML []byte

// AcquireFunc checks out an Inferencer for a single request, the returned
// release function must be called once the request is done with it
type AcquireFunc func() (inf estimator.Inferencer, release func())

// PoolAcquirer returns an AcquireFunc backed by a runtime pool.  A nil
// Inferencer is returned once the pool is closed.
func PoolAcquirer(pool *openpose.Pool) AcquireFunc {
	return func() (estimator.Inferencer, func()) {
		rt := pool.Get()

		if rt == nil {
			return nil, func() {}
		}

		return rt, func() { pool.Return(rt) }
	}
}

// ErrorResponse is the JSON body returned for failed requests
type ErrorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

// Server handles image uploads and returns the image with the pose skeleton
// rendered
type Server struct {
	cfg     *Config
	log     *zap.Logger
	acquire AcquireFunc
	style   render.PoseStyle
}

// NewServer returns a Server
func NewServer(cfg *Config, log *zap.Logger, acquire AcquireFunc) *Server {

	style := render.DefaultPoseStyle()
	style.Labels = cfg.Render.Labels

	return &Server{
		cfg:     cfg,
		log:     log,
		acquire: acquire,
		style:   style,
	}
}

// Router returns the gin engine with all routes registered
func (s *Server) Router() *gin.Engine {

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(s.log))

	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"version": Version,
		})
	})

	api := r.Group("/api/v1")
	{
		api.POST("/estimate", s.Estimate)
	}

	return r
}

// Estimate runs pose estimation on the uploaded "image" file, or the fallback
// image when none is uploaded, at the "threshold" percentage and responds with
// the annotated PNG
func (s *Server) Estimate(c *gin.Context) {

	threshold, err := s.threshold(c)

	if err != nil {
		s.fail(c, http.StatusBadRequest, "threshold must be 0 to 100 in steps of 5", err)
		return
	}

	img, err := s.loadImage(c)

	if err != nil {
		status := http.StatusBadRequest

		if errors.Is(err, errFallback) {
			status = http.StatusInternalServerError
		}

		s.fail(c, status, "unable to read image", err)
		return
	}

	defer img.Close()

	inf, release := s.acquire()

	if inf == nil {
		release()
		s.fail(c, http.StatusServiceUnavailable, "model unavailable", errModelClosed)
		return
	}

	res, err := estimator.New(inf, s.style).Estimate(img, threshold)
	release()

	if err != nil {
		s.fail(c, http.StatusInternalServerError, "pose estimation failed", err)
		return
	}

	defer res.Close()

	buf, err := gocv.IMEncode(gocv.PNGFileExt, res.Image)

	if err != nil {
		s.fail(c, http.StatusInternalServerError, "failed to encode image", err)
		return
	}

	defer buf.Close()

	s.log.Debug("pose estimated",
		zap.Float64("threshold", threshold),
		zap.Int("keypoints", res.Pose.Count()),
		zap.Int("edges", len(res.Edges)),
		zap.Duration("inference", res.Timing.Inference),
		zap.Duration("post_process", res.Timing.PostProcess),
		zap.Duration("rendering", res.Timing.Rendering),
	)

	c.Header("X-Pose-Keypoints", strconv.Itoa(res.Pose.Count()))
	c.Header("X-Pose-Edges", strconv.Itoa(len(res.Edges)))
	c.Data(http.StatusOK, "image/png", buf.GetBytes())
}

// threshold reads the threshold percentage from the form or query string
func (s *Server) threshold(c *gin.Context) (float64, error) {

	value := c.PostForm("threshold")

	if value == "" {
		value = c.Query("threshold")
	}

	percent := s.cfg.Render.DefaultThreshold

	if value != "" {
		var err error
		percent, err = strconv.Atoi(value)

		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a number", postprocess.ErrInvalidThreshold, value)
		}
	}

	return postprocess.ThresholdFromPercent(percent)
}

// errModelClosed is reported for requests arriving after the model pool closed
var errModelClosed = errors.New("model pool is closed")

// errFallback marks failures loading the configured fallback image, which are
// server side errors
var errFallback = errors.New("fallback image")

// loadImage decodes the uploaded image or falls back to the configured image
func (s *Server) loadImage(c *gin.Context) (gocv.Mat, error) {

	file, err := c.FormFile("image")

	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		img, err := preprocess.ReadImageFile(s.cfg.Image.Fallback)

		if err != nil {
			return img, fmt.Errorf("%w: %w", errFallback, err)
		}

		return img, nil
	}

	if err != nil {
		return gocv.Mat{}, fmt.Errorf("%w: %v", openpose.ErrUnreadableImage, err)
	}

	if file.Size > s.cfg.Image.MaxSize {
		return gocv.Mat{}, fmt.Errorf("%w: upload of %d bytes exceeds %d",
			openpose.ErrUnreadableImage, file.Size, s.cfg.Image.MaxSize)
	}

	return decodeUpload(file)
}

func decodeUpload(file *multipart.FileHeader) (gocv.Mat, error) {

	f, err := file.Open()

	if err != nil {
		return gocv.Mat{}, fmt.Errorf("%w: %v", openpose.ErrUnreadableImage, err)
	}

	defer f.Close()

	return preprocess.DecodeImage(f)
}

// fail logs the error and responds with a JSON error body
func (s *Server) fail(c *gin.Context, status int, msg string, err error) {

	s.log.Error(msg, zap.Int("status", status), zap.Error(err))

	c.JSON(status, ErrorResponse{
		Success: false,
		Message: msg,
		Error:   err.Error(),
	})
}
