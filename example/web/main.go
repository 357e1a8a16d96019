/*
Example web front end for pose estimation.  An image is uploaded with a
detection threshold and the image is returned with the pose skeleton rendered.
When no image is uploaded the configured fallback image is used.
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/swdee/go-openpose"
	"go.uber.org/zap"
	"gocv.io/x/gocv"
)

// Version is the application version
const Version = "0.1.0"

var (
	// cfgFile is the optional YAML config file path
	cfgFile string
	// v holds the flag bindings and config file values
	v = viper.New()
)

var rootCmd = &cobra.Command{
	Use:     "openpose-web",
	Short:   "Human pose estimation web front end",
	Version: Version,
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context())
	},
	SilenceUsage: true,
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&cfgFile, "config", "", "YAML config file")
	flags.String("addr", ":8080", "HTTP listen address")
	flags.String("model", "../data/models/graph_opt.pb", "OpenPose TensorFlow model file")
	flags.String("fallback", "../data/1.png", "Image used when no image is uploaded")
	flags.String("mode", "debug", "Server mode [debug|release]")

	_ = v.BindPFlag("server.addr", flags.Lookup("addr"))
	_ = v.BindPFlag("model.file", flags.Lookup("model"))
	_ = v.BindPFlag("image.fallback", flags.Lookup("fallback"))
	_ = v.BindPFlag("server.mode", flags.Lookup("mode"))
}

func main() {
	// Create a context that listens for Ctrl+C (SIGINT) or Kill (SIGTERM)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {

	cfg, err := LoadConfig(v, cfgFile)

	if err != nil {
		return err
	}

	logger, err := NewLogger(cfg.Server.Mode)

	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	defer logger.Sync()

	logger.Info("starting openpose web server",
		zap.String("version", Version),
		zap.String("gocv", gocv.Version()),
		zap.String("opencv", gocv.OpenCVVersion()))

	// the model is loaded once and reused by every request
	pool, err := openpose.NewPool(cfg.Model.PoolSize, cfg.Model.File)

	if err != nil {
		return fmt.Errorf("failed to load model: %w", err)
	}

	defer pool.Close()

	err = pool.SetBackendAndTarget(gocv.ParseNetBackend(cfg.Model.Backend),
		gocv.ParseNetTarget(cfg.Model.Target))

	if err != nil {
		return err
	}

	logger.Info("model loaded",
		zap.String("file", cfg.Model.File),
		zap.Int("pool_size", pool.Size()))

	gin.SetMode(cfg.Server.Mode)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      NewServer(cfg, logger, PoolAcquirer(pool)).Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// closed once in-flight requests have drained, the deferred pool Close
	// must not run before then
	drained := make(chan struct{})

	go func() {
		defer close(drained)

		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("server shutdown", zap.Error(err))
		}
	}()

	logger.Info("server starting", zap.String("addr", cfg.Server.Addr))

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to start server: %w", err)
	}

	<-drained

	logger.Info("server stopped")

	return nil
}
