package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/swdee/go-openpose/postprocess"
)

// Config is the web server configuration
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Model  ModelConfig  `mapstructure:"model"`
	Image  ImageConfig  `mapstructure:"image"`
	Render RenderConfig `mapstructure:"render"`
}

type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type ModelConfig struct {
	File     string `mapstructure:"file"`
	Backend  string `mapstructure:"backend"`
	Target   string `mapstructure:"target"`
	PoolSize int    `mapstructure:"pool_size"`
}

type ImageConfig struct {
	// Fallback is the image used when a request has no upload
	Fallback string `mapstructure:"fallback"`
	MaxSize  int64  `mapstructure:"max_size"`
}

type RenderConfig struct {
	Labels bool `mapstructure:"labels"`
	// DefaultThreshold is the threshold percentage used when a request does
	// not give one
	DefaultThreshold int `mapstructure:"default_threshold"`
}

// envPrefix is prepended to environment overrides, eg: OPENPOSE_SERVER_ADDR
const envPrefix = "OPENPOSE"

// LoadConfig reads the YAML config file at path into v, if path is given,
// and applies defaults and environment overrides
func LoadConfig(v *viper.Viper, path string) (*Config, error) {

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	v.SetDefault("model.file", "../data/models/graph_opt.pb")
	v.SetDefault("model.backend", "default")
	v.SetDefault("model.target", "cpu")
	v.SetDefault("model.pool_size", 1)

	v.SetDefault("image.fallback", "../data/1.png")
	v.SetDefault("image.max_size", 10*1024*1024)

	v.SetDefault("render.labels", false)
	v.SetDefault("render.default_threshold", 0)
}

func (c *Config) validate() error {

	if c.Model.PoolSize < 1 {
		return fmt.Errorf("model.pool_size must be at least 1, got %d", c.Model.PoolSize)
	}

	if c.Image.MaxSize <= 0 {
		return fmt.Errorf("image.max_size must be positive, got %d", c.Image.MaxSize)
	}

	if _, err := postprocess.ThresholdFromPercent(c.Render.DefaultThreshold); err != nil {
		return fmt.Errorf("render.default_threshold: %w", err)
	}

	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be debug, release or test, got %q", c.Server.Mode)
	}

	return nil
}
