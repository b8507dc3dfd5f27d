// Package config loads structtensor.toml, the CLI's configuration file.
//
//	default_dtype = "float32"
//
//	[parallel]
//	workers = 8      # 0 uses every CPU
//	min_batch = 16   # rows per goroutine
//
//	[log]
//	level = "info"   # debug, info, warn, error
//	format = "console" # console or json
//
//	[store]
//	path = "rows.db"
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/born-ml/structtensor/internal/parallel"
	"github.com/born-ml/structtensor/internal/tensor"
)

// FileName is the configuration file looked up in the working directory.
const FileName = "structtensor.toml"

// Config is the decoded configuration file.
type Config struct {
	DefaultDType string   `toml:"default_dtype"`
	Parallel     Parallel `toml:"parallel"`
	Log          Log      `toml:"log"`
	Store        Store    `toml:"store"`
}

// Parallel configures batch workers.
type Parallel struct {
	Workers  int `toml:"workers"`
	MinBatch int `toml:"min_batch"`
}

// Log configures the CLI logger.
type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Store configures the dataset store.
type Store struct {
	Path string `toml:"path"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	p := parallel.DefaultConfig()
	return Config{
		DefaultDType: tensor.DefaultDataType.String(),
		Parallel:     Parallel{Workers: 0, MinBatch: p.MinChunkSize},
		Log:          Log{Level: "info", Format: "console"},
		Store:        Store{Path: "structtensor.db"},
	}
}

// Load reads the file at path over the defaults. A missing file is not an
// error when optional is set.
func Load(path string, optional bool) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks value ranges and names.
func (c Config) Validate() error {
	if _, err := tensor.ParseDataType(c.DefaultDType); err != nil {
		return fmt.Errorf("default_dtype: %w", err)
	}
	if c.Parallel.Workers < 0 {
		return fmt.Errorf("[parallel].workers must not be negative, got %d", c.Parallel.Workers)
	}
	if c.Parallel.MinBatch < 0 {
		return fmt.Errorf("[parallel].min_batch must not be negative, got %d", c.Parallel.MinBatch)
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("[log].level: %w", err)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("[log].format must be console or json, got %q", c.Log.Format)
	}
	if strings.TrimSpace(c.Store.Path) == "" {
		return errors.New("[store].path must not be empty")
	}
	return nil
}

// DType returns the parsed default element type.
func (c Config) DType() tensor.DataType {
	dt, err := tensor.ParseDataType(c.DefaultDType)
	if err != nil {
		return tensor.DefaultDataType
	}
	return dt
}

// ParallelConfig converts the [parallel] table.
func (c Config) ParallelConfig() parallel.Config {
	p := parallel.DefaultConfig()
	if c.Parallel.Workers > 0 {
		p.NumWorkers = c.Parallel.Workers
		p.Enabled = c.Parallel.Workers > 1
	}
	if c.Parallel.MinBatch > 0 {
		p.MinChunkSize = c.Parallel.MinBatch
	}
	return p
}

// Logger builds a zap logger writing to stderr. verbose forces debug level.
func (c Config) Logger(verbose bool) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}
	if verbose {
		level = zapcore.DebugLevel
	}

	var zc zap.Config
	if c.Log.Format == "json" {
		zc = zap.NewProductionConfig()
	} else {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}
