// SPDX-License-Identifier: MIT

// Package config loads the settings of the mlmtest command and server.
//
// Values come from three layers, later ones winning: Default, an optional
// YAML file and MLMTEST_* environment variables.
//
//	log:
//	  level: info
//	  format: console
//	server:
//	  addr: 127.0.0.1:8080
//	analysis:
//	  scheme: II
//	  method: euclidean
//	  pvalue:
//	    initial_accuracy: 1e-14
//
// The same keys map to MLMTEST_LOG_LEVEL, MLMTEST_ANALYSIS_SCHEME,
// MLMTEST_ANALYSIS_PVALUE_MAX_STEPS and so on.
package config

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/mlmtest/distance"
	"github.com/katalvlaran/mlmtest/gower"
	"github.com/katalvlaran/mlmtest/mlm"
	"github.com/katalvlaran/mlmtest/pvalue"
	"github.com/katalvlaran/mlmtest/sscp"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "MLMTEST_"

// ErrInvalid is returned by Validate for out-of-range settings.
var ErrInvalid = errors.New("config: invalid value")

// Config is the complete application configuration.
type Config struct {
	Log      Log      `yaml:"log" envPrefix:"LOG_"`
	Server   Server   `yaml:"server" envPrefix:"SERVER_"`
	Analysis Analysis `yaml:"analysis" envPrefix:"ANALYSIS_"`
}

// Log selects the zerolog level and output format.
type Log struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"` // console | json
}

// Server configures the HTTP front end.
type Server struct {
	Addr           string        `yaml:"addr" env:"ADDR"`
	ReadTimeout    time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout   time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT"`
	MaxBodyBytes   int64         `yaml:"max_body_bytes" env:"MAX_BODY_BYTES"`
}

// Analysis holds the defaults applied to every analysis.
type Analysis struct {
	Scheme    sscp.Scheme        `yaml:"scheme" env:"SCHEME"`
	Method    distance.Method    `yaml:"method" env:"METHOD"`
	Transform distance.Transform `yaml:"transform" env:"TRANSFORM"`
	Tolerance float64            `yaml:"tolerance" env:"TOLERANCE"`
	K         int                `yaml:"k" env:"K"`
	Workers   int                `yaml:"workers" env:"WORKERS"`
	PValue    PValue             `yaml:"pvalue" envPrefix:"PVALUE_"`
}

// PValue tunes the adaptive accuracy loop.
type PValue struct {
	InitialAccuracy float64 `yaml:"initial_accuracy" env:"INITIAL_ACCURACY"`
	Limit           int     `yaml:"limit" env:"LIMIT"`
	MaxSteps        int     `yaml:"max_steps" env:"MAX_STEPS"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log: Log{Level: "info", Format: "console"},
		Server: Server{
			Addr:           "127.0.0.1:8080",
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   60 * time.Second,
			RequestTimeout: 30 * time.Second,
			MaxBodyBytes:   32 << 20,
		},
		Analysis: Analysis{
			Scheme:    mlm.DefaultScheme,
			Method:    distance.Euclidean,
			Transform: distance.NoTransform,
			Tolerance: gower.DefaultTolerance,
			PValue: PValue{
				InitialAccuracy: pvalue.DefaultInitialAccuracy,
				Limit:           pvalue.DefaultLimit,
				MaxSteps:        pvalue.DefaultMaxSteps,
			},
		},
	}
}

// Load reads path (skipped when empty), applies the process environment and
// validates the result.
func Load(path string) (Config, error) {
	var data []byte
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		data = b
	}

	return Parse(data, nil)
}

// Parse decodes YAML data over Default, then applies environ (the process
// environment when nil) and validates.
func Parse(data []byte, environ map[string]string) (Config, error) {
	cfg := Default()
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: decode yaml: %w", err)
		}
	}
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate reports the first out-of-range setting.
func (c Config) Validate() error {
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level %q: %w", c.Log.Level, ErrInvalid)
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("log.format %q: %w", c.Log.Format, ErrInvalid)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr empty: %w", ErrInvalid)
	}
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("server.max_body_bytes %d: %w", c.Server.MaxBodyBytes, ErrInvalid)
	}
	a := c.Analysis
	if _, err := a.Scheme.MarshalText(); err != nil {
		return fmt.Errorf("analysis.scheme: %w", ErrInvalid)
	}
	if math.IsNaN(a.Tolerance) || a.Tolerance < 0 || a.Tolerance >= 1 {
		return fmt.Errorf("analysis.tolerance %v: %w", a.Tolerance, ErrInvalid)
	}
	if a.K < 0 || a.Workers < 0 {
		return fmt.Errorf("analysis.k/workers negative: %w", ErrInvalid)
	}
	p := a.PValue
	if !(p.InitialAccuracy > 0 && p.InitialAccuracy < 1) {
		return fmt.Errorf("analysis.pvalue.initial_accuracy %v: %w", p.InitialAccuracy, ErrInvalid)
	}
	if p.Limit < 1 || p.MaxSteps < 0 {
		return fmt.Errorf("analysis.pvalue limit=%d max_steps=%d: %w", p.Limit, p.MaxSteps, ErrInvalid)
	}

	return nil
}

// Options converts the analysis section into mlm options. Call only on a
// validated Config.
func (a Analysis) Options() []mlm.Option {
	opts := []mlm.Option{
		mlm.WithScheme(a.Scheme),
		mlm.WithTolerance(a.Tolerance),
		mlm.WithPValueOptions(
			pvalue.WithInitialAccuracy(a.PValue.InitialAccuracy),
			pvalue.WithLimit(a.PValue.Limit),
			pvalue.WithMaxSteps(a.PValue.MaxSteps),
		),
	}
	if a.K > 0 {
		opts = append(opts, mlm.WithK(a.K))
	}
	if a.Workers > 0 {
		opts = append(opts, mlm.WithWorkers(a.Workers))
	}

	return opts
}

// Logger builds the zerolog logger described by l, writing to w.
func (l Log) Logger(w io.Writer) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(l.Level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log.level %q: %w", l.Level, ErrInvalid)
	}
	if l.Format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}
