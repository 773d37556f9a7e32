// Package config reads the resample command's settings from the
// environment, optionally seeded from .env files.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/gogpu/resample"
)

// Environment variable names.
const (
	EnvMode        = "RESAMPLE_MODE"
	EnvWorkers     = "RESAMPLE_WORKERS"
	EnvOpacity     = "RESAMPLE_OPACITY"
	EnvAtop        = "RESAMPLE_ATOP"
	EnvSupersample = "RESAMPLE_SUPERSAMPLE"
	EnvCheckBounds = "RESAMPLE_CHECK_BOUNDS"
	EnvLogLevel    = "RESAMPLE_LOG_LEVEL"
)

// DefaultEnvFile is read by Load when no files are given.
const DefaultEnvFile = ".env"

// ErrInvalidValue is returned when a variable cannot be parsed or is out
// of range.
var ErrInvalidValue = errors.New("config: invalid value")

// Config holds the settings shared by the CLI commands.
type Config struct {
	Mode        resample.Mode
	Workers     int
	Opacity     float32
	Atop        bool
	Supersample int
	CheckBounds bool
	LogLevel    slog.Level
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Mode:        resample.ModeBilinear,
		Opacity:     1,
		Supersample: 1,
		LogLevel:    slog.LevelWarn,
	}
}

// Load merges the given .env files into the process environment and
// returns the resulting Config. Missing files are skipped. Variables that
// are already set win over values from the files.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{DefaultEnvFile}
	}

	var present []string
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Config{}, fmt.Errorf("config: %w", err)
		}
		present = append(present, f)
	}
	if len(present) > 0 {
		if err := godotenv.Load(present...); err != nil {
			return Config{}, fmt.Errorf("config: load env: %w", err)
		}
	}

	return FromEnv(os.LookupEnv)
}

// FromEnv builds a Config from lookup, starting from Default. os.LookupEnv
// is the usual lookup; tests pass a map.
func FromEnv(lookup func(string) (string, bool)) (Config, error) {
	c := Default()
	p := parser{lookup: lookup}

	if v, ok := p.get(EnvMode); ok {
		m, err := resample.ParseMode(v)
		if err != nil {
			p.fail(EnvMode, v, err)
		}
		c.Mode = m
	}
	p.int(EnvWorkers, &c.Workers, 0)
	p.int(EnvSupersample, &c.Supersample, 1)
	p.bool(EnvAtop, &c.Atop)
	p.bool(EnvCheckBounds, &c.CheckBounds)

	if v, ok := p.get(EnvOpacity); ok {
		f, err := strconv.ParseFloat(v, 32)
		switch {
		case err != nil:
			p.fail(EnvOpacity, v, err)
		case !(f >= 0 && f <= 1):
			p.fail(EnvOpacity, v, errors.New("must be within [0, 1]"))
		default:
			c.Opacity = float32(f)
		}
	}

	if v, ok := p.get(EnvLogLevel); ok {
		if err := c.LogLevel.UnmarshalText([]byte(v)); err != nil {
			p.fail(EnvLogLevel, v, err)
		}
	}

	if p.err != nil {
		return Config{}, p.err
	}
	return c, nil
}

// parser keeps the first error so FromEnv reads top to bottom.
type parser struct {
	lookup func(string) (string, bool)
	err    error
}

func (p *parser) get(key string) (string, bool) {
	v, ok := p.lookup(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

func (p *parser) fail(key, value string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("%w: %s=%q: %v", ErrInvalidValue, key, value, err)
	}
}

func (p *parser) int(key string, dst *int, minimum int) {
	v, ok := p.get(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(v)
	switch {
	case err != nil:
		p.fail(key, v, err)
	case n < minimum:
		p.fail(key, v, fmt.Errorf("must be at least %d", minimum))
	default:
		*dst = n
	}
}

func (p *parser) bool(key string, dst *bool) {
	v, ok := p.get(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		p.fail(key, v, err)
		return
	}
	*dst = b
}
