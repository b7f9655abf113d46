package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/OpenTraceLab/OpenTracePulse/pkg/extrapolate"
)

// DefaultTarget is the module MinPresses watches when none is configured.
const DefaultTarget = "rx"

var (
	validate   *validator.Validate
	moduleName = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
)

func init() {
	validate = validator.New()
	err := validate.RegisterValidation("modulename", func(fl validator.FieldLevel) bool {
		return moduleName.MatchString(fl.Field().String())
	})
	if err != nil {
		panic(fmt.Sprintf("config: register modulename validation: %v", err))
	}
}

// File is the on-disk configuration. Every field is optional; missing fields
// keep their defaults.
type File struct {
	Presses       int64  `yaml:"presses" validate:"gte=0"`
	MaxPresses    int64  `yaml:"max_presses" validate:"gte=1"`
	Target        string `yaml:"target" validate:"required,modulename"`
	DetectCycles  bool   `yaml:"detect_cycles"`
	VerifyPeriods bool   `yaml:"verify_periods"`
	AllowFallback bool   `yaml:"allow_fallback"`
	Parallel      bool   `yaml:"parallel"`

	Log     LogConfig     `yaml:"log"`
	Cache   CacheConfig   `yaml:"cache"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type LogConfig struct {
	Level string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	JSON  bool   `yaml:"json"`
}

type CacheConfig struct {
	Dir string        `yaml:"dir"`                  // empty disables the result cache
	TTL time.Duration `yaml:"ttl" validate:"gte=0"` // zero keeps entries forever
}

type MetricsConfig struct {
	File string `yaml:"file"` // textfile written after each run, empty disables
}

// Default returns the configuration used when no file is given.
func Default() *File {
	ext := extrapolate.DefaultConfig()
	return &File{
		Presses:       ext.Presses,
		MaxPresses:    ext.MaxPresses,
		Target:        DefaultTarget,
		DetectCycles:  ext.DetectCycles,
		VerifyPeriods: ext.VerifyPeriods,
		AllowFallback: ext.AllowFallback,
		Parallel:      ext.Parallel,
		Log:           LogConfig{Level: "info"},
	}
}

// Load reads path over the defaults, applies PULSE_* environment overrides
// and validates the result. An empty path skips the file.
func Load(path string) (*File, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := loadFromEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFromEnv(cfg *File) error {
	if v := os.Getenv("PULSE_MAX_PRESSES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("config: PULSE_MAX_PRESSES: %w", err)
		}
		cfg.MaxPresses = n
	}
	if v := os.Getenv("PULSE_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("PULSE_CACHE_DIR"); v != "" {
		cfg.Cache.Dir = v
	}
	if v := os.Getenv("PULSE_CACHE_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: PULSE_CACHE_TTL: %w", err)
		}
		cfg.Cache.TTL = d
	}
	return nil
}

// Validate checks field constraints.
func (f *File) Validate() error {
	if err := validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			e := verrs[0]
			return fmt.Errorf("config: invalid %s: failed %q check (value %v)", e.Namespace(), e.Tag(), e.Value())
		}
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Extrapolate converts the file into runner settings.
func (f *File) Extrapolate() *extrapolate.Config {
	return &extrapolate.Config{
		Presses:       f.Presses,
		MaxPresses:    f.MaxPresses,
		DetectCycles:  f.DetectCycles,
		VerifyPeriods: f.VerifyPeriods,
		AllowFallback: f.AllowFallback,
		Parallel:      f.Parallel,
	}
}
