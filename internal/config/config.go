// Package config loads engine settings.
//
// Settings are resolved with the priority environment > file > defaults:
//
//	cfg, err := config.Load("adtape.yaml")
//	if err != nil {
//		return err
//	}
//	f := autodiff.NewFunction(x, y, autodiff.WithConfig(cfg))
//
// Recognised environment variables:
//
//	ADTAPE_CHECK_NAN              forward.check_for_nan (bool)
//	ADTAPE_COMPARE_CHANGE_COUNT   forward.compare_change_count (int)
//	ADTAPE_OPTIMIZE_OPTIONS       optimize.options (string)
//	ADTAPE_COLLISION_LIMIT        optimize.collision_limit (int)
//	ADTAPE_WORKERS                arena.workers (int)
//	ADTAPE_LOG_LEVEL              logging.level (string)
package config

import (
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/born-ml/adtape/internal/autodiff/optimize"
	"github.com/born-ml/adtape/internal/logging"
)

// Config is the complete engine configuration.
type Config struct {
	Forward  ForwardConfig  `yaml:"forward" json:"forward"`
	Optimize OptimizeConfig `yaml:"optimize" json:"optimize"`
	Arena    ArenaConfig    `yaml:"arena" json:"arena"`
	Logging  logging.Config `yaml:"logging" json:"logging"`
}

// ForwardConfig controls replay.
type ForwardConfig struct {
	// CheckForNaN makes Forward report NaN zero-order dependents.
	CheckForNaN bool `yaml:"check_for_nan" json:"check_for_nan"`

	// CompareChangeCount is the compare-change occurrence whose operator
	// index is recorded. Zero disables tracking.
	CompareChangeCount int `yaml:"compare_change_count" json:"compare_change_count" validate:"gte=0"`
}

// OptimizeConfig holds default optimizer settings.
type OptimizeConfig struct {
	// Options is the option string passed to Optimize when the caller
	// gives none, e.g. "no_print_for_op".
	Options string `yaml:"options" json:"options"`

	// CollisionLimit bounds hash chain walks during operator matching.
	CollisionLimit int `yaml:"collision_limit" json:"collision_limit" validate:"gte=1"`
}

// ArenaConfig sizes the per-worker arenas.
type ArenaConfig struct {
	Workers int `yaml:"workers" json:"workers" validate:"gte=1,lte=4096"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Forward: ForwardConfig{
			CheckForNaN:        true,
			CompareChangeCount: 1,
		},
		Optimize: OptimizeConfig{
			CollisionLimit: optimize.DefaultCollisionLimit,
		},
		Arena:   ArenaConfig{Workers: 1},
		Logging: logging.Config{Level: "info"},
	}
}

// Load reads the YAML file at path (if path is non-empty), applies
// environment overrides and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrapf(err, "reading config %s", path)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, errors.Wrapf(err, "parsing config %s", path)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	var errs error
	if v := os.Getenv("ADTAPE_CHECK_NAN"); v != "" {
		b, err := strconv.ParseBool(v)
		errs = multierr.Append(errs, errors.Wrap(err, "ADTAPE_CHECK_NAN"))
		if err == nil {
			c.Forward.CheckForNaN = b
		}
	}
	errs = multierr.Append(errs, envInt("ADTAPE_COMPARE_CHANGE_COUNT", &c.Forward.CompareChangeCount))
	if v, ok := os.LookupEnv("ADTAPE_OPTIMIZE_OPTIONS"); ok {
		c.Optimize.Options = v
	}
	errs = multierr.Append(errs, envInt("ADTAPE_COLLISION_LIMIT", &c.Optimize.CollisionLimit))
	errs = multierr.Append(errs, envInt("ADTAPE_WORKERS", &c.Arena.Workers))
	if v := os.Getenv("ADTAPE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	return errs
}

func envInt(name string, dst *int) error {
	v := os.Getenv(name)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return errors.Wrap(err, name)
	}
	*dst = n
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate reports every problem with c at once.
func (c Config) Validate() error {
	var errs error
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				errs = multierr.Append(errs, errors.Errorf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
		} else {
			errs = multierr.Append(errs, err)
		}
	}
	if _, err := optimize.ParseOptions(c.Optimize.Options); err != nil {
		errs = multierr.Append(errs, errors.Wrap(err, "optimize.options"))
	}
	return errs
}
