// Package runconfig loads tuning parameters for the scheduling engine from
// an optional YAML file layered under environment variables, following the
// same precedence the host planner uses for its own configuration: an env
// var always wins over a file default, and a file default always wins over
// the built-in default.
package runconfig

import (
	"os"

	"github.com/caarlos0/env/v6"
	"gopkg.in/yaml.v3"

	"projectplan/errs"
)

// Config holds the small set of engine-wide knobs that are legitimately
// environment/deployment concerns rather than per-run Options (see
// schedule.Options for the per-call knobs).
type Config struct {
	// LevelingHorizonDays caps the number of task shifts one leveling pass
	// applies, 2000 by default; this field exists so an operator can shrink
	// it in CI or widen it for exploratory runs without recompiling. A call
	// site scales it further with Options.MaxLevelingShiftFactor.
	LevelingHorizonDays int `yaml:"leveling_horizon_days" env:"PROJECTPLAN_LEVELING_HORIZON"`

	// StrictByDefault makes every run behave as if Options.Strict were set,
	// unless the call site explicitly overrides it.
	StrictByDefault bool `yaml:"strict_by_default" env:"PROJECTPLAN_STRICT"`

	// LogLevel mirrors logging.Level* and can be set from a tuning file. The
	// logging package reads PROJECTPLAN_LOG_LEVEL from the process
	// environment only and does not consult this field.
	LogLevel string `yaml:"log_level" env:"PROJECTPLAN_LOG_LEVEL"`
}

// Default returns the built-in configuration before any file or env layer
// is applied.
func Default() Config {
	return Config{
		LevelingHorizonDays: 2000,
		StrictByDefault:     false,
		LogLevel:            "info",
	}
}

// Load reads zero or more YAML tuning files in order (later files override
// earlier ones), then applies environment variable overrides on top, and
// returns the resolved Config. Passing no paths yields Default() overridden
// only by the environment.
func Load(paths ...string) (Config, error) {
	cfg := Default()

	for _, p := range paths {
		if p == "" {
			continue
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return cfg, errs.NewConfigError(p, "", "failed to read tuning file", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, errs.NewConfigError(p, "", "failed to parse YAML", err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, errs.NewConfigError("env", "", "failed to apply environment overrides", err)
	}

	if cfg.LevelingHorizonDays <= 0 {
		cfg.LevelingHorizonDays = 2000
	}

	return cfg, nil
}
