package cmd

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/CraigKelly/housegibbs/model"
)

// Environment variables read after the optional .env file is loaded
const (
	envSeed    = "HOUSEGIBBS_SEED"
	envUpdates = "HOUSEGIBBS_UPDATES"
	envDiscard = "HOUSEGIBBS_DISCARD"
)

const defaultConfigName = ".housegibbs.yaml"

// config holds run settings. Precedence, lowest first: defaults, the
// environment, the YAML file, then command line flags.
type config struct {
	Seed        int64             `yaml:"seed"`
	Updates     int64             `yaml:"updates" validate:"gt=0"`
	Discard     int64             `yaml:"discard" validate:"gte=0,ltfield=Updates"`
	ReportEvery int               `yaml:"report-every" validate:"gte=0"` // sweeps between progress reports
	MonitorAddr string            `yaml:"monitor-addr" validate:"required,hostname_port"`
	Evidence    map[string]string `yaml:"evidence"`
}

var configValidate = validator.New()

func defaultConfig() *config {
	return &config{
		Seed:        1,
		Updates:     100000,
		Discard:     10000,
		ReportEvery: 1000,
		MonitorAddr: ":8000",
	}
}

// loadConfig builds the config from defaults, envFile (if it exists), the
// process environment, and the YAML file at path. An empty path means
// $HOME/.housegibbs.yaml, which may be missing; a named file must exist.
func loadConfig(envFile string, path string) (*config, error) {
	cfg := defaultConfig()

	if len(envFile) > 0 {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, errors.Wrapf(err, "Could not load env file %s", envFile)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	required := true
	if len(path) < 1 {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, nil
		}
		path = filepath.Join(home, defaultConfigName)
		required = false
	}

	if err := cfg.applyFile(path, required); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *config) applyEnv(lookup func(string) (string, bool)) error {
	envInts := []struct {
		name   string
		target *int64
	}{
		{envSeed, &c.Seed},
		{envUpdates, &c.Updates},
		{envDiscard, &c.Discard},
	}

	for _, e := range envInts {
		s, ok := lookup(e.name)
		if !ok || len(s) < 1 {
			continue
		}
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return errors.Wrapf(err, "Invalid %s=%s", e.name, s)
		}
		*e.target = i
	}

	return nil
}

func (c *config) applyFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return errors.Wrapf(err, "Could not read config file %s", path)
	}

	// Only keys present in the file replace current values
	if err := yaml.Unmarshal(data, c); err != nil {
		return errors.Wrapf(err, "Invalid config file %s", path)
	}
	return nil
}

// validate checks the resolved config. Failures are configuration errors.
func (c *config) validate() error {
	if err := configValidate.Struct(c); err != nil {
		return errors.Wrapf(model.ErrConfiguration, "Invalid settings: %v", err)
	}
	return nil
}
