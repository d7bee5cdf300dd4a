package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/CraigKelly/housegibbs/model"
)

func clearEnv(t *testing.T) {
	for _, name := range []string{envSeed, envUpdates, envDiscard} {
		os.Unsetenv(name)
	}
	t.Cleanup(func() {
		for _, name := range []string{envSeed, envUpdates, envDiscard} {
			os.Unsetenv(name)
		}
	})
}

func writeFile(t *testing.T, dir string, name string, body string) string {
	fn := filepath.Join(dir, name)
	if err := os.WriteFile(fn, []byte(body), 0o644); err != nil {
		t.Fatalf("Could not write %s: %v", fn, err)
	}
	return fn
}

func TestConfigEnv(t *testing.T) {
	assert := assert.New(t)

	env := map[string]string{
		envSeed:    "42",
		envUpdates: "5000",
		envDiscard: "",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := defaultConfig()
	assert.NoError(cfg.applyEnv(lookup))
	assert.Equal(int64(42), cfg.Seed)
	assert.Equal(int64(5000), cfg.Updates)
	assert.Equal(int64(10000), cfg.Discard)

	env[envDiscard] = "lots"
	assert.Error(cfg.applyEnv(lookup))
}

func TestConfigFile(t *testing.T) {
	assert := assert.New(t)
	dir := t.TempDir()

	fn := writeFile(t, dir, "cfg.yaml", `
seed: 7
discard: 500
evidence:
  neighborhood: good
  amenities: lots
`)

	cfg := defaultConfig()
	assert.NoError(cfg.applyFile(fn, true))
	assert.Equal(int64(7), cfg.Seed)
	assert.Equal(int64(100000), cfg.Updates)
	assert.Equal(int64(500), cfg.Discard)
	assert.Equal(":8000", cfg.MonitorAddr)
	assert.Equal(map[string]string{"neighborhood": "good", "amenities": "lots"}, cfg.Evidence)

	missing := filepath.Join(dir, "nope.yaml")
	assert.NoError(defaultConfig().applyFile(missing, false))
	assert.Error(defaultConfig().applyFile(missing, true))

	bad := writeFile(t, dir, "bad.yaml", "seed: [1, 2\n")
	assert.Error(defaultConfig().applyFile(bad, true))
}

func TestLoadConfigPrecedence(t *testing.T) {
	assert := assert.New(t)
	clearEnv(t)
	dir := t.TempDir()

	envFn := writeFile(t, dir, ".env", "HOUSEGIBBS_UPDATES=2000\nHOUSEGIBBS_SEED=3\n")
	cfgFn := writeFile(t, dir, "cfg.yaml", "seed: 9\n")

	// File beats env, env beats defaults
	cfg, err := loadConfig(envFn, cfgFn)
	assert.NoError(err)
	assert.Equal(int64(9), cfg.Seed)
	assert.Equal(int64(2000), cfg.Updates)
	assert.Equal(int64(10000), cfg.Discard)

	// A missing env file is fine, a missing named config is not
	_, err = loadConfig(filepath.Join(dir, "missing.env"), cfgFn)
	assert.NoError(err)
	_, err = loadConfig("", filepath.Join(dir, "missing.yaml"))
	assert.Error(err)
}

func TestConfigValidate(t *testing.T) {
	assert := assert.New(t)

	assert.NoError(defaultConfig().validate())

	cases := map[string]func(c *config){
		"zero updates":     func(c *config) { c.Updates = 0 },
		"negative discard": func(c *config) { c.Discard = -1 },
		"discard all":      func(c *config) { c.Discard = c.Updates },
		"negative report":  func(c *config) { c.ReportEvery = -5 },
		"no monitor addr":  func(c *config) { c.MonitorAddr = "" },
		"bad monitor addr": func(c *config) { c.MonitorAddr = "localhost" },
	}

	for name, mod := range cases {
		cfg := defaultConfig()
		mod(cfg)
		err := cfg.validate()
		assert.Error(err, name)
		assert.True(errors.Is(err, model.ErrConfiguration), name)
	}
}
