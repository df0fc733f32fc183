package main

import (
	"os"

	"github.com/adrg/xdg"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds the handful of settings worth persisting across invocations
// rather than retyping as flags every time: where imported generators live
// and how many workers a batch render should use.
type Config struct {
	ImportDir   string `yaml:"importDir"`
	Concurrency int    `yaml:"concurrency"`
}

func defaultConfig() Config {
	return Config{ImportDir: ".", Concurrency: 4}
}

// loadConfig reads perchance/config.yaml from the XDG config home, falling
// back to defaultConfig if it doesn't exist. An explicit path (from
// --config) takes priority over the XDG-resolved one.
func loadConfig(explicitPath string) (Config, error) {
	cfg := defaultConfig()

	path := explicitPath
	if path == "" {
		resolved, err := xdg.ConfigFile("perchance/config.yaml")
		if err != nil {
			return cfg, nil
		}
		path = resolved
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, errors.Wrapf(err, "reading config %q", path)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing config %q", path)
	}
	return cfg, nil
}
