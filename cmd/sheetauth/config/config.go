// Package config loads the service configuration from a yaml file.
package config

import (
	"os"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/cosmocode/sheetauth"
	"github.com/cosmocode/sheetauth/internal/logger"
	"github.com/cosmocode/sheetauth/sheets"
	"github.com/cosmocode/sheetauth/storage"
)

// Config holds the whole service configuration.
type Config struct {
	Logging   logger.Conf          `yaml:"logging"`
	Sheets    sheets.Config        `yaml:"sheets"`
	Cache     storage.Config       `yaml:"cache"`
	Directory directoryConf        `yaml:"directory"`
	Server    sheetauth.ServerConf `yaml:"server"`
}

// directoryConf holds directory-level settings under the `directory` key.
type directoryConf struct {
	// DefaultGroup is assigned to accounts created without groups.
	DefaultGroup string `yaml:"default_group"`
}

var conf *Config

var defaultConfig = Config{
	Logging: logger.Conf{
		StdErr: true,
		Level:  "INFO",
	},
	Server: sheetauth.ServerConf{
		Port:      8365,
		BasicAuth: true,
	},
	Directory: directoryConf{
		DefaultGroup: sheetauth.DefaultGroup,
	},
}

// Get returns the loaded Config
func Get() *Config {
	return conf
}

// Load reads the config file and validates every section. Any failure is
// fatal, per the rule that configuration problems abort at startup.
func Load(file string) {
	if file == "" {
		file = "config.yaml"
	}
	data, err := os.ReadFile(file)
	if err != nil {
		log.WithError(err).Fatal("could not read config file")
	}
	c := defaultConfig
	if err = yaml.Unmarshal(data, &c); err != nil {
		log.WithError(err).Fatal("could not parse config file")
	}
	if err = c.Logging.Validate(); err != nil {
		log.WithError(err).Fatal("invalid logging config")
	}
	if err = c.Sheets.Validate(); err != nil {
		log.WithError(err).Fatal("invalid sheets config")
	}
	if err = c.Cache.Validate(); err != nil {
		log.WithError(err).Fatal("invalid cache config")
	}
	conf = &c
}
