package main

import (
	"io"
	"os"

	"github.com/iov-one/weave-editions/errors"
	"github.com/tendermint/tendermint/libs/log"
	"gopkg.in/natefinch/lumberjack.v2"
	"gopkg.in/yaml.v3"
)

// config holds the node settings. Command line flags override the values
// read from the optional YAML file given with --config.
type config struct {
	Home     string  `yaml:"home"`
	Bind     string  `yaml:"bind"`
	LogLevel string  `yaml:"log_level"`
	Debug    bool    `yaml:"debug"`
	Relay    bool    `yaml:"relay"`
	LogFile  logFile `yaml:"log_file"`

	file string
}

// logFile configures the rotated log file. Without a path the node logs
// to stdout.
type logFile struct {
	Path       string `yaml:"path"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// loadConfigFile reads path into cfg. Fields missing from the file keep
// their current value.
func loadConfigFile(path string, cfg *config) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return errors.Wrapf(errors.ErrInput, "config file %s: %s", path, err)
	}
	return nil
}

func (c *config) logWriter() io.Writer {
	if c.LogFile.Path == "" {
		return os.Stdout
	}
	return &lumberjack.Logger{
		Filename:   c.LogFile.Path,
		MaxSize:    c.LogFile.MaxSizeMB,
		MaxBackups: c.LogFile.MaxBackups,
		MaxAge:     c.LogFile.MaxAgeDays,
		Compress:   c.LogFile.Compress,
	}
}

func newLogger(cfg *config) (log.Logger, error) {
	allow, err := log.AllowLevel(cfg.LogLevel)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, err.Error())
	}
	logger := log.NewTMLogger(log.NewSyncWriter(cfg.logWriter())).With("module", "editions")
	return log.NewFilter(logger, allow), nil
}
