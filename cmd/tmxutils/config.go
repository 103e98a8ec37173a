package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/eak1mov/go-libtmx/tmx"
	"gopkg.in/yaml.v3"
)

// config is read from the YAML file given with -config. Flags set on the
// command line take precedence over it.
type config struct {
	Strict      bool              `yaml:"strict"`
	Concurrency int               `yaml:"concurrency"`
	LogLevel    string            `yaml:"log_level"`
	Metadata    map[string]string `yaml:"metadata"`
}

func defaultConfig() config {
	return config{Concurrency: 1, LogLevel: "warn"}
}

func loadConfig(filePath string) (config, error) {
	cfg := defaultConfig()
	if filePath == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: unmarshal %s: %w", filePath, err)
	}
	return cfg, nil
}

func (c config) logger() (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return nil, fmt.Errorf("config: log_level: %w", err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
}

// importFlags are the flags shared by every command that imports a map.
type importFlags struct {
	configPath  string
	strict      bool
	concurrency int
	logLevel    string
}

func (f *importFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&f.configPath, "config", "", "YAML config file path")
	fs.BoolVar(&f.strict, "strict", false, "Fail on unresolved tiles and malformed chunks")
	fs.IntVar(&f.concurrency, "j", 0, "Number of tile layers decoded in parallel")
	fs.StringVar(&f.logLevel, "log", "", "Log level (debug, info, warn, error)")
}

func (f *importFlags) config() (config, error) {
	cfg, err := loadConfig(f.configPath)
	if err != nil {
		return cfg, err
	}
	if f.strict {
		cfg.Strict = true
	}
	if f.concurrency > 0 {
		cfg.Concurrency = f.concurrency
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	return cfg, nil
}

func (f *importFlags) importer() (*importer, error) {
	cfg, err := f.config()
	if err != nil {
		return nil, err
	}
	logger, err := cfg.logger()
	if err != nil {
		return nil, err
	}
	return &importer{config: cfg, logger: logger}, nil
}

type importer struct {
	config config
	logger *slog.Logger
}

func (i *importer) importFile(filePath string) (*tmx.Map, error) {
	return tmx.ImportFile(filePath,
		tmx.WithLogger(i.logger),
		tmx.WithStrict(i.config.Strict),
		tmx.WithConcurrency(i.config.Concurrency))
}
