package main

import (
	"errors"
	"flag"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"

	"status-page/pkg/issuesource"
	"status-page/pkg/metrics"
	"status-page/pkg/render"
)

// Options contains command-line configuration options for the status page server.
type Options struct {
	ConfigPath string
	Port       string
	ZoneLabel  string
	LogLevel   string
}

// NewOptions parses command-line flags and returns a new Options instance.
func NewOptions() *Options {
	opts := &Options{}

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to config file")
	flag.StringVar(&opts.Port, "port", "8080", "Port to listen on")
	flag.StringVar(&opts.ZoneLabel, "zone-label", render.DefaultZoneLabel, "Time zone label shown when the local UTC offset is not zero")
	flag.StringVar(&opts.LogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	return opts
}

// Validate checks that all required options are provided and valid.
func (o *Options) Validate() error {
	if o.ConfigPath == "" {
		return errors.New("config path is required (use --config flag)")
	}

	if _, err := os.Stat(o.ConfigPath); os.IsNotExist(err) {
		return errors.New("config file does not exist: " + o.ConfigPath)
	}

	if o.Port == "" {
		return errors.New("port cannot be empty")
	}

	if _, err := logrus.ParseLevel(o.LogLevel); err != nil {
		return errors.New("invalid log level: " + o.LogLevel)
	}

	return nil
}

func setupLogger(level string) *logrus.Logger {
	log := logrus.New()
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
	return log
}

func loadConfig(log *logrus.Logger, configPath string) *Config {
	log.Infof("Loading config from %s", configPath)

	configFile, err := os.ReadFile(configPath)
	if err != nil {
		log.WithFields(logrus.Fields{
			"config_path": configPath,
			"error":       err,
		}).Fatal("Failed to read config file")
	}

	config, err := parseConfig(configFile)
	if err != nil {
		log.WithFields(logrus.Fields{
			"config_path": configPath,
			"error":       err,
		}).Fatal("Failed to parse config file")
	}

	log.Infof("Loaded configuration with %d environments", len(config.Environments))
	return config
}

func newPageSource(log *logrus.Logger, config *Config) PageSource {
	if config.IssueSource == nil {
		return &staticSource{config: config.PageConfig}
	}

	client, err := issuesource.NewClient(*config.IssueSource, nil, log)
	if err != nil {
		log.WithField("error", err).Fatal("Invalid issue source configuration")
	}

	log.WithFields(logrus.Fields{
		"base_url":           config.IssueSource.BaseURL,
		"environments_table": config.IssueSource.EnvironmentsTable,
		"issues_table":       config.IssueSource.IssuesTable,
	}).Info("Environments will be fetched from the issue source")

	return &issueSource{fetcher: client, base: config.PageConfig}
}

func newRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics.Register(registry)
	return registry
}

func main() {
	opts := NewOptions()
	log := setupLogger(opts.LogLevel)

	if err := opts.Validate(); err != nil {
		log.WithField("error", err).Fatal("Invalid command-line options")
	}

	config := loadConfig(log, opts.ConfigPath)
	source := newPageSource(log, config)
	renderer := render.New(render.WithZoneLabel(opts.ZoneLabel))
	server := NewServer(source, renderer, newRegistry(), log)

	addr := ":" + opts.Port
	if err := server.Start(addr); err != nil {
		log.WithFields(logrus.Fields{
			"address": addr,
			"error":   err,
		}).Fatal("Server failed to start")
	}
}
