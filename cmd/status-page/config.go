package main

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"status-page/pkg/issuesource"
	"status-page/pkg/types"
)

const apiKeyEnv = "ISSUE_SOURCE_API_KEY"

// Config is the on-disk configuration. When IssueSource is set the environments
// are fetched from it on every request and the file's environments are ignored.
type Config struct {
	types.PageConfig `yaml:",inline"`
	IssueSource      *issuesource.Config `yaml:"issue_source,omitempty"`
}

func parseConfig(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	if config.IssueSource != nil && config.IssueSource.APIKey == "" {
		config.IssueSource.APIKey = os.Getenv(apiKeyEnv)
	}

	for _, env := range config.Environments {
		if env.Name == "" {
			return nil, errors.New("environment name cannot be empty")
		}
		for _, svc := range env.Services {
			if !svc.Status.IsValid() {
				return nil, fmt.Errorf("service %q in environment %q has no status", svc.Name, env.Name)
			}
		}
	}

	return &config, nil
}
