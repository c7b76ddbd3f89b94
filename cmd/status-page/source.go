package main

import (
	"context"

	"status-page/pkg/status"
	"status-page/pkg/types"
)

// PageSource produces an aggregated page configuration for a single request.
type PageSource interface {
	Page(ctx context.Context) (types.PageConfig, error)
}

// staticSource serves the environments declared in the configuration file.
type staticSource struct {
	config types.PageConfig
}

func (s *staticSource) Page(_ context.Context) (types.PageConfig, error) {
	return status.Apply(s.config), nil
}

// Fetcher loads environments from a remote issue tracker.
type Fetcher interface {
	Fetch(ctx context.Context) (types.PageConfig, error)
}

// issueSource fetches environments on every call and decorates them with the
// presentation settings from the configuration file.
type issueSource struct {
	fetcher Fetcher
	base    types.PageConfig
}

func (s *issueSource) Page(ctx context.Context) (types.PageConfig, error) {
	fetched, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return types.PageConfig{}, err
	}

	page := s.base
	page.CurrentStatus = fetched.CurrentStatus
	page.Environments = fetched.Environments
	return page, nil
}
