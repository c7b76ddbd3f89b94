// Package status rolls service statuses up into environment and page statuses.
package status

import "status-page/pkg/types"

// Worst returns the most severe of statuses, or StatusNoIssue when there are none.
func Worst(statuses ...types.Status) types.Status {
	worst := types.StatusNoIssue
	for _, s := range statuses {
		if s.WorseThan(worst) {
			worst = s
		}
	}
	return worst
}

// Aggregate derives the status of every environment from its services and the
// overall status from every service on the page. The input is left untouched.
func Aggregate(environments []types.Environment) (types.Status, []types.Environment) {
	overall := types.StatusNoIssue
	result := make([]types.Environment, 0, len(environments))

	for _, env := range environments {
		services := make([]types.Service, len(env.Services))
		copy(services, env.Services)

		statuses := make([]types.Status, 0, len(services))
		for _, svc := range services {
			statuses = append(statuses, svc.Status)
		}

		env.Services = services
		env.Status = Worst(statuses...)
		overall = Worst(overall, env.Status)
		result = append(result, env)
	}

	return overall, result
}

// Apply returns a copy of config with CurrentStatus and every environment status filled in.
func Apply(config types.PageConfig) types.PageConfig {
	config.CurrentStatus, config.Environments = Aggregate(config.Environments)
	return config
}
