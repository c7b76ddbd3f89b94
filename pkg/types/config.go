package types

// PageConfig contains everything needed to render one status page.
type PageConfig struct {
	Title         string        `json:"title" yaml:"title"`
	Logo          string        `json:"logo" yaml:"logo"`
	CurrentStatus Status        `json:"current_status" yaml:"current_status"`
	Environments  []Environment `json:"environments" yaml:"environments"`
	// CustomCSS is appended after the built-in rules. Nil renders as an empty string.
	CustomCSS *string `json:"custom_css,omitempty" yaml:"custom_css,omitempty"`
}

// CSS returns the custom stylesheet, or the empty string when none is configured.
func (c *PageConfig) CSS() string {
	if c.CustomCSS == nil {
		return ""
	}
	return *c.CustomCSS
}

func (c *PageConfig) GetEnvironment(environmentName string) *Environment {
	for i := range c.Environments {
		if c.Environments[i].Name == environmentName {
			return &c.Environments[i]
		}
	}
	return nil
}

// Environment groups services that are displayed together in one table.
// Status is derived from the services and is filled in by the aggregator.
type Environment struct {
	Name     string    `json:"name" yaml:"name"`
	Status   Status    `json:"status" yaml:"status,omitempty"`
	Services []Service `json:"services" yaml:"services"`
}

func (e *Environment) GetService(serviceName string) *Service {
	for i := range e.Services {
		if e.Services[i].Name == serviceName {
			return &e.Services[i]
		}
	}
	return nil
}

// Service is a single row on the status page.
type Service struct {
	Name   string `json:"name" yaml:"name"`
	Status Status `json:"status" yaml:"status"`
}
