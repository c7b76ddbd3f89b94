package issuesource

import (
	"errors"
	"strings"
	"time"

	"status-page/pkg/types"
)

const (
	DefaultAPIKeyHeader             = "x-api-key"
	DefaultEnvironmentNameField     = "name"
	DefaultEnvironmentServicesField = "services"
	DefaultIssueServiceField        = "service"
	DefaultIssueEnvironmentField    = "environment"
	DefaultIssueStatusField         = "status"
	DefaultTimeout                  = 30 * time.Second
)

// Config describes where environment and issue records live and how they are shaped.
//
// BaseURL points the client at the API deployment that holds the tables; there is
// no built-in vendor endpoint, so it must always be set. Field names, the API-key
// header and the timeout are optional overrides; WithDefaults fills them in.
type Config struct {
	APIKey       string `json:"-" yaml:"api_key,omitempty"`
	BaseURL      string `json:"base_url" yaml:"base_url"`
	APIKeyHeader string `json:"api_key_header,omitempty" yaml:"api_key_header,omitempty"`

	EnvironmentsTable string `json:"environments_table" yaml:"environments_table"`
	IssuesTable       string `json:"issues_table" yaml:"issues_table"`

	EnvironmentNameField     string `json:"environment_name_field,omitempty" yaml:"environment_name_field,omitempty"`
	EnvironmentServicesField string `json:"environment_services_field,omitempty" yaml:"environment_services_field,omitempty"`
	IssueServiceField        string `json:"issue_service_field,omitempty" yaml:"issue_service_field,omitempty"`
	IssueEnvironmentField    string `json:"issue_environment_field,omitempty" yaml:"issue_environment_field,omitempty"`
	IssueStatusField         string `json:"issue_status_field,omitempty" yaml:"issue_status_field,omitempty"`

	// OpenStatuses lists the values of IssueStatusField that count as unresolved.
	OpenStatuses []string `json:"open_statuses" yaml:"open_statuses"`

	Classification FieldClassifier `json:"classification" yaml:"classification"`

	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
}

// WithDefaults returns a copy of c with empty optional fields set to their defaults.
func (c Config) WithDefaults() Config {
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.APIKeyHeader == "" {
		c.APIKeyHeader = DefaultAPIKeyHeader
	}
	if c.EnvironmentNameField == "" {
		c.EnvironmentNameField = DefaultEnvironmentNameField
	}
	if c.EnvironmentServicesField == "" {
		c.EnvironmentServicesField = DefaultEnvironmentServicesField
	}
	if c.IssueServiceField == "" {
		c.IssueServiceField = DefaultIssueServiceField
	}
	if c.IssueEnvironmentField == "" {
		c.IssueEnvironmentField = DefaultIssueEnvironmentField
	}
	if c.IssueStatusField == "" {
		c.IssueStatusField = DefaultIssueStatusField
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Classification.Default == "" {
		c.Classification.Default = types.StatusIncident
	}
	return c
}

// Validate checks that all required settings are present.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return errors.New("issue source api key is required")
	}
	if c.BaseURL == "" {
		return errors.New("issue source base url is required")
	}
	if c.EnvironmentsTable == "" {
		return errors.New("issue source environments table is required")
	}
	if c.IssuesTable == "" {
		return errors.New("issue source issues table is required")
	}
	if len(c.OpenStatuses) == 0 {
		return errors.New("issue source needs at least one open status")
	}
	if c.Timeout < 0 {
		return errors.New("issue source timeout cannot be negative")
	}
	return nil
}
