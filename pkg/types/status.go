package types

import (
	"encoding/json"
	"fmt"
	"html/template"
	"strings"

	"gopkg.in/yaml.v3"
)

// Status is the operational state of a service, an environment or a whole page.
type Status string

const (
	StatusNoIssue  Status = "noissue"
	StatusIncident Status = "incident"
	StatusOutage   Status = "outage"
)

// Statuses lists every status in ascending order of severity.
var Statuses = []Status{StatusNoIssue, StatusIncident, StatusOutage}

type statusDefinition struct {
	severity int
	title    string
	icon     template.HTML
}

var statusDefinitions = map[Status]statusDefinition{
	StatusNoIssue: {
		severity: 0,
		title:    "All Systems Operational",
		icon:     `<svg class="status-icon noissue" xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24" width="24" height="24"><circle cx="12" cy="12" r="11" fill="#2fcc66"/><path d="M7 12.5l3 3 7-7" fill="none" stroke="#fff" stroke-width="2.5" stroke-linecap="round" stroke-linejoin="round"/></svg>`,
	},
	StatusIncident: {
		severity: 1,
		title:    "Some Systems Are Experiencing Issues",
		icon:     `<svg class="status-icon incident" xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24" width="24" height="24"><circle cx="12" cy="12" r="11" fill="#f1c40f"/><path d="M12 6v8" stroke="#fff" stroke-width="2.5" stroke-linecap="round"/><circle cx="12" cy="17.5" r="1.5" fill="#fff"/></svg>`,
	},
	StatusOutage: {
		severity: 2,
		title:    "Service Disruption Ongoing",
		icon:     `<svg class="status-icon outage" xmlns="http://www.w3.org/2000/svg" viewBox="0 0 24 24" width="24" height="24"><circle cx="12" cy="12" r="11" fill="#e74c3c"/><path d="M8 8l8 8M16 8l-8 8" stroke="#fff" stroke-width="2.5" stroke-linecap="round"/></svg>`,
	},
}

func init() {
	if len(statusDefinitions) != len(Statuses) {
		panic(fmt.Sprintf("status table has %d entries, expected %d", len(statusDefinitions), len(Statuses)))
	}
	for i, s := range Statuses {
		def, ok := statusDefinitions[s]
		if !ok {
			panic("status table is missing " + string(s))
		}
		if def.severity != i || def.title == "" || def.icon == "" {
			panic("status table entry is incomplete for " + string(s))
		}
	}
}

// ParseStatus converts a raw value into a Status, rejecting anything outside the closed set.
func ParseStatus(value string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(value)))
	if !s.IsValid() {
		return "", fmt.Errorf("invalid status %q: must be one of noissue, incident, outage", value)
	}
	return s, nil
}

// IsValid reports whether s is one of the defined statuses.
func (s Status) IsValid() bool {
	_, ok := statusDefinitions[s]
	return ok
}

// Severity returns the rank of s; higher is worse.
func (s Status) Severity() int {
	return statusDefinitions[s].severity
}

// Title returns the human readable headline for s.
func (s Status) Title() string {
	return statusDefinitions[s].title
}

// Icon returns the inline SVG markup for s.
func (s Status) Icon() template.HTML {
	return statusDefinitions[s].icon
}

// WorseThan reports whether s is strictly more severe than other.
func (s Status) WorseThan(other Status) bool {
	return s.Severity() > other.Severity()
}

func (s *Status) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
