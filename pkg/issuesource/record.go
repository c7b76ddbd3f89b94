package issuesource

import (
	"encoding/json"
	"fmt"
	"strings"

	"status-page/pkg/types"
)

// Record is one row returned by the issue source API.
type Record map[string]interface{}

// String returns field as a string. Numbers and booleans are formatted; anything else is empty.
func (r Record) String(field string) string {
	switch v := r[field].(type) {
	case string:
		return v
	case float64, bool:
		return fmt.Sprint(v)
	default:
		return ""
	}
}

// References returns the values held by a reference field. The field may be a
// single string, a list of strings, or a list of linked records carrying an
// "identifier" or "name".
func (r Record) References(field string) []string {
	switch v := r[field].(type) {
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []interface{}:
		refs := make([]string, 0, len(v))
		for _, item := range v {
			switch ref := item.(type) {
			case string:
				refs = append(refs, ref)
			case map[string]interface{}:
				linked := Record(ref)
				if id := linked.String("identifier"); id != "" {
					refs = append(refs, id)
				} else if name := linked.String("name"); name != "" {
					refs = append(refs, name)
				}
			}
		}
		return refs
	default:
		return nil
	}
}

// HasReference reports whether field references value.
func (r Record) HasReference(field, value string) bool {
	for _, ref := range r.References(field) {
		if ref == value {
			return true
		}
	}
	return false
}

// decodeRecords accepts either a bare JSON array or an object wrapping it in "records".
func decodeRecords(data []byte) ([]Record, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var records []Record
		if err := json.Unmarshal(data, &records); err != nil {
			return nil, err
		}
		return records, nil
	}

	var envelope struct {
		Records []Record `json:"records"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, err
	}
	return envelope.Records, nil
}

// Classifier maps an open issue to the status it imposes on its service.
type Classifier func(Record) types.Status

// FieldClassifier classifies issues by the value of a single field.
// Values are compared case-insensitively; anything unmatched maps to Default.
type FieldClassifier struct {
	Field    string       `json:"field" yaml:"field"`
	Outage   []string     `json:"outage" yaml:"outage"`
	Incident []string     `json:"incident" yaml:"incident"`
	Default  types.Status `json:"default,omitempty" yaml:"default,omitempty"`
}

// Classify implements Classifier.
func (f FieldClassifier) Classify(record Record) types.Status {
	value := record.String(f.Field)
	if containsFold(f.Outage, value) {
		return types.StatusOutage
	}
	if containsFold(f.Incident, value) {
		return types.StatusIncident
	}
	if f.Default == "" {
		return types.StatusIncident
	}
	return f.Default
}

func containsFold(values []string, value string) bool {
	for _, v := range values {
		if strings.EqualFold(v, value) {
			return true
		}
	}
	return false
}
