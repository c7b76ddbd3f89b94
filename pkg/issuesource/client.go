// Package issuesource builds a page configuration from environment and issue
// records held by a remote issue-tracking API.
package issuesource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"status-page/pkg/metrics"
	"status-page/pkg/status"
	"status-page/pkg/types"
)

// Client fetches records from the issue source API.
type Client struct {
	config     Config
	classify   Classifier
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient validates config and returns a Client. When classify is nil the
// classification rules from config are used.
func NewClient(config Config, classify Classifier, logger *logrus.Logger) (*Client, error) {
	config = config.WithDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if classify == nil {
		classify = config.Classification.Classify
	}

	return &Client{
		config:     config,
		classify:   classify,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger,
	}, nil
}

// Fetch loads environments and open issues and returns the aggregated page
// configuration. Title, logo and custom CSS are left for the caller to fill.
func (c *Client) Fetch(ctx context.Context) (types.PageConfig, error) {
	environments, err := c.fetchRecords(ctx, c.config.EnvironmentsTable, "")
	if err != nil {
		return types.PageConfig{}, err
	}

	filter, err := c.openIssuesFilter()
	if err != nil {
		return types.PageConfig{}, err
	}

	issues, err := c.fetchRecords(ctx, c.config.IssuesTable, filter)
	if err != nil {
		return types.PageConfig{}, err
	}

	c.logger.WithFields(logrus.Fields{
		"environments": len(environments),
		"issues":       len(issues),
	}).Debug("Fetched records from issue source")

	return c.buildPage(environments, issues), nil
}

func (c *Client) buildPage(environmentRecords, issueRecords []Record) types.PageConfig {
	open := make([]Record, 0, len(issueRecords))
	for _, issue := range issueRecords {
		if containsFold(c.config.OpenStatuses, issue.String(c.config.IssueStatusField)) {
			open = append(open, issue)
		}
	}

	environments := make([]types.Environment, 0, len(environmentRecords))
	for _, record := range environmentRecords {
		env := types.Environment{
			Name: record.String(c.config.EnvironmentNameField),
		}

		for _, serviceName := range record.References(c.config.EnvironmentServicesField) {
			var statuses []types.Status
			for _, issue := range open {
				if issue.String(c.config.IssueEnvironmentField) != env.Name {
					continue
				}
				if !issue.HasReference(c.config.IssueServiceField, serviceName) {
					continue
				}
				statuses = append(statuses, c.classify(issue))
			}
			env.Services = append(env.Services, types.Service{
				Name:   serviceName,
				Status: status.Worst(statuses...),
			})
		}

		environments = append(environments, env)
	}

	overall, environments := status.Aggregate(environments)
	return types.PageConfig{
		CurrentStatus: overall,
		Environments:  environments,
	}
}

// openIssuesFilter restricts the issues query to unresolved issues.
func (c *Client) openIssuesFilter() (string, error) {
	filter := map[string]map[string][]string{
		c.config.IssueStatusField: {"$in": c.config.OpenStatuses},
	}
	encoded, err := json.Marshal(filter)
	if err != nil {
		return "", fmt.Errorf("failed to encode filter for table %s: %w", c.config.IssuesTable, err)
	}
	return "?filter=" + url.QueryEscape(string(encoded)), nil
}

func (c *Client) fetchRecords(ctx context.Context, table, query string) (records []Record, err error) {
	defer func() {
		metrics.RecordIssueSourceFetch(table, err == nil)
	}()

	endpoint := c.config.BaseURL + "/data/" + url.PathEscape(table) + query
	logger := c.logger.WithField("table", table)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for table %s: %w", table, err)
	}
	req.Header.Set(c.config.APIKeyHeader, c.config.APIKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.WithField("error", err).Error("Issue source request failed")
		return nil, fmt.Errorf("failed to fetch table %s: %w", table, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", table, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		logger.WithFields(logrus.Fields{
			"status_code": resp.StatusCode,
			"body":        strings.TrimSpace(string(body)),
		}).Error("Issue source returned an error response")
		return nil, fmt.Errorf("fetching table %s: unexpected status %d", table, resp.StatusCode)
	}

	records, err = decodeRecords(body)
	if err != nil {
		return nil, fmt.Errorf("failed to decode table %s: %w", table, err)
	}
	return records, nil
}
