package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"status-page/pkg/render"
	"status-page/pkg/types"
)

type failingSource struct{}

func (failingSource) Page(context.Context) (types.PageConfig, error) {
	return types.PageConfig{}, errors.New("upstream unavailable")
}

type fakeFetcher struct {
	config types.PageConfig
	err    error
}

func (f *fakeFetcher) Fetch(context.Context) (types.PageConfig, error) {
	return f.config, f.err
}

func testPageConfig() types.PageConfig {
	return types.PageConfig{
		Title: "Acme Status",
		Logo:  "https://example.com/logo.png",
		Environments: []types.Environment{
			{Name: "Production", Services: []types.Service{
				{Name: "API", Status: types.StatusIncident},
				{Name: "Website", Status: types.StatusNoIssue},
			}},
			{Name: "Staging", Services: []types.Service{
				{Name: "API", Status: types.StatusNoIssue},
			}},
		},
	}
}

func newTestServer(t *testing.T, source PageSource) *httptest.Server {
	log := logrus.New()
	log.SetOutput(io.Discard)

	renderer := render.New(render.WithClock(func() time.Time {
		return time.Date(2024, time.March, 1, 12, 30, 0, 0, time.UTC)
	}), render.WithLocation(time.UTC))

	server := httptest.NewServer(NewServer(source, renderer, newRegistry(), log).setupRoutes())
	t.Cleanup(server.Close)
	return server
}

func TestHealthJSON(t *testing.T) {
	server := newTestServer(t, &staticSource{config: testPageConfig()})

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var health map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health["status"])
	assert.NotEmpty(t, health["time"])
}

func TestPage(t *testing.T) {
	tests := []struct {
		name           string
		source         PageSource
		expectedStatus int
		expectedType   string
		contains       []string
	}{
		{
			name:           "static configuration",
			source:         &staticSource{config: testPageConfig()},
			expectedStatus: http.StatusOK,
			expectedType:   "text/html",
			contains:       []string{"<title>Acme Status</title>", "Some Systems Are Experiencing Issues", "12:30 GMT"},
		},
		{
			name: "issue source configuration",
			source: &issueSource{
				fetcher: &fakeFetcher{config: types.PageConfig{
					CurrentStatus: types.StatusOutage,
					Environments: []types.Environment{
						{Name: "Remote", Status: types.StatusOutage, Services: []types.Service{{Name: "Queue", Status: types.StatusOutage}}},
					},
				}},
				base: types.PageConfig{Title: "Fetched Status"},
			},
			expectedStatus: http.StatusOK,
			expectedType:   "text/html",
			contains:       []string{"<title>Fetched Status</title>", "Service Disruption Ongoing", "Queue"},
		},
		{
			name:           "source failure",
			source:         failingSource{},
			expectedStatus: http.StatusInternalServerError,
			expectedType:   "application/json",
			contains:       []string{"Failed to load status"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := newTestServer(t, tt.source)

			resp, err := http.Get(server.URL + "/")
			require.NoError(t, err)
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Type"), tt.expectedType))
			for _, s := range tt.contains {
				assert.Contains(t, string(body), s)
			}
		})
	}
}

func TestGetStatusJSON(t *testing.T) {
	server := newTestServer(t, &staticSource{config: testPageConfig()})

	resp, err := http.Get(server.URL + "/api/status")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var config types.PageConfig
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&config))

	assert.Equal(t, "Acme Status", config.Title)
	assert.Equal(t, types.StatusIncident, config.CurrentStatus)
	require.Len(t, config.Environments, 2)
	assert.Equal(t, types.StatusIncident, config.Environments[0].Status)
	assert.Equal(t, types.StatusNoIssue, config.Environments[1].Status)
}

func TestGetEnvironmentStatusJSON(t *testing.T) {
	tests := []struct {
		name            string
		environmentName string
		expectedStatus  int
		expectedEnv     types.Status
	}{
		{
			name:            "environment found",
			environmentName: "Production",
			expectedStatus:  http.StatusOK,
			expectedEnv:     types.StatusIncident,
		},
		{
			name:            "environment not found",
			environmentName: "NonExistent",
			expectedStatus:  http.StatusNotFound,
		},
		{
			name:            "case sensitive matching",
			environmentName: "production",
			expectedStatus:  http.StatusNotFound,
		},
	}

	server := newTestServer(t, &staticSource{config: testPageConfig()})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(server.URL + "/api/status/" + tt.environmentName)
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.expectedStatus, resp.StatusCode)
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var env types.Environment
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
			assert.Equal(t, tt.environmentName, env.Name)
			assert.Equal(t, tt.expectedEnv, env.Status)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	server := newTestServer(t, &staticSource{config: testPageConfig()})

	resp, err := http.Get(server.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `status_page_renders_total{outcome="success"}`)
	assert.Contains(t, string(body), "status_page_overall_status 1")
	assert.Contains(t, string(body), `status_page_environment_status{environment="Production"} 1`)
}

func TestRequestID(t *testing.T) {
	server := newTestServer(t, &staticSource{config: testPageConfig()})

	t.Run("generated when missing", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/health")
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Len(t, resp.Header.Get(requestIDHeader), 36)
	})

	t.Run("echoed when provided", func(t *testing.T) {
		req, err := http.NewRequest(http.MethodGet, server.URL+"/health", nil)
		require.NoError(t, err)
		req.Header.Set(requestIDHeader, "abc-123")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		assert.Equal(t, "abc-123", resp.Header.Get(requestIDHeader))
	})
}

func TestIssueSource_PropagatesFetchError(t *testing.T) {
	source := &issueSource{fetcher: &fakeFetcher{err: errors.New("timeout")}}

	_, err := source.Page(context.Background())
	assert.EqualError(t, err, "timeout")
}
