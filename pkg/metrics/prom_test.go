package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"status-page/pkg/types"
)

func TestPromMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	Register(reg)

	RecordRender(true, 20*time.Millisecond)
	RecordRender(false, 5*time.Millisecond)
	RecordIssueSourceFetch("environments", true)
	RecordIssueSourceFetch("issues", false)

	assert.Equal(t, 1.0, testutil.ToFloat64(pageRenders.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(pageRenders.WithLabelValues("error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(issueSourceFetches.WithLabelValues("environments", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(issueSourceFetches.WithLabelValues("issues", "error")))
	assert.Equal(t, 1, testutil.CollectAndCount(renderDuration))
}

func TestSetCurrentStatus(t *testing.T) {
	SetCurrentStatus(types.PageConfig{
		CurrentStatus: types.StatusOutage,
		Environments: []types.Environment{
			{Name: "Production", Status: types.StatusOutage},
			{Name: "Staging", Status: types.StatusIncident},
		},
	})

	assert.Equal(t, 2.0, testutil.ToFloat64(overallStatus))
	assert.Equal(t, 2.0, testutil.ToFloat64(environmentStatus.WithLabelValues("Production")))
	assert.Equal(t, 1.0, testutil.ToFloat64(environmentStatus.WithLabelValues("Staging")))
	assert.Equal(t, 2, testutil.CollectAndCount(environmentStatus))

	SetCurrentStatus(types.PageConfig{
		CurrentStatus: types.StatusNoIssue,
		Environments: []types.Environment{
			{Name: "Production", Status: types.StatusNoIssue},
		},
	})

	assert.Equal(t, 0.0, testutil.ToFloat64(overallStatus))
	assert.Equal(t, 1, testutil.CollectAndCount(environmentStatus))
	assert.Equal(t, 0.0, testutil.ToFloat64(environmentStatus.WithLabelValues("Production")))
}

func TestSetCurrentStatus_Concurrent(t *testing.T) {
	config := types.PageConfig{
		CurrentStatus: types.StatusIncident,
		Environments: []types.Environment{
			{Name: "Production", Status: types.StatusIncident},
			{Name: "Staging", Status: types.StatusNoIssue},
		},
	}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			SetCurrentStatus(config)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1.0, testutil.ToFloat64(overallStatus))
	assert.Equal(t, 2, testutil.CollectAndCount(environmentStatus))
}
