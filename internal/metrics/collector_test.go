package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_RecordRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector()
	reg.MustRegister(c)

	c.RecordRequest("POST", "/api/v1/issues", 201, 0.004)
	c.RecordRequest("POST", "/api/v1/issues", 201, 0.006)
	c.RecordRequest("POST", "/api/v1/issues", 404, 0.001)

	assert.Equal(t, float64(2), testutil.ToFloat64(c.requestsTotal.WithLabelValues("POST", "/api/v1/issues", "201")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.requestsTotal.WithLabelValues("POST", "/api/v1/issues", "404")))
}

func TestCollector_RecordSaves(t *testing.T) {
	c := NewCollector()

	c.RecordRepositorySaved(false)
	c.RecordRepositorySaved(true)
	c.RecordRepositorySaved(false)
	c.RecordIssueSaved()

	assert.Equal(t, float64(2), testutil.ToFloat64(c.repositoriesSaved.WithLabelValues("public")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.repositoriesSaved.WithLabelValues("private")))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.issuesSaved))
}

func TestCollector_RecordRejection(t *testing.T) {
	c := NewCollector()

	c.RecordRejection("NOT_OWNER")
	c.RecordRejection("NOT_OWNER")

	assert.Equal(t, float64(2), testutil.ToFloat64(c.rejections.WithLabelValues("NOT_OWNER")))
}

func TestCollector_DescribeAndCollect(t *testing.T) {
	c := NewCollector()
	c.RecordRequest("GET", "/health", 200, 0.001)
	c.RecordIssueSaved()

	descCh := make(chan *prometheus.Desc, 10)
	c.Describe(descCh)
	close(descCh)
	assert.Len(t, descCh, 5)

	metricCh := make(chan prometheus.Metric, 10)
	c.Collect(metricCh)
	close(metricCh)

	count := 0
	for range metricCh {
		count++
	}
	require.Greater(t, count, 0)
}
