package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	m, err := NewMetrics()
	require.NoError(t, err)

	m.RecordChunk(false)
	m.RecordChunk(true)
	m.RecordChunk(true)
	m.RecordUnderrun()
	m.RecordSinkFailure()
	m.RecordCycle(3 * time.Millisecond)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.chunksProcessed))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.speechChunks))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.underruns))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sinkFailures))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordChunk(true)
		m.RecordUnderrun()
		m.RecordSinkFailure()
		m.RecordCycle(time.Millisecond)
	})
}
