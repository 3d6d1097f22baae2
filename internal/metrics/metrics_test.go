package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func value(t *testing.T, m prometheus.Metric) float64 {
	t.Helper()
	var out dto.Metric
	require.NoError(t, m.Write(&out))
	switch {
	case out.Counter != nil:
		return out.Counter.GetValue()
	case out.Gauge != nil:
		return out.Gauge.GetValue()
	}
	t.Fatalf("unsupported metric %v", m.Desc())
	return 0
}

func TestObserveDraw(t *testing.T) {
	const id = "test-draw"
	defer Forget(id)

	ObserveDraw(id, 2*time.Millisecond, 5, 3)
	ObserveDraw(id, 3*time.Millisecond, 4, 1)

	l := prometheus.Labels{sceneLabel: id}
	assert.Equal(t, 2.0, value(t, framesTotal.With(l)))
	assert.Equal(t, 4.0, value(t, nodesDrawn.With(l)))
	assert.Equal(t, 1.0, value(t, nodesCulled.With(l)))
}

func TestCounters(t *testing.T) {
	before := value(t, uploadBytes)
	AddUploadBytes(1600)
	assert.Equal(t, before+1600, value(t, uploadBytes))

	fb := value(t, bufferFallbacks)
	CountFallback()
	assert.Equal(t, fb+1, value(t, bufferFallbacks))

	const id = "test-pick"
	defer Forget(id)
	CountPick(id)
	assert.Equal(t, 1.0, value(t, pickRequests.With(prometheus.Labels{sceneLabel: id})))
}
