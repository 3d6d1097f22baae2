// Package metrics exposes frame pipeline instrumentation as Prometheus
// collectors. Collectors register with the default registry on import.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const sceneLabel = "scene"

var (
	framesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scene_frames_total",
		Help: "The total number of frames drawn.",
	}, []string{sceneLabel})

	nodesDrawn = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "scene_nodes_drawn",
		Help: "The number of nodes drawn in the last frame.",
	}, []string{sceneLabel})

	nodesCulled = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "scene_nodes_culled",
		Help: "The number of nodes culled in the last frame.",
	}, []string{sceneLabel})

	updateSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scene_update_seconds",
		Help:    "Time spent in the update phase.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
	}, []string{sceneLabel})

	drawSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "scene_draw_seconds",
		Help:    "Time spent in the draw phase.",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 12),
	}, []string{sceneLabel})

	pickRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "scene_pick_requests_total",
		Help: "The total number of picking passes.",
	}, []string{sceneLabel})

	uploadBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gpu_buffer_upload_bytes_total",
		Help: "The total number of bytes copied into GPU buffers.",
	})

	bufferFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gpu_buffer_fallbacks_total",
		Help: "The number of vertex arrays that fell back to CPU streaming.",
	})
)

// ObserveUpdate records the duration of one update phase.
func ObserveUpdate(scene string, d time.Duration) {
	updateSeconds.With(prometheus.Labels{sceneLabel: scene}).Observe(d.Seconds())
}

// ObserveDraw records one drawn frame with its duration and node counts.
func ObserveDraw(scene string, d time.Duration, drawn, culled int) {
	l := prometheus.Labels{sceneLabel: scene}
	drawSeconds.With(l).Observe(d.Seconds())
	framesTotal.With(l).Inc()
	nodesDrawn.With(l).Set(float64(drawn))
	nodesCulled.With(l).Set(float64(culled))
}

// CountPick records one picking pass.
func CountPick(scene string) {
	pickRequests.With(prometheus.Labels{sceneLabel: scene}).Inc()
}

// AddUploadBytes records bytes sent to the GPU.
func AddUploadBytes(n int) {
	uploadBytes.Add(float64(n))
}

// CountFallback records a vertex array that could not get a GPU buffer.
func CountFallback() {
	bufferFallbacks.Inc()
}

// Forget drops the labelled series of a closed scene.
func Forget(scene string) {
	l := prometheus.Labels{sceneLabel: scene}
	framesTotal.Delete(l)
	nodesDrawn.Delete(l)
	nodesCulled.Delete(l)
	updateSeconds.Delete(l)
	drawSeconds.Delete(l)
	pickRequests.Delete(l)
}
