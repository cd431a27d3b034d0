package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
)

func TestMetricsRegistry(t *testing.T) {
	InitRegistry()
	registry := GetRegistry()

	assert.NotNil(t, registry)
	assert.IsType(t, &prometheus.Registry{}, registry)
}

func TestInitRegistryIdempotent(t *testing.T) {
	first := InitRegistry()
	second := InitRegistry()
	assert.Same(t, first, second)
}

func TestRecordSimulation(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordSimulation("legs", 0.002)
		RecordSimulation("override", 0.001)
	})
}

func TestRecordExtractionPass(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordExtractionPass(30, 6, 12.5)
	})
}

func TestRecordExtractionFailure(t *testing.T) {
	InitRegistry()

	assert.NotPanics(t, func() {
		RecordExtractionFailure("not_video")
		RecordExtractionFailure("decode_failed")
	})
}

func TestHandler(t *testing.T) {
	InitRegistry()
	assert.NotNil(t, Handler())
}
