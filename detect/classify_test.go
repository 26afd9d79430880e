package detect

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pwninator/lipsync/feature"
)

func TestPercentile(t *testing.T) {
	values := []float64{4, 1, 3, 2, 5}

	assert.Equal(t, 1.0, percentile(values, 0))
	assert.Equal(t, 5.0, percentile(values, 100))
	assert.Equal(t, 3.0, percentile(values, 50))
	assert.InDelta(t, 1.8, percentile(values, 20), 1e-9)
	assert.Zero(t, percentile(nil, 50))
}

func TestComputeThresholds_SilentClip(t *testing.T) {
	f := feature.Features{
		RMS:      make([]float64, 20),
		Centroid: make([]float64, 20),
		Voicing:  make([]float64, 20),
	}

	thr := computeThresholds(f, DefaultConfig(), ModeSpectral)
	assert.True(t, thr.degenerate)
	assert.True(t, math.IsInf(thr.openRMS, 1))
}

func TestComputeThresholds_NoFrames(t *testing.T) {
	thr := computeThresholds(feature.Features{}, DefaultConfig(), ModeSpectral)
	assert.True(t, thr.degenerate)
}

func TestComputeThresholds_SpeechClip(t *testing.T) {
	f := feature.Features{
		RMS:      []float64{0, 0, 0, 0, 0.3, 0.3, 0.3, 0.3, 0, 0},
		Centroid: []float64{0, 0, 0, 0, 400, 400, 400, 400, 0, 0},
		Voicing:  []float64{0, 0, 0, 0, 0.9, 0.9, 0.9, 0.9, 0, 0},
	}
	cfg := DefaultConfig()

	thr := computeThresholds(f, cfg, ModeSpectral)
	require.False(t, thr.degenerate)

	// The cut sits strictly between the silence floor and the loud level.
	assert.Greater(t, thr.openRMS, cfg.SilenceFloor)
	assert.Less(t, thr.openRMS, 0.3)
	assert.Greater(t, thr.supportCut, 0.0)
	assert.Less(t, thr.supportCut, 400.0)

	voicing := computeThresholds(f, cfg, ModeVoicing)
	assert.Less(t, voicing.supportCut, 0.9)
}

func TestClassifyFrames(t *testing.T) {
	f := feature.Features{
		RMS:      []float64{0.01, 0.3, 0.3, 0.01},
		Centroid: []float64{50, 400, 400, 50},
		Voicing:  []float64{0, 0.9, 0.9, 0},
	}
	thr := thresholds{openRMS: 0.1, supportCut: 100, spread: 0.3}

	frames := classifyFrames(f, thr, ModeSpectral)
	require.Len(t, frames, 4)
	assert.Equal(t, MouthClosed, frames[0].shape)
	assert.Equal(t, MouthOpen, frames[1].shape)
	assert.Equal(t, MouthOpen, frames[2].shape)
	assert.Equal(t, MouthClosed, frames[3].shape)
	for _, fc := range frames {
		assert.GreaterOrEqual(t, fc.confidence, 0.5)
		assert.LessOrEqual(t, fc.confidence, 1.0)
	}
}

func TestClassifyFrames_LoudButUnsupportedStaysClosed(t *testing.T) {
	// High energy with no spectral support (a thump, not speech).
	f := feature.Features{
		RMS:      []float64{0.5},
		Centroid: []float64{10},
		Voicing:  []float64{0},
	}
	thr := thresholds{openRMS: 0.1, supportCut: 100, spread: 0.3}

	frames := classifyFrames(f, thr, ModeSpectral)
	assert.Equal(t, MouthClosed, frames[0].shape)
}

func TestCollectRuns(t *testing.T) {
	frames := []frameClass{
		{MouthClosed, 0.75}, {MouthClosed, 0.25},
		{MouthOpen, 0.9},
		{MouthClosed, 0.7},
	}

	runs := collectRuns(frames)
	require.Len(t, runs, 3)
	assert.Equal(t, run{MouthClosed, 0, 1, 0.5}, runs[0])
	assert.Equal(t, run{MouthOpen, 2, 2, 0.9}, runs[1])
	assert.Equal(t, run{MouthClosed, 3, 3, 0.7}, runs[2])
}

func TestMergeShortRuns_AbsorbsFlicker(t *testing.T) {
	// A single-frame open blip between two long closed runs disappears.
	runs := []run{
		{MouthClosed, 0, 9, 0.8},
		{MouthOpen, 10, 10, 0.6},
		{MouthClosed, 11, 20, 0.8},
	}

	merged := mergeShortRuns(runs, 5)
	require.Len(t, merged, 1)
	assert.Equal(t, MouthClosed, merged[0].shape)
	assert.Equal(t, 0, merged[0].start)
	assert.Equal(t, 20, merged[0].end)
}

func TestMergeShortRuns_KeepsLongRuns(t *testing.T) {
	runs := []run{
		{MouthClosed, 0, 9, 0.8},
		{MouthOpen, 10, 19, 0.9},
	}
	assert.Equal(t, runs, mergeShortRuns(runs, 5))
}

func TestMergeShortRuns_SingleRunUntouched(t *testing.T) {
	runs := []run{{MouthClosed, 0, 1, 0.9}}
	assert.Equal(t, runs, mergeShortRuns(runs, 5))
}

func TestMergeShortRuns_PreservesSpan(t *testing.T) {
	runs := []run{
		{MouthClosed, 0, 2, 0.6},
		{MouthOpen, 3, 4, 0.7},
		{MouthClosed, 5, 11, 0.8},
		{MouthOpen, 12, 12, 0.5},
		{MouthClosed, 13, 19, 0.9},
	}

	merged := mergeShortRuns(runs, 4)
	require.NotEmpty(t, merged)
	assert.Equal(t, 0, merged[0].start)
	assert.Equal(t, 19, merged[len(merged)-1].end)
	for i := 1; i < len(merged); i++ {
		assert.Equal(t, merged[i-1].end+1, merged[i].start)
		assert.NotEqual(t, merged[i-1].shape, merged[i].shape)
	}
}

func TestEventsFromRuns_SpansClip(t *testing.T) {
	f := feature.Features{
		RMS:      []float64{0.01, 0.01, 0.3, 0.3, 0.01},
		Centroid: []float64{50, 50, 400, 400, 50},
		Voicing:  make([]float64, 5),
		HopSec:   0.02,
		Duration: 0.13,
	}
	runs := []run{
		{MouthClosed, 0, 1, 0.9},
		{MouthOpen, 2, 3, 0.8},
		{MouthClosed, 4, 4, 0.7},
	}

	events := eventsFromRuns(runs, f)
	require.Len(t, events, 3)

	assert.Zero(t, events[0].Start)
	assert.InDelta(t, 0.13, events[2].End, 1e-9)
	assert.InDelta(t, 0.04, events[0].End, 1e-9)
	assert.InDelta(t, 0.08, events[1].End, 1e-9)
	assert.InDelta(t, 0.3, events[1].MeanRMS, 1e-9)
	assert.InDelta(t, 400, events[1].MeanCentroid, 1e-9)
}

func TestEventsFromRuns_Empty(t *testing.T) {
	assert.Nil(t, eventsFromRuns(nil, feature.Features{}))
}
