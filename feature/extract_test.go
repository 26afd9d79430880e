package feature

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pwninator/lipsync/audio"
)

func sineClip(freq, amp, duration float64, rate int) audio.Clip {
	n := int(duration * float64(rate))
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return audio.Clip{Samples: samples, SampleRate: rate}
}

func TestExtract_SineTone(t *testing.T) {
	clip := sineClip(220, 0.5, 1.0, 16000)
	feats := Extract(clip, DefaultConfig())

	require.Greater(t, feats.Len(), 10)
	require.Len(t, feats.RMS, feats.Len())
	require.Len(t, feats.Centroid, feats.Len())
	require.Len(t, feats.Voicing, feats.Len())

	// A steady sine has RMS amp/sqrt(2), centroid near its frequency, and
	// strong periodicity.
	mid := feats.Len() / 2
	assert.InDelta(t, 0.5/math.Sqrt2, feats.RMS[mid], 0.02)
	assert.InDelta(t, 220, feats.Centroid[mid], 80)
	assert.Greater(t, feats.Voicing[mid], 0.6)
}

func TestExtract_SilentClip(t *testing.T) {
	clip := audio.Clip{Samples: make([]float64, 16000), SampleRate: 16000}
	feats := Extract(clip, DefaultConfig())

	require.Greater(t, feats.Len(), 0)
	for i := 0; i < feats.Len(); i++ {
		assert.Zero(t, feats.RMS[i])
		assert.Zero(t, feats.Centroid[i])
		assert.Zero(t, feats.Voicing[i])
	}
	assert.InDelta(t, 1.0, feats.Duration, 1e-9)
}

func TestExtract_EmptyClip(t *testing.T) {
	feats := Extract(audio.Clip{SampleRate: 16000}, DefaultConfig())
	assert.Zero(t, feats.Len())
	assert.Zero(t, feats.Duration)
}

func TestExtract_ClipShorterThanFrame(t *testing.T) {
	// 10ms of audio with a 40ms window: one shortened frame, no panic.
	clip := sineClip(220, 0.5, 0.01, 16000)
	feats := Extract(clip, DefaultConfig())

	assert.Equal(t, 1, feats.Len())
	assert.Greater(t, feats.RMS[0], 0.1)
}

func TestExtract_FrameTimesIncrease(t *testing.T) {
	clip := sineClip(220, 0.5, 1.0, 16000)
	feats := Extract(clip, DefaultConfig())

	for i := 1; i < feats.Len(); i++ {
		assert.Greater(t, feats.Times[i], feats.Times[i-1])
	}
	assert.InDelta(t, 0.02, feats.HopSec, 1e-9)
}

func TestExtract_ZeroConfigFallsBackToDefaults(t *testing.T) {
	clip := sineClip(220, 0.5, 0.5, 16000)
	feats := Extract(clip, Config{})
	assert.Greater(t, feats.Len(), 0)
}

func TestPowerSpectrum_PeakAtToneFrequency(t *testing.T) {
	const rate = 16000
	const freq = 1000.0
	frame := make([]float64, 512)
	for i := range frame {
		frame[i] = math.Sin(2 * math.Pi * freq * float64(i) / rate)
	}

	power := powerSpectrum(frame)
	peak := 0
	for i := range power {
		if power[i] > power[peak] {
			peak = i
		}
	}

	binHz := float64(rate) / float64((len(power)-1)*2)
	assert.InDelta(t, freq, float64(peak)*binHz, binHz*2)
}
