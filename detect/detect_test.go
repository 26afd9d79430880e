package detect

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pwninator/lipsync/audio"
)

const testRate = 16000

func silentWAV(duration float64) []byte {
	n := int(duration * testRate)
	return audio.EncodeWAV(audio.Clip{Samples: make([]float64, n), SampleRate: testRate})
}

// speechWAV builds a clip with silence, a 220Hz tone, then silence again,
// a stand-in for pause / speech / pause.
func speechWAV(lead, tone, tail float64) []byte {
	samples := make([]float64, 0, int((lead+tone+tail)*testRate))
	samples = append(samples, make([]float64, int(lead*testRate))...)
	for i := 0; i < int(tone*testRate); i++ {
		samples = append(samples, 0.5*math.Sin(2*math.Pi*220*float64(i)/testRate))
	}
	samples = append(samples, make([]float64, int(tail*testRate))...)
	return audio.EncodeWAV(audio.Clip{Samples: samples, SampleRate: testRate})
}

func TestMouthEvents_TimingModeWithoutTiming(t *testing.T) {
	d := NewDetector(DefaultConfig())

	events, err := d.MouthEvents(nil, ModeTiming, "", nil)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestMouthEvents_UnknownMode(t *testing.T) {
	d := NewDetector(DefaultConfig())

	_, err := d.MouthEvents(silentWAV(0.5), Mode(99), "", nil)
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestMouthEvents_BadAudio(t *testing.T) {
	d := NewDetector(DefaultConfig())

	_, err := d.MouthEvents([]byte("definitely not audio"), ModeSpectral, "", nil)
	assert.Error(t, err)
}

func TestMouthEvents_SilentClip(t *testing.T) {
	d := NewDetector(DefaultConfig())

	events, err := d.MouthEvents(silentWAV(1.0), ModeSpectral, "", nil)
	require.NoError(t, err)

	require.Len(t, events, 1)
	assert.Equal(t, MouthClosed, events[0].Shape)
	assert.Zero(t, events[0].Start)
	assert.InDelta(t, 1.0, events[0].End, 1e-9)
	assert.Equal(t, 1.0, events[0].Confidence)
}

func TestMouthEvents_SpeechClip(t *testing.T) {
	wav := speechWAV(0.4, 0.4, 0.4)

	for _, mode := range []Mode{ModeSpectral, ModeVoicing} {
		t.Run(mode.String(), func(t *testing.T) {
			d := NewDetector(DefaultConfig())
			events, err := d.MouthEvents(wav, mode, "", nil)
			require.NoError(t, err)

			require.Len(t, events, 3)
			assert.Equal(t, MouthClosed, events[0].Shape)
			assert.Equal(t, MouthOpen, events[1].Shape)
			assert.Equal(t, MouthClosed, events[2].Shape)

			// The event list spans the whole clip with no gaps.
			assert.Zero(t, events[0].Start)
			assert.InDelta(t, 1.2, events[2].End, 1e-9)
			for i := 1; i < len(events); i++ {
				assert.Equal(t, events[i-1].End, events[i].Start)
			}

			// The open segment sits over the tone, give or take a frame.
			assert.Less(t, events[1].Start, 0.45)
			assert.Greater(t, events[1].End, 0.75)
			assert.Greater(t, events[1].MeanRMS, events[0].MeanRMS)
		})
	}
}

func TestMouthEvents_SpeechClipWithTranscript(t *testing.T) {
	d := NewDetector(DefaultConfig())

	events, err := d.MouthEvents(speechWAV(0.4, 0.4, 0.4), ModeSpectral, "hello world", nil)
	require.NoError(t, err)
	require.NotEmpty(t, events)

	// Refinement keeps the clip fully covered.
	assert.Zero(t, events[0].Start)
	assert.InDelta(t, 1.2, events[len(events)-1].End, 1e-9)
	for i := 1; i < len(events); i++ {
		assert.Equal(t, events[i-1].End, events[i].Start)
	}
}

func TestMouthEvents_ClipShorterThanFrame(t *testing.T) {
	d := NewDetector(DefaultConfig())

	events, err := d.MouthEvents(silentWAV(0.01), ModeSpectral, "", nil)
	require.NoError(t, err)

	// One whole-span closed event even when a single frame fits.
	require.Len(t, events, 1)
	assert.Equal(t, MouthClosed, events[0].Shape)
	assert.Zero(t, events[0].Start)
	assert.InDelta(t, 0.01, events[0].End, 1e-9)
}

func TestMouthEvents_PackageLevel(t *testing.T) {
	events, err := MouthEvents(silentWAV(0.5), "librosa", "", nil)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, MouthClosed, events[0].Shape)

	_, err = MouthEvents(nil, "whisper", "", nil)
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"timing", ModeTiming, false},
		{"tts_timing", ModeTiming, false},
		{"librosa", ModeSpectral, false},
		{"parselmouth", ModeVoicing, false},
		{"", 0, true},
		{"LIBROSA", 0, true},
		{"webrtc", 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			mode, err := ParseMode(tc.in)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrUnknownMode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, mode)
		})
	}
}

func TestModeString(t *testing.T) {
	for _, mode := range []Mode{ModeTiming, ModeSpectral, ModeVoicing} {
		parsed, err := ParseMode(mode.String())
		require.NoError(t, err)
		assert.Equal(t, mode, parsed)
	}
}

func TestToTimeline(t *testing.T) {
	events := []MouthEvent{
		{Start: 0, End: 0.5, Shape: MouthClosed},
		{Start: 0.5, End: 1.0, Shape: MouthOpen},
		{Start: 1.0, End: 1.5, Shape: MouthClosed},
	}

	tl, err := ToTimeline(events)
	require.NoError(t, err)

	assert.Equal(t, MouthClosed, tl.ValueAt(0.25, ""))
	assert.Equal(t, MouthOpen, tl.ValueAt(0.75, ""))
	assert.Equal(t, MouthClosed, tl.ValueAt(1.25, ""))
	assert.Equal(t, MouthShape("none"), tl.ValueAt(2.0, "none"))
}

func TestToTimeline_RejectsOverlappingEvents(t *testing.T) {
	_, err := ToTimeline([]MouthEvent{
		{Start: 0, End: 1, Shape: MouthOpen},
		{Start: 0.5, End: 1.5, Shape: MouthClosed},
	})
	assert.Error(t, err)
}

func TestConfigSanitized(t *testing.T) {
	cfg := Config{}.sanitized()
	assert.Equal(t, DefaultConfig(), cfg)

	// Valid overrides survive.
	custom := Config{FrameLengthMs: 50, HopLengthMs: 25}.sanitized()
	assert.Equal(t, 50, custom.FrameLengthMs)
	assert.Equal(t, 25, custom.HopLengthMs)
	assert.Equal(t, DefaultConfig().MinRunMs, custom.MinRunMs)

	// Inverted percentiles fall back together.
	inverted := Config{QuietPercentile: 90, LoudPercentile: 10}.sanitized()
	assert.Equal(t, DefaultConfig().QuietPercentile, inverted.QuietPercentile)
	assert.Equal(t, DefaultConfig().LoudPercentile, inverted.LoudPercentile)
}
