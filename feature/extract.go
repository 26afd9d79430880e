// Package feature converts a decoded clip into per-frame scalar streams:
// short-term energy (RMS), spectral centroid, and a voicing confidence
// signal. Energy separates silence from speech; centroid and voicing
// separate open-mouth vowel energy from closed-mouth consonant and
// silence texture, which amplitude alone cannot do.
package feature

import (
	"math"

	"github.com/pwninator/lipsync/audio"
)

// Config controls framing and the voicing search range.
type Config struct {
	FrameLengthMs int // analysis window, default 40ms
	HopLengthMs   int // hop between frames, default 20ms
	MinPitchHz    float64
	MaxPitchHz    float64
}

// DefaultConfig returns framing defaults tuned for speech.
func DefaultConfig() Config {
	return Config{
		FrameLengthMs: 40,
		HopLengthMs:   20,
		MinPitchHz:    60,
		MaxPitchHz:    400,
	}
}

// Features holds index-parallel per-frame streams. Times gives the center
// time of each frame in seconds.
type Features struct {
	Times    []float64
	RMS      []float64
	Centroid []float64 // Hz
	Voicing  []float64 // 0..1 autocorrelation peak
	HopSec   float64
	Duration float64 // clip duration in seconds
}

// Len returns the number of frames.
func (f Features) Len() int { return len(f.Times) }

// Extract computes per-frame features over a fixed hop. A clip too short
// for a single frame (or entirely empty) yields a zero-frame stream with
// the clip duration preserved; it never fails.
func Extract(clip audio.Clip, cfg Config) Features {
	if cfg.FrameLengthMs <= 0 || cfg.HopLengthMs <= 0 {
		cfg = DefaultConfig()
	}

	out := Features{
		HopSec:   float64(cfg.HopLengthMs) / 1000.0,
		Duration: clip.Duration(),
	}
	if clip.SampleRate <= 0 || len(clip.Samples) == 0 {
		return out
	}

	frameLen := clip.SampleRate * cfg.FrameLengthMs / 1000
	hop := clip.SampleRate * cfg.HopLengthMs / 1000
	if frameLen <= 0 || hop <= 0 {
		return out
	}
	if len(clip.Samples) < frameLen {
		// Single short frame covering whatever audio exists.
		frameLen = len(clip.Samples)
	}

	numFrames := 1 + (len(clip.Samples)-frameLen)/hop
	out.Times = make([]float64, numFrames)
	out.RMS = make([]float64, numFrames)
	out.Centroid = make([]float64, numFrames)
	out.Voicing = make([]float64, numFrames)

	window := hammingWindow(frameLen)
	windowed := make([]float64, frameLen)

	minLag := int(float64(clip.SampleRate) / cfg.MaxPitchHz)
	maxLag := int(float64(clip.SampleRate) / cfg.MinPitchHz)
	if maxLag >= frameLen {
		maxLag = frameLen - 1
	}

	for i := 0; i < numFrames; i++ {
		start := i * hop
		frame := clip.Samples[start : start+frameLen]

		out.Times[i] = (float64(start) + float64(frameLen)/2) / float64(clip.SampleRate)
		out.RMS[i] = rms(frame)

		for j, s := range frame {
			windowed[j] = s * window[j]
		}
		out.Centroid[i] = spectralCentroid(windowed, clip.SampleRate)
		out.Voicing[i] = voicingConfidence(frame, minLag, maxLag)
	}

	return out
}

func rms(frame []float64) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sum float64
	for _, s := range frame {
		sum += s * s
	}
	return math.Sqrt(sum / float64(len(frame)))
}

// spectralCentroid returns the power-weighted mean frequency in Hz, or 0
// for an (effectively) silent frame.
func spectralCentroid(windowed []float64, sampleRate int) float64 {
	power := powerSpectrum(windowed)
	fftSize := (len(power) - 1) * 2
	binHz := float64(sampleRate) / float64(fftSize)

	var weighted, total float64
	for i, p := range power {
		weighted += float64(i) * binHz * p
		total += p
	}
	if total < 1e-12 {
		return 0
	}
	return weighted / total
}

// voicingConfidence returns the peak normalized autocorrelation over the
// pitch lag range. Periodic (voiced) frames score near 1, noise and
// silence near 0.
func voicingConfidence(frame []float64, minLag, maxLag int) float64 {
	if minLag < 1 {
		minLag = 1
	}
	if maxLag <= minLag || len(frame) <= maxLag {
		return 0
	}

	var energy float64
	for _, s := range frame {
		energy += s * s
	}
	if energy < 1e-12 {
		return 0
	}

	best := 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		var corr float64
		for i := 0; i+lag < len(frame); i++ {
			corr += frame[i] * frame[i+lag]
		}
		norm := corr / energy
		if norm > best {
			best = norm
		}
	}
	if best > 1 {
		best = 1
	}
	return best
}

func hammingWindow(n int) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := range w {
		w[i] = 0.54 - 0.46*math.Cos(2*math.Pi*float64(i)/float64(n-1))
	}
	return w
}
