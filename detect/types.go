// Package detect derives a timed sequence of mouth shapes from
// provider-supplied speech timing or from acoustic analysis of raw audio.
// Its output feeds the rendering collaborator through a timeline built
// from the event list.
package detect

import (
	"errors"
	"fmt"
)

// MouthShape is a discrete visual mouth state. The two built-in states are
// the minimum every character supports; characters may define more and the
// character package maps events onto what a given character can show.
type MouthShape string

const (
	MouthOpen   MouthShape = "open"
	MouthClosed MouthShape = "closed"
)

// MouthEvent is one constant-shape interval of the detection output.
// Events for a clip are ordered by start time and never overlap.
type MouthEvent struct {
	Start        float64    `json:"startTime"`
	End          float64    `json:"endTime"`
	Shape        MouthShape `json:"mouthShape"`
	Confidence   float64    `json:"confidence,omitempty"`
	MeanCentroid float64    `json:"meanCentroid,omitempty"`
	MeanRMS      float64    `json:"meanRms,omitempty"`
}

// Duration returns the event length in seconds.
func (e MouthEvent) Duration() float64 { return e.End - e.Start }

// ErrBadAlignment is returned for index-parallel timing arrays that do not
// line up.
var ErrBadAlignment = errors.New("detect: malformed character alignment")

// CharacterAlignment holds provider character-level timing as
// index-parallel arrays.
type CharacterAlignment struct {
	Characters []string  `json:"characters"`
	StartTimes []float64 `json:"characterStartTimesSeconds"`
	EndTimes   []float64 `json:"characterEndTimesSeconds"`
}

// Len returns the number of aligned characters.
func (a *CharacterAlignment) Len() int {
	if a == nil {
		return 0
	}
	return len(a.Characters)
}

// Validate checks the parallel-array invariant and that times are
// non-decreasing across indices.
func (a *CharacterAlignment) Validate() error {
	if a == nil {
		return nil
	}
	if len(a.Characters) != len(a.StartTimes) || len(a.Characters) != len(a.EndTimes) {
		return fmt.Errorf("%w: %d characters, %d start times, %d end times",
			ErrBadAlignment, len(a.Characters), len(a.StartTimes), len(a.EndTimes))
	}
	for i := range a.Characters {
		if a.EndTimes[i] < a.StartTimes[i] {
			return fmt.Errorf("%w: character %d ends before it starts", ErrBadAlignment, i)
		}
		if i > 0 && a.StartTimes[i] < a.StartTimes[i-1] {
			return fmt.Errorf("%w: start times decrease at index %d", ErrBadAlignment, i)
		}
	}
	return nil
}

// VoiceSegment attributes a contiguous time window to a speaker, a
// character-index range into the alignment, and the originating dialogue
// input. Not mutated after creation.
type VoiceSegment struct {
	Start      float64 `json:"startTime"`
	End        float64 `json:"endTime"`
	Speaker    string  `json:"speaker"`
	CharStart  int     `json:"charStart"`
	CharEnd    int     `json:"charEnd"`
	InputIndex int     `json:"inputIndex"`
}

// TtsTiming bundles the provider timing metadata for one synthesized clip.
type TtsTiming struct {
	Alignment           *CharacterAlignment `json:"alignment,omitempty"`
	NormalizedAlignment *CharacterAlignment `json:"normalizedAlignment,omitempty"`
	VoiceSegments       []VoiceSegment      `json:"voiceSegments,omitempty"`
}

// Preferred returns the normalized alignment when present, since its
// characters match what was actually spoken, falling back to the raw one.
func (t *TtsTiming) Preferred() *CharacterAlignment {
	if t == nil {
		return nil
	}
	if t.NormalizedAlignment.Len() > 0 {
		return t.NormalizedAlignment
	}
	return t.Alignment
}

// SpeakerAt returns the speaker owning the given time, or "" when no voice
// segment covers it.
func (t *TtsTiming) SpeakerAt(at float64) string {
	if t == nil {
		return ""
	}
	for _, seg := range t.VoiceSegments {
		if at >= seg.Start && at <= seg.End {
			return seg.Speaker
		}
	}
	return ""
}
