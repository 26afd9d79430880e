package detect

import (
	"errors"
	"fmt"
)

// Mode selects the detection strategy. It is a closed set: the dispatcher
// switches exhaustively over it and a new strategy is a new variant, not a
// new string branch.
type Mode int

const (
	// ModeTiming converts provider character timing directly into mouth
	// events without touching the audio. Opt-in to provider data only: no
	// acoustic fallback.
	ModeTiming Mode = iota
	// ModeSpectral classifies frames by energy and spectral centroid.
	ModeSpectral
	// ModeVoicing classifies frames by energy and pitch-periodicity
	// confidence.
	ModeVoicing
)

// ErrUnknownMode is returned for a mode string outside the accepted set.
var ErrUnknownMode = errors.New("detect: unknown detection mode")

// ParseMode maps the external mode selector strings onto the closed Mode
// set. "timing" and "tts_timing" are synonyms; "librosa" and "parselmouth"
// name the two acoustic strategies after the analyzers they emulate.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "timing", "tts_timing":
		return ModeTiming, nil
	case "librosa":
		return ModeSpectral, nil
	case "parselmouth":
		return ModeVoicing, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

func (m Mode) String() string {
	switch m {
	case ModeTiming:
		return "tts_timing"
	case ModeSpectral:
		return "librosa"
	case ModeVoicing:
		return "parselmouth"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}
