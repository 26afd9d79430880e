package detect

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/pwninator/lipsync/audio"
	"github.com/pwninator/lipsync/feature"
	"github.com/pwninator/lipsync/phonetic"
	"github.com/pwninator/lipsync/timeline"
)

// Detector runs mouth-event detection. It holds only read-only
// configuration and resources, so a single Detector is safe to use
// concurrently across independent clips.
type Detector struct {
	cfg Config
	lex *phonetic.Lexicon
	log zerolog.Logger
}

// Option configures a Detector.
type Option func(*Detector)

// WithLexicon substitutes the pronunciation lexicon used by the
// text-alignment refiner.
func WithLexicon(lex *phonetic.Lexicon) Option {
	return func(d *Detector) { d.lex = lex }
}

// WithLogger attaches a structured logger; detection is silent by default.
func WithLogger(log zerolog.Logger) Option {
	return func(d *Detector) { d.log = log }
}

// NewDetector builds a detector. Zero config fields fall back to defaults.
func NewDetector(cfg Config, opts ...Option) *Detector {
	d := &Detector{
		cfg: cfg.sanitized(),
		lex: phonetic.Default(),
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// MouthEvents derives the timed mouth-shape sequence for one clip. It is a
// pure function of its inputs: no network, no storage, no shared state.
//
// Timing mode consumes only the provider timing; a nil timing yields an
// empty list (a deliberate no-data signal, not an error). The acoustic
// modes decode the audio, classify frames against clip-relative
// thresholds, and, when a transcript is supplied, refine the segments
// against the text. A mode outside the known set is a configuration error.
func (d *Detector) MouthEvents(audioBytes []byte, mode Mode, transcript string, timing *TtsTiming) ([]MouthEvent, error) {
	switch mode {
	case ModeTiming:
		if timing == nil {
			d.log.Debug().Msg("timing mode with no timing data, returning no events")
			return nil, nil
		}
		return eventsFromTiming(timing)

	case ModeSpectral, ModeVoicing:
		return d.detectAcoustic(audioBytes, mode, transcript)

	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownMode, mode)
	}
}

func (d *Detector) detectAcoustic(audioBytes []byte, mode Mode, transcript string) ([]MouthEvent, error) {
	clip, err := audio.DecodeWAV(audioBytes)
	if err != nil {
		return nil, fmt.Errorf("detect: decode audio: %w", err)
	}
	if clip.Duration() <= 0 {
		return nil, nil
	}

	feats := feature.Extract(clip, feature.Config{
		FrameLengthMs: d.cfg.FrameLengthMs,
		HopLengthMs:   d.cfg.HopLengthMs,
		MinPitchHz:    60,
		MaxPitchHz:    400,
	})
	if feats.Len() == 0 {
		// Shorter than one frame: whole-span closed.
		return []MouthEvent{{Start: 0, End: clip.Duration(), Shape: MouthClosed, Confidence: 1.0}}, nil
	}

	thr := computeThresholds(feats, d.cfg, mode)
	frames := classifyFrames(feats, thr, mode)
	runs := collectRuns(frames)

	minFrames := d.cfg.MinRunMs / d.cfg.HopLengthMs
	runs = mergeShortRuns(runs, minFrames)

	events := eventsFromRuns(runs, feats)
	d.log.Debug().
		Str("mode", mode.String()).
		Int("frames", feats.Len()).
		Int("events", len(events)).
		Bool("degenerate", thr.degenerate).
		Msg("acoustic detection complete")

	if len(events) == 0 {
		return nil, nil
	}
	if transcript != "" {
		events = refineEvents(events, transcript, d.lex, d.cfg)
	}
	return events, nil
}

// MouthEvents is the package-level convenience entry point: it parses the
// external mode selector string and runs a default-configured detector.
func MouthEvents(audioBytes []byte, modeName, transcript string, timing *TtsTiming) ([]MouthEvent, error) {
	mode, err := ParseMode(modeName)
	if err != nil {
		return nil, err
	}
	return NewDetector(DefaultConfig()).MouthEvents(audioBytes, mode, transcript, timing)
}

// ToTimeline builds the queryable piecewise-constant timeline the renderer
// consumes, one segment per event.
func ToTimeline(events []MouthEvent) (*timeline.Timeline[MouthShape], error) {
	segments := make([]timeline.Segment[MouthShape], 0, len(events))
	for _, e := range events {
		seg, err := timeline.NewSegment(e.Shape, e.Start, e.End)
		if err != nil {
			return nil, err
		}
		segments = append(segments, seg)
	}
	return timeline.New(segments...)
}
