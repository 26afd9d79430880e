package detect

import (
	"math"
	"sort"

	"github.com/pwninator/lipsync/feature"
)

// thresholds holds clip-relative decision boundaries derived from one
// clip's feature distribution. Absolute thresholds do not generalize
// across recording loudness, so every cut is computed per clip.
type thresholds struct {
	openRMS    float64 // RMS at or above which a frame can be OPEN
	supportCut float64 // minimum centroid (spectral) or voicing score
	spread     float64 // loud-quiet RMS spread, scales confidence
	degenerate bool    // constant/silent clip: classify everything CLOSED
}

// computeThresholds derives the open/closed boundaries for a clip. A
// degenerate distribution (all-zero or constant features) yields a
// threshold set that classifies every frame as closed; it never fails.
func computeThresholds(f feature.Features, cfg Config, mode Mode) thresholds {
	if f.Len() == 0 {
		return thresholds{openRMS: math.Inf(1), degenerate: true}
	}

	quiet := percentile(f.RMS, cfg.QuietPercentile)
	loud := percentile(f.RMS, cfg.LoudPercentile)
	spread := loud - quiet

	if loud < cfg.SilenceFloor || spread < cfg.SilenceFloor/10 {
		return thresholds{openRMS: math.Inf(1), degenerate: true}
	}

	thr := thresholds{
		openRMS: quiet + spread*cfg.OpenRatio,
		spread:  spread,
	}

	support := f.Centroid
	if mode == ModeVoicing {
		support = f.Voicing
	}
	if high := percentile(support, 85); high > 0 {
		thr.supportCut = high * cfg.SupportRatio
	}
	return thr
}

// percentile returns the p-th percentile (0-100) of values by linear
// interpolation over a sorted copy.
func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	pos := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
