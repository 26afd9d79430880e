package detect

import (
	"github.com/pwninator/lipsync/feature"
)

// frameClass is the per-frame classifier verdict.
type frameClass struct {
	shape      MouthShape
	confidence float64
}

// run is a maximal contiguous sequence of frames sharing one shape.
// Frame indexes are inclusive.
type run struct {
	shape      MouthShape
	start, end int
	confidence float64
}

func (r run) frames() int { return r.end - r.start + 1 }

// classifyFrames applies the adaptive thresholds to each frame. A frame is
// OPEN when its energy clears the RMS cut and its support signal (centroid
// or voicing, depending on strategy) clears the support cut; everything
// else is CLOSED. Confidence reflects distance from the boundary.
func classifyFrames(f feature.Features, thr thresholds, mode Mode) []frameClass {
	out := make([]frameClass, f.Len())
	if thr.degenerate {
		for i := range out {
			out[i] = frameClass{shape: MouthClosed, confidence: 1.0}
		}
		return out
	}

	support := f.Centroid
	if mode == ModeVoicing {
		support = f.Voicing
	}

	for i := range out {
		rms := f.RMS[i]
		open := rms >= thr.openRMS && support[i] >= thr.supportCut

		var conf float64
		if open {
			conf = 0.5 + 0.5*(rms-thr.openRMS)/thr.spread
		} else {
			conf = 0.5 + 0.5*(thr.openRMS-rms)/thr.spread
		}
		out[i] = frameClass{shape: shapeFor(open), confidence: clamp01(conf)}
	}
	return out
}

func shapeFor(open bool) MouthShape {
	if open {
		return MouthOpen
	}
	return MouthClosed
}

// collectRuns groups contiguous identical-shape frames.
func collectRuns(frames []frameClass) []run {
	var runs []run
	for i, fc := range frames {
		if len(runs) > 0 && runs[len(runs)-1].shape == fc.shape {
			last := &runs[len(runs)-1]
			n := float64(last.frames())
			last.confidence = (last.confidence*n + fc.confidence) / (n + 1)
			last.end = i
			continue
		}
		runs = append(runs, run{shape: fc.shape, start: i, end: i, confidence: fc.confidence})
	}
	return runs
}

// mergeShortRuns absorbs runs shorter than minFrames into an adjacent run,
// preferring whichever neighbor carries higher mean confidence and, on a
// tie, the following run so brief flicker resolves forward rather than
// stuttering. Runs that share a shape after a merge are coalesced. The
// total frame span is preserved throughout, so the resulting events always
// cover the whole clip.
func mergeShortRuns(runs []run, minFrames int) []run {
	if minFrames <= 1 {
		return runs
	}

	for len(runs) > 1 {
		// Shortest offender first so merges cascade deterministically.
		shortest := -1
		for i, r := range runs {
			if r.frames() >= minFrames {
				continue
			}
			if shortest < 0 || r.frames() < runs[shortest].frames() {
				shortest = i
			}
		}
		if shortest < 0 {
			break
		}

		into := shortest + 1
		switch {
		case shortest == 0:
			into = 1
		case shortest == len(runs)-1:
			into = shortest - 1
		case runs[shortest-1].confidence > runs[shortest+1].confidence:
			into = shortest - 1
		}

		runs = absorb(runs, shortest, into)
		runs = coalesce(runs)
	}
	return runs
}

// absorb folds runs[victim] into runs[into] and removes it. The absorbing
// run keeps its shape; confidence becomes the frame-weighted mean.
func absorb(runs []run, victim, into int) []run {
	v, tgt := runs[victim], runs[into]

	total := float64(v.frames() + tgt.frames())
	tgt.confidence = (v.confidence*float64(v.frames()) + tgt.confidence*float64(tgt.frames())) / total
	if v.start < tgt.start {
		tgt.start = v.start
	}
	if v.end > tgt.end {
		tgt.end = v.end
	}

	runs[into] = tgt
	return append(runs[:victim], runs[victim+1:]...)
}

// coalesce merges adjacent same-shape runs created by absorption.
func coalesce(runs []run) []run {
	out := runs[:0]
	for _, r := range runs {
		if len(out) > 0 && out[len(out)-1].shape == r.shape {
			last := &out[len(out)-1]
			total := float64(last.frames() + r.frames())
			last.confidence = (last.confidence*float64(last.frames()) + r.confidence*float64(r.frames())) / total
			last.end = r.end
			continue
		}
		out = append(out, r)
	}
	return out
}

// eventsFromRuns converts runs to mouth events on the hop grid, stretching
// the first event back to zero and the last to the clip duration so the
// event list spans [0, duration] exactly. Per-run feature aggregates are
// attached for downstream consumers.
func eventsFromRuns(runs []run, f feature.Features) []MouthEvent {
	if len(runs) == 0 {
		return nil
	}

	events := make([]MouthEvent, len(runs))
	for i, r := range runs {
		var sumRMS, sumCentroid float64
		for j := r.start; j <= r.end; j++ {
			sumRMS += f.RMS[j]
			sumCentroid += f.Centroid[j]
		}
		n := float64(r.frames())

		events[i] = MouthEvent{
			Start:        float64(r.start) * f.HopSec,
			End:          float64(r.end+1) * f.HopSec,
			Shape:        r.shape,
			Confidence:   r.confidence,
			MeanRMS:      sumRMS / n,
			MeanCentroid: sumCentroid / n,
		}
	}

	events[0].Start = 0
	events[len(events)-1].End = f.Duration
	for i := 1; i < len(events); i++ {
		if events[i].Start < events[i-1].End {
			events[i].Start = events[i-1].End
		}
		if events[i].End < events[i].Start {
			events[i].End = events[i].Start
		}
	}
	return events
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
