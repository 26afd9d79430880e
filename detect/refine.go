package detect

import (
	"math"
	"strings"

	"github.com/pwninator/lipsync/phonetic"
)

// phoneSlot is one transcript phoneme stretched over a time window of the
// clip. Vowels get proportionally longer slots than consonants, matching
// how speech distributes time.
type phoneSlot struct {
	start, end float64
	openness   float64
}

const vowelDurationWeight = 1.6

// refineEvents re-labels and re-snaps acoustic segments against a
// phoneme-weighted openness expectation derived from the transcript. It is
// a best-effort monotonic alignment: the phoneme sequence and the segment
// sequence are walked in time order, no backtracking. The output has the
// same event count and total coverage as the input; refinement never
// deletes segments or extends the covered span.
func refineEvents(events []MouthEvent, transcript string, lex *phonetic.Lexicon, cfg Config) []MouthEvent {
	if len(events) == 0 || strings.TrimSpace(transcript) == "" {
		return events
	}
	slots := transcriptSlots(transcript, lex, events[0].Start, events[len(events)-1].End)
	if len(slots) == 0 {
		return events
	}

	out := make([]MouthEvent, len(events))
	copy(out, events)

	relabelAgainstExpectation(out, slots, cfg)
	snapBoundaries(out, slots, cfg)
	return out
}

// transcriptSlots maps the transcript's phoneme sequence onto [start, end]
// with vowel-weighted durations.
func transcriptSlots(transcript string, lex *phonetic.Lexicon, start, end float64) []phoneSlot {
	var opennesses []float64
	var weights []float64
	for _, word := range strings.Fields(transcript) {
		word = strings.Trim(strings.ToLower(word), ".,!?;:'\"")
		if word == "" {
			continue
		}
		prons := lex.PronunciationsOrInfer(word)
		if len(prons) == 0 {
			continue
		}
		for _, ph := range prons[0] {
			opennesses = append(opennesses, phonetic.Openness(ph))
			if phonetic.IsVowel(ph) {
				weights = append(weights, vowelDurationWeight)
			} else {
				weights = append(weights, 1.0)
			}
		}
	}
	if len(opennesses) == 0 || end <= start {
		return nil
	}

	var totalWeight float64
	for _, w := range weights {
		totalWeight += w
	}

	slots := make([]phoneSlot, len(opennesses))
	span := end - start
	cursor := start
	for i := range opennesses {
		width := span * weights[i] / totalWeight
		slots[i] = phoneSlot{start: cursor, end: cursor + width, openness: opennesses[i]}
		cursor += width
	}
	slots[len(slots)-1].end = end
	return slots
}

// relabelAgainstExpectation flips the shape of low-confidence segments
// whose acoustic label strongly disagrees with the text expectation.
func relabelAgainstExpectation(events []MouthEvent, slots []phoneSlot, cfg Config) {
	for i := range events {
		if events[i].Confidence >= cfg.RelabelConfidence {
			continue
		}
		expected := expectedOpenness(slots, events[i].Start, events[i].End)

		switch {
		case expected >= 0.6 && events[i].Shape == MouthClosed:
			events[i].Shape = MouthOpen
			events[i].Confidence = clamp01(expected)
		case expected <= 0.4 && events[i].Shape == MouthOpen:
			events[i].Shape = MouthClosed
			events[i].Confidence = clamp01(1 - expected)
		}
	}
}

// expectedOpenness is the overlap-weighted mean openness of the phoneme
// slots covering a window. Falls back to the nearest slot when the window
// overlaps none.
func expectedOpenness(slots []phoneSlot, start, end float64) float64 {
	var weighted, total float64
	for _, s := range slots {
		overlap := math.Min(end, s.end) - math.Max(start, s.start)
		if overlap <= 0 {
			continue
		}
		weighted += s.openness * overlap
		total += overlap
	}
	if total > 0 {
		return weighted / total
	}

	mid := (start + end) / 2
	best, bestDist := 0.5, math.Inf(1)
	for _, s := range slots {
		dist := math.Min(math.Abs(s.start-mid), math.Abs(s.end-mid))
		if dist < bestDist {
			bestDist = dist
			best = s.openness
		}
	}
	return best
}

// snapBoundaries nudges each open/closed transition toward the nearest
// text-expected transition, capped at MaxSnapMs and clamped so both
// neighbors keep non-negative durations. Shared boundaries move together,
// so total coverage is unchanged.
func snapBoundaries(events []MouthEvent, slots []phoneSlot, cfg Config) {
	maxShift := float64(cfg.MaxSnapMs) / 1000.0

	for i := 1; i < len(events); i++ {
		if events[i-1].Shape == events[i].Shape {
			continue
		}
		boundary := events[i].Start
		opening := events[i].Shape == MouthOpen

		target, ok := nearestTransition(slots, boundary, opening)
		if !ok || math.Abs(target-boundary) > maxShift {
			continue
		}

		// Keep end >= start on both sides of the shared boundary.
		lo := events[i-1].Start
		hi := events[i].End
		if target < lo {
			target = lo
		}
		if target > hi {
			target = hi
		}
		events[i-1].End = target
		events[i].Start = target
	}
}

// nearestTransition finds the slot boundary closest to t where the
// expected openness crosses in the given direction.
func nearestTransition(slots []phoneSlot, t float64, opening bool) (float64, bool) {
	best, bestDist := 0.0, math.Inf(1)
	found := false
	for i := 1; i < len(slots); i++ {
		prevOpen := slots[i-1].openness >= 0.5
		curOpen := slots[i].openness >= 0.5
		if prevOpen == curOpen || curOpen != opening {
			continue
		}
		edge := slots[i].start
		if dist := math.Abs(edge - t); dist < bestDist {
			best, bestDist = edge, dist
			found = true
		}
	}
	return best, found
}
