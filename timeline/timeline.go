// Package timeline provides a generic piecewise-constant interval container.
// A Timeline is built once from non-overlapping segments and queried many
// times by the renderer, one lookup per rendered frame.
package timeline

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrInvalidBounds is returned when a segment ends before it starts.
	ErrInvalidBounds = errors.New("timeline: segment end before start")
	// ErrOverlap is returned when two segments cover the same instant.
	ErrOverlap = errors.New("timeline: overlapping segments")
)

// Segment is a closed time interval tagged with a constant value.
// Times are in seconds.
type Segment[T any] struct {
	Start float64 `json:"startTime"`
	End   float64 `json:"endTime"`
	Value T       `json:"value"`
}

// NewSegment validates bounds and returns a segment. End must not precede
// Start; bounds are never swapped or clamped silently.
func NewSegment[T any](value T, start, end float64) (Segment[T], error) {
	if end < start {
		return Segment[T]{}, fmt.Errorf("%w: [%f, %f]", ErrInvalidBounds, start, end)
	}
	return Segment[T]{Start: start, End: end, Value: value}, nil
}

// Timeline is an ordered, immutable-after-construction set of segments.
// Updates create a new Timeline; there is no mutation API.
type Timeline[T any] struct {
	segments []Segment[T]
}

// New validates and sorts the given segments into a timeline.
// Segments may touch (one ending where the next starts) but must not
// overlap: the point query relies on at most one segment covering any
// instant.
func New[T any](segments ...Segment[T]) (*Timeline[T], error) {
	sorted := make([]Segment[T], len(segments))
	copy(sorted, segments)

	for _, s := range sorted {
		if s.End < s.Start {
			return nil, fmt.Errorf("%w: [%f, %f]", ErrInvalidBounds, s.Start, s.End)
		}
	}

	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	for i := 1; i < len(sorted); i++ {
		if sorted[i].Start < sorted[i-1].End {
			return nil, fmt.Errorf("%w: [%f, %f] and [%f, %f]",
				ErrOverlap,
				sorted[i-1].Start, sorted[i-1].End,
				sorted[i].Start, sorted[i].End)
		}
	}

	return &Timeline[T]{segments: sorted}, nil
}

// ValueAt returns the value of the segment covering the given time, or def
// if no segment covers it. The end bound is inclusive so a query landing
// exactly on a frame boundary still resolves to the segment that produced
// that frame.
func (t *Timeline[T]) ValueAt(at float64, def T) T {
	if t == nil || len(t.segments) == 0 {
		return def
	}

	// Rightmost segment with Start <= at. Correct only because overlapping
	// segments are rejected at construction.
	idx := sort.Search(len(t.segments), func(i int) bool {
		return t.segments[i].Start > at
	}) - 1

	if idx < 0 {
		return def
	}
	if at <= t.segments[idx].End {
		return t.segments[idx].Value
	}
	return def
}

// Len returns the number of segments.
func (t *Timeline[T]) Len() int {
	if t == nil {
		return 0
	}
	return len(t.segments)
}

// Segments returns a copy of the sorted segments.
func (t *Timeline[T]) Segments() []Segment[T] {
	out := make([]Segment[T], len(t.segments))
	copy(out, t.segments)
	return out
}

// Span returns the start of the first segment and the end of the last.
// An empty timeline spans (0, 0).
func (t *Timeline[T]) Span() (start, end float64) {
	if t == nil || len(t.segments) == 0 {
		return 0, 0
	}
	return t.segments[0].Start, t.segments[len(t.segments)-1].End
}
