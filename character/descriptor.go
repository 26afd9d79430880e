// Package character describes what a drawable character can show. A
// descriptor is plain data (asset URIs, dimensions, supported states)
// passed as configuration; the renderer is parametric over it rather than
// subclassed per species.
package character

import (
	"errors"
	"fmt"

	"github.com/pwninator/lipsync/detect"
)

// ErrNoClosedState is returned for a descriptor that cannot show a closed
// mouth, the fallback every mapping needs.
var ErrNoClosedState = errors.New("character: descriptor must support the closed mouth state")

// Descriptor enumerates a character's drawable states and assets.
type Descriptor struct {
	Name        string              `json:"name" mapstructure:"name"`
	Width       int                 `json:"width" mapstructure:"width"`
	Height      int                 `json:"height" mapstructure:"height"`
	Assets      map[string]string   `json:"assets,omitempty" mapstructure:"assets"` // state name -> asset URI
	MouthStates []detect.MouthShape `json:"mouthStates" mapstructure:"mouth_states"`
	EyeStates   []string            `json:"eyeStates,omitempty" mapstructure:"eye_states"`
}

// NewDescriptor validates that the character can at least close its mouth.
func NewDescriptor(name string, width, height int, mouthStates []detect.MouthShape) (*Descriptor, error) {
	d := &Descriptor{
		Name:        name,
		Width:       width,
		Height:      height,
		MouthStates: mouthStates,
	}
	if !d.SupportsMouth(detect.MouthClosed) {
		return nil, fmt.Errorf("%w: %q", ErrNoClosedState, name)
	}
	return d, nil
}

// SupportsMouth reports whether the character can draw the given state.
func (d *Descriptor) SupportsMouth(shape detect.MouthShape) bool {
	for _, s := range d.MouthStates {
		if s == shape {
			return true
		}
	}
	return false
}

// MapEvents clamps detection output onto the character's supported mouth
// states. Unsupported shapes fall back to closed, never dropped, so the
// event list keeps its count and coverage.
func (d *Descriptor) MapEvents(events []detect.MouthEvent) []detect.MouthEvent {
	out := make([]detect.MouthEvent, len(events))
	copy(out, events)
	for i := range out {
		if !d.SupportsMouth(out[i].Shape) {
			out[i].Shape = detect.MouthClosed
		}
	}
	return out
}

// AssetFor returns the asset URI registered for a state name, if any.
func (d *Descriptor) AssetFor(state string) (string, bool) {
	uri, ok := d.Assets[state]
	return uri, ok
}
