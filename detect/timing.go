package detect

import "strings"

// eventsFromTiming converts provider character timing directly into mouth
// events, no audio involved. Vowel characters open the mouth, everything
// else (consonants, whitespace, punctuation) closes it; consecutive
// characters with the same shape collapse into one event.
func eventsFromTiming(timing *TtsTiming) ([]MouthEvent, error) {
	alignment := timing.Preferred()
	if alignment.Len() == 0 {
		return nil, nil
	}
	if err := alignment.Validate(); err != nil {
		return nil, err
	}

	var events []MouthEvent
	for i, ch := range alignment.Characters {
		shape := shapeForCharacter(ch)
		start := alignment.StartTimes[i]
		end := alignment.EndTimes[i]

		if len(events) > 0 {
			last := &events[len(events)-1]
			// Provider timings occasionally overlap by a rounding hair;
			// keep the event list non-overlapping.
			if start < last.End {
				start = last.End
			}
			if end < start {
				end = start
			}
			if last.Shape == shape && start <= last.End {
				last.End = end
				continue
			}
		}
		events = append(events, MouthEvent{
			Start:      start,
			End:        end,
			Shape:      shape,
			Confidence: 1.0,
		})
	}
	return events, nil
}

func shapeForCharacter(ch string) MouthShape {
	if ch == "" {
		return MouthClosed
	}
	if strings.ContainsAny(strings.ToLower(ch), "aeiou") {
		return MouthOpen
	}
	return MouthClosed
}
