package programrule

import "github.com/TimurManjosov/trackerrules/internal/tracker"

// mandatoryEventValue reports E1301 when the data element is missing on ev
// and its stage is due. It never mutates ev.
func mandatoryEventValue(b *tracker.Bundle, ev *tracker.Event, effect RuleEffect) []Issue {
	if _, ok := dueEventStage(b, ev, effect.Field); !ok {
		return nil
	}
	if eventSlot(ev, effect).value != "" {
		return nil
	}
	return []Issue{newError(effect.RuleID, E1301, effect.Field)}
}

// mandatoryEnrollmentValue reports E1301 when the attribute is missing on
// both en and its tracked entity.
func mandatoryEnrollmentValue(b *tracker.Bundle, en *tracker.Enrollment, effect RuleEffect) []Issue {
	if enrollmentSlot(b, en, effect).value != "" {
		return nil
	}
	return []Issue{newError(effect.RuleID, E1301, effect.Field)}
}
