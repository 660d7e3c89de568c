package programrule

import (
	"github.com/TimurManjosov/trackerrules/internal/metadata"
	"github.com/TimurManjosov/trackerrules/internal/tracker"
)

// assignEventValue applies an ASSIGN effect to a data element of ev.
// Effects on data elements outside the event's program stage, or on stages
// that are not due yet, are ignored.
func assignEventValue(b *tracker.Bundle, ev *tracker.Event, effect RuleEffect, overwrite bool) []Issue {
	if _, ok := dueEventStage(b, ev, effect.Field); !ok {
		return nil
	}
	de := b.Preheat.DataElement(effect.Field)
	if de == nil {
		return nil
	}
	value := assignableValue(effect.Data, b.Preheat.OptionSet(de.OptionSet))
	return assign(effect, eventSlot(ev, effect), value, de.ValueType, overwrite)
}

// assignEnrollmentValue applies an ASSIGN effect to an attribute of en or
// of its tracked entity.
func assignEnrollmentValue(b *tracker.Bundle, en *tracker.Enrollment, effect RuleEffect, overwrite bool) []Issue {
	attr := b.Preheat.Attribute(effect.Field)
	if attr == nil {
		return nil
	}
	value := assignableValue(effect.Data, b.Preheat.OptionSet(attr.OptionSet))
	return assign(effect, enrollmentSlot(b, en, effect), value, attr.ValueType, overwrite)
}

// assign writes value into slot. An empty slot is filled, an equal one left
// alone and a different one is a conflict unless overwrite is set. Every
// non-conflicting outcome reports E1308.
func assign(effect RuleEffect, slot fieldSlot, value string, valueType metadata.ValueType, overwrite bool) []Issue {
	switch {
	case slot.value == "":
		if value != "" {
			slot.set(value)
		}
	case IsEqual(slot.value, value, valueType):
	case !overwrite:
		return []Issue{newError(effect.RuleID, E1307, effect.Field)}
	default:
		slot.set(value)
	}
	return []Issue{newWarning(effect.RuleID, E1308, effect.Field, value)}
}

// assignableValue drops a rule value that is not a code of the field's option set.
func assignableValue(data string, optionSet *metadata.OptionSet) string {
	if optionSet == nil || data == "" || optionSet.HasOption(data) {
		return data
	}
	return ""
}
