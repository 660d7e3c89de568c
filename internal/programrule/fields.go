package programrule

import (
	"github.com/TimurManjosov/trackerrules/internal/metadata"
	"github.com/TimurManjosov/trackerrules/internal/tracker"
)

// fieldSlot is the current value of an effect's target field together with
// the setter that writes it back where it was found.
type fieldSlot struct {
	value string
	set   func(value string)
}

// eventSlot resolves the data element targeted by effect on ev. A payload
// value wins over the stored one, even when the payload value is empty.
func eventSlot(ev *tracker.Event, effect RuleEffect) fieldSlot {
	set := func(value string) { ev.SetDataValue(effect.Field, value) }
	if dv, ok := ev.DataValue(effect.Field); ok {
		return fieldSlot{value: dv.Value, set: set}
	}
	return fieldSlot{value: effect.ExistingValues[effect.Field], set: set}
}

// enrollmentSlot resolves the attribute targeted by effect on en, falling
// back to the owning tracked entity and then to the stored value.
func enrollmentSlot(b *tracker.Bundle, en *tracker.Enrollment, effect RuleEffect) fieldSlot {
	if a, ok := en.Attribute(effect.Field); ok {
		return fieldSlot{value: a.Value, set: func(value string) { en.SetAttribute(effect.Field, value) }}
	}
	if te := b.TrackedEntity(en.TrackedEntity); te != nil {
		if a, ok := te.Attribute(effect.Field); ok {
			return fieldSlot{value: a.Value, set: func(value string) { te.SetAttribute(effect.Field, value) }}
		}
	}
	return fieldSlot{
		value: effect.ExistingValues[effect.Field],
		set:   func(value string) { en.SetAttribute(effect.Field, value) },
	}
}

// dueEventStage returns the stage of ev if it owns the data element and its
// validation strategy is due for the event's status.
func dueEventStage(b *tracker.Bundle, ev *tracker.Event, dataElement string) (*metadata.ProgramStage, bool) {
	stage := b.Preheat.ProgramStage(ev.ProgramStage)
	if stage == nil || !stage.HasDataElement(dataElement) {
		return nil, false
	}
	if !AppliesNow(stage.ValidationStrategy, ev.Status) {
		return nil, false
	}
	return stage, true
}
