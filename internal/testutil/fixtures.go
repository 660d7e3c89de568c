// Package testutil provides shared metadata and bundle fixtures for tests.
package testutil

import (
	"context"
	"testing"

	"github.com/TimurManjosov/trackerrules/internal/metadata"
	"github.com/TimurManjosov/trackerrules/internal/tracker"
)

// Fixture identifiers.
const (
	StageA        = "stageA"        // ON_UPDATE_AND_INSERT, owns DENumber, DEText, DEColor, DEDate
	StageB        = "stageB"        // ON_UPDATE_AND_INSERT, owns DEOther
	StageComplete = "stageComplete" // ON_COMPLETE, owns DENumber

	DENumber = "deNumber"
	DEText   = "deText"
	DEColor  = "deColor"
	DEDate   = "deDate"
	DEOther  = "deOther"

	AttrText  = "attrText"
	AttrAge   = "attrAge"
	AttrColor = "attrColor"

	OptionSetColor = "osColor"
)

// Metadata returns the fixture metadata.
func Metadata() ([]metadata.ProgramStage, []metadata.DataElement, []metadata.TrackedEntityAttribute, []metadata.OptionSet) {
	stages := []metadata.ProgramStage{
		{UID: StageA, ValidationStrategy: metadata.ValidationOnUpdateAndInsert, DataElements: []string{DENumber, DEText, DEColor, DEDate}},
		{UID: StageB, ValidationStrategy: metadata.ValidationOnUpdateAndInsert, DataElements: []string{DEOther}},
		{UID: StageComplete, ValidationStrategy: metadata.ValidationOnComplete, DataElements: []string{DENumber}},
	}
	elements := []metadata.DataElement{
		{UID: DENumber, ValueType: metadata.ValueTypeNumber},
		{UID: DEText, ValueType: metadata.ValueTypeText},
		{UID: DEColor, ValueType: metadata.ValueTypeText, OptionSet: OptionSetColor},
		{UID: DEDate, ValueType: metadata.ValueTypeDate},
		{UID: DEOther, ValueType: metadata.ValueTypeText},
	}
	attrs := []metadata.TrackedEntityAttribute{
		{UID: AttrText, ValueType: metadata.ValueTypeText},
		{UID: AttrAge, ValueType: metadata.ValueTypeInteger},
		{UID: AttrColor, ValueType: metadata.ValueTypeText, OptionSet: OptionSetColor},
	}
	optionSets := []metadata.OptionSet{
		{UID: OptionSetColor, ValueType: metadata.ValueTypeText, Options: []string{"RED", "GREEN"}},
	}
	return stages, elements, attrs, optionSets
}

// Preheat returns a Preheat built from the fixture metadata.
func Preheat() *metadata.Preheat {
	return metadata.NewPreheat(Metadata())
}

// SeedStore writes the fixture metadata into st.
func SeedStore(t *testing.T, st metadata.Store) {
	t.Helper()
	stages, elements, attrs, optionSets := Metadata()
	if err := metadata.Seed(context.Background(), st, stages, elements, attrs, optionSets); err != nil {
		t.Fatalf("seed metadata: %v", err)
	}
}

// Event builds an event with the given data values as element/value pairs.
func Event(uid, stage string, status tracker.Status, pairs ...string) *tracker.Event {
	ev := &tracker.Event{UID: uid, Status: status, ProgramStage: stage}
	for i := 0; i+1 < len(pairs); i += 2 {
		ev.DataValues = append(ev.DataValues, tracker.DataValue{DataElement: pairs[i], Value: pairs[i+1]})
	}
	return ev
}

// Enrollment builds an enrollment with the given attributes as uid/value pairs.
func Enrollment(uid, trackedEntity string, status tracker.Status, pairs ...string) *tracker.Enrollment {
	en := &tracker.Enrollment{UID: uid, Status: status, TrackedEntity: trackedEntity}
	for i := 0; i+1 < len(pairs); i += 2 {
		en.Attributes = append(en.Attributes, tracker.Attribute{Attribute: pairs[i], Value: pairs[i+1]})
	}
	return en
}

// TrackedEntity builds a tracked entity with the given attributes as uid/value pairs.
func TrackedEntity(uid string, pairs ...string) *tracker.TrackedEntity {
	te := &tracker.TrackedEntity{UID: uid}
	for i := 0; i+1 < len(pairs); i += 2 {
		te.Attributes = append(te.Attributes, tracker.Attribute{Attribute: pairs[i], Value: pairs[i+1]})
	}
	return te
}
