package programrule

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/TimurManjosov/trackerrules/internal/settings"
	"github.com/TimurManjosov/trackerrules/internal/telemetry"
	"github.com/TimurManjosov/trackerrules/internal/testutil"
	"github.com/TimurManjosov/trackerrules/internal/tracker"
)

func newTestEngine(t *testing.T, overwrite bool, opts ...Option) (*Engine, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	m, err := telemetry.NewMetrics(reg)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	opts = append([]Option{WithMetrics(m)}, opts...)
	return New(settings.Static{AssignOverwrite: overwrite}, opts...), reg
}

func TestValidateEvents_EffectsAppliedInOrder(t *testing.T) {
	ev := testutil.Event("ev1", testutil.StageA, tracker.EventActive)
	b := tracker.NewBundle(testutil.Preheat(), nil, nil, []*tracker.Event{ev})
	e, _ := newTestEngine(t, false)

	effects := EffectsByEntity{"ev1": {
		{RuleID: "r1", Kind: ActionAssign, Field: testutil.DENumber, Data: "1"},
		{RuleID: "r2", Kind: ActionAssign, Field: testutil.DENumber, Data: "2"},
		{RuleID: "r3", Kind: ActionMandatoryValue, Field: testutil.DEText},
	}}

	issues, err := e.ValidateEvents(context.Background(), b, effects)
	if err != nil {
		t.Fatalf("ValidateEvents: %v", err)
	}

	want := Issues{"ev1": {
		newWarning("r1", E1308, testutil.DENumber, "1"),
		newError("r2", E1307, testutil.DENumber),
		newError("r3", E1301, testutil.DEText),
	}}
	if diff := cmp.Diff(want, issues); diff != "" {
		t.Errorf("issues mismatch (-want +got):\n%s", diff)
	}
	if v := eventValue(t, ev, testutil.DENumber); v != "1" {
		t.Errorf("value = %q, want 1", v)
	}
}

func TestValidateEvents_OverwriteSetting(t *testing.T) {
	ev := testutil.Event("ev1", testutil.StageA, tracker.EventActive, testutil.DENumber, "1")
	b := tracker.NewBundle(testutil.Preheat(), nil, nil, []*tracker.Event{ev})
	e, _ := newTestEngine(t, true)

	issues, err := e.ValidateEvents(context.Background(), b, EffectsByEntity{
		"ev1": {{RuleID: "r1", Kind: ActionAssign, Field: testutil.DENumber, Data: "23.0"}},
	})
	if err != nil {
		t.Fatalf("ValidateEvents: %v", err)
	}
	if issues.HasErrors("ev1") {
		t.Errorf("unexpected errors: %v", issues["ev1"])
	}
	if v := eventValue(t, ev, testutil.DENumber); v != "23.0" {
		t.Errorf("value = %q, want 23.0", v)
	}
}

func TestValidateEvents_LiveSettingIsRead(t *testing.T) {
	live := settings.NewLive(false)
	e := New(live)
	effects := EffectsByEntity{"ev1": {{RuleID: "r1", Kind: ActionAssign, Field: testutil.DENumber, Data: "2"}}}

	ev := testutil.Event("ev1", testutil.StageA, tracker.EventActive, testutil.DENumber, "1")
	b := tracker.NewBundle(testutil.Preheat(), nil, nil, []*tracker.Event{ev})
	issues, _ := e.ValidateEvents(context.Background(), b, effects)
	if !issues.HasErrors("ev1") {
		t.Fatal("expected conflict with overwrite disabled")
	}

	live.SetRuleEngineAssignOverwrite(true)
	issues, _ = e.ValidateEvents(context.Background(), b, effects)
	if issues.HasErrors("ev1") {
		t.Fatalf("expected no conflict with overwrite enabled, got %v", issues["ev1"])
	}
}

func TestValidateEvents_Skips(t *testing.T) {
	ev := testutil.Event("ev1", testutil.StageA, tracker.EventActive)
	b := tracker.NewBundle(testutil.Preheat(), nil, nil, []*tracker.Event{ev})
	e, reg := newTestEngine(t, false)

	effects := EffectsByEntity{
		"ev1": {
			{RuleID: "r1", Kind: "HIDE_FIELD", Field: testutil.DENumber},
			{RuleID: "r2", Kind: ActionShowError, Field: testutil.AttrText, FieldType: FieldAttribute, Content: "x"},
			{RuleID: "r3", Kind: ActionShowWarning, Content: "careful"},
		},
		"missing": {{RuleID: "r4", Kind: ActionShowError, Content: "x"}},
	}

	issues, err := e.ValidateEvents(context.Background(), b, effects)
	if err != nil {
		t.Fatalf("ValidateEvents: %v", err)
	}
	if _, ok := issues["missing"]; ok {
		t.Error("unknown entity must not get issues")
	}
	if got := len(issues["ev1"]); got != 1 {
		t.Fatalf("expected 1 issue on ev1, got %v", issues["ev1"])
	}
	if issues["ev1"][0].Type != IssueWarning {
		t.Errorf("expected warning, got %v", issues["ev1"][0])
	}

	if n, err := promtestutil.GatherAndCount(reg, "programrule_effects_skipped_total"); err != nil || n != 3 {
		t.Errorf("skipped series = %d (err %v), want 3", n, err)
	}
}

func TestValidateEvents_WorkersProduceSameResult(t *testing.T) {
	build := func() (*tracker.Bundle, EffectsByEntity) {
		var events []*tracker.Event
		effects := EffectsByEntity{}
		for i := range 50 {
			uid := fmt.Sprintf("ev%02d", i)
			status := tracker.EventActive
			if i%3 == 0 {
				status = tracker.EventCompleted
			}
			events = append(events, testutil.Event(uid, testutil.StageA, status, testutil.DENumber, fmt.Sprint(i%2)))
			effects[uid] = []RuleEffect{
				{RuleID: "assign", Kind: ActionAssign, Field: testutil.DENumber, Data: "1"},
				{RuleID: "must", Kind: ActionMandatoryValue, Field: testutil.DEText},
				{RuleID: "done", Kind: ActionErrorOnComplete, Content: "closed"},
			}
		}
		return tracker.NewBundle(testutil.Preheat(), nil, nil, events), effects
	}

	b1, fx1 := build()
	sequential, err := New(settings.Static{}).ValidateEvents(context.Background(), b1, fx1)
	if err != nil {
		t.Fatalf("sequential: %v", err)
	}
	b8, fx8 := build()
	parallel, err := New(settings.Static{}, WithWorkers(8)).ValidateEvents(context.Background(), b8, fx8)
	if err != nil {
		t.Fatalf("parallel: %v", err)
	}

	if diff := cmp.Diff(sequential, parallel); diff != "" {
		t.Errorf("parallel result differs (-sequential +parallel):\n%s", diff)
	}
	if diff := cmp.Diff(b1.Events, b8.Events); diff != "" {
		t.Errorf("parallel mutations differ (-sequential +parallel):\n%s", diff)
	}
}

func TestValidateEnrollments(t *testing.T) {
	te := testutil.TrackedEntity("te1", testutil.AttrAge, "40")
	en1 := testutil.Enrollment("en1", "te1", tracker.EnrollmentActive)
	en2 := testutil.Enrollment("en2", "te1", tracker.EnrollmentCompleted)
	b := tracker.NewBundle(testutil.Preheat(), []*tracker.TrackedEntity{te}, []*tracker.Enrollment{en1, en2}, nil)
	e, _ := newTestEngine(t, true, WithWorkers(4))

	effects := EffectsByEntity{
		"en1": {{RuleID: "r1", Kind: ActionAssign, Field: testutil.AttrAge, Data: "41"}},
		"en2": {
			{RuleID: "r2", Kind: ActionAssign, Field: testutil.AttrAge, Data: "41"},
			{RuleID: "r3", Kind: ActionMandatoryValue, Field: testutil.AttrText},
			{RuleID: "r4", Kind: ActionWarningOnComplete, Content: "done"},
			{RuleID: "r5", Kind: ActionShowError, Field: testutil.DENumber, FieldType: FieldDataElement},
		},
	}

	issues, err := e.ValidateEnrollments(context.Background(), b, effects)
	if err != nil {
		t.Fatalf("ValidateEnrollments: %v", err)
	}

	want := Issues{
		"en1": {newWarning("r1", E1308, testutil.AttrAge, "41")},
		"en2": {
			newWarning("r2", E1308, testutil.AttrAge, "41"),
			newError("r3", E1301, testutil.AttrText),
			newWarning("r4", E1300, "done"),
		},
	}
	if diff := cmp.Diff(want, issues); diff != "" {
		t.Errorf("issues mismatch (-want +got):\n%s", diff)
	}
	if te.Attributes[0].Value != "41" {
		t.Errorf("tracked entity age = %q, want 41", te.Attributes[0].Value)
	}
}

func TestValidateEvents_LiteralBundle(t *testing.T) {
	ev := testutil.Event("ev1", testutil.StageA, tracker.EventActive)
	dup := testutil.Event("ev1", testutil.StageA, tracker.EventActive)
	b := &tracker.Bundle{Preheat: testutil.Preheat(), Events: []*tracker.Event{ev, nil, dup}}
	e, reg := newTestEngine(t, false, WithWorkers(4))

	issues, err := e.ValidateEvents(context.Background(), b, EffectsByEntity{
		"ev1": {
			{RuleID: "r1", Kind: ActionMandatoryValue, Field: testutil.DEText},
			{RuleID: "r2", Kind: ActionAssign, Field: testutil.DENumber, Data: "5"},
		},
	})
	if err != nil {
		t.Fatalf("ValidateEvents: %v", err)
	}

	want := Issues{"ev1": {
		newError("r1", E1301, testutil.DEText),
		newWarning("r2", E1308, testutil.DENumber, "5"),
	}}
	if diff := cmp.Diff(want, issues); diff != "" {
		t.Errorf("issues mismatch (-want +got):\n%s", diff)
	}
	if v := eventValue(t, ev, testutil.DENumber); v != "5" {
		t.Errorf("value = %q, want 5", v)
	}
	if len(dup.DataValues) != 0 {
		t.Errorf("repeated event uid must not be processed, got %v", dup.DataValues)
	}
	if n, err := promtestutil.GatherAndCount(reg, "programrule_effects_skipped_total"); err != nil || n != 0 {
		t.Errorf("skipped series = %d (err %v), want 0", n, err)
	}
}

func TestValidateEnrollments_LiteralBundle(t *testing.T) {
	te := testutil.TrackedEntity("te1", testutil.AttrAge, "40")
	en := testutil.Enrollment("en1", "te1", tracker.EnrollmentActive)
	b := &tracker.Bundle{
		Preheat:         testutil.Preheat(),
		TrackedEntities: []*tracker.TrackedEntity{te},
		Enrollments:     []*tracker.Enrollment{en, en},
	}
	e, _ := newTestEngine(t, false)

	issues, err := e.ValidateEnrollments(context.Background(), b, EffectsByEntity{
		"en1": {
			{RuleID: "r1", Kind: ActionAssign, Field: testutil.AttrAge, Data: "41"},
			{RuleID: "r2", Kind: ActionMandatoryValue, Field: testutil.AttrText},
		},
	})
	if err != nil {
		t.Fatalf("ValidateEnrollments: %v", err)
	}

	want := Issues{"en1": {
		newError("r1", E1307, testutil.AttrAge),
		newError("r2", E1301, testutil.AttrText),
	}}
	if diff := cmp.Diff(want, issues); diff != "" {
		t.Errorf("issues mismatch (-want +got):\n%s", diff)
	}
	if te.Attributes[0].Value != "40" {
		t.Errorf("tracked entity age = %q, want 40", te.Attributes[0].Value)
	}
}

func TestValidate_Errors(t *testing.T) {
	e := New(nil)
	if _, err := e.ValidateEvents(context.Background(), nil, nil); !errors.Is(err, ErrNilBundle) {
		t.Errorf("expected ErrNilBundle, got %v", err)
	}
	if _, err := e.ValidateEnrollments(context.Background(), &tracker.Bundle{}, nil); !errors.Is(err, ErrNilBundle) {
		t.Errorf("expected ErrNilBundle, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	ev := testutil.Event("ev1", testutil.StageA, tracker.EventActive)
	b := tracker.NewBundle(testutil.Preheat(), nil, nil, []*tracker.Event{ev})
	_, err := e.ValidateEvents(ctx, b, EffectsByEntity{"ev1": {{Kind: ActionShowError}}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
