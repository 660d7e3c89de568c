// Package importer gates a tracker import batch on program rule issues.
//
// It runs the program rule engine over a bundle, then splits the bundle into
// the objects that may be committed and the ones that must be rejected.
package importer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/TimurManjosov/trackerrules/internal/programrule"
	"github.com/TimurManjosov/trackerrules/internal/tracker"
)

// Validator applies rule effects to a bundle. *programrule.Engine implements it.
type Validator interface {
	ValidateEnrollments(ctx context.Context, b *tracker.Bundle, effects programrule.EffectsByEntity) (programrule.Issues, error)
	ValidateEvents(ctx context.Context, b *tracker.Bundle, effects programrule.EffectsByEntity) (programrule.Issues, error)
}

// Importer runs the rule validation phase of an import.
type Importer struct {
	validator Validator
	logger    zerolog.Logger
}

// New creates an Importer.
func New(v Validator, logger zerolog.Logger) *Importer {
	return &Importer{
		validator: v,
		logger:    logger.With().Str("component", "importer").Logger(),
	}
}

// Validate applies enrollment effects, then event effects, and returns the
// commit decision for every object in b. Objects in b are mutated by
// assigned values.
func (im *Importer) Validate(ctx context.Context, b *tracker.Bundle, enrollmentEffects, eventEffects programrule.EffectsByEntity) (*Report, error) {
	start := time.Now()
	report := &Report{
		RunID:       uuid.NewString(),
		Enrollments: programrule.Issues{},
		Events:      programrule.Issues{},
	}

	enrollmentIssues, err := im.validator.ValidateEnrollments(ctx, b, enrollmentEffects)
	if err != nil {
		return nil, fmt.Errorf("validate enrollments: %w", err)
	}
	report.Enrollments = enrollmentIssues

	eventIssues, err := im.validator.ValidateEvents(ctx, b, eventEffects)
	if err != nil {
		return nil, fmt.Errorf("validate events: %w", err)
	}
	report.Events = eventIssues

	report.Committable, report.Rejected = Persistables(b, report.Enrollments, report.Events)

	im.logger.Info().
		Str("run_id", report.RunID).
		Str("status", string(report.Status())).
		Int("enrollments_rejected", len(report.Rejected.Enrollments)).
		Int("events_rejected", len(report.Rejected.Events)).
		Dur("took", time.Since(start)).
		Msg("import validated")
	return report, nil
}

// Objects lists tracker object UIDs by kind, in bundle order.
type Objects struct {
	TrackedEntities []string `json:"trackedEntities" yaml:"trackedEntities"`
	Enrollments     []string `json:"enrollments" yaml:"enrollments"`
	Events          []string `json:"events" yaml:"events"`
}

// Count returns the number of objects.
func (o Objects) Count() int {
	return len(o.TrackedEntities) + len(o.Enrollments) + len(o.Events)
}

// Persistables splits b into committable and rejected objects. An
// enrollment or event with an ERROR issue is rejected, and so is every event
// of a rejected enrollment. Tracked entities are always committable.
func Persistables(b *tracker.Bundle, enrollmentIssues, eventIssues programrule.Issues) (committable, rejected Objects) {
	committable = Objects{TrackedEntities: []string{}, Enrollments: []string{}, Events: []string{}}
	rejected = Objects{TrackedEntities: []string{}, Enrollments: []string{}, Events: []string{}}

	for _, te := range b.TrackedEntities {
		committable.TrackedEntities = append(committable.TrackedEntities, te.UID)
	}

	rejectedEnrollments := map[string]bool{}
	for _, en := range b.Enrollments {
		if enrollmentIssues.HasErrors(en.UID) {
			rejectedEnrollments[en.UID] = true
			rejected.Enrollments = append(rejected.Enrollments, en.UID)
			continue
		}
		committable.Enrollments = append(committable.Enrollments, en.UID)
	}

	for _, ev := range b.Events {
		if eventIssues.HasErrors(ev.UID) || rejectedEnrollments[ev.Enrollment] {
			rejected.Events = append(rejected.Events, ev.UID)
			continue
		}
		committable.Events = append(committable.Events, ev.UID)
	}
	return committable, rejected
}
