// Package programrule applies evaluated program rule effects to an import
// bundle. Effects either mutate the bundle (assigned values) or become
// classified issues that decide whether an entity may be committed.
//
// Rule conditions and action expressions are evaluated elsewhere; this
// package only receives their results as RuleEffect values.
package programrule

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/TimurManjosov/trackerrules/internal/settings"
	"github.com/TimurManjosov/trackerrules/internal/telemetry"
	"github.com/TimurManjosov/trackerrules/internal/tracker"
)

// ErrNilBundle is returned when validation is called without a bundle or
// without metadata.
var ErrNilBundle = errors.New("programrule: bundle and preheat are required")

const (
	skipUnknownEntity     = "unknown_entity"
	skipUnsupportedAction = "unsupported_action"
	skipFieldType         = "field_type"
)

// Engine routes rule effects to their implementers.
type Engine struct {
	settings settings.Provider
	workers  int
	logger   zerolog.Logger
	metrics  *telemetry.Metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers sets how many entities are processed concurrently.
// Values below 1 mean sequential processing.
func WithWorkers(n int) Option {
	return func(e *Engine) { e.workers = n }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.logger = l.With().Str("component", "programrule").Logger() }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// New creates an Engine reading the overwrite setting from sp.
func New(sp settings.Provider, opts ...Option) *Engine {
	e := &Engine{
		settings: sp,
		workers:  1,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.workers < 1 {
		e.workers = 1
	}
	if e.settings == nil {
		e.settings = settings.Static{}
	}
	return e
}

// ValidateEvents applies effects to the events of b and returns the issues
// keyed by event UID. Effects for events not in the bundle are skipped, as
// are repeated occurrences of an event UID.
func (e *Engine) ValidateEvents(ctx context.Context, b *tracker.Bundle, effects EffectsByEntity) (Issues, error) {
	if b == nil || b.Preheat == nil {
		return nil, ErrNilBundle
	}
	var units [][]*tracker.Event
	seen := make(map[string]bool, len(b.Events))
	for _, ev := range b.Events {
		if ev == nil || seen[ev.UID] {
			continue
		}
		seen[ev.UID] = true
		if _, ok := effects[ev.UID]; ok {
			units = append(units, []*tracker.Event{ev})
		}
	}
	e.skipUnknown(EntityEvent, effects, seen)
	return run(ctx, e, EntityEvent, units, func(ev *tracker.Event) Issues {
		return e.applyToEvent(b, ev, effects[ev.UID])
	})
}

// ValidateEnrollments applies effects to the enrollments of b and returns
// the issues keyed by enrollment UID. Enrollments of the same tracked
// entity are processed together, because assignments may write the
// tracked entity's attributes.
func (e *Engine) ValidateEnrollments(ctx context.Context, b *tracker.Bundle, effects EffectsByEntity) (Issues, error) {
	if b == nil || b.Preheat == nil {
		return nil, ErrNilBundle
	}
	var units [][]*tracker.Enrollment
	seen := make(map[string]bool, len(b.Enrollments))
	byTrackedEntity := map[string]int{}
	for _, en := range b.Enrollments {
		if en == nil || seen[en.UID] {
			continue
		}
		seen[en.UID] = true
		if _, ok := effects[en.UID]; !ok {
			continue
		}
		if en.TrackedEntity == "" {
			units = append(units, []*tracker.Enrollment{en})
			continue
		}
		if i, ok := byTrackedEntity[en.TrackedEntity]; ok {
			units[i] = append(units[i], en)
			continue
		}
		byTrackedEntity[en.TrackedEntity] = len(units)
		units = append(units, []*tracker.Enrollment{en})
	}
	e.skipUnknown(EntityEnrollment, effects, seen)
	return run(ctx, e, EntityEnrollment, units, func(en *tracker.Enrollment) Issues {
		return e.applyToEnrollment(b, en, effects[en.UID])
	})
}

// run processes units concurrently; entities inside a unit run in order.
// Each entity belongs to exactly one unit, so no entity is touched by two
// goroutines.
func run[T any](ctx context.Context, e *Engine, entity EntityType, units [][]T, apply func(T) Issues) (Issues, error) {
	start := time.Now()
	results := make([]Issues, len(units))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, unit := range units {
		g.Go(func() error {
			out := Issues{}
			for _, item := range unit {
				if err := gctx.Err(); err != nil {
					return err
				}
				out.Merge(apply(item))
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	issues := Issues{}
	for _, r := range results {
		issues.Merge(r)
	}
	e.metrics.ObserveBatch(string(entity), time.Since(start))
	e.logger.Debug().
		Str("entity", string(entity)).
		Int("entities", len(units)).
		Int("issues", issues.Count()).
		Int("blocked", len(issues.Blocked())).
		Dur("took", time.Since(start)).
		Msg("rule effects applied")
	return issues, nil
}

func (e *Engine) applyToEvent(b *tracker.Bundle, ev *tracker.Event, effects []RuleEffect) Issues {
	issues := Issues{}
	for _, effect := range effects {
		if effect.FieldType == FieldAttribute {
			e.skip(EntityEvent, skipFieldType, 1)
			continue
		}
		var out []Issue
		switch effect.Kind {
		case ActionAssign:
			out = assignEventValue(b, ev, effect, e.settings.RuleEngineAssignOverwrite())
		case ActionMandatoryValue:
			out = mandatoryEventValue(b, ev, effect)
		case ActionShowError:
			out = showMessage(effect, IssueError)
		case ActionShowWarning:
			out = showMessage(effect, IssueWarning)
		case ActionErrorOnComplete:
			out = showMessageOnComplete(effect, ev.Status, IssueError)
		case ActionWarningOnComplete:
			out = showMessageOnComplete(effect, ev.Status, IssueWarning)
		default:
			e.skipAction(EntityEvent, ev.UID, effect)
			continue
		}
		e.record(EntityEvent, effect, out)
		issues.Add(ev.UID, out...)
	}
	return issues
}

func (e *Engine) applyToEnrollment(b *tracker.Bundle, en *tracker.Enrollment, effects []RuleEffect) Issues {
	issues := Issues{}
	for _, effect := range effects {
		if effect.FieldType == FieldDataElement {
			e.skip(EntityEnrollment, skipFieldType, 1)
			continue
		}
		var out []Issue
		switch effect.Kind {
		case ActionAssign:
			out = assignEnrollmentValue(b, en, effect, e.settings.RuleEngineAssignOverwrite())
		case ActionMandatoryValue:
			out = mandatoryEnrollmentValue(b, en, effect)
		case ActionShowError:
			out = showMessage(effect, IssueError)
		case ActionShowWarning:
			out = showMessage(effect, IssueWarning)
		case ActionErrorOnComplete:
			out = showMessageOnComplete(effect, en.Status, IssueError)
		case ActionWarningOnComplete:
			out = showMessageOnComplete(effect, en.Status, IssueWarning)
		default:
			e.skipAction(EntityEnrollment, en.UID, effect)
			continue
		}
		e.record(EntityEnrollment, effect, out)
		issues.Add(en.UID, out...)
	}
	return issues
}

func (e *Engine) record(entity EntityType, effect RuleEffect, out []Issue) {
	e.metrics.EffectApplied(string(entity), string(effect.Kind))
	for _, i := range out {
		e.metrics.Issue(string(entity), string(i.Code), string(i.Type))
	}
}

func (e *Engine) skipAction(entity EntityType, uid string, effect RuleEffect) {
	e.skip(entity, skipUnsupportedAction, 1)
	e.logger.Debug().
		Str("entity", string(entity)).
		Str("uid", uid).
		Str("rule", effect.RuleID).
		Str("action", string(effect.Kind)).
		Msg("ignoring action not enforced on import")
}

func (e *Engine) skipUnknown(entity EntityType, effects EffectsByEntity, known map[string]bool) {
	for uid, list := range effects {
		if !known[uid] {
			e.skip(entity, skipUnknownEntity, len(list))
		}
	}
}

func (e *Engine) skip(entity EntityType, reason string, n int) {
	for range n {
		e.metrics.EffectSkipped(string(entity), reason)
	}
}
