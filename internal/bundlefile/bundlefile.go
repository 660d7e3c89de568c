// Package bundlefile reads an import batch, its metadata and the evaluated
// rule effects from a single YAML (or JSON) document.
package bundlefile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/TimurManjosov/trackerrules/internal/metadata"
	"github.com/TimurManjosov/trackerrules/internal/programrule"
	"github.com/TimurManjosov/trackerrules/internal/tracker"
	"github.com/TimurManjosov/trackerrules/internal/validation"
)

// ErrEmpty is returned when a file contains no tracker objects.
var ErrEmpty = errors.New("bundle file has no enrollments or events")

// Metadata is the metadata section of a bundle file.
type Metadata struct {
	ProgramStages []metadata.ProgramStage           `yaml:"programStages"`
	DataElements  []metadata.DataElement            `yaml:"dataElements"`
	Attributes    []metadata.TrackedEntityAttribute `yaml:"attributes"`
	OptionSets    []metadata.OptionSet              `yaml:"optionSets"`
}

// File is a decoded bundle file.
type File struct {
	Metadata        Metadata                  `yaml:"metadata"`
	TrackedEntities []*tracker.TrackedEntity  `yaml:"trackedEntities"`
	Enrollments     []*tracker.Enrollment     `yaml:"enrollments"`
	Events          []*tracker.Event          `yaml:"events"`
	RuleEffects     []programrule.RuleEffects `yaml:"ruleEffects"`
}

// Read loads and validates the bundle file at path.
func Read(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bundle file: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads a bundle file from r. JSON input is accepted as YAML.
func Decode(r io.Reader) (*File, error) {
	var file File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("parse bundle file: %w", err)
	}
	if err := file.validate(); err != nil {
		return nil, err
	}
	return &file, nil
}

func (f *File) validate() error {
	if len(f.Enrollments) == 0 && len(f.Events) == 0 {
		return ErrEmpty
	}
	m := f.Metadata
	if err := validation.ValidateMetadata(m.ProgramStages, m.DataElements, m.Attributes, m.OptionSets).Err(); err != nil {
		return err
	}
	seen := map[string]bool{}
	check := func(kind, uid string) error {
		if uid == "" {
			return fmt.Errorf("%s without uid", kind)
		}
		if seen[kind+"/"+uid] {
			return fmt.Errorf("duplicate %s %q", kind, uid)
		}
		seen[kind+"/"+uid] = true
		return nil
	}
	for _, te := range f.TrackedEntities {
		if err := check("trackedEntity", te.UID); err != nil {
			return err
		}
	}
	for _, en := range f.Enrollments {
		if err := check("enrollment", en.UID); err != nil {
			return err
		}
	}
	for _, ev := range f.Events {
		if err := check("event", ev.UID); err != nil {
			return err
		}
	}
	for i, re := range f.RuleEffects {
		switch re.EntityType {
		case programrule.EntityEvent, programrule.EntityEnrollment:
		default:
			return fmt.Errorf("ruleEffects[%d]: unknown entity type %q", i, re.EntityType)
		}
	}
	return nil
}

// Seed writes the file's metadata into st.
func (f *File) Seed(ctx context.Context, st metadata.Store) error {
	m := f.Metadata
	if err := metadata.Seed(ctx, st, m.ProgramStages, m.DataElements, m.Attributes, m.OptionSets); err != nil {
		return fmt.Errorf("seed metadata: %w", err)
	}
	return nil
}

// Bundle builds the import bundle resolved against preheat.
func (f *File) Bundle(preheat metadata.Resolver) *tracker.Bundle {
	return tracker.NewBundle(preheat, f.TrackedEntities, f.Enrollments, f.Events)
}

// Effects splits the rule effects into enrollment and event effects.
func (f *File) Effects() (enrollments, events programrule.EffectsByEntity) {
	events, enrollments = programrule.Split(f.RuleEffects)
	return enrollments, events
}
