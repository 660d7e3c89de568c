package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Preheat is an immutable in-memory snapshot of the metadata an import
// needs. It is built once per import and shared read-only by all workers.
type Preheat struct {
	ETag       string
	stages     map[string]*ProgramStage
	elements   map[string]*DataElement
	attributes map[string]*TrackedEntityAttribute
	optionSets map[string]*OptionSet
}

var _ Resolver = (*Preheat)(nil)

// LoadPreheat reads all metadata from st into a Preheat.
func LoadPreheat(ctx context.Context, st Store) (*Preheat, error) {
	stages, err := st.ListProgramStages(ctx)
	if err != nil {
		return nil, fmt.Errorf("preheat program stages: %w", err)
	}
	elements, err := st.ListDataElements(ctx)
	if err != nil {
		return nil, fmt.Errorf("preheat data elements: %w", err)
	}
	attrs, err := st.ListAttributes(ctx)
	if err != nil {
		return nil, fmt.Errorf("preheat attributes: %w", err)
	}
	optionSets, err := st.ListOptionSets(ctx)
	if err != nil {
		return nil, fmt.Errorf("preheat option sets: %w", err)
	}
	return NewPreheat(stages, elements, attrs, optionSets), nil
}

// NewPreheat builds a Preheat from already loaded metadata.
func NewPreheat(stages []ProgramStage, elements []DataElement, attrs []TrackedEntityAttribute, optionSets []OptionSet) *Preheat {
	p := &Preheat{
		stages:     make(map[string]*ProgramStage, len(stages)),
		elements:   make(map[string]*DataElement, len(elements)),
		attributes: make(map[string]*TrackedEntityAttribute, len(attrs)),
		optionSets: make(map[string]*OptionSet, len(optionSets)),
	}
	for i := range stages {
		s := stages[i]
		p.stages[s.UID] = &s
	}
	for i := range elements {
		de := elements[i]
		p.elements[de.UID] = &de
	}
	for i := range attrs {
		a := attrs[i]
		p.attributes[a.UID] = &a
	}
	for i := range optionSets {
		os := optionSets[i]
		p.optionSets[os.UID] = &os
	}

	p.ETag = p.etag()
	return p
}

// etag hashes the content in UID order, so equal metadata loaded in any
// order gets the same tag.
func (p *Preheat) etag() string {
	var content struct {
		Stages     []*ProgramStage           `json:"stages"`
		Elements   []*DataElement            `json:"elements"`
		Attributes []*TrackedEntityAttribute `json:"attributes"`
		OptionSets []*OptionSet              `json:"optionSets"`
	}
	for _, uid := range sortedKeys(p.stages) {
		content.Stages = append(content.Stages, p.stages[uid])
	}
	for _, uid := range sortedKeys(p.elements) {
		content.Elements = append(content.Elements, p.elements[uid])
	}
	for _, uid := range sortedKeys(p.attributes) {
		content.Attributes = append(content.Attributes, p.attributes[uid])
	}
	for _, uid := range sortedKeys(p.optionSets) {
		content.OptionSets = append(content.OptionSets, p.optionSets[uid])
	}
	blob, _ := json.Marshal(content)
	return `W/"` + strconv.FormatUint(xxhash.Sum64(blob), 16) + `"`
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (p *Preheat) ProgramStage(uid string) *ProgramStage { return p.stages[uid] }

func (p *Preheat) DataElement(uid string) *DataElement { return p.elements[uid] }

func (p *Preheat) Attribute(uid string) *TrackedEntityAttribute { return p.attributes[uid] }

func (p *Preheat) OptionSet(uid string) *OptionSet {
	if uid == "" {
		return nil
	}
	return p.optionSets[uid]
}

// Counts returns the number of stages, data elements, attributes and option sets.
func (p *Preheat) Counts() (stages, elements, attributes, optionSets int) {
	return len(p.stages), len(p.elements), len(p.attributes), len(p.optionSets)
}
