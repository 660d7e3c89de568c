package metadata

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory implementation of the Store interface.
// It uses maps for storage and RWMutex for thread-safe concurrent access.
// This implementation is suitable for development, testing, or file-driven validation runs.
type MemoryStore struct {
	mu         sync.RWMutex
	stages     map[string]ProgramStage
	elements   map[string]DataElement
	attributes map[string]TrackedEntityAttribute
	optionSets map[string]OptionSet
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		stages:     make(map[string]ProgramStage),
		elements:   make(map[string]DataElement),
		attributes: make(map[string]TrackedEntityAttribute),
		optionSets: make(map[string]OptionSet),
	}
}

// ListProgramStages returns all program stages ordered by UID.
func (m *MemoryStore) ListProgramStages(ctx context.Context) ([]ProgramStage, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]ProgramStage, 0, len(m.stages))
	for _, s := range m.stages {
		s.DataElements = append([]string(nil), s.DataElements...)
		result = append(result, s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UID < result[j].UID })
	return result, nil
}

// ListDataElements returns all data elements ordered by UID.
func (m *MemoryStore) ListDataElements(ctx context.Context) ([]DataElement, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]DataElement, 0, len(m.elements))
	for _, de := range m.elements {
		result = append(result, de)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UID < result[j].UID })
	return result, nil
}

// ListAttributes returns all attributes ordered by UID.
func (m *MemoryStore) ListAttributes(ctx context.Context) ([]TrackedEntityAttribute, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]TrackedEntityAttribute, 0, len(m.attributes))
	for _, a := range m.attributes {
		result = append(result, a)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UID < result[j].UID })
	return result, nil
}

// ListOptionSets returns all option sets ordered by UID.
func (m *MemoryStore) ListOptionSets(ctx context.Context) ([]OptionSet, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]OptionSet, 0, len(m.optionSets))
	for _, os := range m.optionSets {
		os.Options = append([]string(nil), os.Options...)
		result = append(result, os)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].UID < result[j].UID })
	return result, nil
}

// UpsertProgramStage creates or replaces a program stage in memory.
func (m *MemoryStore) UpsertProgramStage(ctx context.Context, stage ProgramStage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stage.DataElements = append([]string(nil), stage.DataElements...)
	m.stages[stage.UID] = stage
	return nil
}

// UpsertDataElement creates or replaces a data element in memory.
func (m *MemoryStore) UpsertDataElement(ctx context.Context, de DataElement) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.elements[de.UID] = de
	return nil
}

// UpsertAttribute creates or replaces an attribute in memory.
func (m *MemoryStore) UpsertAttribute(ctx context.Context, attr TrackedEntityAttribute) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.attributes[attr.UID] = attr
	return nil
}

// UpsertOptionSet creates or replaces an option set in memory.
func (m *MemoryStore) UpsertOptionSet(ctx context.Context, os OptionSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	os.Options = append([]string(nil), os.Options...)
	m.optionSets[os.UID] = os
	return nil
}

// Close is a no-op for MemoryStore as there are no resources to release.
func (m *MemoryStore) Close() error {
	return nil
}
