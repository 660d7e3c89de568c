package metadata

import "context"

// Store defines the interface for metadata persistence operations.
// Implementations must be thread-safe and support concurrent access.
type Store interface {
	// ListProgramStages returns all program stages.
	// Returns an empty slice if none are found.
	ListProgramStages(ctx context.Context) ([]ProgramStage, error)

	// ListDataElements returns all data elements.
	ListDataElements(ctx context.Context) ([]DataElement, error)

	// ListAttributes returns all tracked entity attributes.
	ListAttributes(ctx context.Context) ([]TrackedEntityAttribute, error)

	// ListOptionSets returns all option sets.
	ListOptionSets(ctx context.Context) ([]OptionSet, error)

	// UpsertProgramStage creates or replaces a program stage.
	UpsertProgramStage(ctx context.Context, stage ProgramStage) error

	// UpsertDataElement creates or replaces a data element.
	UpsertDataElement(ctx context.Context, de DataElement) error

	// UpsertAttribute creates or replaces a tracked entity attribute.
	UpsertAttribute(ctx context.Context, attr TrackedEntityAttribute) error

	// UpsertOptionSet creates or replaces an option set.
	UpsertOptionSet(ctx context.Context, os OptionSet) error

	// Close releases any resources held by the store.
	// After Close is called, the store should not be used.
	Close() error
}

// Seed writes all given metadata into st.
func Seed(ctx context.Context, st Store, stages []ProgramStage, elements []DataElement, attrs []TrackedEntityAttribute, optionSets []OptionSet) error {
	for _, os := range optionSets {
		if err := st.UpsertOptionSet(ctx, os); err != nil {
			return err
		}
	}
	for _, de := range elements {
		if err := st.UpsertDataElement(ctx, de); err != nil {
			return err
		}
	}
	for _, a := range attrs {
		if err := st.UpsertAttribute(ctx, a); err != nil {
			return err
		}
	}
	for _, s := range stages {
		if err := st.UpsertProgramStage(ctx, s); err != nil {
			return err
		}
	}
	return nil
}
