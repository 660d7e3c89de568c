// Package validation checks metadata before it is seeded into a store.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/TimurManjosov/trackerrules/internal/metadata"
)

const (
	// MaxUIDLength is the maximum length for metadata identifiers
	MaxUIDLength = 64
)

// ErrInvalidMetadata is wrapped by ValidationResult.Err.
var ErrInvalidMetadata = errors.New("invalid metadata")

// uidPattern matches a letter followed by alphanumerics, underscores and hyphens
var uidPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)

// ValidationResult holds the result of validation
type ValidationResult struct {
	Valid  bool
	Errors map[string]string
}

// NewValidationResult creates a new validation result
func NewValidationResult() *ValidationResult {
	return &ValidationResult{
		Valid:  true,
		Errors: make(map[string]string),
	}
}

// AddError adds a field error and marks the result as invalid
func (v *ValidationResult) AddError(field, message string) {
	v.Valid = false
	v.Errors[field] = message
}

// Merge combines another validation result into this one
func (v *ValidationResult) Merge(other *ValidationResult) {
	if other == nil {
		return
	}
	for field, message := range other.Errors {
		v.AddError(field, message)
	}
}

// Err returns nil for a valid result, otherwise an error listing every
// field problem in field order.
func (v *ValidationResult) Err() error {
	if v.Valid {
		return nil
	}
	fields := make([]string, 0, len(v.Errors))
	for f := range v.Errors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, f+": "+v.Errors[f])
	}
	return fmt.Errorf("%w: %s", ErrInvalidMetadata, strings.Join(msgs, "; "))
}

// ValidateMetadata checks identifiers, value types and cross references of
// a metadata set.
func ValidateMetadata(stages []metadata.ProgramStage, elements []metadata.DataElement, attrs []metadata.TrackedEntityAttribute, optionSets []metadata.OptionSet) *ValidationResult {
	result := NewValidationResult()

	optionSetUIDs := make(map[string]bool, len(optionSets))
	for i, os := range optionSets {
		field := fmt.Sprintf("optionSets[%d]", i)
		result.Merge(ValidateUID(field, os.UID))
		result.Merge(validateValueType(field, os.ValueType))
		result.Merge(ValidateOptions(field, os.Options))
		optionSetUIDs[os.UID] = true
	}

	elementUIDs := make(map[string]bool, len(elements))
	for i, de := range elements {
		field := fmt.Sprintf("dataElements[%d]", i)
		result.Merge(ValidateUID(field, de.UID))
		result.Merge(validateValueType(field, de.ValueType))
		if de.OptionSet != "" && !optionSetUIDs[de.OptionSet] {
			result.AddError(field+".optionSet", "Unknown option set: "+de.OptionSet)
		}
		elementUIDs[de.UID] = true
	}

	for i, a := range attrs {
		field := fmt.Sprintf("attributes[%d]", i)
		result.Merge(ValidateUID(field, a.UID))
		result.Merge(validateValueType(field, a.ValueType))
		if a.OptionSet != "" && !optionSetUIDs[a.OptionSet] {
			result.AddError(field+".optionSet", "Unknown option set: "+a.OptionSet)
		}
	}

	for i, s := range stages {
		field := fmt.Sprintf("programStages[%d]", i)
		result.Merge(ValidateUID(field, s.UID))
		if !s.ValidationStrategy.IsValid() {
			result.AddError(field+".validationStrategy", "Unknown validation strategy: "+string(s.ValidationStrategy))
		}
		for _, de := range s.DataElements {
			if !elementUIDs[de] {
				result.AddError(field+".dataElements", "Unknown data element: "+de)
				break
			}
		}
	}

	return result
}

// ValidateUID validates a metadata identifier
func ValidateUID(field, uid string) *ValidationResult {
	result := NewValidationResult()
	field += ".uid"

	if strings.TrimSpace(uid) == "" {
		result.AddError(field, "UID is required")
		return result
	}

	if utf8.RuneCountInString(uid) > MaxUIDLength {
		result.AddError(field, "UID must not exceed 64 characters")
		return result
	}

	if !uidPattern.MatchString(uid) {
		result.AddError(field, "UID must start with a letter and contain only alphanumeric characters, underscores, and hyphens")
	}

	return result
}

// ValidateOptions validates the codes of an option set
func ValidateOptions(field string, options []string) *ValidationResult {
	result := NewValidationResult()
	field += ".options"

	if len(options) == 0 {
		result.AddError(field, "Option set must have at least one option")
		return result
	}

	seen := make(map[string]bool, len(options))
	for _, code := range options {
		if strings.TrimSpace(code) == "" {
			result.AddError(field, "Option code cannot be empty")
			return result
		}
		if seen[code] {
			result.AddError(field, "Duplicate option code: "+code)
			return result
		}
		seen[code] = true
	}

	return result
}

func validateValueType(field string, vt metadata.ValueType) *ValidationResult {
	result := NewValidationResult()
	if !vt.IsValid() {
		result.AddError(field+".valueType", "Unknown value type: "+string(vt))
	}
	return result
}
