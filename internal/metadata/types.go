package metadata

// ValueType is the declared kind of a data element or attribute value.
type ValueType string

const (
	ValueTypeText                  ValueType = "TEXT"
	ValueTypeLongText              ValueType = "LONG_TEXT"
	ValueTypeLetter                ValueType = "LETTER"
	ValueTypeBoolean               ValueType = "BOOLEAN"
	ValueTypeTrueOnly              ValueType = "TRUE_ONLY"
	ValueTypeNumber                ValueType = "NUMBER"
	ValueTypePercentage            ValueType = "PERCENTAGE"
	ValueTypeUnitInterval          ValueType = "UNIT_INTERVAL"
	ValueTypeInteger               ValueType = "INTEGER"
	ValueTypeIntegerPositive       ValueType = "INTEGER_POSITIVE"
	ValueTypeIntegerNegative       ValueType = "INTEGER_NEGATIVE"
	ValueTypeIntegerZeroOrPositive ValueType = "INTEGER_ZERO_OR_POSITIVE"
	ValueTypeDate                  ValueType = "DATE"
	ValueTypeAge                   ValueType = "AGE"
	ValueTypeDateTime              ValueType = "DATETIME"
	ValueTypeOrganisationUnit      ValueType = "ORGANISATION_UNIT"
)

var knownValueTypes = map[ValueType]bool{
	ValueTypeText: true, ValueTypeLongText: true, ValueTypeLetter: true,
	ValueTypeBoolean: true, ValueTypeTrueOnly: true,
	ValueTypeNumber: true, ValueTypePercentage: true, ValueTypeUnitInterval: true,
	ValueTypeInteger: true, ValueTypeIntegerPositive: true, ValueTypeIntegerNegative: true, ValueTypeIntegerZeroOrPositive: true,
	ValueTypeDate: true, ValueTypeAge: true, ValueTypeDateTime: true,
	ValueTypeOrganisationUnit: true,
}

// IsValid reports whether v is a known value type.
func (v ValueType) IsValid() bool { return knownValueTypes[v] }

// IsNumeric reports whether values of this type compare as decimal numbers.
func (v ValueType) IsNumeric() bool {
	switch v {
	case ValueTypeNumber, ValueTypePercentage, ValueTypeUnitInterval:
		return true
	}
	return false
}

// IsInteger reports whether values of this type compare as integers.
func (v ValueType) IsInteger() bool {
	switch v {
	case ValueTypeInteger, ValueTypeIntegerPositive, ValueTypeIntegerNegative, ValueTypeIntegerZeroOrPositive:
		return true
	}
	return false
}

// IsBoolean reports whether values of this type compare as booleans.
func (v ValueType) IsBoolean() bool {
	return v == ValueTypeBoolean || v == ValueTypeTrueOnly
}

// IsDate reports whether values of this type compare as calendar dates.
func (v ValueType) IsDate() bool {
	return v == ValueTypeDate || v == ValueTypeAge
}

// ValidationStrategy controls when the rules of a program stage become enforceable.
type ValidationStrategy string

const (
	ValidationOnUpdateAndInsert ValidationStrategy = "ON_UPDATE_AND_INSERT"
	ValidationOnComplete        ValidationStrategy = "ON_COMPLETE"
)

// IsValid reports whether s is a known strategy. Unset is valid.
func (s ValidationStrategy) IsValid() bool {
	return s == "" || s == ValidationOnUpdateAndInsert || s == ValidationOnComplete
}

// OptionSet is a closed list of allowed codes for a field.
type OptionSet struct {
	UID       string    `json:"uid" yaml:"uid"`
	ValueType ValueType `json:"valueType" yaml:"valueType"`
	Options   []string  `json:"options" yaml:"options"` // option codes
}

// HasOption reports whether code is one of the option codes.
func (o *OptionSet) HasOption(code string) bool {
	if o == nil {
		return false
	}
	for _, c := range o.Options {
		if c == code {
			return true
		}
	}
	return false
}

// DataElement is a field collected on events.
type DataElement struct {
	UID       string    `json:"uid" yaml:"uid"`
	Name      string    `json:"name,omitempty" yaml:"name,omitempty"`
	ValueType ValueType `json:"valueType" yaml:"valueType"`
	OptionSet string    `json:"optionSet,omitempty" yaml:"optionSet,omitempty"`
}

// TrackedEntityAttribute is a field collected on tracked entities and enrollments.
type TrackedEntityAttribute struct {
	UID       string    `json:"uid" yaml:"uid"`
	Name      string    `json:"name,omitempty" yaml:"name,omitempty"`
	ValueType ValueType `json:"valueType" yaml:"valueType"`
	OptionSet string    `json:"optionSet,omitempty" yaml:"optionSet,omitempty"`
}

// ProgramStage is a phase of a program owning a set of data elements.
type ProgramStage struct {
	UID                string             `json:"uid" yaml:"uid"`
	Name               string             `json:"name,omitempty" yaml:"name,omitempty"`
	ValidationStrategy ValidationStrategy `json:"validationStrategy" yaml:"validationStrategy"`
	DataElements       []string           `json:"dataElements" yaml:"dataElements"`
}

// HasDataElement reports whether the data element belongs to this stage.
func (p *ProgramStage) HasDataElement(uid string) bool {
	for _, de := range p.DataElements {
		if de == uid {
			return true
		}
	}
	return false
}

// Resolver resolves metadata identifiers referenced by rule effects.
// Lookups of unknown identifiers return nil.
type Resolver interface {
	ProgramStage(uid string) *ProgramStage
	DataElement(uid string) *DataElement
	Attribute(uid string) *TrackedEntityAttribute
	OptionSet(uid string) *OptionSet
}
