package programrule

// ActionKind is the kind of program rule action that produced an effect.
type ActionKind string

// Action kinds enforced server side. Any other kind (HIDE_FIELD,
// DISPLAY_TEXT, notification actions, ...) is client-side only and ignored.
const (
	ActionAssign            ActionKind = "ASSIGN"
	ActionMandatoryValue    ActionKind = "MANDATORY_VALUE"
	ActionShowError         ActionKind = "SHOW_ERROR"
	ActionShowWarning       ActionKind = "SHOW_WARNING"
	ActionErrorOnComplete   ActionKind = "ERROR_ON_COMPLETE"
	ActionWarningOnComplete ActionKind = "WARNING_ON_COMPLETE"
)

// FieldType tells whether an effect targets a data element or an attribute.
type FieldType string

const (
	FieldDataElement FieldType = "DATA_ELEMENT"
	FieldAttribute   FieldType = "TRACKED_ENTITY_ATTRIBUTE"
)

// EntityType is the kind of tracker object a group of effects belongs to.
type EntityType string

const (
	EntityEvent      EntityType = "EVENT"
	EntityEnrollment EntityType = "ENROLLMENT"
)

// RuleEffect is one triggered rule action, already evaluated by the
// external rule engine: Data holds the evaluated expression and Content the
// rendered message.
type RuleEffect struct {
	RuleID    string     `json:"ruleId" yaml:"ruleId"`
	Kind      ActionKind `json:"actionKind" yaml:"actionKind"`
	Field     string     `json:"field,omitempty" yaml:"field,omitempty"`
	FieldType FieldType  `json:"fieldType,omitempty" yaml:"fieldType,omitempty"`
	Data      string     `json:"data,omitempty" yaml:"data,omitempty"`
	Content   string     `json:"content,omitempty" yaml:"content,omitempty"`

	// ExistingValues are the stored field values of the entity at
	// evaluation time. They stand in for fields the payload omits.
	ExistingValues map[string]string `json:"existingValues,omitempty" yaml:"existingValues,omitempty"`
}

// RuleEffects groups the effects produced for one tracker object.
type RuleEffects struct {
	EntityType EntityType   `json:"entityType" yaml:"entityType"`
	UID        string       `json:"uid" yaml:"uid"`
	Effects    []RuleEffect `json:"effects" yaml:"effects"`
}

// EffectsByEntity maps a tracker object UID to its effects in evaluation order.
type EffectsByEntity map[string][]RuleEffect

// Split groups a flat list of RuleEffects into event and enrollment maps.
// Effects for the same UID are concatenated in input order.
func Split(all []RuleEffects) (events, enrollments EffectsByEntity) {
	events = EffectsByEntity{}
	enrollments = EffectsByEntity{}
	for _, re := range all {
		switch re.EntityType {
		case EntityEvent:
			events[re.UID] = append(events[re.UID], re.Effects...)
		case EntityEnrollment:
			enrollments[re.UID] = append(enrollments[re.UID], re.Effects...)
		}
	}
	return events, enrollments
}
