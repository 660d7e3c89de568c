// Package tracker holds the in-flight tracker objects of one import batch.
// The bundle owns them for the duration of the import; the program rule
// engine borrows them to append or replace field values.
package tracker

// Status is the lifecycle status of an event or enrollment.
type Status string

// Event statuses.
const (
	EventActive    Status = "ACTIVE"
	EventCompleted Status = "COMPLETED"
	EventSchedule  Status = "SCHEDULE"
	EventOverdue   Status = "OVERDUE"
	EventSkipped   Status = "SKIPPED"
)

// Enrollment statuses.
const (
	EnrollmentActive    Status = "ACTIVE"
	EnrollmentCompleted Status = "COMPLETED"
	EnrollmentCancelled Status = "CANCELLED"
)

// IsCompleted reports whether s is the COMPLETED status shared by events and enrollments.
func (s Status) IsCompleted() bool {
	return s == EventCompleted
}

// DataValue is a value of a data element on an event.
type DataValue struct {
	DataElement string `json:"dataElement" yaml:"dataElement"`
	Value       string `json:"value" yaml:"value"`
}

// Attribute is a value of a tracked entity attribute.
type Attribute struct {
	Attribute string `json:"attribute" yaml:"attribute"`
	Value     string `json:"value" yaml:"value"`
}

// Event is a single program stage visit.
type Event struct {
	UID          string      `json:"event" yaml:"event"`
	Status       Status      `json:"status" yaml:"status"`
	Program      string      `json:"program,omitempty" yaml:"program,omitempty"`
	ProgramStage string      `json:"programStage" yaml:"programStage"`
	Enrollment   string      `json:"enrollment,omitempty" yaml:"enrollment,omitempty"`
	DataValues   []DataValue `json:"dataValues,omitempty" yaml:"dataValues,omitempty"`
}

// DataValue returns the data value for dataElement, if present.
func (e *Event) DataValue(dataElement string) (*DataValue, bool) {
	for i := range e.DataValues {
		if e.DataValues[i].DataElement == dataElement {
			return &e.DataValues[i], true
		}
	}
	return nil, false
}

// SetDataValue replaces the value of dataElement or appends it.
func (e *Event) SetDataValue(dataElement, value string) {
	if dv, ok := e.DataValue(dataElement); ok {
		dv.Value = value
		return
	}
	e.DataValues = append(e.DataValues, DataValue{DataElement: dataElement, Value: value})
}

// Enrollment is the registration of a tracked entity into a program.
type Enrollment struct {
	UID           string      `json:"enrollment" yaml:"enrollment"`
	Status        Status      `json:"status" yaml:"status"`
	Program       string      `json:"program,omitempty" yaml:"program,omitempty"`
	TrackedEntity string      `json:"trackedEntity,omitempty" yaml:"trackedEntity,omitempty"`
	Attributes    []Attribute `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// Attribute returns the attribute value for uid, if present.
func (e *Enrollment) Attribute(uid string) (*Attribute, bool) {
	return findAttribute(e.Attributes, uid)
}

// SetAttribute replaces the value of the attribute or appends it.
func (e *Enrollment) SetAttribute(uid, value string) {
	e.Attributes = setAttribute(e.Attributes, uid, value)
}

// TrackedEntity is the subject (person, household, ...) being tracked.
type TrackedEntity struct {
	UID        string      `json:"trackedEntity" yaml:"trackedEntity"`
	Attributes []Attribute `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// Attribute returns the attribute value for uid, if present.
func (t *TrackedEntity) Attribute(uid string) (*Attribute, bool) {
	return findAttribute(t.Attributes, uid)
}

// SetAttribute replaces the value of the attribute or appends it.
func (t *TrackedEntity) SetAttribute(uid, value string) {
	t.Attributes = setAttribute(t.Attributes, uid, value)
}

func findAttribute(attrs []Attribute, uid string) (*Attribute, bool) {
	for i := range attrs {
		if attrs[i].Attribute == uid {
			return &attrs[i], true
		}
	}
	return nil, false
}

func setAttribute(attrs []Attribute, uid, value string) []Attribute {
	if a, ok := findAttribute(attrs, uid); ok {
		a.Value = value
		return attrs
	}
	return append(attrs, Attribute{Attribute: uid, Value: value})
}
