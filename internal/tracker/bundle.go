package tracker

import "github.com/TimurManjosov/trackerrules/internal/metadata"

// Bundle is one import batch together with the metadata needed to validate it.
//
// Objects are held by pointer: validation mutates them in place and the
// caller keeps ownership after validation returns.
type Bundle struct {
	Preheat         metadata.Resolver
	TrackedEntities []*TrackedEntity
	Enrollments     []*Enrollment
	Events          []*Event

	trackedEntityIndex map[string]*TrackedEntity
	enrollmentIndex    map[string]*Enrollment
	eventIndex         map[string]*Event
}

// NewBundle creates a bundle and indexes its objects by UID.
func NewBundle(preheat metadata.Resolver, trackedEntities []*TrackedEntity, enrollments []*Enrollment, events []*Event) *Bundle {
	b := &Bundle{
		Preheat:         preheat,
		TrackedEntities: trackedEntities,
		Enrollments:     enrollments,
		Events:          events,
	}
	b.Reindex()
	return b
}

// Reindex rebuilds the UID lookups after the object slices were replaced.
// The first object wins when a UID repeats.
func (b *Bundle) Reindex() {
	b.trackedEntityIndex = make(map[string]*TrackedEntity, len(b.TrackedEntities))
	for _, te := range b.TrackedEntities {
		if te == nil {
			continue
		}
		if _, dup := b.trackedEntityIndex[te.UID]; !dup {
			b.trackedEntityIndex[te.UID] = te
		}
	}
	b.enrollmentIndex = make(map[string]*Enrollment, len(b.Enrollments))
	for _, en := range b.Enrollments {
		if en == nil {
			continue
		}
		if _, dup := b.enrollmentIndex[en.UID]; !dup {
			b.enrollmentIndex[en.UID] = en
		}
	}
	b.eventIndex = make(map[string]*Event, len(b.Events))
	for _, ev := range b.Events {
		if ev == nil {
			continue
		}
		if _, dup := b.eventIndex[ev.UID]; !dup {
			b.eventIndex[ev.UID] = ev
		}
	}
}

// TrackedEntity returns the tracked entity with the given UID, or nil.
func (b *Bundle) TrackedEntity(uid string) *TrackedEntity {
	if uid == "" {
		return nil
	}
	if te, ok := b.trackedEntityIndex[uid]; ok {
		return te
	}
	return find(b.TrackedEntities, uid, func(te *TrackedEntity) string { return te.UID })
}

// Enrollment returns the enrollment with the given UID, or nil.
func (b *Bundle) Enrollment(uid string) *Enrollment {
	if en, ok := b.enrollmentIndex[uid]; ok {
		return en
	}
	return find(b.Enrollments, uid, func(en *Enrollment) string { return en.UID })
}

// Event returns the event with the given UID, or nil.
func (b *Bundle) Event(uid string) *Event {
	if ev, ok := b.eventIndex[uid]; ok {
		return ev
	}
	return find(b.Events, uid, func(ev *Event) string { return ev.UID })
}

// find scans objects that are missing from the index: the bundle was built
// as a literal or its slices changed without Reindex.
func find[T any](objects []*T, uid string, uidOf func(*T) string) *T {
	for _, o := range objects {
		if o != nil && uidOf(o) == uid {
			return o
		}
	}
	return nil
}
