package event

// Attribute is one named, typed column of a stream definition.
type Attribute struct {
	Name string
	Kind Kind
}

// StreamDefinition describes the immutable shape of every event published
// on a stream. Instances are shared by handle and never mutated after
// registration.
type StreamDefinition struct {
	ID         string
	Attributes []Attribute
}

// IndexOf returns the ordinal position of an attribute, or -1.
func (d *StreamDefinition) IndexOf(name string) int {
	for i, a := range d.Attributes {
		if a.Name == name {
			return i
		}
	}
	return -1
}

// Event is a single timestamped row of attribute values arriving on, or
// leaving, a stream.
type Event struct {
	ID        uint64
	Timestamp int64
	Data      []Value
	IsExpired bool
}

// Clone makes an independent copy of the event, including its data slice,
// so that a junction can hand an unshared copy to every subscriber but the
// last.
func (e *Event) Clone() *Event {
	if e == nil {
		return nil
	}
	data := make([]Value, len(e.Data))
	copy(data, e.Data)
	return &Event{ID: e.ID, Timestamp: e.Timestamp, Data: data, IsExpired: e.IsExpired}
}

// AsExpired returns a shallow copy of the event tagged as expired, used by
// windows when an event falls out of the retention buffer.
func (e *Event) AsExpired() *Event {
	cp := *e
	cp.IsExpired = true
	return &cp
}
