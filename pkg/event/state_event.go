package event

// MetaStreamEvent is the compile-time descriptor of the attribute layout a
// query produces at each processing stage for one input stream.
type MetaStreamEvent struct {
	InputDefinition       *StreamDefinition
	BeforeWindowData      []Attribute
	OnAfterWindowData     []Attribute
	OutputData            []Attribute
	ReferenceID            string
}

// MetaStateEvent describes a multi-stream context such as a join: one
// MetaStreamEvent per input position plus the projected output shape.
type MetaStateEvent struct {
	StreamEvents []*MetaStreamEvent
	OutputData   []Attribute
}

// StateEvent carries one ComplexEvent snapshot per input position. A nil
// slot at index i means the query's i-th stream produced no match for this
// arrival (an outer-join miss).
type StateEvent struct {
	StreamEvents []*ComplexEvent
	Timestamp    int64
	OutputData   []Value
}

// NewStateEvent allocates a StateEvent sized for n input streams, all slots
// initially unset.
func NewStateEvent(n int) *StateEvent {
	return &StateEvent{StreamEvents: make([]*ComplexEvent, n)}
}

// Clone deep-copies a StateEvent, following Clone on each occupied slot.
func (s *StateEvent) Clone() *StateEvent {
	if s == nil {
		return nil
	}
	cp := &StateEvent{
		StreamEvents: make([]*ComplexEvent, len(s.StreamEvents)),
		Timestamp:    s.Timestamp,
		OutputData:   cloneValues(s.OutputData),
	}
	for i, ce := range s.StreamEvents {
		cp.StreamEvents[i] = ce.Clone()
	}
	return cp
}
