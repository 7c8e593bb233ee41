package table

import (
	"encoding/json"

	"github.com/corestream/corestream/pkg/event"
)

// wireValue is event.Value's snapshot/persistence wire form. event.Value
// keeps its typed fields unexported (it is a tagged union, not a DTO), so
// table snapshotting and the bbolt-backed variant both round-trip through
// this instead of marshalling event.Value directly.
type wireValue struct {
	Kind event.Kind `json:"kind"`
	Raw  any        `json:"raw,omitempty"`
}

func toWire(v event.Value) wireValue {
	return wireValue{Kind: v.Kind, Raw: v.Raw()}
}

func fromWire(w wireValue) event.Value {
	switch w.Kind {
	case event.KindNull:
		return event.Null()
	case event.KindBool:
		b, _ := w.Raw.(bool)
		return event.Bool(b)
	case event.KindInt:
		return event.Int(int32(asFloat(w.Raw)))
	case event.KindLong:
		return event.Long(int64(asFloat(w.Raw)))
	case event.KindFloat:
		return event.Float(float32(asFloat(w.Raw)))
	case event.KindDouble:
		return event.Double(asFloat(w.Raw))
	case event.KindString:
		s, _ := w.Raw.(string)
		return event.String(s)
	default:
		return event.Object(w.Raw)
	}
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

func marshalRows(rows []Row) ([]byte, error) {
	wire := make([][]wireValue, len(rows))
	for i, r := range rows {
		w := make([]wireValue, len(r))
		for j, v := range r {
			w[j] = toWire(v)
		}
		wire[i] = w
	}
	return json.Marshal(wire)
}

func unmarshalRows(data []byte) ([]Row, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var wire [][]wireValue
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, err
	}
	rows := make([]Row, len(wire))
	for i, w := range wire {
		r := make(Row, len(w))
		for j, wv := range w {
			r[j] = fromWire(wv)
		}
		rows[i] = r
	}
	return rows, nil
}
