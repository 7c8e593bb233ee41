package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/corestream/corestream/pkg/event"
)

// fixtureEvent is one JSON event fixture row: Values are positional,
// ordered per the target stream's declared attributes.
type fixtureEvent struct {
	Stream string        `json:"stream"`
	Values []any         `json:"values"`
}

func loadFixture(path string) ([]fixtureEvent, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading event fixture: %w", err)
	}
	var events []fixtureEvent
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("parsing event fixture: %w", err)
	}
	return events, nil
}

// toValues converts one fixture row's raw JSON values into typed
// event.Value, following kinds to disambiguate int/long/float/double
// (JSON only has one numeric type).
func toValues(raw []any, kinds []event.Kind) ([]event.Value, error) {
	if len(raw) != len(kinds) {
		return nil, fmt.Errorf("expected %d values, got %d", len(kinds), len(raw))
	}
	out := make([]event.Value, len(raw))
	for i, v := range raw {
		if v == nil {
			out[i] = event.Null()
			continue
		}
		switch kinds[i] {
		case event.KindInt:
			f, ok := v.(float64)
			if !ok {
				return nil, fmt.Errorf("value %d: expected number", i)
			}
			out[i] = event.Int(int32(f))
		case event.KindLong:
			f, ok := v.(float64)
			if !ok {
				return nil, fmt.Errorf("value %d: expected number", i)
			}
			out[i] = event.Long(int64(f))
		case event.KindFloat:
			f, ok := v.(float64)
			if !ok {
				return nil, fmt.Errorf("value %d: expected number", i)
			}
			out[i] = event.Float(float32(f))
		case event.KindDouble:
			f, ok := v.(float64)
			if !ok {
				return nil, fmt.Errorf("value %d: expected number", i)
			}
			out[i] = event.Double(f)
		case event.KindBool:
			b, ok := v.(bool)
			if !ok {
				return nil, fmt.Errorf("value %d: expected bool", i)
			}
			out[i] = event.Bool(b)
		case event.KindString:
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("value %d: expected string", i)
			}
			out[i] = event.String(s)
		default:
			out[i] = event.Object(v)
		}
	}
	return out, nil
}
