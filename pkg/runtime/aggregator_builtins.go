package runtime

import "github.com/corestream/corestream/pkg/aggregation"

// builtinAggregator resolves an AggregationDef Select entry's Func name to
// the engine's built-in aggregator constructor.
func builtinAggregator(name string) (func() aggregation.Aggregator, bool) {
	switch name {
	case "sum":
		return aggregation.NewSum, true
	case "count":
		return aggregation.NewCount, true
	case "avg":
		return aggregation.NewAvg, true
	case "min":
		return aggregation.NewMin, true
	case "max":
		return aggregation.NewMax, true
	case "minForever":
		return aggregation.NewMinForever, true
	case "maxForever":
		return aggregation.NewMaxForever, true
	case "distinctCount":
		return aggregation.NewDistinctCount, true
	default:
		return nil, false
	}
}
