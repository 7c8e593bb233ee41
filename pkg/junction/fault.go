package junction

import (
	"github.com/corestream/corestream/pkg/event"
	"github.com/corestream/corestream/pkg/metrics"
)

func (o OnErrorAction) String() string {
	switch o {
	case Log:
		return "log"
	case Stream:
		return "stream"
	case Store:
		return "store"
	case Drop:
		return "drop"
	default:
		return "unknown"
	}
}

// routeFault converts a caught subscriber failure into the configured
// on_error action. It never panics and never blocks the caller beyond the
// cost of the action itself.
func (j *Junction) routeFault(ce *event.ComplexEvent, err error) {
	metrics.JunctionFaultsTotal.WithLabelValues(j.id, j.onError.String()).Inc()

	switch j.onError {
	case Log:
		logger.Error().Str("stream", j.id).Err(err).Msg("subscriber fault")

	case Stream:
		j.mu.RLock()
		fault := j.fault
		j.mu.RUnlock()
		if fault == nil {
			logger.Warn().Str("stream", j.id).Msg("on_error=stream but no fault_junction configured")
			return
		}
		faultEvent := &event.ComplexEvent{
			Timestamp:  ce.Timestamp,
			EventType:  event.Current,
			OutputData: []event.Value{event.String(j.id), event.String(err.Error())},
		}
		_ = fault.Publish(backgroundCtx, faultEvent)

	case Store:
		if j.errStore == nil {
			logger.Warn().Str("stream", j.id).Msg("on_error=store but no error store configured")
			return
		}
		j.errStore.StoreFault(j.id, err, ce)

	case Drop:
		// intentionally discarded
	}
}
