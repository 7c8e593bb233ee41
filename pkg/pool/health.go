package pool

import (
	"time"

	"github.com/corestream/corestream/pkg/metrics"
)

// Recommendation is an actionable suggestion derived from a pool's current
// occupancy and back-pressure history.
type Recommendation int

const (
	Healthy Recommendation = iota
	Monitor
	ReduceLoad
	CheckDownstream
	IncreaseCapacity
)

func (r Recommendation) String() string {
	switch r {
	case Healthy:
		return "healthy"
	case Monitor:
		return "monitor"
	case ReduceLoad:
		return "reduce_load"
	case CheckDownstream:
		return "check_downstream"
	case IncreaseCapacity:
		return "increase_capacity"
	default:
		return "unknown"
	}
}

// Score reports pool health on a 0-100 scale: 100 is idle, 0 is saturated
// and circuit-broken. Derived from ring occupancy plus whether this pool's
// circuit breaker (if configured) is currently open.
func (p *EventPool) Score() int {
	occupancy := float64(p.Len()) / float64(p.Capacity())
	score := 100 - int(occupancy*100)

	p.bp.mu.Lock()
	breakerOpen := time.Now().Before(p.bp.breakerOpenUntil)
	p.bp.mu.Unlock()
	if breakerOpen {
		score -= 50
	}
	if score < 0 {
		score = 0
	}

	metrics.PoolHealthScore.WithLabelValues(p.name).Set(float64(score))
	return score
}

// Recommend derives an operator-facing recommendation from Score and
// occupancy.
func (p *EventPool) Recommend() Recommendation {
	score := p.Score()
	occupancy := float64(p.Len()) / float64(p.Capacity())

	switch {
	case score >= 90:
		return Healthy
	case p.bp.cfg.Strategy == CircuitBreaker && score < 30:
		return CheckDownstream
	case occupancy >= 0.95:
		return IncreaseCapacity
	case score >= 70:
		return Monitor
	default:
		return ReduceLoad
	}
}
