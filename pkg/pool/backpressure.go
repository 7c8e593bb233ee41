package pool

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/corestream/corestream/pkg/log"
	"github.com/corestream/corestream/pkg/metrics"
	"golang.org/x/time/rate"
)

// Strategy selects how a pool reacts once its ring is at capacity.
type Strategy int

const (
	Drop Strategy = iota
	Block
	BlockWithTimeout
	ExponentialBackoff
	CircuitBreaker
)

func (s Strategy) String() string {
	switch s {
	case Drop:
		return "drop"
	case Block:
		return "block"
	case BlockWithTimeout:
		return "block_with_timeout"
	case ExponentialBackoff:
		return "exponential_backoff"
	case CircuitBreaker:
		return "circuit_breaker"
	default:
		return "unknown"
	}
}

var (
	ErrDropped     = errors.New("pool: event dropped under back-pressure")
	ErrTimeout     = errors.New("pool: timed out waiting for pool capacity")
	ErrCircuitOpen = errors.New("pool: circuit breaker open, rejecting enqueue")
)

// BackpressureConfig tunes one BackpressureHandler.
type BackpressureConfig struct {
	Strategy                Strategy
	Timeout                 time.Duration // BlockWithTimeout
	RetryRateHz             float64       // Block/BlockWithTimeout: max retry attempts per second
	InitialBackoff          time.Duration // ExponentialBackoff
	MaxBackoff              time.Duration // ExponentialBackoff
	BreakerWindow           time.Duration // CircuitBreaker: how long it stays open once tripped
	BreakerFailureThreshold int           // CircuitBreaker: consecutive full-ring hits before tripping
}

// DefaultBackpressureConfig returns conservative Drop-strategy defaults.
func DefaultBackpressureConfig() BackpressureConfig {
	return BackpressureConfig{
		Strategy:                Drop,
		Timeout:                 time.Second,
		RetryRateHz:             1000,
		InitialBackoff:          time.Millisecond,
		MaxBackoff:              100 * time.Millisecond,
		BreakerWindow:           5 * time.Second,
		BreakerFailureThreshold: 10,
	}
}

// BackpressureHandler applies one Strategy whenever a pool's ring rejects
// an enqueue attempt.
type BackpressureHandler struct {
	cfg          BackpressureConfig
	retryLimiter *rate.Limiter

	mu               sync.Mutex
	consecutiveFull  int
	breakerOpenUntil time.Time
}

// NewBackpressureHandler builds a handler for the given config. Block and
// BlockWithTimeout pace their retry attempts through a token-bucket
// limiter rather than busy-sleeping, so a stalled downstream doesn't spin
// the caller's goroutine.
func NewBackpressureHandler(cfg BackpressureConfig) *BackpressureHandler {
	hz := cfg.RetryRateHz
	if hz <= 0 {
		hz = 1000
	}
	return &BackpressureHandler{
		cfg:          cfg,
		retryLimiter: rate.NewLimiter(rate.Limit(hz), 1),
	}
}

// Handle retries try (a single non-blocking enqueue attempt) according to
// the configured strategy, returning nil once it succeeds or an error if
// the strategy gives up.
func (h *BackpressureHandler) Handle(ctx context.Context, poolName string, try func() bool) error {
	metrics.PoolBackpressureTotal.WithLabelValues(poolName, h.cfg.Strategy.String()).Inc()

	switch h.cfg.Strategy {
	case Drop:
		metrics.PoolDroppedTotal.WithLabelValues(poolName).Inc()
		log.WithComponent("pool").Warn().Str("pool", poolName).Msg("dropping event under back-pressure")
		return ErrDropped

	case Block:
		for !try() {
			if err := h.retryLimiter.Wait(ctx); err != nil {
				return err
			}
		}
		return nil

	case BlockWithTimeout:
		deadline := time.Now().Add(h.cfg.Timeout)
		for !try() {
			if time.Now().After(deadline) {
				metrics.PoolTimeoutTotal.WithLabelValues(poolName).Inc()
				return ErrTimeout
			}
			waitCtx, cancel := context.WithDeadline(ctx, deadline)
			err := h.retryLimiter.Wait(waitCtx)
			cancel()
			if err != nil && ctx.Err() != nil {
				return ctx.Err()
			}
		}
		return nil

	case ExponentialBackoff:
		wait := h.cfg.InitialBackoff
		for !try() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			wait *= 2
			if wait > h.cfg.MaxBackoff {
				wait = h.cfg.MaxBackoff
			}
		}
		return nil

	case CircuitBreaker:
		h.mu.Lock()
		if time.Now().Before(h.breakerOpenUntil) {
			h.mu.Unlock()
			return ErrCircuitOpen
		}
		h.mu.Unlock()

		if try() {
			h.mu.Lock()
			h.consecutiveFull = 0
			h.mu.Unlock()
			return nil
		}

		h.mu.Lock()
		h.consecutiveFull++
		trip := h.consecutiveFull >= h.cfg.BreakerFailureThreshold
		if trip {
			h.breakerOpenUntil = time.Now().Add(h.cfg.BreakerWindow)
			h.consecutiveFull = 0
		}
		h.mu.Unlock()

		if trip {
			metrics.PoolCircuitBreaksTotal.WithLabelValues(poolName).Inc()
			log.WithComponent("pool").Warn().Str("pool", poolName).Msg("circuit breaker tripped")
		}
		metrics.PoolDroppedTotal.WithLabelValues(poolName).Inc()
		return ErrDropped

	default:
		return ErrDropped
	}
}
