package processor

import "sync"

// Partitioner lazily clones an independent chain per partition key, the
// way a query's PARTITION BY clause isolates window/aggregator state
// across keys without the planner needing to know the key set up front.
type Partitioner struct {
	template Processor
	qctx     QueryContext

	mu     sync.RWMutex
	chains map[string]Processor
}

// NewPartitioner builds a partitioner that clones template on first
// access to each key.
func NewPartitioner(template Processor, qctx QueryContext) *Partitioner {
	return &Partitioner{
		template: template,
		qctx:     qctx,
		chains:   make(map[string]Processor),
	}
}

// ChainFor returns the chain for key, cloning a fresh one from the
// template the first time key is seen.
func (p *Partitioner) ChainFor(key string) Processor {
	p.mu.RLock()
	chain, ok := p.chains[key]
	p.mu.RUnlock()
	if ok {
		return chain
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if chain, ok := p.chains[key]; ok {
		return chain
	}

	qctx := p.qctx
	qctx.PartitionKey = key
	chain = CloneChain(p.template, &qctx)
	p.chains[key] = chain
	return chain
}

// Keys returns the currently materialised partition keys.
func (p *Partitioner) Keys() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	keys := make([]string, 0, len(p.chains))
	for k := range p.chains {
		keys = append(keys, k)
	}
	return keys
}

// Count reports how many partitions have been materialised.
func (p *Partitioner) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.chains)
}
