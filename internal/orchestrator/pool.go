package orchestrator

import (
	"sync"

	"github.com/antoinebi/antoine/internal/company"
)

// pipelinePool is a bounded, mutex-guarded stack of constructed Pipeline
// instances (spec §4.6). Pipeline construction wires several clients
// together; reusing instances amortizes that cost across companies.
type pipelinePool struct {
	mu      sync.Mutex
	items   []*company.Pipeline
	cap     int
	factory func() *company.Pipeline
}

func newPipelinePool(cap int, factory func() *company.Pipeline) *pipelinePool {
	return &pipelinePool{cap: cap, factory: factory}
}

// acquire pops an instance from the stack, or constructs a new one if the
// stack is empty.
func (p *pipelinePool) acquire() *company.Pipeline {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := len(p.items)
	if n == 0 {
		return p.factory()
	}
	instance := p.items[n-1]
	p.items = p.items[:n-1]
	return instance
}

// release pushes instance back onto the stack, discarding it if the stack
// is already at capacity.
func (p *pipelinePool) release(instance *company.Pipeline) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.items) >= p.cap {
		return
	}
	p.items = append(p.items, instance)
}

// drain empties the pool, used during shutdown.
func (p *pipelinePool) drain() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.items = nil
}
