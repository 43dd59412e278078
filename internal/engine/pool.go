package engine

import "sync"

// Pool hands out engines for concurrent audits. Engines hold per-instance
// registries, caches, and redaction logs, so one engine must never serve
// two audits at once; the pool gives each in-flight request its own.
type Pool struct {
	inner sync.Pool
}

// NewPool builds engines on demand with newEngine.
func NewPool(newEngine func() *Engine) *Pool {
	return &Pool{inner: sync.Pool{
		New: func() interface{} { return newEngine() },
	}}
}

// Get returns an idle engine, building one if none is available.
func (p *Pool) Get() *Engine {
	return p.inner.Get().(*Engine)
}

// Put returns an engine to the pool. The redaction log is cleared so
// reused engines do not accumulate entries across requests.
func (p *Pool) Put(e *Engine) {
	e.redactor.ClearLog()
	p.inner.Put(e)
}
