package campaign

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Pool caps concurrently open sessions at its size. Sessions are owned by
// exactly one caller between Acquire and Release.
type Pool struct {
	transport Transport
	cfg       SMTPConfig
	slots     *semaphore.Weighted

	// first serializes opens until one has succeeded.
	first sync.Mutex

	mu     sync.Mutex
	idle   []Session
	open   int
	opened bool
	closed bool
}

// NewPool builds a pool of at most size sessions against cfg.
func NewPool(transport Transport, cfg SMTPConfig, size int) *Pool {
	return &Pool{
		transport: transport,
		cfg:       cfg,
		slots:     semaphore.NewWeighted(int64(size)),
	}
}

// Acquire blocks until a slot is free, then hands out an idle session or
// opens a new one. Opens are serialized until one succeeds; a failure
// before any success is fatal, since nothing could ever be delivered.
func (p *Pool) Acquire(ctx context.Context) (Session, error) {
	if err := p.slots.Acquire(ctx, 1); err != nil {
		return nil, err
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.slots.Release(1)
		return nil, ErrPoolClosed
	}
	if n := len(p.idle); n > 0 {
		s := p.idle[n-1]
		p.idle = p.idle[:n-1]
		p.mu.Unlock()
		return s, nil
	}
	opened := p.opened
	p.mu.Unlock()

	if !opened {
		p.first.Lock()
		defer p.first.Unlock()
		p.mu.Lock()
		opened = p.opened
		p.mu.Unlock()
	}

	s, err := p.transport.Open(ctx, p.cfg)
	if err != nil {
		p.slots.Release(1)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !opened {
			return nil, &FatalError{Cause: err}
		}
		return nil, &TransientSendError{Err: err}
	}

	p.mu.Lock()
	p.opened = true
	p.open++
	p.mu.Unlock()
	return s, nil
}

// Release returns s to the pool. Unhealthy sessions, and any session
// released after Shutdown, are closed instead of reused.
func (p *Pool) Release(s Session, healthy bool) {
	p.mu.Lock()
	if healthy && !p.closed {
		p.idle = append(p.idle, s)
		p.mu.Unlock()
		p.slots.Release(1)
		return
	}
	p.open--
	p.mu.Unlock()

	_ = s.Close()
	p.slots.Release(1)
}

// Shutdown closes idle sessions; in-flight ones close on Release.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	p.closed = true
	idle := p.idle
	p.idle = nil
	p.open -= len(idle)
	p.mu.Unlock()

	for _, s := range idle {
		_ = s.Close()
	}
}

// Open returns the number of sessions currently open.
func (p *Pool) Open() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}
