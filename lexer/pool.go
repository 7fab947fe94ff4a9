package lexer

import (
	"context"
	"sync"
)

// Pool hands out Lexers so that each is used by at most one goroutine at a
// time. All lexers in a pool share one configuration.
type Pool struct {
	free chan *Lexer

	mu    sync.Mutex
	inUse map[*Lexer]struct{}
}

// NewPool returns a pool of size lexers, each configured by opts.
func NewPool(size int, opts ...Option) *Pool {
	if size < 1 {
		size = 1
	}
	p := &Pool{
		free:  make(chan *Lexer, size),
		inUse: make(map[*Lexer]struct{}, size),
	}
	for i := 0; i < size; i++ {
		p.free <- New(opts...)
	}
	return p
}

// Acquire waits for a free lexer. It fails only if ctx is done first.
func (p *Pool) Acquire(ctx context.Context) (*Lexer, error) {
	select {
	case l := <-p.free:
		p.mu.Lock()
		p.inUse[l] = struct{}{}
		p.mu.Unlock()
		return l, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Release returns a lexer obtained from Acquire. Releasing a lexer twice,
// or one that came from elsewhere, panics.
func (p *Pool) Release(l *Lexer) {
	p.mu.Lock()
	_, found := p.inUse[l]
	delete(p.inUse, l)
	p.mu.Unlock()
	if !found {
		panic("lexer: Release of a lexer not acquired from this pool")
	}
	p.free <- l
}

// InUse returns the number of lexers currently acquired.
func (p *Pool) InUse() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.inUse)
}
