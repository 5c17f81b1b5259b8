// Package worker builds toolpath geometry off the caller's goroutine.
//
// A Loader owns one background goroutine that parses G-code programs on
// request and replies on a per-request channel, so a UI or session loop is
// never blocked by a large file. Recently parsed programs are cached by
// content hash; reloading the same file after an edit-and-revert is free.
package worker

import (
	"bytes"
	"context"
	"crypto/sha256"
	"errors"
	"sync"
	"time"

	visualizer "github.com/Sienci-Labs/gsender-sub000"
	"github.com/Sienci-Labs/gsender-sub000/internal/cache"
	"github.com/Sienci-Labs/gsender-sub000/internal/parallel"
	"github.com/Sienci-Labs/gsender-sub000/internal/toolpath"
)

// DefaultCacheSize is the number of parsed programs kept.
const DefaultCacheSize = 4

// queueSize is the number of requests Load accepts without blocking.
const queueSize = 16

// ErrClosed is returned for requests made after Close.
var ErrClosed = errors.New("worker: loader closed")

// Result is the reply to one Load request. Cached geometries are shared
// between results and must be treated as read-only; the tracker copies the
// color buffer it paints on.
type Result struct {
	Name     string
	Geometry *visualizer.Geometry
	Cached   bool
	Elapsed  time.Duration
	Err      error
}

// Option configures a Loader.
type Option func(*options)

type options struct {
	cacheSize int
	workers   int
	parse     []toolpath.Option
}

// WithCacheSize sets how many parsed programs are kept. 0 disables caching.
func WithCacheSize(n int) Option {
	return func(o *options) {
		o.cacheSize = max(n, 0)
	}
}

// WithWorkers sets the size of the pool that fills color buffers.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithParseOptions sets toolpath options applied to every request.
func WithParseOptions(opts ...toolpath.Option) Option {
	return func(o *options) {
		o.parse = append(o.parse, opts...)
	}
}

type key [sha256.Size]byte

type request struct {
	ctx   context.Context
	name  string
	data  []byte
	reply chan Result
}

// Loader parses G-code on a background goroutine.
type Loader struct {
	opts      options
	requests  chan request
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
	pool      *parallel.WorkerPool
	cache     *cache.Cache[key, *visualizer.Geometry]

	mu     sync.RWMutex // held by Load while enqueueing
	closed bool
}

// NewLoader starts a loader. Call Close to stop it.
func NewLoader(opts ...Option) *Loader {
	o := options{cacheSize: DefaultCacheSize}
	for _, opt := range opts {
		opt(&o)
	}

	l := &Loader{
		opts:     o,
		requests: make(chan request, queueSize),
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
		pool:     parallel.NewWorkerPool(o.workers),
	}
	if o.cacheSize > 0 {
		l.cache = cache.New[key, *visualizer.Geometry](o.cacheSize)
		l.cache.OnEvict(func(_ key, g *visualizer.Geometry) {
			visualizer.Logger().Debug("toolpath evicted", "vertices", g.VertexCount())
		})
	}

	go l.run()
	return l
}

func (l *Loader) run() {
	defer close(l.stopped)
	for {
		select {
		case <-l.done:
			return
		case req := <-l.requests:
			req.reply <- l.handle(req)
		}
	}
}

func (l *Loader) handle(req request) Result {
	start := time.Now()
	res := Result{Name: req.name}
	if err := req.ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	k := key(sha256.Sum256(req.data))
	if l.cache != nil {
		if g, ok := l.cache.Get(k); ok {
			res.Geometry, res.Cached = g, true
			res.Elapsed = time.Since(start)
			visualizer.Logger().Debug("toolpath cache hit", "name", req.name)
			return res
		}
	}

	parse := append([]toolpath.Option{toolpath.WithPool(l.pool)}, l.opts.parse...)
	g, err := toolpath.ParseContext(req.ctx, bytes.NewReader(req.data), parse...)
	res.Elapsed = time.Since(start)
	if err != nil {
		res.Err = err
		visualizer.Logger().Warn("toolpath parse failed", "name", req.name, "err", err)
		return res
	}
	if l.cache != nil {
		l.cache.Set(k, g)
	}
	res.Geometry = g

	visualizer.Logger().Info("toolpath parsed",
		"name", req.name,
		"lines", len(g.Frames)-1,
		"vertices", g.VertexCount(),
		"elapsed", res.Elapsed)
	return res
}

// Load queues data for parsing and returns the channel the Result will be
// delivered on. The channel receives exactly one value. Requests are served
// in the order Load returned; Load blocks while the queue is full. A request
// whose ctx is done before it is parsed fails with ctx.Err().
func (l *Loader) Load(ctx context.Context, name string, data []byte) <-chan Result {
	reply := make(chan Result, 1)
	req := request{ctx: ctx, name: name, data: data, reply: reply}

	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		reply <- Result{Name: name, Err: ErrClosed}
		return reply
	}
	select {
	case l.requests <- req:
	case <-ctx.Done():
		reply <- Result{Name: name, Err: ctx.Err()}
	case <-l.done:
		reply <- Result{Name: name, Err: ErrClosed}
	}
	return reply
}

// LoadWait is Load followed by waiting for the result.
func (l *Loader) LoadWait(ctx context.Context, name string, data []byte) (*visualizer.Geometry, error) {
	res := <-l.Load(ctx, name, data)
	return res.Geometry, res.Err
}

// CacheStats returns the statistics of the parse cache.
func (l *Loader) CacheStats() cache.Stats {
	if l.cache == nil {
		return cache.Stats{}
	}
	return l.cache.Stats()
}

// Close stops the loader after the request in progress. Queued and later
// requests fail with ErrClosed. Close is safe to call more than once.
func (l *Loader) Close() {
	l.closeOnce.Do(func() {
		close(l.done)
		l.mu.Lock()
		l.closed = true
		l.mu.Unlock()
		<-l.stopped

		for {
			select {
			case req := <-l.requests:
				req.reply <- Result{Name: req.name, Err: ErrClosed}
			default:
				l.pool.Close()
				return
			}
		}
	})
}
