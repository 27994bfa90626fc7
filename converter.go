package vconv

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gogpu/vconv/internal/parallel"
	"github.com/gogpu/vconv/internal/pipeline"
	"github.com/gogpu/vconv/video"
)

// Converter converts frames of one descriptor into frames of another.
//
// Convert may be called concurrently with itself and with SetConfig. Each
// call uses the plan that was current when it started.
type Converter struct {
	in, out video.Info

	// mu serializes SetConfig and Close.
	mu     sync.Mutex
	state  atomic.Pointer[convState]
	closed atomic.Bool
}

// convState is an immutable snapshot swapped as a whole by SetConfig.
type convState struct {
	cfg  Config
	plan *pipeline.Plan
	pool *parallel.WorkerPool // nil for a single band
}

// New creates a Converter. A nil cfg uses DefaultConfig.
func New(in, out video.Info, cfg *Config) (*Converter, error) {
	c := DefaultConfig()
	if cfg != nil {
		c = *cfg
	}
	s, err := newState(in, out, c, nil)
	if err != nil {
		return nil, err
	}
	conv := &Converter{in: in, out: out}
	conv.state.Store(s)
	return conv, nil
}

// newState plans cfg and reuses prev's worker pool when the band count is
// unchanged.
func newState(in, out video.Info, cfg Config, prev *convState) (*convState, error) {
	plan, err := buildPlan(in, out, cfg)
	if err != nil {
		return nil, err
	}
	s := &convState{cfg: cfg, plan: plan}
	if bands := plan.Bands(); bands > 1 {
		if prev != nil && prev.pool != nil && prev.pool.Workers() == bands {
			s.pool = prev.pool
		} else {
			s.pool = parallel.NewWorkerPool(bands)
		}
	}
	return s, nil
}

// Close stops the worker goroutines. Close is idempotent; Convert and
// SetConfig return ErrClosed afterwards.
func (c *Converter) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed.CompareAndSwap(false, true) {
		return
	}
	if s := c.state.Load(); s.pool != nil {
		s.pool.Close()
	}
}

// Config returns the configuration in effect, with regions resolved to
// their actual origin and size.
func (c *Converter) Config() Config {
	s := c.state.Load()
	cfg := s.cfg
	src, dst := s.plan.Src, s.plan.Dst
	cfg.SrcX, cfg.SrcY, cfg.SrcWidth, cfg.SrcHeight = src.Min.X, src.Min.Y, src.Dx(), src.Dy()
	cfg.DestX, cfg.DestY, cfg.DestWidth, cfg.DestHeight = dst.Min.X, dst.Min.Y, dst.Dx(), dst.Dy()
	return cfg
}

// SetConfig replans the conversion with cfg. On error the current plan
// stays in effect.
func (c *Converter) SetConfig(cfg Config) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed.Load() {
		return ErrClosed
	}

	prev := c.state.Load()
	s, err := newState(c.in, c.out, cfg, prev)
	if err != nil {
		return err
	}
	c.state.Store(s)
	if prev.pool != nil && prev.pool != s.pool {
		// Bands still queued on the old pool finish before Close returns.
		prev.pool.Close()
	}
	Logger().Info("vconv: configuration updated", "plan", s.plan.String(), "bands", s.plan.Bands())
	return nil
}

// Convert converts src into dst. The frames must have the format and size
// the Converter was created with.
func (c *Converter) Convert(src, dst *video.Frame) error {
	if c.closed.Load() {
		return ErrClosed
	}
	s := c.state.Load()
	var r pipeline.Runner
	if s.pool != nil {
		r = s.pool
	}
	if err := s.plan.Execute(src, dst, r); err != nil {
		return fmt.Errorf("vconv: convert: %w", err)
	}
	return nil
}
