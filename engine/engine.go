package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-anim/engine/animator"
	"github.com/Carmen-Shannon/oxy-anim/engine/profiler"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// engine implements the Engine interface.
// Drives the animator from a fixed-rate ticker.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running atomic.Bool
	ticks   atomic.Uint64

	mu          sync.Mutex
	quitChannel chan struct{}
	quitOnce    *sync.Once // Ensures quitChannel is only closed once per run

	animator animator.Animator
	logger   *zap.Logger

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool

	engineTickRate time.Duration
	tickCallback   atomic.Pointer[func(deltaTime float64)]
}

// Engine is the main entry point for the engine.
// It advances every animated entity once per tick.
type Engine interface {
	// Animator returns the animator driven by the engine.
	//
	// Returns:
	//   - animator.Animator: the animator instance
	Animator() animator.Animator

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in frames per second.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick after the animator update.
	// The callback runs on the engine goroutine so it may safely mutate animator state.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float64))

	// Run blocks running the tick loop until Quit is called or ctx is cancelled.
	//
	// Parameters:
	//   - ctx: context whose cancellation stops the loop
	//
	// Returns:
	//   - error: ErrAlreadyRunning, the context error, or an error recovered from a panicking tick
	Run(ctx context.Context) error

	// Quit signals the engine loop to stop. Safe to call more than once.
	Quit()

	// Running reports whether the loop is active.
	//
	// Returns:
	//   - bool: true while Run is executing
	Running() bool

	// Ticks returns the number of ticks processed since construction.
	//
	// Returns:
	//   - uint64: the tick count
	Ticks() uint64
}

var _ Engine = &engine{}

// NewEngine creates a new Engine.
// Panics when no animator is provided.
//
// Parameters:
//   - options: functional options to configure the engine
//
// Returns:
//   - Engine: the newly created engine instance
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		quitOnce:        &sync.Once{},
		logger:          zap.NewNop(),
		engineTickRate:  time.Second / 60,
	}
	for _, opt := range options {
		opt(e)
	}
	if e.animator == nil {
		panic("engine: animator is required")
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.logger))
	}
	return e
}

func (e *engine) Animator() animator.Animator {
	return e.animator
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

func (e *engine) SetTickRate(fps float64) {
	rate := tickDuration(fps)
	if !e.running.Load() {
		e.engineTickRate = rate
		return
	}
	// keep only the newest pending rate
	select {
	case <-e.tickRateChannel:
	default:
	}
	e.tickRateChannel <- rate
}

func (e *engine) SetTickCallback(callback func(deltaTime float64)) {
	if callback == nil {
		e.tickCallback.Store(nil)
		return
	}
	e.tickCallback.Store(&callback)
}

func (e *engine) Run(ctx context.Context) error {
	if !e.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer e.running.Store(false)

	e.mu.Lock()
	quit := e.quitChannel
	e.mu.Unlock()

	e.logger.Info("engine started", zap.Duration("tick", e.engineTickRate))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return e.handleEngine(gctx, quit)
	})
	err := g.Wait()

	e.reset()
	e.logger.Info("engine stopped", zap.Uint64("ticks", e.ticks.Load()))
	return err
}

func (e *engine) Quit() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.signalQuit()
}

func (e *engine) Running() bool {
	return e.running.Load()
}

func (e *engine) Ticks() uint64 {
	return e.ticks.Load()
}

// signalQuit closes the quit channel once. Callers hold mu.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

// reset arms a fresh quit channel so the engine can be run again.
func (e *engine) reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.signalQuit()
	e.quitChannel = make(chan struct{})
	e.quitOnce = &sync.Once{}
}

// handleEngine runs the fixed-rate tick loop.
func (e *engine) handleEngine(ctx context.Context, quit <-chan struct{}) (err error) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("engine tick recovered from panic", zap.Any("panic", r))
			err = fmt.Errorf("engine tick panicked: %v", r)
		}
	}()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-quit:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			dt := now.Sub(lastTick).Seconds()
			lastTick = now
			e.tick(dt)
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

func (e *engine) tick(dt float64) {
	if err := e.animator.Update(dt); err != nil {
		e.logger.Warn("animation update failed", zap.Error(err))
	}
	if cb := e.tickCallback.Load(); cb != nil {
		(*cb)(dt)
	}
	if e.profilingEnabled.Load() {
		e.profiler.Tick()
	}
	e.ticks.Add(1)
}

func tickDuration(fps float64) time.Duration {
	if fps <= 0 {
		fps = 60
	}
	return time.Duration(float64(time.Second) / fps)
}
