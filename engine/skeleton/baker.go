package skeleton

import (
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"go.uber.org/zap"

	"github.com/Carmen-Shannon/oxy-anim/engine/action"
)

// baker is the implementation of the Baker interface.
type baker struct {
	workers int
	logger  *zap.Logger

	poolOnce sync.Once
	pool     worker.DynamicWorkerPool
}

// Baker precomputes the skinning pose of every sample of an action.
type Baker interface {
	// Bake composes the pose of every sample of act on armature a.
	// Samples are split into contiguous chunks that run on a shared worker pool.
	//
	// Parameters:
	//   - a: the armature
	//   - act: the compiled action
	//   - pointers: bone pointers keyed by bone name
	//
	// Returns:
	//   - *action.PoseFrames: one trans and one quats array per sample
	//   - error: ErrUnknownBone if a pointer does not fit the armature
	Bake(a *Armature, act *action.Action, pointers map[string]BonePointer) (*action.PoseFrames, error)

	// Workers returns the number of parallel chunks a bake is split into.
	//
	// Returns:
	//   - int: the worker count
	Workers() int
}

var _ Baker = &baker{}

// NewBaker creates a Baker. With one worker, bakes run on the calling goroutine.
//
// Parameters:
//   - options: functional options for configuring the baker
//
// Returns:
//   - Baker: the baker
func NewBaker(options ...BakerBuilderOption) Baker {
	b := &baker{
		workers: 1,
		logger:  zap.NewNop(),
	}
	for _, opt := range options {
		opt(b)
	}
	return b
}

func (b *baker) Workers() int {
	return b.workers
}

func (b *baker) Bake(a *Armature, act *action.Action, pointers map[string]BonePointer) (*action.PoseFrames, error) {
	// validates the pointers once up front; each chunk builds its own copy
	if _, err := NewCompositor(a, pointers); err != nil {
		return nil, err
	}

	n := act.NumSamples()
	frames := &action.PoseFrames{
		Trans: make([][]float32, n),
		Quats: make([][]float32, n),
	}

	start := time.Now()
	chunks := b.workers
	if chunks > n {
		chunks = n
	}

	if chunks <= 1 {
		if err := bakeRange(a, act, pointers, frames, 0, n); err != nil {
			return nil, err
		}
	} else {
		b.poolOnce.Do(func() {
			b.pool = worker.NewDynamicWorkerPool(b.workers, 256, 1*time.Second)
		})

		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			errs []error
		)
		size := (n + chunks - 1) / chunks
		for id, lo := 0, 0; lo < n; id, lo = id+1, lo+size {
			hi := min(lo+size, n)
			wg.Add(1)
			b.pool.SubmitTask(worker.Task{
				ID: id,
				Do: func() (any, error) {
					defer wg.Done()
					if err := bakeRange(a, act, pointers, frames, lo, hi); err != nil {
						mu.Lock()
						errs = append(errs, err)
						mu.Unlock()
						return nil, err
					}
					return nil, nil
				},
			})
		}
		wg.Wait()
		if len(errs) > 0 {
			return nil, fmt.Errorf("bake %q: %w", act.Name(), errs[0])
		}
	}

	b.logger.Debug("baked action pose",
		zap.String("armature", a.Name()),
		zap.String("action", act.Name()),
		zap.Int("samples", n),
		zap.Int("chunks", max(chunks, 1)),
		zap.Duration("took", time.Since(start)),
	)
	return frames, nil
}

func bakeRange(a *Armature, act *action.Action, pointers map[string]BonePointer, frames *action.PoseFrames, lo, hi int) error {
	c, err := NewCompositor(a, pointers)
	if err != nil {
		return err
	}
	for i := lo; i < hi; i++ {
		frames.Trans[i], frames.Quats[i] = c.ComposeSample(act, i)
	}
	return nil
}
