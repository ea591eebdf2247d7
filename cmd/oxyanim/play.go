package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Carmen-Shannon/oxy-anim/engine"
	"github.com/Carmen-Shannon/oxy-anim/engine/animator"
	"github.com/Carmen-Shannon/oxy-anim/engine/audio"
	"github.com/Carmen-Shannon/oxy-anim/engine/loader"
)

func newPlayCmd(a *app) *cobra.Command {
	var (
		duration time.Duration
		watch    bool
	)

	cmd := &cobra.Command{
		Use:   "play <asset>",
		Short: "Play the default animations of every object of an asset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()
			_, err := a.play(ctx, args[0], duration, watch || a.cfg.Watch.Enabled)
			return err
		},
	}
	cmd.Flags().DurationVar(&duration, "duration", 5*time.Second, "how long to run; 0 runs until interrupted")
	cmd.Flags().BoolVar(&watch, "watch", false, "reload the asset when it changes on disk")
	return cmd
}

// session owns the entities of one loaded asset. It is only touched from the
// engine goroutine once the engine runs.
type session struct {
	app      *app
	dir      string
	loader   loader.Loader
	animator animator.Animator
	space    *cp.Space
	entities []*animator.Entity
	finished int
}

// newSession loads the asset at path and binds its objects.
func (a *app) newSession(path string) (*session, *loader.Asset, error) {
	l := a.newLoader()
	asset, err := l.Load(path)
	if err != nil {
		return nil, nil, err
	}

	s := &session{
		app:      a,
		dir:      filepath.Dir(path),
		loader:   l,
		animator: a.newAnimator(l),
		space:    cp.NewSpace(),
	}
	if err := s.bind(asset); err != nil {
		return nil, nil, err
	}
	return s, asset, nil
}

// speaker opens the sound of a SPEAKER object. Objects without a sound stay silent.
func (s *session) speaker(obj loader.Object) animator.Speaker {
	if obj.Sound == "" {
		return nil
	}
	path := obj.Sound
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.dir, path)
	}
	sp, err := audio.LoadSpeaker(audio.SharedContext(), path, audio.WithLogger(s.app.logger))
	if err != nil {
		s.app.logger.Warn("failed to load speaker sound", zap.String("object", obj.Name), zap.Error(err))
		return nil
	}
	return sp
}

func (s *session) bind(asset *loader.Asset) error {
	entities, err := loader.NewEntities(asset,
		loader.WithEntityFramerate(s.app.cfg.Animation.Framerate),
		loader.WithPhysicsSpace(s.space),
		loader.WithSpeakerFactory(s.speaker),
	)
	if err != nil {
		return err
	}
	s.release()
	s.entities = entities

	for _, e := range entities {
		if err := s.animator.ApplyDefault(e); err != nil {
			s.app.logger.Warn("failed to apply default animations", zap.String("entity", e.Name()), zap.Error(err))
		}
		s.animator.Play(e, animator.SlotAll, s.onFinish)
	}
	return nil
}

// release drops the current entities from the animator and the physics space.
func (s *session) release() {
	for _, e := range s.entities {
		s.animator.Remove(e)
	}
	loader.ReleaseEntities(s.entities)
	s.entities = nil
}

func (s *session) onFinish(e *animator.Entity, slot int) {
	s.finished++
	name, _ := s.animator.AnimName(e, slot)
	s.app.logger.Info("animation finished",
		zap.String("entity", e.Name()),
		zap.Int("slot", slot),
		zap.String("animation", name),
	)
}

func (s *session) reload(path string) {
	asset, err := s.loader.Reload(path)
	if err != nil {
		s.app.logger.Warn("asset reload failed", zap.String("path", path), zap.Error(err))
		return
	}
	if err := s.bind(asset); err != nil {
		s.app.logger.Warn("asset rebind failed", zap.String("path", path), zap.Error(err))
		return
	}
	s.app.logger.Info("asset reloaded", zap.String("path", path), zap.Int("entities", len(s.entities)))
}

// play runs the engine for d (or until ctx ends when d is 0) and returns the session.
func (a *app) play(ctx context.Context, path string, d time.Duration, watch bool) (*session, error) {
	s, asset, err := a.newSession(path)
	if err != nil {
		return nil, err
	}
	defer s.release()

	var changes <-chan string
	var w loader.Watcher
	if watch {
		w, err = loader.NewWatcher(
			loader.WithDebounce(a.cfg.WatchDebounce()),
			loader.WithWatcherLogger(a.logger),
		)
		if err != nil {
			return nil, err
		}
		defer w.Close()
		if err := w.Add(path); err != nil {
			return nil, err
		}
		changes = w.Changes()
	}

	eng := engine.NewEngine(
		engine.WithAnimator(s.animator),
		engine.WithLogger(a.logger),
		engine.WithTickRate(a.cfg.Engine.TickRate),
		engine.WithProfiling(a.cfg.Engine.Profiling),
		engine.WithTickCallback(func(dt float64) {
			s.space.Step(dt)
			select {
			case changed := <-changes:
				s.reload(changed)
			default:
			}
		}),
	)

	if d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return eng.Run(gctx)
	})
	if w != nil {
		g.Go(func() error {
			return w.Run(gctx)
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		return s, fmt.Errorf("play %s: %w", path, err)
	}

	a.logger.Info("playback stopped",
		zap.String("asset", asset.Name),
		zap.Uint64("ticks", eng.Ticks()),
		zap.Int("finished", s.finished),
	)
	return s, nil
}
