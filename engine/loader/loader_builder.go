package loader

import (
	"go.uber.org/zap"

	"github.com/Carmen-Shannon/oxy-anim/engine/action"
	"github.com/Carmen-Shannon/oxy-anim/engine/curve"
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithStore sets the action store compiled actions are registered in.
//
// Parameters:
//   - store: the action store
//
// Returns:
//   - LoaderBuilderOption: a function that applies the store option to a loader
func WithStore(store *action.Store) LoaderBuilderOption {
	return func(l *loader) {
		l.store = store
	}
}

// WithLogger sets the logger.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - LoaderBuilderOption: a function that applies the logger option to a loader
func WithLogger(logger *zap.Logger) LoaderBuilderOption {
	return func(l *loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithSamplerOptions sets the curve sampling options actions are compiled with.
//
// Parameters:
//   - opts: the sampling options
//
// Returns:
//   - LoaderBuilderOption: a function that applies the sampler option to a loader
func WithSamplerOptions(opts curve.Options) LoaderBuilderOption {
	return func(l *loader) {
		l.sampler = opts
	}
}

// WithFramerate sets the frames per second glTF keyframe times are converted with.
//
// Parameters:
//   - fps: frames per second, ignored when not positive
//
// Returns:
//   - LoaderBuilderOption: a function that applies the framerate option to a loader
func WithFramerate(fps float64) LoaderBuilderOption {
	return func(l *loader) {
		if fps > 0 {
			l.framerate = fps
		}
	}
}

// WithAsset pre-populates the cache with an asset. Its actions are not registered in the store.
//
// Parameters:
//   - asset: the asset, cached under its Source
//
// Returns:
//   - LoaderBuilderOption: a function that applies the asset option to a loader
func WithAsset(asset *Asset) LoaderBuilderOption {
	return func(l *loader) {
		l.cache[asset.Source] = asset
	}
}
