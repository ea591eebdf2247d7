package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Carmen-Shannon/oxy-anim/engine/action"
	"github.com/Carmen-Shannon/oxy-anim/engine/curve"
	"github.com/Carmen-Shannon/oxy-anim/engine/skeleton"
)

// Format identifies an asset file format.
type Format int

const (
	// FormatYAML is the oxy-anim YAML asset format.
	FormatYAML Format = iota
	// FormatGLTF is glTF 2.0, as .gltf JSON or .glb binary.
	FormatGLTF
)

func (f Format) String() string {
	switch f {
	case FormatYAML:
		return "yaml"
	case FormatGLTF:
		return "gltf"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// FormatForPath picks the asset format from a file extension.
//
// Parameters:
//   - path: the asset path
//
// Returns:
//   - Format: the format
//   - error: ErrUnsupportedFormat for any other extension
func FormatForPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".gltf", ".glb":
		return FormatGLTF, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	store     *action.Store
	logger    *zap.Logger
	sampler   curve.Options
	framerate float64

	cache    map[string]*Asset
	backends map[Format]loaderBackend
}

// Loader imports animation assets, compiles their actions into an action store and caches
// the result by source. The source of a file asset is its path.
type Loader interface {
	// Load imports an asset file. A cached asset is returned without touching the file.
	//
	// Parameters:
	//   - path: the asset path; the extension selects the backend
	//
	// Returns:
	//   - *Asset: the loaded asset
	//   - error: ErrUnsupportedFormat, or a decode or compile error
	Load(path string) (*Asset, error)

	// LoadReader imports an asset from a stream and caches it under source.
	//
	// Parameters:
	//   - source: the cache key and action source
	//   - r: the reader providing the asset data
	//   - format: the asset format
	//
	// Returns:
	//   - *Asset: the loaded asset
	//   - error: a decode or compile error
	LoadReader(source string, r io.Reader, format Format) (*Asset, error)

	// Reload drops the cached asset and its actions, then loads the file again.
	// On failure the previous asset stays unloaded.
	//
	// Parameters:
	//   - path: the asset path
	//
	// Returns:
	//   - *Asset: the reloaded asset
	//   - error: the load error
	Reload(path string) (*Asset, error)

	// Unload drops a cached asset and removes its actions and cached poses from the store.
	//
	// Parameters:
	//   - source: the asset source
	//
	// Returns:
	//   - int: the number of actions removed
	Unload(source string) int

	// Get returns a cached asset, or nil.
	//
	// Parameters:
	//   - source: the asset source
	//
	// Returns:
	//   - *Asset: the asset or nil
	Get(source string) *Asset

	// Assets returns a snapshot of the cache.
	//
	// Returns:
	//   - map[string]*Asset: cached assets keyed by source
	Assets() map[string]*Asset

	// Store returns the action store compiled actions are registered in.
	//
	// Returns:
	//   - *action.Store: the store
	Store() *action.Store
}

var _ Loader = &loader{}

// NewLoader creates a Loader with the YAML and glTF backends.
//
// Parameters:
//   - options: functional options to configure the loader
//
// Returns:
//   - Loader: the new loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	l := &loader{
		logger:    zap.NewNop(),
		sampler:   curve.DefaultOptions(),
		framerate: 24,
		cache:     make(map[string]*Asset),
	}
	for _, opt := range options {
		opt(l)
	}
	if l.store == nil {
		l.store = action.NewStore()
	}
	l.backends = map[Format]loaderBackend{
		FormatYAML: newYAMLLoaderBackend(),
		FormatGLTF: newGLTFLoaderBackend(l.framerate),
	}
	return l
}

func (l *loader) Load(path string) (*Asset, error) {
	if cached := l.Get(path); cached != nil {
		return cached, nil
	}

	backend, err := l.resolveBackend(path)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	imported, err := backend.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return l.register(path, imported, start)
}

func (l *loader) LoadReader(source string, r io.Reader, format Format) (*Asset, error) {
	if cached := l.Get(source); cached != nil {
		return cached, nil
	}

	backend, ok := l.backends[format]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, format)
	}

	start := time.Now()
	name := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	imported, err := backend.LoadReader(name, r)
	if err != nil {
		return nil, fmt.Errorf("failed to load from reader %q: %w", source, err)
	}
	return l.register(source, imported, start)
}

func (l *loader) Reload(path string) (*Asset, error) {
	removed := l.Unload(path)
	l.logger.Debug("reloading asset", zap.String("source", path), zap.Int("removed_actions", removed))
	return l.Load(path)
}

func (l *loader) Unload(source string) int {
	l.mu.Lock()
	delete(l.cache, source)
	l.mu.Unlock()
	return l.store.RemoveBySource(source)
}

func (l *loader) Get(source string) *Asset {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.cache[source]
}

func (l *loader) Assets() map[string]*Asset {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make(map[string]*Asset, len(l.cache))
	for k, v := range l.cache {
		out[k] = v
	}
	return out
}

func (l *loader) Store() *action.Store {
	return l.store
}

// resolveBackend selects the backend for a file extension.
func (l *loader) resolveBackend(path string) (loaderBackend, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	return l.backends[format], nil
}

// register compiles every action of an imported asset, then publishes them all at once.
func (l *loader) register(source string, imported *importedAsset, start time.Time) (*Asset, error) {
	asset := &Asset{
		Name:      imported.Name,
		Source:    source,
		Armatures: make(map[string]*skeleton.Armature, len(imported.Armatures)),
		Objects:   imported.Objects,
	}
	for _, a := range imported.Armatures {
		asset.Armatures[a.Name()] = a
	}

	for _, raw := range imported.Actions {
		raw.Source = source
		act, err := action.Compile(raw, l.sampler)
		if err != nil {
			return nil, fmt.Errorf("asset %q: %w", source, err)
		}
		asset.Actions = append(asset.Actions, act)
	}

	l.mu.Lock()
	if cached, ok := l.cache[source]; ok {
		l.mu.Unlock()
		return cached, nil
	}
	l.cache[source] = asset
	for _, act := range asset.Actions {
		l.store.Append(act)
	}
	l.mu.Unlock()

	l.logger.Info("asset loaded",
		zap.String("source", source),
		zap.String("name", asset.Name),
		zap.Int("armatures", len(asset.Armatures)),
		zap.Int("actions", len(asset.Actions)),
		zap.Int("objects", len(asset.Objects)),
		zap.Duration("took", time.Since(start)),
	)
	return asset, nil
}
