package skeleton

import "go.uber.org/zap"

// BakerBuilderOption is a functional option for configuring a Baker.
type BakerBuilderOption func(*baker)

// WithWorkers sets how many chunks a bake is split into. Values < 1 are treated as 1.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - BakerBuilderOption: option function to apply
func WithWorkers(n int) BakerBuilderOption {
	return func(b *baker) {
		if n < 1 {
			n = 1
		}
		b.workers = n
	}
}

// WithLogger sets the logger used for bake diagnostics.
//
// Parameters:
//   - logger: the zap logger; nil keeps the no-op logger
//
// Returns:
//   - BakerBuilderOption: option function to apply
func WithLogger(logger *zap.Logger) BakerBuilderOption {
	return func(b *baker) {
		if logger != nil {
			b.logger = logger
		}
	}
}
