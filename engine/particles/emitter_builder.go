package particles

// EmitterBuilderOption is a functional option for configuring an Emitter during construction.
type EmitterBuilderOption func(*emitter)

// WithFrameRange sets the emission window.
//
// Parameters:
//   - start: the first emission frame
//   - end: the frame emission stops
//
// Returns:
//   - EmitterBuilderOption: functional option to set the window
func WithFrameRange(start, end float64) EmitterBuilderOption {
	return func(e *emitter) {
		e.frameStart = start
		e.frameEnd = max(end, start)
	}
}

// WithLifetime sets how many frames each particle lives.
func WithLifetime(frames float64) EmitterBuilderOption {
	return func(e *emitter) {
		e.lifetime = frames
	}
}

// WithCount sets the number of particles emitted per cycle.
func WithCount(count int) EmitterBuilderOption {
	return func(e *emitter) {
		e.count = count
	}
}

// WithFramerate sets the frames per second used to convert SetTime seconds to frames.
func WithFramerate(fps float64) EmitterBuilderOption {
	return func(e *emitter) {
		if fps > 0 {
			e.framerate = fps
		}
	}
}

// WithCyclic keeps particles from the previous cycle alive after the timeline wraps.
func WithCyclic(cyclic bool) EmitterBuilderOption {
	return func(e *emitter) {
		e.cyclic = cyclic
	}
}
