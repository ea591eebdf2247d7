package particles

// Emitter is a deterministic CPU particle emitter. Particles are born at even intervals over
// [FrameStart, FrameEnd) and live for Lifetime frames.
type Emitter interface {
	// SetTime moves the emitter to a point on the timeline.
	//
	// Parameters:
	//   - sec: the time in seconds
	SetTime(sec float64)

	// Frame returns the current timeline frame.
	//
	// Returns:
	//   - float64: the frame
	Frame() float64

	// Alive returns how many particles are alive at the current frame.
	//
	// Returns:
	//   - int: the alive count
	Alive() int

	// Ages returns the age in frames of every alive particle, oldest first.
	//
	// Returns:
	//   - []float64: the particle ages
	Ages() []float64
}

type emitter struct {
	frameStart float64
	frameEnd   float64
	lifetime   float64
	count      int
	framerate  float64
	cyclic     bool

	frame float64
	ages  []float64
}

var _ Emitter = &emitter{}

// NewEmitter creates an Emitter.
//
// Parameters:
//   - options: functional options to configure the emitter
//
// Returns:
//   - Emitter: the new emitter
func NewEmitter(options ...EmitterBuilderOption) Emitter {
	e := &emitter{
		frameStart: 1,
		frameEnd:   200,
		lifetime:   50,
		count:      1000,
		framerate:  24,
	}
	for _, opt := range options {
		opt(e)
	}
	e.frame = e.frameStart
	e.simulate()
	return e
}

func (e *emitter) SetTime(sec float64) {
	e.frame = sec * e.framerate
	e.simulate()
}

func (e *emitter) Frame() float64 {
	return e.frame
}

func (e *emitter) Alive() int {
	return len(e.ages)
}

func (e *emitter) Ages() []float64 {
	out := make([]float64, len(e.ages))
	copy(out, e.ages)
	return out
}

func (e *emitter) simulate() {
	e.ages = e.ages[:0]
	if e.count <= 0 || e.lifetime <= 0 {
		return
	}
	period := e.frameEnd - e.frameStart
	interval := period / float64(e.count)

	// A cyclic emitter still carries the tail of the previous cycle.
	if e.cyclic && period > 0 {
		e.collect(e.frame+period, interval)
	}
	e.collect(e.frame, interval)
}

func (e *emitter) collect(frame, interval float64) {
	for k := range e.count {
		age := frame - (e.frameStart + float64(k)*interval)
		if age < 0 {
			break
		}
		if age < e.lifetime {
			e.ages = append(e.ages, age)
		}
	}
}
