package teller

import (
	"time"

	"github.com/sarchlab/tellersim/sim/queueing"
	"github.com/sarchlab/tellersim/sim/timing"
	"github.com/sarchlab/tellersim/variate"
)

// DefaultNumCustomers is the number of customers a run serves unless told
// otherwise.
const DefaultNumCustomers = 500

// Builder can build bank simulations.
type Builder struct {
	engine       timing.Engine
	numCustomers int
	seed         int64
	seeded       bool
	src          variate.Source
	interarrival variate.Bounds
	service      variate.Bounds
}

// MakeBuilder creates a new Builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		numCustomers: DefaultNumCustomers,
		interarrival: variate.DefaultInterarrival,
		service:      variate.DefaultService,
	}
}

// WithEngine sets the engine that drives the simulation. A new SerialEngine
// is used if none is given.
func (b Builder) WithEngine(engine timing.Engine) Builder {
	b.engine = engine
	return b
}

// WithNumCustomers sets how many customers arrive during the run.
func (b Builder) WithNumCustomers(n int) Builder {
	b.numCustomers = n
	return b
}

// WithSeed seeds the uniform variate source so that the run is reproducible.
func (b Builder) WithSeed(seed int64) Builder {
	b.seed = seed
	b.seeded = true

	return b
}

// WithVariateSource replaces the uniform variate source. Seed and bounds are
// ignored when a source is given.
func (b Builder) WithVariateSource(src variate.Source) Builder {
	b.src = src
	return b
}

// WithInterarrival sets the bounds of the uniform interarrival time.
func (b Builder) WithInterarrival(bounds variate.Bounds) Builder {
	b.interarrival = bounds
	return b
}

// WithService sets the bounds of the uniform service time.
func (b Builder) WithService(bounds variate.Bounds) Builder {
	b.service = bounds
	return b
}

// Build creates a simulation. It fails only if the variate bounds are
// invalid.
func (b Builder) Build(name string) (*Simulation, error) {
	src := b.src
	if src == nil {
		seed := b.seed
		if !b.seeded {
			seed = time.Now().UnixNano()
		}

		uniform, err := variate.NewUniform(seed, b.interarrival, b.service)
		if err != nil {
			return nil, err
		}

		src = uniform
	}

	engine := b.engine
	if engine == nil {
		engine = timing.NewSerialEngine()
	}

	comp := &Comp{
		name:   name,
		engine: engine,
		waitingLine: queueing.MakeBufferBuilder().
			Build(name + ".WaitingLine"),
	}

	s := &Simulation{
		name:         name,
		numCustomers: b.numCustomers,
		src:          src,
		engine:       engine,
		comp:         comp,
	}

	return s, nil
}
