// Package variate provides the random samples that drive a bank run: the
// time between two arrivals and the time a teller spends on a customer.
package variate

import (
	"errors"
	"fmt"
	"log"
	"math/rand"
)

// ErrInvalidBounds is returned when a distribution cannot produce positive
// samples.
var ErrInvalidBounds = errors.New("invalid distribution bounds")

// A Source supplies interarrival and service time samples. Every call
// returns a fresh, independent sample and advances the source.
type Source interface {
	NextInterarrival() float64
	NextServiceTime() float64
}

// Bounds is the closed interval a uniform distribution samples from.
type Bounds struct {
	Min float64 `mapstructure:"min" yaml:"min"`
	Max float64 `mapstructure:"max" yaml:"max"`
}

// Validate checks that the bounds describe a distribution of strictly
// positive durations.
func (b Bounds) Validate() error {
	if b.Min <= 0 {
		return fmt.Errorf("%w: min %g must be greater than 0",
			ErrInvalidBounds, b.Min)
	}

	if b.Max < b.Min {
		return fmt.Errorf("%w: max %g is smaller than min %g",
			ErrInvalidBounds, b.Max, b.Min)
	}

	return nil
}

// Mean returns the expected value of a sample.
func (b Bounds) Mean() float64 {
	return (b.Min + b.Max) / 2
}

// DefaultInterarrival is the minutes between two customers walking in.
var DefaultInterarrival = Bounds{Min: 1, Max: 8}

// DefaultService is the minutes a teller spends on one customer.
var DefaultService = Bounds{Min: 1, Max: 6}

// Uniform draws both kinds of samples from continuous uniform
// distributions. Each Uniform owns its generator, so two sources never share
// state and a seed fully determines the sample sequence.
type Uniform struct {
	rng          *rand.Rand
	interarrival Bounds
	service      Bounds
}

// NewUniform creates a Uniform source seeded with seed.
func NewUniform(seed int64, interarrival, service Bounds) (*Uniform, error) {
	if err := interarrival.Validate(); err != nil {
		return nil, fmt.Errorf("interarrival: %w", err)
	}

	if err := service.Validate(); err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}

	return &Uniform{
		rng:          rand.New(rand.NewSource(seed)),
		interarrival: interarrival,
		service:      service,
	}, nil
}

// NewDefaultUniform creates a Uniform source with the default bank
// distributions.
func NewDefaultUniform(seed int64) *Uniform {
	u, err := NewUniform(seed, DefaultInterarrival, DefaultService)
	if err != nil {
		log.Panic(err)
	}

	return u
}

// NextInterarrival returns a sample of the time until the next arrival.
func (u *Uniform) NextInterarrival() float64 {
	return u.sample(u.interarrival)
}

// NextServiceTime returns a sample of a service duration.
func (u *Uniform) NextServiceTime() float64 {
	return u.sample(u.service)
}

func (u *Uniform) sample(b Bounds) float64 {
	return b.Min + u.rng.Float64()*(b.Max-b.Min)
}

// Fixed replays pre-recorded samples. It is used to script runs whose
// outcome is known in advance, including exact ties between events.
type Fixed struct {
	interarrivals []float64
	services      []float64

	nextInterarrival int
	nextService      int
}

// NewFixed creates a Fixed source. The sequences are copied.
func NewFixed(interarrivals, services []float64) *Fixed {
	return &Fixed{
		interarrivals: append([]float64(nil), interarrivals...),
		services:      append([]float64(nil), services...),
	}
}

// NextInterarrival returns the next recorded interarrival time. It panics if
// the recording is exhausted.
func (f *Fixed) NextInterarrival() float64 {
	if f.nextInterarrival >= len(f.interarrivals) {
		log.Panicf("fixed source ran out of interarrival samples after %d",
			len(f.interarrivals))
	}

	v := f.interarrivals[f.nextInterarrival]
	f.nextInterarrival++

	return v
}

// NextServiceTime returns the next recorded service time. It panics if the
// recording is exhausted.
func (f *Fixed) NextServiceTime() float64 {
	if f.nextService >= len(f.services) {
		log.Panicf("fixed source ran out of service samples after %d",
			len(f.services))
	}

	v := f.services[f.nextService]
	f.nextService++

	return v
}

// Consumed returns how many interarrival and service samples have been
// drawn.
func (f *Fixed) Consumed() (interarrivals, services int) {
	return f.nextInterarrival, f.nextService
}
