package teller

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/sarchlab/tellersim/sim/timing"
	"github.com/sarchlab/tellersim/variate"
)

// ErrAlreadyRun is returned when a simulation is asked to run a second time.
var ErrAlreadyRun = errors.New("simulation already run")

// State is the lifecycle stage of a simulation.
type State int

// The states a simulation moves through, in order.
const (
	StateNotStarted State = iota
	StateRunning
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "NotStarted"
	case StateRunning:
		return "Running"
	case StateCompleted:
		return "Completed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Result is what a completed run produces.
type Result struct {
	// Customers in arrival order, every timestamp set.
	Customers []Customer

	// EndTime is the time of the last departure.
	EndTime timing.VTimeInSec
}

// A Simulation runs one bank day for a fixed number of customers.
type Simulation struct {
	name         string
	numCustomers int
	src          variate.Source
	engine       timing.Engine
	comp         *Comp

	stateLock sync.RWMutex
	state     State
}

// Name returns the name of the simulation.
func (s *Simulation) Name() string {
	return s.name
}

// Engine returns the engine that drives the simulation.
func (s *Simulation) Engine() timing.Engine {
	return s.engine
}

// Teller returns the teller component.
func (s *Simulation) Teller() *Comp {
	return s.comp
}

// NumCustomers returns the number of customers the run serves.
func (s *Simulation) NumCustomers() int {
	return s.numCustomers
}

// State returns the current lifecycle stage.
func (s *Simulation) State() State {
	s.stateLock.RLock()
	defer s.stateLock.RUnlock()

	return s.state
}

func (s *Simulation) setState(state State) {
	s.stateLock.Lock()
	s.state = state
	s.stateLock.Unlock()
}

// Run generates the customers, lets the engine process every arrival and
// departure, and returns the finished records.
func (s *Simulation) Run() (Result, error) {
	if s.State() != StateNotStarted {
		return Result{}, fmt.Errorf("%w: %s", ErrAlreadyRun, s.name)
	}

	customers, err := Generate(s.numCustomers, s.src)
	if err != nil {
		return Result{}, err
	}

	s.setState(StateRunning)

	s.comp.Load(customers)
	for i := range customers {
		idx := CustomerIndex(i)
		s.engine.Schedule(
			NewArrivalEvent(customers[i].ArrivalTime, s.comp, idx))
	}

	err = s.engine.Run()
	if err != nil {
		return Result{}, fmt.Errorf("running %s: %w", s.name, err)
	}

	s.comp.mustBeDrained()

	if s.engine.Pending() != 0 {
		log.Panicf("simulation %s finished with %d events pending",
			s.name, s.engine.Pending())
	}

	s.setState(StateCompleted)

	return Result{
		Customers: s.comp.Customers(),
		EndTime:   s.engine.Now(),
	}, nil
}

// Run simulates numCustomers customers with the default uniform variates
// seeded with seed.
func Run(numCustomers int, seed int64) (Result, error) {
	s, err := MakeBuilder().
		WithNumCustomers(numCustomers).
		WithSeed(seed).
		Build("Teller")
	if err != nil {
		return Result{}, err
	}

	return s.Run()
}
