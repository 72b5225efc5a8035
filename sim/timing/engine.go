package timing

import (
	"github.com/sarchlab/tellersim/sim/hooking"
)

// TimeTeller can be used to get the current time.
type TimeTeller interface {
	Now() VTimeInSec
}

// EventScheduler can be used to schedule future events.
type EventScheduler interface {
	TimeTeller

	Schedule(e Event)
}

// An Engine is a unit that keeps the discrete event simulation run.
type Engine interface {
	hooking.Hookable
	EventScheduler

	// Run will process all the events until there is no event left. It
	// returns the first error reported by an event handler.
	Run() error

	// Pending returns the number of events that are scheduled but not yet
	// handled.
	Pending() int
}
