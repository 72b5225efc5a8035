package teller

import "github.com/sarchlab/tellersim/sim/timing"

// An ArrivalEvent brings a customer into the bank. Arrivals are secondary
// events so that a departure at the same instant frees the teller first.
type ArrivalEvent struct {
	*timing.EventBase
	Customer CustomerIndex
}

// NewArrivalEvent creates a new ArrivalEvent.
func NewArrivalEvent(
	t timing.VTimeInSec,
	handler timing.Handler,
	customer CustomerIndex,
) *ArrivalEvent {
	return &ArrivalEvent{
		EventBase: timing.NewSecondaryEventBase(t, handler),
		Customer:  customer,
	}
}

// A DepartureEvent marks the end of a customer's service.
type DepartureEvent struct {
	*timing.EventBase
	Customer CustomerIndex
}

// NewDepartureEvent creates a new DepartureEvent.
func NewDepartureEvent(
	t timing.VTimeInSec,
	handler timing.Handler,
	customer CustomerIndex,
) *DepartureEvent {
	return &DepartureEvent{
		EventBase: timing.NewEventBase(t, handler),
		Customer:  customer,
	}
}
