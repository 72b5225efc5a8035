package teller

import (
	"log"

	"github.com/sarchlab/tellersim/sim/timing"
)

// CustomerIndex locates a customer in the arena of a run. Events and the
// waiting line hold indices, never copies of the record.
type CustomerIndex int

// A Customer is the record of one visit to the bank. ServiceStartTime and
// DepartureTime are 0 until the teller sets them.
type Customer struct {
	ID               int               `json:"customer_id"`
	ArrivalTime      timing.VTimeInSec `json:"arrival_time"`
	ServiceTime      timing.VTimeInSec `json:"service_time"`
	ServiceStartTime timing.VTimeInSec `json:"service_start_time"`
	DepartureTime    timing.VTimeInSec `json:"departure_time"`

	started  bool
	departed bool
}

// WaitingTime is the time between arrival and the start of service.
func (c Customer) WaitingTime() timing.VTimeInSec {
	return c.ServiceStartTime - c.ArrivalTime
}

// SystemTime is the time between arrival and departure.
func (c Customer) SystemTime() timing.VTimeInSec {
	return c.DepartureTime - c.ArrivalTime
}

// Started tells if the teller has begun serving the customer.
func (c Customer) Started() bool {
	return c.started
}

// Departed tells if the customer has left the bank.
func (c Customer) Departed() bool {
	return c.departed
}

func (c *Customer) startService(now timing.VTimeInSec) {
	if c.started {
		log.Panicf("customer %d started service twice", c.ID)
	}

	if now < c.ArrivalTime {
		log.Panicf("customer %d served at %.10f before arriving at %.10f",
			c.ID, now, c.ArrivalTime)
	}

	c.ServiceStartTime = now
	c.started = true
}

func (c *Customer) depart(now timing.VTimeInSec) {
	if !c.started {
		log.Panicf("customer %d departed without being served", c.ID)
	}

	if c.departed {
		log.Panicf("customer %d departed twice", c.ID)
	}

	if now != c.ServiceStartTime+c.ServiceTime {
		log.Panicf("customer %d departed at %.10f, expected %.10f",
			c.ID, now, c.ServiceStartTime+c.ServiceTime)
	}

	c.DepartureTime = now
	c.departed = true
}
