// Package teller simulates a bank with one teller serving customers in the
// order they arrive.
package teller

import (
	"fmt"
	"log"
	"reflect"
	"sync"

	"github.com/sarchlab/tellersim/sim/hooking"
	"github.com/sarchlab/tellersim/sim/queueing"
	"github.com/sarchlab/tellersim/sim/timing"
	"github.com/sarchlab/tellersim/tracing"
)

// HookPosCustomerDeparted is triggered after a customer leaves. The hook item
// is a copy of the finished Customer.
var HookPosCustomerDeparted = &hooking.HookPos{Name: "CustomerDeparted"}

// Task kinds reported to tracers.
const (
	TaskKindVisit   = "visit"
	TaskKindWait    = "wait"
	TaskKindService = "service"
)

// Comp is the teller. It owns the customer records of a run, the line of
// customers waiting, and whether it is busy serving someone.
type Comp struct {
	hooking.HookableBase

	name   string
	engine timing.EventScheduler

	lock           sync.RWMutex
	customers      []Customer
	waitingLine    queueing.Buffer
	serverBusy     bool
	numArrived     int
	numDeparted    int
	maxWaitingLine int
}

// Name returns the name of the teller.
func (c *Comp) Name() string {
	return c.name
}

// WaitingLine returns the buffer that holds the waiting customers.
func (c *Comp) WaitingLine() queueing.Buffer {
	return c.waitingLine
}

// Load hands the customer records of a run to the teller. It panics if the
// teller has already seen an arrival.
func (c *Comp) Load(customers []Customer) {
	c.lock.Lock()
	defer c.lock.Unlock()

	if c.numArrived > 0 {
		log.Panicf("teller %s cannot load customers after arrivals", c.name)
	}

	c.customers = customers
}

// Customer returns a copy of the record at the given index.
func (c *Comp) Customer(i CustomerIndex) Customer {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.customers[i]
}

// Customers returns a copy of every customer record.
func (c *Comp) Customers() []Customer {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return append([]Customer(nil), c.customers...)
}

// NumCustomers returns how many customers are loaded.
func (c *Comp) NumCustomers() int {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return len(c.customers)
}

// NumArrived returns how many customers have arrived so far.
func (c *Comp) NumArrived() int {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.numArrived
}

// NumDeparted returns how many customers have left so far.
func (c *Comp) NumDeparted() int {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.numDeparted
}

// ServerBusy tells if a customer is being served.
func (c *Comp) ServerBusy() bool {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.serverBusy
}

// WaitingLineLength returns the number of customers waiting for service.
func (c *Comp) WaitingLineLength() int {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.waitingLine.Size()
}

// MaxWaitingLineLength returns the longest the waiting line has been.
func (c *Comp) MaxWaitingLineLength() int {
	c.lock.RLock()
	defer c.lock.RUnlock()

	return c.maxWaitingLine
}

// Handle processes arrival and departure events.
func (c *Comp) Handle(e timing.Event) error {
	switch e := e.(type) {
	case *ArrivalEvent:
		c.handleArrival(e)
	case *DepartureEvent:
		c.handleDeparture(e)
	default:
		log.Panicf("cannot handle event of type %s", reflect.TypeOf(e))
	}

	return nil
}

func (c *Comp) handleArrival(e *ArrivalEvent) {
	now := e.Time()
	idx := e.Customer

	c.lock.Lock()
	cust := &c.customers[idx]

	if cust.ArrivalTime != now {
		c.lock.Unlock()
		log.Panicf("customer %d arrived at %.10f, expected %.10f",
			cust.ID, now, cust.ArrivalTime)
	}

	c.numArrived++

	serveNow := !c.serverBusy
	if serveNow {
		c.serverBusy = true
		cust.startService(now)
	} else {
		c.waitingLine.Push(idx)
		if c.waitingLine.Size() > c.maxWaitingLine {
			c.maxWaitingLine = c.waitingLine.Size()
		}
	}

	c.lock.Unlock()

	c.traceStart(idx, visitTaskID(idx), "", TaskKindVisit)
	c.traceStart(idx, waitTaskID(idx), visitTaskID(idx), TaskKindWait)

	if serveNow {
		c.beginService(idx, now)
	}
}

func (c *Comp) handleDeparture(e *DepartureEvent) {
	now := e.Time()
	idx := e.Customer

	c.lock.Lock()
	c.customers[idx].depart(now)
	c.numDeparted++
	finished := c.customers[idx]

	next, hasNext := c.popWaiting()
	if hasNext {
		c.customers[next].startService(now)
	} else {
		c.serverBusy = false
	}
	c.lock.Unlock()

	tracing.EndTask(serviceTaskID(idx), c)
	tracing.EndTask(visitTaskID(idx), c)

	if c.NumHooks() > 0 {
		c.InvokeHook(hooking.HookCtx{
			Domain: c,
			Pos:    HookPosCustomerDeparted,
			Item:   finished,
		})
	}

	if hasNext {
		c.beginService(next, now)
	}
}

func (c *Comp) popWaiting() (CustomerIndex, bool) {
	item := c.waitingLine.Pop()
	if item == nil {
		return 0, false
	}

	return item.(CustomerIndex), true
}

// beginService schedules the departure of a customer whose service has just
// started and reports the end of its wait.
func (c *Comp) beginService(idx CustomerIndex, now timing.VTimeInSec) {
	serviceTime := c.Customer(idx).ServiceTime

	tracing.EndTask(waitTaskID(idx), c)
	c.traceStart(idx, serviceTaskID(idx), visitTaskID(idx), TaskKindService)

	c.engine.Schedule(NewDepartureEvent(now+serviceTime, c, idx))
}

func (c *Comp) traceStart(
	idx CustomerIndex,
	id, parentID, kind string,
) {
	tracing.StartTask(id, parentID, c, kind, "customer", idx)
}

// mustBeDrained panics if a finished run left the teller in a state that
// breaks conservation of customers.
func (c *Comp) mustBeDrained() {
	c.lock.RLock()
	defer c.lock.RUnlock()

	n := len(c.customers)

	switch {
	case c.numArrived != n:
		log.Panicf("teller %s saw %d arrivals for %d customers",
			c.name, c.numArrived, n)
	case c.numDeparted != n:
		log.Panicf("teller %s saw %d departures for %d customers",
			c.name, c.numDeparted, n)
	case c.waitingLine.Size() != 0:
		log.Panicf("teller %s finished with %d customers waiting",
			c.name, c.waitingLine.Size())
	case c.serverBusy:
		log.Panicf("teller %s finished while busy", c.name)
	}
}

func visitTaskID(idx CustomerIndex) string {
	return fmt.Sprintf("customer-%d", int(idx)+1)
}

func waitTaskID(idx CustomerIndex) string {
	return visitTaskID(idx) + ".wait"
}

func serviceTaskID(idx CustomerIndex) string {
	return visitTaskID(idx) + ".service"
}
