// Package metrics summarizes a finished bank simulation.
//
// All functions are pure. An empty record list, or a run that ends at time 0,
// produces all-zero metrics.
package metrics

import (
	"sort"

	"github.com/sarchlab/tellersim/sim/timing"
	"github.com/sarchlab/tellersim/teller"
)

// Names of the values in Metrics.AsMap, in reporting order.
const (
	AverageWaitingTime       = "average_waiting_time"
	MaxWaitingTime           = "max_waiting_time"
	AverageSystemTime        = "average_system_time"
	MaxSystemTime            = "max_system_time"
	ServerUtilization        = "server_utilization"
	AverageQueueLength       = "average_queue_length"
	MaxQueueLength           = "max_queue_length"
	AverageWaitingLineLength = "average_waiting_line_length"
	MaxWaitingLineLength     = "max_waiting_line_length"
	NumCustomers             = "customers"
	EndTime                  = "end_time"
	TotalServiceTime         = "total_service_time"
)

// Names lists every key of Metrics.AsMap in reporting order.
var Names = []string{
	AverageWaitingTime,
	MaxWaitingTime,
	AverageSystemTime,
	MaxSystemTime,
	ServerUtilization,
	AverageQueueLength,
	MaxQueueLength,
	AverageWaitingLineLength,
	MaxWaitingLineLength,
	NumCustomers,
	EndTime,
	TotalServiceTime,
}

// Metrics are the statistics of one run.
//
// Queue length counts every customer in the bank, the one being served
// included. Waiting line length counts only the customers still waiting.
// Both averages are weighted by how long each length lasted over
// [0, EndTime].
type Metrics struct {
	AverageWaitingTime       float64 `yaml:"average_waiting_time" json:"average_waiting_time"`
	MaxWaitingTime           float64 `yaml:"max_waiting_time" json:"max_waiting_time"`
	AverageSystemTime        float64 `yaml:"average_system_time" json:"average_system_time"`
	MaxSystemTime            float64 `yaml:"max_system_time" json:"max_system_time"`
	ServerUtilization        float64 `yaml:"server_utilization" json:"server_utilization"`
	AverageQueueLength       float64 `yaml:"average_queue_length" json:"average_queue_length"`
	MaxQueueLength           int     `yaml:"max_queue_length" json:"max_queue_length"`
	AverageWaitingLineLength float64 `yaml:"average_waiting_line_length" json:"average_waiting_line_length"`
	MaxWaitingLineLength     int     `yaml:"max_waiting_line_length" json:"max_waiting_line_length"`
	Customers                int     `yaml:"customers" json:"customers"`
	EndTime                  float64 `yaml:"end_time" json:"end_time"`
	TotalServiceTime         float64 `yaml:"total_service_time" json:"total_service_time"`
}

// AsMap flattens the metrics into a name to value map.
func (m Metrics) AsMap() map[string]float64 {
	return map[string]float64{
		AverageWaitingTime:       m.AverageWaitingTime,
		MaxWaitingTime:           m.MaxWaitingTime,
		AverageSystemTime:        m.AverageSystemTime,
		MaxSystemTime:            m.MaxSystemTime,
		ServerUtilization:        m.ServerUtilization,
		AverageQueueLength:       m.AverageQueueLength,
		MaxQueueLength:           float64(m.MaxQueueLength),
		AverageWaitingLineLength: m.AverageWaitingLineLength,
		MaxWaitingLineLength:     float64(m.MaxWaitingLineLength),
		NumCustomers:             float64(m.Customers),
		EndTime:                  m.EndTime,
		TotalServiceTime:         m.TotalServiceTime,
	}
}

// Calculate computes the metrics of a finished run that ended at endTime.
func Calculate(
	customers []teller.Customer,
	endTime timing.VTimeInSec,
) Metrics {
	if len(customers) == 0 || endTime <= 0 {
		return Metrics{}
	}

	m := Metrics{
		Customers: len(customers),
		EndTime:   endTime,
	}

	var totalWait, totalSystem float64

	for _, c := range customers {
		wait := c.WaitingTime()
		system := c.SystemTime()

		totalWait += wait
		totalSystem += system
		m.TotalServiceTime += c.ServiceTime

		if wait > m.MaxWaitingTime {
			m.MaxWaitingTime = wait
		}

		if system > m.MaxSystemTime {
			m.MaxSystemTime = system
		}
	}

	n := float64(len(customers))
	m.AverageWaitingTime = totalWait / n
	m.AverageSystemTime = totalSystem / n
	m.ServerUtilization = m.TotalServiceTime / endTime

	queue := QueueLengthSeries(customers)
	m.AverageQueueLength = timeWeightedAverage(queue, endTime)
	m.MaxQueueLength = maxLength(queue)

	line := WaitingLineSeries(customers)
	m.AverageWaitingLineLength = timeWeightedAverage(line, endTime)
	m.MaxWaitingLineLength = maxLength(line)

	return m
}

// A Point is a step of a length-over-time series. Length holds from Time
// until the Time of the next point.
type Point struct {
	Time   timing.VTimeInSec `json:"time"`
	Length int               `json:"length"`
}

// QueueLengthSeries replays arrivals and departures and returns how many
// customers are in the bank after each distinct timestamp. Changes that
// happen at the same time are netted into one point.
func QueueLengthSeries(customers []teller.Customer) []Point {
	enter := make([]timing.VTimeInSec, 0, len(customers))
	leave := make([]timing.VTimeInSec, 0, len(customers))

	for _, c := range customers {
		enter = append(enter, c.ArrivalTime)
		leave = append(leave, c.DepartureTime)
	}

	return sweep(enter, leave)
}

// WaitingLineSeries is like QueueLengthSeries, but counts only the customers
// that have arrived and not yet started service.
func WaitingLineSeries(customers []teller.Customer) []Point {
	enter := make([]timing.VTimeInSec, 0, len(customers))
	leave := make([]timing.VTimeInSec, 0, len(customers))

	for _, c := range customers {
		enter = append(enter, c.ArrivalTime)
		leave = append(leave, c.ServiceStartTime)
	}

	return sweep(enter, leave)
}

type change struct {
	time  timing.VTimeInSec
	delta int
}

func sweep(enter, leave []timing.VTimeInSec) []Point {
	changes := make([]change, 0, len(enter)+len(leave))

	for _, t := range enter {
		changes = append(changes, change{time: t, delta: 1})
	}

	for _, t := range leave {
		changes = append(changes, change{time: t, delta: -1})
	}

	sort.SliceStable(changes, func(i, j int) bool {
		return changes[i].time < changes[j].time
	})

	points := make([]Point, 0, len(changes))
	length := 0

	for i := 0; i < len(changes); {
		t := changes[i].time

		for ; i < len(changes) && changes[i].time == t; i++ {
			length += changes[i].delta
		}

		points = append(points, Point{Time: t, Length: length})
	}

	return points
}

func timeWeightedAverage(
	points []Point,
	endTime timing.VTimeInSec,
) float64 {
	area := 0.0

	for i, p := range points {
		if p.Time >= endTime {
			break
		}

		until := endTime
		if i+1 < len(points) && points[i+1].Time < endTime {
			until = points[i+1].Time
		}

		area += float64(p.Length) * (until - p.Time)
	}

	return area / endTime
}

func maxLength(points []Point) int {
	longest := 0

	for _, p := range points {
		if p.Length > longest {
			longest = p.Length
		}
	}

	return longest
}
