package teller

import (
	"errors"
	"fmt"
	"math"

	"github.com/sarchlab/tellersim/variate"
)

var (
	// ErrInvalidArgument is returned when a caller asks for something that
	// cannot be simulated, such as zero customers.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidVariate is returned when a variate source produces a duration
	// that cannot be used.
	ErrInvalidVariate = errors.New("invalid variate")
)

// Generate creates n customers. The first arrives at 0 and each following
// one arrives one interarrival sample after its predecessor. Service times
// are drawn when a customer is created.
func Generate(n int, src variate.Source) ([]Customer, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: number of customers must be positive, got %d",
			ErrInvalidArgument, n)
	}

	customers := make([]Customer, 0, n)
	arrival := 0.0

	for i := 0; i < n; i++ {
		if i > 0 {
			gap := src.NextInterarrival()
			if !isFinite(gap) || gap < 0 {
				return nil, fmt.Errorf("%w: interarrival time %v for customer %d",
					ErrInvalidVariate, gap, i+1)
			}

			arrival += gap
		}

		service := src.NextServiceTime()
		if !isFinite(service) || service <= 0 {
			return nil, fmt.Errorf("%w: service time %v for customer %d",
				ErrInvalidVariate, service, i+1)
		}

		customers = append(customers, Customer{
			ID:          i + 1,
			ArrivalTime: arrival,
			ServiceTime: service,
		})
	}

	return customers, nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
