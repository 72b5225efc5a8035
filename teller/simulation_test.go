package teller

import (
	"sort"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tellersim/sim/hooking"
	"github.com/sarchlab/tellersim/sim/timing"
	"github.com/sarchlab/tellersim/tracing"
	"github.com/sarchlab/tellersim/variate"
)

func scriptedSimulation() *Simulation {
	s, err := MakeBuilder().
		WithNumCustomers(3).
		WithVariateSource(
			variate.NewFixed([]float64{2, 5, 1}, []float64{3, 4, 2})).
		Build("Teller")
	Expect(err).NotTo(HaveOccurred())

	return s
}

var _ = Describe("Simulation", func() {
	Context("scripted run with a tie at t=7", func() {
		var (
			s      *Simulation
			result Result
		)

		BeforeEach(func() {
			s = scriptedSimulation()

			var err error
			result, err = s.Run()
			Expect(err).NotTo(HaveOccurred())
		})

		It("should serve customers in the expected windows", func() {
			c := result.Customers

			Expect(c[0].ServiceStartTime).To(Equal(0.0))
			Expect(c[0].DepartureTime).To(Equal(3.0))
			Expect(c[1].ServiceStartTime).To(Equal(3.0))
			Expect(c[1].DepartureTime).To(Equal(7.0))
			Expect(c[2].ServiceStartTime).To(Equal(7.0))
			Expect(c[2].DepartureTime).To(Equal(9.0))
		})

		It("should report the expected waits", func() {
			waits := []float64{}
			for _, c := range result.Customers {
				waits = append(waits, c.WaitingTime())
			}

			Expect(waits).To(Equal([]float64{0, 1, 0}))
		})

		It("should end at the last departure", func() {
			Expect(result.EndTime).To(Equal(9.0))
			Expect(s.State()).To(Equal(StateCompleted))
		})

		It("should leave the teller idle with nobody waiting", func() {
			Expect(s.Teller().ServerBusy()).To(BeFalse())
			Expect(s.Teller().WaitingLineLength()).To(BeZero())
			Expect(s.Teller().NumArrived()).To(Equal(3))
			Expect(s.Teller().NumDeparted()).To(Equal(3))
			Expect(s.Teller().MaxWaitingLineLength()).To(Equal(1))
		})

		It("should refuse to run again", func() {
			_, err := s.Run()

			Expect(err).To(MatchError(ErrAlreadyRun))
		})
	})

	It("should handle the departure before the arrival at the same time",
		func() {
			s := scriptedSimulation()

			var order []string
			s.Engine().AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
				if ctx.Pos != timing.HookPosBeforeEvent {
					return
				}

				evt := ctx.Item.(timing.Event)
				if evt.Time() != 7 {
					return
				}

				switch evt.(type) {
				case *ArrivalEvent:
					order = append(order, "arrival")
				case *DepartureEvent:
					order = append(order, "departure")
				}
			}))

			_, err := s.Run()

			Expect(err).NotTo(HaveOccurred())
			Expect(order).To(Equal([]string{"departure", "arrival"}))
		})

	It("should move through its states", func() {
		s := scriptedSimulation()
		Expect(s.State()).To(Equal(StateNotStarted))

		var seen []State
		s.Engine().AcceptHook(hooking.HookFunc(func(hooking.HookCtx) {
			seen = append(seen, s.State())
		}))

		_, err := s.Run()

		Expect(err).NotTo(HaveOccurred())
		Expect(seen).NotTo(BeEmpty())
		Expect(seen).To(HaveEach(StateRunning))
		Expect(s.State()).To(Equal(StateCompleted))
		Expect(s.State().String()).To(Equal("Completed"))
	})

	It("should stay unstarted when generation fails", func() {
		s, err := MakeBuilder().WithNumCustomers(0).WithSeed(1).Build("Teller")
		Expect(err).NotTo(HaveOccurred())

		_, err = s.Run()

		Expect(err).To(MatchError(ErrInvalidArgument))
		Expect(s.State()).To(Equal(StateNotStarted))
	})

	It("should reject invalid bounds when building", func() {
		_, err := MakeBuilder().
			WithInterarrival(variate.Bounds{Min: 3, Max: 1}).
			Build("Teller")

		Expect(err).To(MatchError(variate.ErrInvalidBounds))
	})

	It("should serve a single customer without waiting", func() {
		result, err := Run(1, 7)

		Expect(err).NotTo(HaveOccurred())
		Expect(result.Customers).To(HaveLen(1))

		c := result.Customers[0]
		Expect(c.WaitingTime()).To(Equal(0.0))
		Expect(result.EndTime).To(Equal(c.ServiceTime))
	})

	It("should reproduce a run from its seed", func() {
		a, err := Run(200, 99)
		Expect(err).NotTo(HaveOccurred())

		b, err := Run(200, 99)
		Expect(err).NotTo(HaveOccurred())

		Expect(b).To(Equal(a))
	})

	DescribeTable("should hold the queueing properties",
		func(seed int64) {
			s, err := MakeBuilder().
				WithNumCustomers(500).
				WithSeed(seed).
				Build("Teller")
			Expect(err).NotTo(HaveOccurred())

			var lastNow timing.VTimeInSec
			s.Engine().AcceptHook(hooking.HookFunc(func(hooking.HookCtx) {
				now := s.Engine().Now()
				Expect(now).To(BeNumerically(">=", lastNow))
				lastNow = now
			}))

			result, err := s.Run()
			Expect(err).NotTo(HaveOccurred())

			customers := result.Customers
			Expect(customers).To(HaveLen(500))

			for i, c := range customers {
				Expect(c.ID).To(Equal(i + 1))
				Expect(c.Departed()).To(BeTrue())
				Expect(c.ServiceStartTime).
					To(BeNumerically(">=", c.ArrivalTime))
				Expect(c.DepartureTime).
					To(Equal(c.ServiceStartTime + c.ServiceTime))

				if i > 0 {
					prev := customers[i-1]
					Expect(c.ArrivalTime).
						To(BeNumerically(">=", prev.ArrivalTime))
					Expect(c.ServiceStartTime).
						To(BeNumerically(">=", prev.ServiceStartTime))
				}
			}

			byStart := append([]Customer(nil), customers...)
			sort.SliceStable(byStart, func(i, j int) bool {
				return byStart[i].ServiceStartTime < byStart[j].ServiceStartTime
			})
			for i := 1; i < len(byStart); i++ {
				Expect(byStart[i].ServiceStartTime).
					To(BeNumerically(">=", byStart[i-1].DepartureTime))
			}

			Expect(result.EndTime).To(Equal(customers[len(customers)-1].DepartureTime))
			Expect(s.Engine().Pending()).To(BeZero())
		},
		Entry("seed 1", int64(1)),
		Entry("seed 2", int64(2)),
		Entry("seed 2024", int64(2024)),
	)

	Context("with tracers", func() {
		It("should agree with the customer records", func() {
			s, err := MakeBuilder().
				WithNumCustomers(300).
				WithSeed(5).
				Build("Teller")
			Expect(err).NotTo(HaveOccurred())

			busy := tracing.NewBusyTimeTracer(
				s.Engine(), tracing.KindIs(TaskKindService))
			wait := tracing.NewAverageTimeTracer(
				s.Engine(), tracing.KindIs(TaskKindWait))
			visit := tracing.NewAverageTimeTracer(
				s.Engine(), tracing.KindIs(TaskKindVisit))
			tracing.CollectTrace(s.Teller(), busy)
			tracing.CollectTrace(s.Teller(), wait)
			tracing.CollectTrace(s.Teller(), visit)

			departed := 0
			s.Teller().AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
				if ctx.Pos == HookPosCustomerDeparted {
					c := ctx.Item.(Customer)
					Expect(c.Departed()).To(BeTrue())
					departed++
				}
			}))

			result, err := s.Run()
			Expect(err).NotTo(HaveOccurred())

			var totalService, totalWait, totalSystem, maxWait float64
			for _, c := range result.Customers {
				totalService += c.ServiceTime
				totalWait += c.WaitingTime()
				totalSystem += c.SystemTime()
				if c.WaitingTime() > maxWait {
					maxWait = c.WaitingTime()
				}
			}

			n := float64(len(result.Customers))
			Expect(departed).To(Equal(300))
			Expect(busy.BusyTime()).To(BeNumerically("~", totalService, 1e-6))
			Expect(wait.TotalCount()).To(Equal(uint64(300)))
			Expect(wait.AverageTime()).To(BeNumerically("~", totalWait/n, 1e-6))
			Expect(wait.MaxTime()).To(BeNumerically("~", maxWait, 1e-9))
			Expect(visit.AverageTime()).
				To(BeNumerically("~", totalSystem/n, 1e-6))
		})
	})
})
