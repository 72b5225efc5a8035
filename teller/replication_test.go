package teller

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tellersim/sim/timing"
	"github.com/sarchlab/tellersim/variate"
)

var _ = Describe("RunReplications", func() {
	It("should return results in seed order", func() {
		seeds := []int64{11, 3, 7, 3}
		b := MakeBuilder().WithNumCustomers(50)

		reps, err := RunReplications(context.Background(), b, seeds)

		Expect(err).NotTo(HaveOccurred())
		Expect(reps).To(HaveLen(4))

		for i, seed := range seeds {
			expected, err := Run(50, seed)
			Expect(err).NotTo(HaveOccurred())

			Expect(reps[i].Seed).To(Equal(seed))
			Expect(reps[i].Result).To(Equal(expected))
		}

		Expect(reps[1].Result).To(Equal(reps[3].Result))
	})

	It("should reject an empty seed list", func() {
		_, err := RunReplications(context.Background(), MakeBuilder(), nil)

		Expect(err).To(MatchError(ErrInvalidArgument))
	})

	It("should reject a shared variate source", func() {
		b := MakeBuilder().WithVariateSource(variate.NewDefaultUniform(1))

		_, err := RunReplications(context.Background(), b, []int64{1})

		Expect(err).To(MatchError(ErrInvalidArgument))
	})

	It("should reject a shared engine", func() {
		b := MakeBuilder().WithEngine(timing.NewSerialEngine())

		_, err := RunReplications(context.Background(), b, []int64{1})

		Expect(err).To(MatchError(ErrInvalidArgument))
	})

	It("should surface replication errors", func() {
		b := MakeBuilder().WithNumCustomers(-1)

		_, err := RunReplications(context.Background(), b, []int64{1, 2})

		Expect(err).To(MatchError(ErrInvalidArgument))
	})

	It("should stop when the context is cancelled", func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := RunReplications(ctx, MakeBuilder(), []int64{1, 2})

		Expect(err).To(MatchError(context.Canceled))
	})
})
