package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("AverageTimeTracer", func() {
	var (
		mockCtrl   *gomock.Controller
		timeTeller *MockTimeTeller
		t          *AverageTimeTracer
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		timeTeller = NewMockTimeTeller(mockCtrl)
		t = NewAverageTimeTracer(timeTeller, KindIs("wait"))
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should average and track the maximum", func() {
		timeTeller.EXPECT().Now().Return(0.0)
		t.StartTask(Task{ID: "1", Kind: "wait"})
		timeTeller.EXPECT().Now().Return(0.0)
		t.EndTask(Task{ID: "1"})

		timeTeller.EXPECT().Now().Return(2.0)
		t.StartTask(Task{ID: "2", Kind: "wait"})
		timeTeller.EXPECT().Now().Return(3.0)
		t.EndTask(Task{ID: "2"})

		timeTeller.EXPECT().Now().Return(7.0)
		t.StartTask(Task{ID: "3", Kind: "wait"})
		timeTeller.EXPECT().Now().Return(7.0)
		t.EndTask(Task{ID: "3"})

		Expect(t.TotalCount()).To(Equal(uint64(3)))
		Expect(t.AverageTime()).To(BeNumerically("~", 1.0/3.0, 1e-9))
		Expect(t.MaxTime()).To(BeNumerically("~", 1.0, 1e-9))
	})

	It("should ignore ends of unknown tasks", func() {
		timeTeller.EXPECT().Now().Return(4.0)
		t.EndTask(Task{ID: "9"})

		Expect(t.TotalCount()).To(BeZero())
	})
})
