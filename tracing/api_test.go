package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/tellersim/sim/hooking"
)

type namedDomain struct {
	hooking.HookableBase
	name string
}

func (d *namedDomain) Name() string {
	return d.name
}

var _ = Describe("Task API", func() {
	var (
		mockCtrl *gomock.Controller
		tracer   *MockTracer
		domain   *namedDomain
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		tracer = NewMockTracer(mockCtrl)
		domain = &namedDomain{name: "Teller"}
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should not validate tasks when nobody listens", func() {
		Expect(func() {
			StartTask("", "", domain, "", "", nil)
		}).NotTo(Panic())
	})

	It("should forward task start and end to the tracer", func() {
		CollectTrace(domain, tracer)

		tracer.EXPECT().StartTask(Task{
			ID:       "customer-1.wait",
			ParentID: "customer-1",
			Kind:     "wait",
			What:     "customer",
			Where:    "Teller",
		})
		tracer.EXPECT().EndTask(Task{ID: "customer-1.wait"})

		StartTask("customer-1.wait", "customer-1", domain,
			"wait", "customer", nil)
		EndTask("customer-1.wait", domain)
	})

	It("should reject a task without kind once traced", func() {
		CollectTrace(domain, tracer)

		Expect(func() {
			StartTask("customer-1", "", domain, "", "customer", nil)
		}).To(Panic())
	})

	It("should panic when the same tracer is attached twice", func() {
		CollectTrace(domain, tracer)

		Expect(func() { CollectTrace(domain, tracer) }).To(Panic())
	})

	It("should filter by kind", func() {
		f := KindIs("service")

		Expect(f(Task{Kind: "service"})).To(BeTrue())
		Expect(f(Task{Kind: "wait"})).To(BeFalse())
	})
})
