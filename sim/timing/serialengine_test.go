package timing

import (
	"errors"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/onsi/gomega/gmeasure"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/tellersim/sim/hooking"
)

var _ = Describe("SerialEngine", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *SerialEngine
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = NewSerialEngine()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	mockEvent := func(t VTimeInSec, h Handler, secondary bool) *MockEvent {
		evt := NewMockEvent(mockCtrl)
		evt.EXPECT().Time().Return(t).AnyTimes()
		evt.EXPECT().Handler().Return(h).AnyTimes()
		evt.EXPECT().IsSecondary().Return(secondary).AnyTimes()

		return evt
	}

	It("should schedule events", func() {
		handler1 := NewMockHandler(mockCtrl)
		handler2 := NewMockHandler(mockCtrl)
		evt1 := mockEvent(4.0, handler1, false)
		evt2 := mockEvent(2.0, handler2, false)
		evt3 := mockEvent(3.0, handler1, false)
		evt4 := mockEvent(5.0, handler1, false)

		handleEvt2 := handler2.EXPECT().Handle(evt2).Do(func(e Event) {
			engine.Schedule(evt3)
			engine.Schedule(evt4)
		})
		handleEvt3 := handler1.EXPECT().
			Handle(evt3).After(handleEvt2)
		handleEvt1 := handler1.EXPECT().
			Handle(evt1).After(handleEvt3)
		handler1.EXPECT().
			Handle(evt4).After(handleEvt1)

		engine.Schedule(evt1)
		engine.Schedule(evt2)

		Expect(engine.Run()).To(Succeed())
		Expect(engine.Now()).To(Equal(5.0))
		Expect(engine.Pending()).To(Equal(0))
		Expect(engine.NumEventsHandled()).To(Equal(uint64(4)))
	})

	It("should consider secondary events", func() {
		handler1 := NewMockHandler(mockCtrl)
		handler2 := NewMockHandler(mockCtrl)
		handler3 := NewMockHandler(mockCtrl)
		evt1 := mockEvent(2.0, handler1, true)
		evt2 := mockEvent(2.0, handler2, false)
		evt3 := mockEvent(2.0, handler3, false)

		handleEvt2 := handler2.EXPECT().Handle(evt2)
		handleEvt3 := handler3.EXPECT().Handle(evt3).After(handleEvt2)
		handler1.EXPECT().
			Handle(evt1).
			After(handleEvt2).
			After(handleEvt3)

		engine.Schedule(evt1)
		engine.Schedule(evt2)
		engine.Schedule(evt3)

		Expect(engine.Run()).To(Succeed())
	})

	It("should let a primary event scheduled at the current time "+
		"overtake a waiting secondary event", func() {
		handler := NewMockHandler(mockCtrl)
		secondary := mockEvent(7.0, handler, true)
		trigger := mockEvent(3.0, handler, false)
		primary := mockEvent(7.0, handler, false)

		handleTrigger := handler.EXPECT().Handle(trigger).Do(func(e Event) {
			engine.Schedule(primary)
		})
		handlePrimary := handler.EXPECT().Handle(primary).After(handleTrigger)
		handler.EXPECT().Handle(secondary).After(handlePrimary)

		engine.Schedule(secondary)
		engine.Schedule(trigger)

		Expect(engine.Run()).To(Succeed())
	})

	It("should handle a secondary event before a later primary event", func() {
		handler := NewMockHandler(mockCtrl)
		secondary := mockEvent(1.0, handler, true)
		primary := mockEvent(2.0, handler, false)

		handleSecondary := handler.EXPECT().Handle(secondary)
		handler.EXPECT().Handle(primary).After(handleSecondary)

		engine.Schedule(primary)
		engine.Schedule(secondary)

		Expect(engine.Run()).To(Succeed())
	})

	It("should stop and report handler errors", func() {
		handler := NewMockHandler(mockCtrl)
		evt1 := mockEvent(1.0, handler, false)
		evt2 := mockEvent(2.0, handler, false)
		boom := errors.New("boom")

		handler.EXPECT().Handle(evt1).Return(boom)

		engine.Schedule(evt1)
		engine.Schedule(evt2)

		err := engine.Run()
		Expect(err).To(MatchError(boom))
		Expect(engine.Pending()).To(Equal(1))
		Expect(engine.NumEventsHandled()).To(Equal(uint64(0)))
	})

	It("should panic when scheduling into the past", func() {
		handler := NewMockHandler(mockCtrl)
		evt1 := mockEvent(5.0, handler, false)
		evt2 := mockEvent(4.0, handler, false)

		handler.EXPECT().Handle(evt1).Do(func(e Event) {
			engine.Schedule(evt2)
		})

		engine.Schedule(evt1)

		Expect(func() { _ = engine.Run() }).To(Panic())
	})

	It("should invoke hooks before and after each event", func() {
		handler := NewMockHandler(mockCtrl)
		evt := mockEvent(1.5, handler, false)
		handler.EXPECT().Handle(evt)

		positions := []*hooking.HookPos{}
		engine.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
			Expect(ctx.Item).To(BeIdenticalTo(evt))
			positions = append(positions, ctx.Pos)
		}))

		engine.Schedule(evt)
		Expect(engine.Run()).To(Succeed())

		Expect(positions).To(Equal([]*hooking.HookPos{
			HookPosBeforeEvent, HookPosAfterEvent,
		}))
	})

	It("measure triggering speed", func() {
		experiment := gmeasure.NewExperiment("Serial Engine Triggering Speed")
		AddReportEntry(experiment.Name, experiment)

		experiment.MeasureDuration("runtime", func() {
			handler := NewMockHandler(mockCtrl)
			handler.EXPECT().Handle(gomock.Any()).AnyTimes()

			for i := 0; i < 10000; i++ {
				t := VTimeInSec(float64(rand.Uint64()%10) * 0.01)
				engine.Schedule(mockEvent(t, handler, rand.Uint32()%2 == 0))
			}

			Expect(engine.Run()).To(Succeed())
		})
	})
})
