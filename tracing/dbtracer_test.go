package tracing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

type memoryRecorder struct {
	tables  map[string]any
	entries map[string][]any
	flushes int
}

func newMemoryRecorder() *memoryRecorder {
	return &memoryRecorder{
		tables:  make(map[string]any),
		entries: make(map[string][]any),
	}
}

func (r *memoryRecorder) CreateTable(table string, sampleEntry any) {
	r.tables[table] = sampleEntry
}

func (r *memoryRecorder) InsertData(table string, entry any) {
	r.entries[table] = append(r.entries[table], entry)
}

func (r *memoryRecorder) ListTables() []string {
	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}

	return names
}

func (r *memoryRecorder) Flush() {
	r.flushes++
}

func (r *memoryRecorder) Close() error {
	return nil
}

var _ = Describe("DBTracer", func() {
	var (
		mockCtrl   *gomock.Controller
		timeTeller *MockTimeTeller
		recorder   *memoryRecorder
		t          *DBTracer
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		timeTeller = NewMockTimeTeller(mockCtrl)
		recorder = newMemoryRecorder()
		t = NewDBTracer(timeTeller, recorder)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should create the trace table", func() {
		Expect(recorder.ListTables()).To(ConsistOf(TraceTableName))
	})

	It("should write finished tasks", func() {
		timeTeller.EXPECT().Now().Return(7.0)
		t.StartTask(Task{
			ID:       "customer-3.service",
			ParentID: "customer-3",
			Kind:     "service",
			What:     "customer",
			Where:    "Teller",
		})

		timeTeller.EXPECT().Now().Return(9.0)
		t.EndTask(Task{ID: "customer-3.service"})

		Expect(t.NumWritten()).To(Equal(1))
		Expect(recorder.entries[TraceTableName]).To(ConsistOf(taskTableEntry{
			ID:        "customer-3.service",
			ParentID:  "customer-3",
			Kind:      "service",
			What:      "customer",
			Location:  "Teller",
			StartTime: 7.0,
			EndTime:   9.0,
		}))
	})

	It("should reject incomplete tasks", func() {
		Expect(func() {
			t.StartTask(Task{ID: "x", Kind: "wait"})
		}).To(Panic())
	})

	It("should flush and forget unfinished tasks on termination", func() {
		timeTeller.EXPECT().Now().Return(1.0)
		t.StartTask(Task{ID: "a", Kind: "visit", What: "c", Where: "T"})

		t.Terminate()

		t.EndTask(Task{ID: "a"})
		Expect(t.NumWritten()).To(BeZero())
		Expect(recorder.flushes).To(Equal(1))
	})
})
