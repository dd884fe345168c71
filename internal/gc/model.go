package gc

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
)

// GCLogFile accumulates the cycles of one parsed log stream.
// It is owned by a single parse session and becomes read-only once
// ParsingCompleted has run.
type GCLogFile struct {
	Cycles          []*Cycle        `json:"cycles" yaml:"cycles"`
	AllocationStats AllocationStats `json:"allocationStats" yaml:"allocationStats"`
	Summary         Summary         `json:"summary" yaml:"summary"`
	Diagnostics     Diagnostics     `json:"diagnostics" yaml:"diagnostics"`
	Completed       bool            `json:"parsingCompleted" yaml:"parsingCompleted"`

	index  map[int64]*Cycle
	openID int64
	logger *slog.Logger
}

func NewGCLogFile(logger *slog.Logger) *GCLogFile {
	if logger == nil {
		logger = slog.Default()
	}
	return &GCLogFile{
		Cycles: make([]*Cycle, 0),
		Diagnostics: Diagnostics{
			RuleHits: make(map[string]int),
		},
		index:  make(map[int64]*Cycle),
		logger: logger,
	}
}

// NewPhase creates a cycle. A still-open previous cycle is closed first.
func (f *GCLogFile) NewPhase(id int64, label string, timestamp decimal.Decimal) error {
	f.mustBeMutable("NewPhase")

	if _, exists := f.index[id]; exists {
		f.logger.Warn("cycle id already in use", "cycle", id, "phase", label)
		return fmt.Errorf("%w: %d", ErrDuplicateCycle, id)
	}

	if f.openID != 0 {
		f.FinishCycle(f.openID)
	}

	cycle := &Cycle{
		SequenceID: id,
		PhaseName:  label,
		Timestamp:  timestamp,
		Open:       true,
	}
	f.Cycles = append(f.Cycles, cycle)
	f.index[id] = cycle
	f.openID = id
	return nil
}

// FinishCycle marks a cycle closed. Unknown or already closed ids are ignored.
func (f *GCLogFile) FinishCycle(id int64) {
	f.mustBeMutable("FinishCycle")

	cycle, ok := f.index[id]
	if !ok || !cycle.Open {
		return
	}
	cycle.Open = false
	if f.openID == id {
		f.openID = 0
	}
}

// AddTime sets the cycle duration. The latest value wins.
func (f *GCLogFile) AddTime(id int64, ms decimal.Decimal) error {
	cycle, err := f.cycleForUpdate(id, "AddTime")
	if err != nil {
		return err
	}
	cycle.DurationMs = NewOptionalDecimal(ms)
	return nil
}

// AddSizes records heap sizes in MB. Each field keeps the first value written.
func (f *GCLogFile) AddSizes(id int64, before, after, capacity int) error {
	cycle, err := f.cycleForUpdate(id, "AddSizes")
	if err != nil {
		return err
	}

	if cycle.SizeBefore == nil {
		cycle.SizeBefore = intPtr(before)
	}
	if cycle.SizeAfter == nil {
		cycle.SizeAfter = intPtr(after)
	}
	if cycle.HeapCapacity == nil {
		cycle.HeapCapacity = intPtr(capacity)
	}

	f.observeHeap(*cycle.HeapCapacity, *cycle.SizeBefore)
	return nil
}

// AddSubPhaseTime appends a sub-phase timing. Repeated labels add new entries.
func (f *GCLogFile) AddSubPhaseTime(id int64, label string, ms decimal.Decimal) error {
	cycle, err := f.cycleForUpdate(id, "AddSubPhaseTime")
	if err != nil {
		return err
	}
	cycle.SubPhaseTimings = append(cycle.SubPhaseTimings, SubPhaseTiming{Label: label, Ms: ms})
	return nil
}

// AddAgeWithSize sets the tenuring histogram entry for age.
func (f *GCLogFile) AddAgeWithSize(id int64, age int, bytes int64) error {
	cycle, err := f.cycleForUpdate(id, "AddAgeWithSize")
	if err != nil {
		return err
	}
	if cycle.AgeHistogram == nil {
		cycle.AgeHistogram = make(map[int]int64)
	}
	cycle.AgeHistogram[age] = bytes
	return nil
}

func (f *GCLogFile) AddSurvivorStats(id int64, desiredSize, newThreshold, maxThreshold int64) error {
	cycle, err := f.cycleForUpdate(id, "AddSurvivorStats")
	if err != nil {
		return err
	}
	cycle.SurvivorStats = &SurvivorStats{
		DesiredSize:  desiredSize,
		NewThreshold: newThreshold,
		MaxThreshold: maxThreshold,
	}
	return nil
}

// ParsingCompleted computes the summary and seals the model.
// A cycle left open by a truncated stream keeps Open set.
func (f *GCLogFile) ParsingCompleted() {
	if f.Completed {
		return
	}
	f.AllocationStats.TotalAllocation = totalAllocation(f.Cycles)
	f.Summary = calculateSummary(f.Cycles)
	f.openID = 0
	f.Completed = true
}

// Cycle returns the cycle with the given id.
func (f *GCLogFile) Cycle(id int64) (*Cycle, bool) {
	cycle, ok := f.index[id]
	return cycle, ok
}

// OpenCycle returns the cycle currently open, if any.
func (f *GCLogFile) OpenCycle() (*Cycle, bool) {
	if f.openID == 0 {
		return nil, false
	}
	return f.Cycle(f.openID)
}

func (f *GCLogFile) CycleCount() int {
	return len(f.Cycles)
}

func (f *GCLogFile) cycleForUpdate(id int64, op string) (*Cycle, error) {
	f.mustBeMutable(op)

	cycle, ok := f.index[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w: %d", op, ErrUnknownCycle, id)
	}
	return cycle, nil
}

func (f *GCLogFile) mustBeMutable(op string) {
	if f.Completed {
		panic(fmt.Errorf("%s: %w", op, ErrModelSealed))
	}
}

func (f *GCLogFile) observeHeap(capacity, occupancy int) {
	stats := &f.AllocationStats

	if stats.InitialHeapSize == nil {
		stats.InitialHeapSize = intPtr(capacity)
		stats.InitialHeapSizeOccupance = intPtr(occupancy)
	}
	if stats.MaxHeapSize == nil || capacity > *stats.MaxHeapSize {
		stats.MaxHeapSize = intPtr(capacity)
	}
	if stats.MaxHeapSizeOccupance == nil || occupancy > *stats.MaxHeapSizeOccupance {
		stats.MaxHeapSizeOccupance = intPtr(occupancy)
	}
}

func intPtr(v int) *int {
	return &v
}
