package gc

import (
	"github.com/shopspring/decimal"
)

const (
	// Canonical phase labels
	PhaseYoungMixed   = "Pause Young (mixed)"
	PhaseLockerMixed  = "(GC (mixed))"
	PhaseMajor        = "Major GC"
	PhaseFull         = "Full"
	PhasePauseFull    = "Pause Full"
	PhaseMinor        = "Minor GC"
	PhaseGCPause      = "GC pause"
	PhasePauseCleanup = "Pause Cleanup"
	PhasePauseRemark  = "Pause Remark"

	// Prefix marking a sub-sub-phase label
	SubSubPhaseMarker = "|______"
)

// Cycle is one GC pause or event, from its start marker to its close.
type Cycle struct {
	SequenceID int64           `json:"sequenceId" yaml:"sequenceId"`
	PhaseName  string          `json:"phaseName" yaml:"phaseName"`
	Timestamp  decimal.Decimal `json:"timestamp" yaml:"timestamp"`

	// Unset until a duration is seen; later duration lines overwrite earlier ones.
	DurationMs OptionalDecimal `json:"durationMs" yaml:"durationMs"`

	// Heap sizes in MB: "4096K->3584K(8192K)". First writer wins per field.
	SizeBefore   *int `json:"sizeBefore,omitempty" yaml:"sizeBefore,omitempty"`
	SizeAfter    *int `json:"sizeAfter,omitempty" yaml:"sizeAfter,omitempty"`
	HeapCapacity *int `json:"heapCapacity,omitempty" yaml:"heapCapacity,omitempty"`

	// Labels may repeat within one cycle; order is encounter order.
	SubPhaseTimings []SubPhaseTiming `json:"subPhaseTimings,omitempty" yaml:"subPhaseTimings,omitempty"`

	// Age -> bytes: "- age   1:   12345 bytes,   12345 total"
	AgeHistogram map[int]int64 `json:"ageHistogram,omitempty" yaml:"ageHistogram,omitempty"`

	SurvivorStats *SurvivorStats `json:"survivorStats,omitempty" yaml:"survivorStats,omitempty"`

	Open bool `json:"open" yaml:"open"`
}

// SubPhaseTiming is one named stage of work within a cycle.
type SubPhaseTiming struct {
	Label string          `json:"label" yaml:"label"`
	Ms    decimal.Decimal `json:"ms" yaml:"ms"`
}

// SurvivorStats holds the tenuring line:
// "Desired survivor size 1048576 bytes, new threshold 7 (max 15)"
type SurvivorStats struct {
	DesiredSize  int64 `json:"desiredSize" yaml:"desiredSize"`
	NewThreshold int64 `json:"newThreshold" yaml:"newThreshold"`
	MaxThreshold int64 `json:"maxThreshold" yaml:"maxThreshold"`
}

// AllocationStats is the running heap summary. Every field stays nil until observed.
type AllocationStats struct {
	// Total size of objects allocated between cycles, in MB. Set by the finalizer.
	TotalAllocation OptionalDecimal `json:"totalAllocation" yaml:"totalAllocation"`

	// Heap capacity and occupancy of the first sized cycle
	InitialHeapSize          *int `json:"initialHeapSize" yaml:"initialHeapSize"`
	InitialHeapSizeOccupance *int `json:"initialHeapSizeOccupance" yaml:"initialHeapSizeOccupance"`

	// Largest capacity and occupancy seen across all cycles
	MaxHeapSize          *int `json:"maxHeapSize" yaml:"maxHeapSize"`
	MaxHeapSizeOccupance *int `json:"maxHeapSizeOccupance" yaml:"maxHeapSizeOccupance"`
}

// Summary is computed once when parsing completes.
type Summary struct {
	CycleCount   int             `json:"cycleCount" yaml:"cycleCount"`
	PhaseCounts  map[string]int  `json:"phaseCounts" yaml:"phaseCounts"`
	TimedCycles  int             `json:"timedCycles" yaml:"timedCycles"`
	TotalPauseMs decimal.Decimal `json:"totalPauseMs" yaml:"totalPauseMs"`
	AvgPauseMs   decimal.Decimal `json:"avgPauseMs" yaml:"avgPauseMs"`
	MinPauseMs   decimal.Decimal `json:"minPauseMs" yaml:"minPauseMs"`
	MaxPauseMs   decimal.Decimal `json:"maxPauseMs" yaml:"maxPauseMs"`
	P95PauseMs   decimal.Decimal `json:"p95PauseMs" yaml:"p95PauseMs"`
	P99PauseMs   decimal.Decimal `json:"p99PauseMs" yaml:"p99PauseMs"`

	// Normalized variance of pause durations
	PauseVariance float64 `json:"pauseVariance" yaml:"pauseVariance"`

	FirstTimestamp decimal.Decimal `json:"firstTimestamp" yaml:"firstTimestamp"`
	LastTimestamp  decimal.Decimal `json:"lastTimestamp" yaml:"lastTimestamp"`
}

// Diagnostics counts how lines were classified.
type Diagnostics struct {
	LinesTotal int            `json:"linesTotal" yaml:"linesTotal"`
	RuleHits   map[string]int `json:"ruleHits" yaml:"ruleHits"`
	Ignored    int            `json:"ignored" yaml:"ignored"`
	Dropped    int            `json:"dropped" yaml:"dropped"`
	Orphaned   int            `json:"orphaned" yaml:"orphaned"`
	ZeroSizes  int            `json:"zeroSizes" yaml:"zeroSizes"`
	Resyncs    int            `json:"resyncs" yaml:"resyncs"`
}

// OptionalDecimal is a decimal that may not have been observed.
// Unset values encode as null in both JSON and YAML.
type OptionalDecimal struct {
	decimal.NullDecimal
}

func NewOptionalDecimal(d decimal.Decimal) OptionalDecimal {
	return OptionalDecimal{decimal.NullDecimal{Decimal: d, Valid: true}}
}

func (d OptionalDecimal) MarshalYAML() (any, error) {
	if !d.Valid {
		return nil, nil
	}
	return d.Decimal.String(), nil
}
