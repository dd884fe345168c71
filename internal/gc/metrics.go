package gc

import (
	"slices"

	"github.com/mabhi256/gclog/utils"
	"github.com/shopspring/decimal"
)

func calculateSummary(cycles []*Cycle) Summary {
	summary := Summary{
		CycleCount:   len(cycles),
		PhaseCounts:  make(map[string]int),
		TotalPauseMs: decimal.Zero,
		AvgPauseMs:   decimal.Zero,
		MinPauseMs:   decimal.Zero,
		MaxPauseMs:   decimal.Zero,
		P95PauseMs:   decimal.Zero,
		P99PauseMs:   decimal.Zero,
	}
	if len(cycles) == 0 {
		return summary
	}

	summary.FirstTimestamp = cycles[0].Timestamp
	summary.LastTimestamp = cycles[len(cycles)-1].Timestamp

	var durations []decimal.Decimal
	for _, cycle := range cycles {
		summary.PhaseCounts[cycle.PhaseName]++
		if cycle.DurationMs.Valid {
			durations = append(durations, cycle.DurationMs.Decimal)
		}
	}
	if len(durations) == 0 {
		return summary
	}

	slices.SortFunc(durations, func(a, b decimal.Decimal) int {
		return a.Cmp(b)
	})

	summary.TimedCycles = len(durations)
	summary.TotalPauseMs = decimal.Sum(durations[0], durations[1:]...)
	summary.AvgPauseMs = summary.TotalPauseMs.DivRound(decimal.NewFromInt(int64(len(durations))), 2)
	summary.MinPauseMs = durations[0]
	summary.MaxPauseMs = durations[len(durations)-1]
	summary.P95PauseMs = calculatePercentile(durations, 95)
	summary.P99PauseMs = calculatePercentile(durations, 99)

	millis := make([]float64, len(durations))
	for i, d := range durations {
		millis[i] = d.InexactFloat64()
	}
	summary.PauseVariance = utils.CalculateNormalizedVariance(millis, summary.AvgPauseMs.InexactFloat64())

	return summary
}

// calculatePercentile interpolates the nth percentile of sorted durations
func calculatePercentile(sorted []decimal.Decimal, percentile int) decimal.Decimal {
	if len(sorted) == 0 {
		return decimal.Zero
	}

	index := decimal.NewFromInt(int64(percentile)).
		Mul(decimal.NewFromInt(int64(len(sorted) - 1))).
		Div(decimal.NewFromInt(100))
	lower := int(index.IntPart())
	upper := lower + 1

	if upper >= len(sorted) {
		return sorted[len(sorted)-1]
	}

	weight := index.Sub(decimal.NewFromInt(int64(lower)))
	value := sorted[lower].Mul(decimal.NewFromInt(1).Sub(weight)).Add(sorted[upper].Mul(weight))
	return value.RoundBank(2)
}

// totalAllocation sums the heap growth between consecutive sized cycles,
// starting from the occupancy that triggered the first one.
func totalAllocation(cycles []*Cycle) OptionalDecimal {
	var total decimal.Decimal
	var prevAfter *int
	seen := false

	for _, cycle := range cycles {
		if cycle.SizeBefore == nil || cycle.SizeAfter == nil {
			continue
		}
		before := *cycle.SizeBefore
		if prevAfter == nil {
			total = decimal.NewFromInt(int64(before))
		} else if grown := before - *prevAfter; grown > 0 {
			total = total.Add(decimal.NewFromInt(int64(grown)))
		}
		prevAfter = cycle.SizeAfter
		seen = true
	}

	if !seen {
		return OptionalDecimal{}
	}
	return NewOptionalDecimal(total)
}
