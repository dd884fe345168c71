package gc

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mabhi256/gclog/utils"
	"github.com/shopspring/decimal"
)

const keyWidth = 22

// WriteText renders a human-readable report of the model.
func (f *GCLogFile) WriteText(w io.Writer) error {
	sections := []string{
		f.renderSummary(),
		f.renderHeap(),
		f.renderPhases(),
		f.renderDiagnostics(),
		f.renderCycles(),
	}

	var sb strings.Builder
	for _, section := range sections {
		if section == "" {
			continue
		}
		sb.WriteString(section)
		sb.WriteString("\n\n")
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func (f *GCLogFile) renderSummary() string {
	s := f.Summary
	rows := []string{
		utils.SectionHeader("GC Pause Summary"),
		utils.FormatKeyValue("Cycles", strconv.Itoa(s.CycleCount), keyWidth),
	}
	if s.CycleCount > 0 {
		rows = append(rows, utils.FormatKeyValue("Time span",
			fmt.Sprintf("%s → %s", utils.FormatSeconds(s.FirstTimestamp), utils.FormatSeconds(s.LastTimestamp)), keyWidth))
	}
	if s.TimedCycles == 0 {
		rows = append(rows, utils.MutedStyle.Render("No pause durations recorded"))
		return lipgloss.JoinVertical(lipgloss.Left, rows...)
	}

	rows = append(rows,
		utils.FormatKeyValue("Timed cycles", strconv.Itoa(s.TimedCycles), keyWidth),
		utils.FormatKeyValue("Total pause", utils.FormatMillis(s.TotalPauseMs), keyWidth),
		utils.FormatKeyValue("Average pause", utils.FormatMillis(s.AvgPauseMs), keyWidth),
		utils.FormatKeyValue("Min pause", utils.FormatMillis(s.MinPauseMs), keyWidth),
		utils.FormatKeyValue("Max pause", pauseStyle(s.MaxPauseMs).Render(utils.FormatMillis(s.MaxPauseMs)), keyWidth),
		utils.FormatKeyValue("95th percentile", utils.FormatMillis(s.P95PauseMs), keyWidth),
		utils.FormatKeyValue("99th percentile", utils.FormatMillis(s.P99PauseMs), keyWidth),
		utils.FormatKeyValue("Pause variance", fmt.Sprintf("%.3f", s.PauseVariance), keyWidth),
	)
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (f *GCLogFile) renderHeap() string {
	stats := f.AllocationStats
	if stats.InitialHeapSize == nil {
		return ""
	}

	rows := []string{
		utils.SectionHeader("Heap"),
		utils.FormatKeyValue("Initial heap", utils.FormatMB(*stats.InitialHeapSize), keyWidth),
		utils.FormatKeyValue("Initial occupancy", utils.FormatMB(*stats.InitialHeapSizeOccupance), keyWidth),
		utils.FormatKeyValue("Max heap", utils.FormatMB(*stats.MaxHeapSize), keyWidth),
		utils.FormatKeyValue("Max occupancy", utils.FormatMB(*stats.MaxHeapSizeOccupance), keyWidth),
	}
	if stats.TotalAllocation.Valid {
		rows = append(rows, utils.FormatKeyValue("Total allocation",
			stats.TotalAllocation.Decimal.String()+" MB", keyWidth))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (f *GCLogFile) renderPhases() string {
	if len(f.Summary.PhaseCounts) == 0 {
		return ""
	}

	phases := make([]string, 0, len(f.Summary.PhaseCounts))
	for phase := range f.Summary.PhaseCounts {
		phases = append(phases, phase)
	}
	slices.Sort(phases)

	rows := []string{utils.SectionHeader("Phases")}
	for _, phase := range phases {
		rows = append(rows, utils.FormatKeyValue(utils.TruncateString(phase, keyWidth-1),
			strconv.Itoa(f.Summary.PhaseCounts[phase]), keyWidth))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (f *GCLogFile) renderDiagnostics() string {
	d := f.Diagnostics
	rows := []string{
		utils.SectionHeader("Diagnostics"),
		utils.FormatKeyValue("Lines", strconv.Itoa(d.LinesTotal), keyWidth),
		utils.FormatKeyValue("Ignored", strconv.Itoa(d.Ignored), keyWidth),
		utils.FormatKeyValue("Dropped", countStyle(d.Dropped).Render(strconv.Itoa(d.Dropped)), keyWidth),
		utils.FormatKeyValue("Orphaned", countStyle(d.Orphaned).Render(strconv.Itoa(d.Orphaned)), keyWidth),
		utils.FormatKeyValue("Zero sizes", countStyle(d.ZeroSizes).Render(strconv.Itoa(d.ZeroSizes)), keyWidth),
		utils.FormatKeyValue("Resyncs", strconv.Itoa(d.Resyncs), keyWidth),
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (f *GCLogFile) renderCycles() string {
	if len(f.Cycles) == 0 {
		return ""
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(utils.BorderStyle).
		Headers("#", "Uptime", "Phase", "Pause", "Before", "After", "Capacity").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return utils.HeaderStyle
			}
			return utils.CellStyle
		})

	for _, c := range f.Cycles {
		pause := "-"
		if c.DurationMs.Valid {
			pause = utils.FormatMillis(c.DurationMs.Decimal)
		}
		t.Row(
			strconv.FormatInt(c.SequenceID, 10),
			utils.FormatSeconds(c.Timestamp),
			utils.TruncateString(c.PhaseName, 40),
			pause,
			formatSize(c.SizeBefore),
			formatSize(c.SizeAfter),
			formatSize(c.HeapCapacity),
		)
	}

	return utils.SectionHeader("Cycles") + "\n" + t.Render()
}

func formatSize(mb *int) string {
	if mb == nil {
		return "-"
	}
	return utils.FormatMB(*mb)
}

var (
	warnPauseMs     = decimal.NewFromInt(200)
	criticalPauseMs = decimal.NewFromInt(1000)
)

func pauseStyle(ms decimal.Decimal) lipgloss.Style {
	switch {
	case ms.GreaterThanOrEqual(criticalPauseMs):
		return utils.CriticalStyle
	case ms.GreaterThanOrEqual(warnPauseMs):
		return utils.WarningStyle
	default:
		return utils.GoodStyle
	}
}

func countStyle(n int) lipgloss.Style {
	if n > 0 {
		return utils.WarningStyle
	}
	return utils.TextStyle
}
