package gc

import (
	"fmt"
	"regexp"
	"strings"
)

// recordRule opens a cycle for a named GC cause and reads the whole record
// from the same line when it has the fixed single-line structure.
func recordRule(name, marker, label string, pattern *regexp.Regexp, before, after, capacity, secs int) LineRule {
	return LineRule{
		Name:     name,
		CanParse: func(line string) bool { return strings.Contains(line, marker) },
		Parse: func(p *Parser, line string) error {
			id, err := p.openCycle(label, line)
			if err != nil {
				return err
			}

			matches := pattern.FindStringSubmatch(line[strings.Index(line, marker):])
			if matches == nil {
				return fmt.Errorf("%w: %s record does not match", ErrMalformedRecord, name)
			}

			if err := p.recordSeconds(id, matches[secs]); err != nil {
				return err
			}
			return p.recordSizes(id, matches[before], matches[after], matches[capacity])
		},
	}
}

// transitionRule opens a cycle and reads "before->after(capacity)" from the text
// following marker plus the trailing ", <n> secs]" clause, when present.
func transitionRule(name, marker, label string, canParse func(string) bool) LineRule {
	return LineRule{
		Name:     name,
		CanParse: canParse,
		Parse: func(p *Parser, line string) error {
			id, err := p.openCycle(label, line)
			if err != nil {
				return err
			}

			if secs, ok := trailingSeconds(line); ok {
				if err := p.recordSeconds(id, secs); err != nil {
					return err
				}
			}

			rest := line[strings.Index(line, marker)+len(marker):]
			if !strings.Contains(rest, "->") {
				return nil
			}
			before, after, capacity, err := extractTransition(rest)
			if err != nil {
				return err
			}
			return p.recordSizes(id, before, after, capacity)
		},
	}
}

// timedRule opens a cycle whose only same-line field is the trailing duration.
func timedRule(name, label string, canParse func(string) bool) LineRule {
	return LineRule{
		Name:     name,
		CanParse: canParse,
		Parse: func(p *Parser, line string) error {
			id, err := p.openCycle(label, line)
			if err != nil {
				return err
			}
			if secs, ok := trailingSeconds(line); ok {
				return p.recordSeconds(id, secs)
			}
			return nil
		},
	}
}

// 2020-01-01T00:00:00.000+0000: 1.234: [GC pause (G1 Evacuation Pause) (young), 0.0123456 secs]
func parseGCPause(p *Parser, line string) error {
	id, err := p.openCycle(gcPauseLabel(line), line)
	if err != nil {
		return err
	}
	if secs, ok := trailingSeconds(line); ok {
		return p.recordSeconds(id, secs)
	}
	return nil
}

// gcPauseLabel returns the parenthesized part of a GC pause line:
// "(G1 Evacuation Pause) (young)".
func gcPauseLabel(line string) string {
	pause := strings.Index(line, "GC pause")
	open := strings.Index(line[pause:], "(")
	closing := strings.LastIndex(line, ")")
	if open < 0 || pause+open > closing {
		return PhaseGCPause
	}
	return line[pause+open : closing+1]
}

// , 0.0165161 secs]
//
//	(to-space exhausted), 0.0165161 secs]
func isContinuation(line string) bool {
	return (strings.HasPrefix(line, ", ") || strings.HasPrefix(line, " (to-space exhausted), ")) &&
		strings.Contains(line, "secs") &&
		!strings.Contains(line, "Times")
}

func parseContinuation(p *Parser, line string) error {
	id, err := p.openID()
	if err != nil {
		return err
	}
	return p.recordSeconds(id, strings.Replace(line, " (to-space exhausted)", "", 1))
}

//	[Eden: 24.0M(24.0M)->0.0B(13.0M) Survivors: 0.0B->3072.0K Heap: 24.0M(256.0M)->4364.0K(256.0M)]
func parseHeap(p *Parser, line string) error {
	id, err := p.openID()
	if err != nil {
		return err
	}
	rest := line[strings.Index(line, "Heap: ")+len("Heap: "):]
	before, after, capacity, err := extractTransition(rest)
	if err != nil {
		return err
	}
	return p.recordSizes(id, before, after, capacity)
}

// Desired survivor size 1048576 bytes, new threshold 7 (max 15)
func parseSurvivorStats(p *Parser, line string) error {
	id, err := p.openID()
	if err != nil {
		return err
	}

	desiredPos := strings.Index(line, "Desired survivor size")
	newThresholdPos := indexFrom(line, "new threshold", desiredPos)
	maxThresholdPos := indexFrom(line, "max", newThresholdPos)
	if newThresholdPos < 0 || maxThresholdPos < 0 {
		return fmt.Errorf("%w: incomplete survivor line", ErrMalformedRecord)
	}

	return p.model.AddSurvivorStats(id,
		ParseFirstInteger(line, desiredPos),
		ParseFirstInteger(line, newThresholdPos),
		ParseFirstInteger(line, maxThresholdPos))
}

// - age   1:     123456 bytes,     123456 total
func parseAge(p *Parser, line string) error {
	id, err := p.openID()
	if err != nil {
		return err
	}

	colon := strings.Index(line, ":")
	if colon < 0 || !containsDigit(line[len("- age"):colon]) || !containsDigit(line[colon:]) {
		return fmt.Errorf("%w: incomplete age line", ErrMalformedRecord)
	}

	age := ParseFirstInteger(line[:colon], len("- age"))
	bytes := ParseFirstInteger(line, colon+1)
	return p.model.AddAgeWithSize(id, int(age), bytes)
}

//	[Parallel Time: 10.5 ms, GC Workers: 8]
//	   [Ext Root Scanning (ms): Min: 0.3, Avg: 0.4, Max: 0.6, Diff: 0.3, Sum: 3.2]
func parseSubPhase(p *Parser, line string, nested bool) error {
	id, err := p.openID()
	if err != nil {
		return err
	}

	open := strings.Index(line, "[")
	colon := indexFrom(line, ":", open)
	if colon < 0 {
		return fmt.Errorf("%w: sub-phase without label", ErrMalformedRecord)
	}
	label := line[open+1 : colon]
	if nested {
		label = SubSubPhaseMarker + label
	}

	var raw string
	if maxPos := strings.Index(line, "Max:"); maxPos >= 0 {
		raw = line[maxPos+len("Max:"):]
		if end := strings.Index(raw, ", "); end >= 0 {
			raw = raw[:end]
		}
		raw = strings.TrimSuffix(strings.TrimSpace(raw), "]")
	} else {
		msPos := indexFrom(line, "ms", colon)
		if msPos < 0 {
			return fmt.Errorf("%w: sub-phase without ms value", ErrMalformedRecord)
		}
		raw = line[:msPos]
		raw = raw[strings.LastIndex(raw, ":")+1:]
	}

	ms, ok := parseDecimalToken(raw)
	if !ok {
		return fmt.Errorf("%w: sub-phase value %q", ErrMalformedRecord, strings.TrimSpace(raw))
	}
	return p.model.AddSubPhaseTime(id, label, ms)
}

// extractTransition splits "... 4096K->3584K(8192K), ..." into its three size tokens.
// A before token carrying its own capacity ("24.0M(256.0M)") keeps only the size.
func extractTransition(s string) (before, after, capacity string, err error) {
	arrow := strings.Index(s, "->")
	if arrow < 0 {
		return "", "", "", fmt.Errorf("%w: no size transition", ErrMalformedRecord)
	}

	left := strings.TrimSpace(s[:arrow])
	before = left[strings.LastIndexAny(left, " :[")+1:]
	if paren := strings.Index(before, "("); paren >= 0 {
		before = before[:paren]
	}

	right := s[arrow+2:]
	end := strings.IndexAny(right, "( ,]")
	if end < 0 {
		end = len(right)
	}
	after = right[:end]
	if end >= len(right) || right[end] != '(' {
		return "", "", "", fmt.Errorf("%w: no heap capacity after %q", ErrMalformedRecord, after)
	}

	closing := strings.Index(right[end:], ")")
	if closing < 0 {
		return "", "", "", fmt.Errorf("%w: unterminated heap capacity", ErrMalformedRecord)
	}
	capacity = right[end+1 : end+closing]

	return before, after, capacity, nil
}

// trailingSeconds returns the number of the last ", <n> secs]" clause.
func trailingSeconds(line string) (string, bool) {
	matches := trailingSecsPattern.FindAllStringSubmatch(line, -1)
	if len(matches) == 0 {
		return "", false
	}
	return matches[len(matches)-1][1], true
}

func indexFrom(s, substr string, from int) int {
	if from < 0 || from > len(s) {
		return -1
	}
	idx := strings.Index(s[from:], substr)
	if idx < 0 {
		return -1
	}
	return from + idx
}

func containsDigit(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool { return r >= '0' && r <= '9' }) >= 0
}
