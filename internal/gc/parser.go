package gc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/mabhi256/gclog/utils"
)

const (
	DefaultMaxLineBytes = 1024 * 1024

	subPhaseIndent    = "   ["
	subSubPhaseIndent = "      ["
)

var (
	// 2020-01-01T00:00:00.000+0000
	// [2020-01-01T00:00:00.000+0000]
	decoratedTimestampPattern = regexp.MustCompile(`^\[?\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}[.,]\d{3}(?:Z|[+-]\d{4})\]?$`)

	// 1024K, 24.0M, 0,5G
	sizeToken = `([\d.,]+[BKMG])`

	// 1024K->512K(2048K)
	transition = sizeToken + `->` + sizeToken + `\(` + sizeToken + `\)`

	// Per-generation elapsed clause printed by ParNew/DefNew: ", 0.0100 secs"
	generationSecs = `(?:, [\d.,]+ secs)?`

	// Date and uptime stamps repeated in front of a generation record: "3.500: "
	decorations = `(?:\S+: )*`

	// [GC (Allocation Failure) [PSYoungGen: 1024K->512K(2048K)] 4096K->3584K(8192K), 0.0123456 secs] [Times: user=0.01 sys=0.00, real=0.02 secs]
	// [GC (Allocation Failure) 3.500: [ParNew: 1024K->512K(2048K), 0.0100 secs] 4096K->3584K(8192K), 0.0123456 secs]
	youngRecordPattern = regexp.MustCompile(
		`^\[GC \((.*?)\) ` + decorations + `\[(\w+): ` + transition + generationSecs + `\] ` +
			transition + `, ([\d.,]+) secs\](?: (.*))?$`)

	// [Full GC (Ergonomics) [PSYoungGen: 512K->0K(2048K)] [ParOldGen: 3000K->2500K(6144K)] 3512K->2500K(8192K), [Metaspace: 2900K->2900K(1056768K)], 0.0500 secs] [Times: user=0.10 sys=0.00, real=0.05 secs]
	fullRecordPattern = regexp.MustCompile(
		`^\[Full GC \((.*?)\) ` + decorations + `\[(\w+): ` + transition + generationSecs + `\] ` +
			decorations + `\[(\w+): ` + transition + generationSecs + `\] ` +
			transition + `, \[Metaspace: ` + transition + `\], ([\d.,]+) secs\](?: (.*))?$`)

	// , 0.0123456 secs]
	trailingSecsPattern = regexp.MustCompile(`, ([\d.,]+) secs\]`)
)

// Capture group positions of the record patterns
const (
	youngBefore, youngAfter, youngCapacity, youngSecs = 6, 7, 8, 9
	fullBefore, fullAfter, fullCapacity, fullSecs     = 10, 11, 12, 16
)

// LineRule pairs a line-shape predicate with the handler applied when it matches.
type LineRule struct {
	Name     string
	CanParse func(line string) bool
	Parse    func(p *Parser, line string) error
}

// Parser is a line-at-a-time state machine over JDK 8 style GC logs.
// One Parser owns one GCLogFile and is not safe for concurrent use.
type Parser struct {
	rules []LineRule
	model *GCLogFile

	// Id of the cycle lines attach to; 0 when none is open.
	currentID int64
	lastID    int64

	lineNum      int
	maxLineBytes int
	logger       *slog.Logger
}

type Option func(*Parser)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithMaxLineBytes bounds the line length accepted by ParseReader.
func WithMaxLineBytes(n int) Option {
	return func(p *Parser) {
		if n > 0 {
			p.maxLineBytes = n
		}
	}
}

func NewParser(opts ...Option) *Parser {
	p := &Parser{
		rules:        defaultRules(),
		maxLineBytes: DefaultMaxLineBytes,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.model = NewGCLogFile(p.logger)
	return p
}

func defaultRules() []LineRule {
	return []LineRule{
		recordRule("allocation-failure", "[GC (Allocation Failure)", PhaseYoungMixed, youngRecordPattern,
			youngBefore, youngAfter, youngCapacity, youngSecs),
		recordRule("gclocker", "[GC (GCLocker Initiated GC)", PhaseLockerMixed, youngRecordPattern,
			youngBefore, youngAfter, youngCapacity, youngSecs),
		recordRule("system-gc", "[GC (System.gc())", PhaseMajor, youngRecordPattern,
			youngBefore, youngAfter, youngCapacity, youngSecs),
		recordRule("full-system-gc", "[Full GC (System.gc())", PhaseFull, fullRecordPattern,
			fullBefore, fullAfter, fullCapacity, fullSecs),
		recordRule("full-ergonomics", "[Full GC (Ergonomics)", PhasePauseFull, fullRecordPattern,
			fullBefore, fullAfter, fullCapacity, fullSecs),
		{
			Name:     "gc-pause",
			CanParse: func(line string) bool { return strings.Contains(line, "GC pause") },
			Parse:    parseGCPause,
		},
		transitionRule("full-gc", "Full GC", PhasePauseFull, func(line string) bool {
			return strings.Contains(line, "Full GC") && strings.Contains(line, "->")
		}),
		transitionRule("minor-gc", "[GC (", PhaseMinor, func(line string) bool {
			return strings.Contains(line, "[GC (") && strings.Contains(line, "->")
		}),
		transitionRule("cleanup", "GC cleanup", PhasePauseCleanup, func(line string) bool {
			return strings.Contains(line, "GC cleanup")
		}),
		timedRule("remark", PhasePauseRemark, func(line string) bool {
			return strings.Contains(line, "GC remark")
		}),
		{
			Name:     "continuation",
			CanParse: isContinuation,
			Parse:    parseContinuation,
		},
		{
			Name: "heap",
			CanParse: func(line string) bool {
				return strings.Contains(line, "Heap: ") && strings.Contains(line, "->")
			},
			Parse: parseHeap,
		},
		{
			Name:     "survivor",
			CanParse: func(line string) bool { return strings.HasPrefix(line, "Desired survivor size") },
			Parse:    parseSurvivorStats,
		},
		{
			Name:     "age",
			CanParse: func(line string) bool { return strings.HasPrefix(line, "- age") },
			Parse:    parseAge,
		},
		{
			Name: "sub-phase",
			CanParse: func(line string) bool {
				return strings.HasPrefix(line, subPhaseIndent) && !strings.Contains(line, "->")
			},
			Parse: func(p *Parser, line string) error { return parseSubPhase(p, line, false) },
		},
		{
			Name: "sub-sub-phase",
			CanParse: func(line string) bool {
				return strings.HasPrefix(line, subSubPhaseIndent) &&
					!strings.Contains(line, "GC Worker Start") &&
					!strings.Contains(line, "GC Worker End")
			},
			Parse: func(p *Parser, line string) error { return parseSubPhase(p, line, true) },
		},
	}
}

// ParseLine classifies one line and applies it to the model.
// Lines that match no rule are ignored; lines that match a rule but not its
// structure are dropped. Neither stops the stream.
func (p *Parser) ParseLine(line string) {
	p.model.mustBeMutable("ParseLine")

	p.lineNum++
	p.model.Diagnostics.LinesTotal++

	p.resync(line)

	rule, ok := p.classify(line)
	if !ok {
		p.model.Diagnostics.Ignored++
		return
	}
	p.model.Diagnostics.RuleHits[rule.Name]++

	if err := rule.Parse(p, line); err != nil {
		switch {
		case errors.Is(err, ErrUnknownCycle):
			p.model.Diagnostics.Orphaned++
		default:
			p.model.Diagnostics.Dropped++
		}
		p.logger.Debug("line not applied",
			"rule", rule.Name,
			"error", ParseError{Line: line, LineNum: p.lineNum, Err: err})
	}
}

// Classify returns the name of the rule a line would be handled by, or "".
func (p *Parser) Classify(line string) string {
	if rule, ok := p.classify(line); ok {
		return rule.Name
	}
	return ""
}

// FetchData seals the model and returns it. Later calls return the same model.
func (p *Parser) FetchData() *GCLogFile {
	if !p.model.Completed {
		p.model.ParsingCompleted()
		p.currentID = 0
	}
	return p.model
}

// Model returns the model as accumulated so far, without sealing it.
func (p *Parser) Model() *GCLogFile {
	return p.model
}

// ParseReader feeds every line of r to the parser and seals the model.
// When ctx is cancelled it stops feeding lines and returns the unsealed,
// partially filled model together with the context error.
func (p *Parser) ParseReader(ctx context.Context, r io.Reader) (*GCLogFile, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, min(64*1024, p.maxLineBytes)), p.maxLineBytes)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return p.model, err
		}
		p.ParseLine(scanner.Text())
	}

	if err := scanner.Err(); err != nil {
		return p.model, ParseError{LineNum: p.lineNum + 1, Err: err}
	}

	return p.FetchData(), nil
}

// ParseFile parses a GC log file with a fresh parser.
func ParseFile(ctx context.Context, filename string, opts ...Option) (*GCLogFile, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	return NewParser(opts...).ParseReader(ctx, file)
}

func (p *Parser) classify(line string) (LineRule, bool) {
	for _, rule := range p.rules {
		if rule.CanParse(line) {
			return rule, true
		}
	}
	return LineRule{}, false
}

// resync closes the open cycle when a new decorated line starts without an
// explicit end marker for the previous one.
func (p *Parser) resync(line string) {
	if p.currentID == 0 {
		return
	}
	idx := strings.Index(line, ": ")
	if idx <= 0 || !decoratedTimestampPattern.MatchString(line[:idx]) {
		return
	}
	p.model.FinishCycle(p.currentID)
	p.currentID = 0
	p.model.Diagnostics.Resyncs++
}

func (p *Parser) openCycle(label, line string) (int64, error) {
	if p.currentID != 0 {
		p.model.FinishCycle(p.currentID)
		p.currentID = 0
	}

	p.lastID++
	if err := p.model.NewPhase(p.lastID, label, ParseTimestamp(line)); err != nil {
		return 0, err
	}
	p.currentID = p.lastID
	return p.currentID, nil
}

func (p *Parser) openID() (int64, error) {
	if p.currentID == 0 {
		return 0, fmt.Errorf("%w: no open cycle", ErrUnknownCycle)
	}
	return p.currentID, nil
}

// recordSizes normalizes before/after/capacity tokens to MB and stores them.
func (p *Parser) recordSizes(id int64, before, after, capacity string) error {
	beforeMB, err := utils.NormalizeToMB(before)
	if err != nil {
		return fmt.Errorf("%w: size before: %v", ErrMalformedRecord, err)
	}
	afterMB, err := utils.NormalizeToMB(after)
	if err != nil {
		return fmt.Errorf("%w: size after: %v", ErrMalformedRecord, err)
	}
	capacityMB, err := utils.NormalizeToMB(capacity)
	if err != nil {
		return fmt.Errorf("%w: heap capacity: %v", ErrMalformedRecord, err)
	}

	if capacityMB.IsZero() {
		p.model.Diagnostics.ZeroSizes++
		p.logger.Warn("heap capacity normalized to zero", "cycle", id, "line", p.lineNum, "capacity", capacity)
	}

	return p.model.AddSizes(id, int(beforeMB.IntPart()), int(afterMB.IntPart()), int(capacityMB.IntPart()))
}

func (p *Parser) recordSeconds(id int64, secs string) error {
	ms, ok := secondsToMillis(secs, 0)
	if !ok {
		return fmt.Errorf("%w: no duration in %q", ErrMalformedRecord, secs)
	}
	return p.model.AddTime(id, ms)
}
