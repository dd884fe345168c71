package gc

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	toMillis = decimal.NewFromInt(1000)
	halfCent = decimal.New(5, -3)
	oneCent  = decimal.New(1, -2)
)

// ParseTimestamp returns the seconds-since-start timestamp of a line.
//
// Bracketed lines ([2019-06-25T15:06:01.000+0100][1.234s][info][gc] ...) carry the
// uptime between the last '[' before "s]" and "s]". Other lines are split on ": "
// and the second token is the uptime (2020-01-01T00:00:00.000+0000: 1.234: [GC ...).
// Lines decorated with the uptime only (1.234: [GC ...) fall back to the first token.
// Unrecognized lines yield zero.
func ParseTimestamp(line string) decimal.Decimal {
	if strings.HasPrefix(line, "[") {
		end := strings.Index(line, "s]")
		if end < 0 {
			return decimal.Zero
		}
		start := strings.LastIndex(line[:end], "[")
		if ts, ok := parseDecimalToken(line[start+1 : end]); ok {
			return ts
		}
		return decimal.Zero
	}

	tokens := strings.Split(line, ": ")
	if len(tokens) < 2 {
		return decimal.Zero
	}
	if ts, ok := parseDecimalToken(tokens[1]); ok {
		return ts
	}
	if ts, ok := parseDecimalToken(tokens[0]); ok {
		return ts
	}
	return decimal.Zero
}

// ParseFirstInteger returns the first run of digits at or after pos, or 0.
func ParseFirstInteger(line string, pos int) int64 {
	started := false
	var value int64
	for i := max(pos, 0); i < len(line); i++ {
		c := line[i]
		if isDigit(c) {
			started = true
			value = value*10 + int64(c-'0')
		} else if started {
			return value
		}
	}
	if started {
		return value
	}
	return 0
}

// ParseFirstDecimal returns the first decimal number at or after pos, or 0.
// Either '.' or ',' separates the fraction, which is rounded half-down to two places.
func ParseFirstDecimal(line string, pos int) decimal.Decimal {
	whole, frac, ok := scanDecimal(line, pos)
	if !ok {
		return decimal.Zero
	}

	value, _ := decimal.NewFromString(whole)
	if frac == "" {
		return value.Round(2)
	}
	fraction, _ := decimal.NewFromString("0." + frac)
	return value.Add(roundHalfDown(fraction))
}

// ParseFirstHex returns the first "0x"-prefixed hexadecimal literal at or after pos,
// including the prefix. It returns "" when there is none.
func ParseFirstHex(line string, pos int) string {
	pos = max(pos, 0)
	if pos >= len(line) {
		return ""
	}
	start := strings.Index(line[pos:], "0x")
	if start < 0 {
		return ""
	}
	start += pos

	end := start + 2
	for end < len(line) && isHexDigit(line[end]) {
		end++
	}
	return line[start:end]
}

// scanDecimal locates the first number at or after pos and returns its
// integer and fractional digit runs.
func scanDecimal(line string, pos int) (whole, frac string, ok bool) {
	start := -1
	sep := -1
	i := max(pos, 0)
	for ; i < len(line); i++ {
		c := line[i]
		if isDigit(c) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 && sep < 0 && (c == '.' || c == ',') {
			sep = i
			continue
		}
		if start >= 0 {
			break
		}
	}
	if start < 0 {
		return "", "", false
	}
	if sep < 0 {
		return line[start:i], "", true
	}
	return line[start:sep], line[sep+1 : i], true
}

func roundHalfDown(d decimal.Decimal) decimal.Decimal {
	truncated := d.Truncate(2)
	if d.Sub(truncated).GreaterThan(halfCent) {
		return truncated.Add(oneCent)
	}
	return truncated
}

// parseDecimalToken parses a whole token such as "1.234" or "0,0123" exactly.
func parseDecimalToken(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) && s[i] != '.' && s[i] != ',' {
			return decimal.Zero, false
		}
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// secondsToMillis converts the first number at or after pos, read as seconds,
// to milliseconds rounded half-to-even to two places.
func secondsToMillis(s string, pos int) (decimal.Decimal, bool) {
	whole, frac, ok := scanDecimal(s, pos)
	if !ok {
		return decimal.Zero, false
	}
	token := whole
	if frac != "" {
		token += "." + frac
	}
	seconds, err := decimal.NewFromString(token)
	if err != nil {
		return decimal.Zero, false
	}
	return seconds.Mul(toMillis).RoundBank(2), true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
