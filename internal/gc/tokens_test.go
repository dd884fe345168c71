package gc

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name string
		line string
		want string
	}{
		{"date and uptime", "2020-01-01T00:00:00.000+0000: 1.234: [GC (Allocation Failure) ...", "1.234"},
		{"uptime only", "12.500: [GC pause (G1 Evacuation Pause) (young), 0.01 secs]", "12.5"},
		{"bracketed decorations", "[2019-06-25T15:06:01.000+0100][3.141s][info][gc] GC(0) Pause Young", "3.141"},
		{"decimal comma", "2020-01-01T00:00:00,000+0100: 7,25: [GC pause", "7.25"},
		{"no separator", "Java HotSpot(TM) 64-Bit Server VM", "0"},
		{"non numeric tokens", "CommandLine flags: -XX:+PrintGCDetails", "0"},
		{"bracketed without uptime", "[info][gc] Using G1", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTimestamp(tt.line)
			assert.True(t, got.Equal(dec(tt.want)), "got %s, want %s", got, tt.want)
		})
	}
}

func TestParseFirstInteger(t *testing.T) {
	tests := []struct {
		line string
		pos  int
		want int64
	}{
		{"- age   15:     123456 bytes", 0, 15},
		{"- age   15:     123456 bytes", 11, 123456},
		{"Desired survivor size 1048576 bytes", 0, 1048576},
		{"no digits here", 0, 0},
		{"42", 5, 0},
		{"x7y", -3, 7},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseFirstInteger(tt.line, tt.pos), "%q at %d", tt.line, tt.pos)
	}
}

func TestParseFirstDecimal(t *testing.T) {
	tests := []struct {
		line string
		pos  int
		want string
	}{
		{"abc 12,5 def", 0, "12.50"},
		{"took 0.0123456 secs", 0, "0.01"},
		{"Max: 0.6, Diff: 0.3", 0, "0.6"},
		{"value 1.235", 0, "1.23"},
		{"value 1.2351", 0, "1.24"},
		{"value 7", 0, "7"},
		{"1.2.3", 0, "1.2"},
		{", 3.5 secs]", 0, "3.5"},
		{"nothing", 0, "0"},
	}

	for _, tt := range tests {
		got := ParseFirstDecimal(tt.line, tt.pos)
		assert.True(t, got.Equal(dec(tt.want)), "%q: got %s, want %s", tt.line, got, tt.want)
	}
}

func TestParseFirstHex(t *testing.T) {
	assert.Equal(t, "0x00000007c0000000", ParseFirstHex("region [0x00000007c0000000, 0x0000000800000000)", 0))
	assert.Equal(t, "0x0000000800000000", ParseFirstHex("region [0x00000007c0000000, 0x0000000800000000)", 10))
	assert.Equal(t, "0xBEEF", ParseFirstHex("id=0xBEEFzz", 0))
	assert.Equal(t, "", ParseFirstHex("no hex", 0))
	assert.Equal(t, "", ParseFirstHex("0x1", 9))
}

func TestSecondsToMillis(t *testing.T) {
	tests := []struct {
		input string
		want  string
		ok    bool
	}{
		{", 0.0123456 secs]", "12.35", true},
		{"0,0165161", "16.52", true},
		{"0.0000125", "0.01", true},
		{"0.0000135", "0.01", true},
		{"0.000125", "0.12", true},
		{"0.000135", "0.14", true},
		{"0,000145", "0.14", true},
		{"0.0012345", "1.23", true},
		{"2", "2000", true},
		{"secs", "0", false},
	}

	for _, tt := range tests {
		got, ok := secondsToMillis(tt.input, 0)
		assert.Equal(t, tt.ok, ok, tt.input)
		assert.True(t, got.Equal(dec(tt.want)), "%q: got %s, want %s", tt.input, got, tt.want)
	}
}

func TestParseDecimalToken(t *testing.T) {
	got, ok := parseDecimalToken(" 10,5 ")
	assert.True(t, ok)
	assert.True(t, got.Equal(dec("10.5")))

	_, ok = parseDecimalToken("10.5ms")
	assert.False(t, ok)

	_, ok = parseDecimalToken("")
	assert.False(t, ok)
}
