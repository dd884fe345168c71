package utils

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

var nanosPerMilli = decimal.NewFromInt(int64(time.Millisecond))

func FormatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%.1fμs", float64(d.Nanoseconds())/1000)
	}
	if d < time.Second {
		return fmt.Sprintf("%.2fms", float64(d.Nanoseconds())/1000000)
	}
	if d < time.Minute {
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%.0fm %.0fs", math.Floor(d.Minutes()), math.Mod(d.Seconds(), 60))
	}
	hours := int(d.Hours())
	minutes := int(d.Minutes()) - 60*hours
	return fmt.Sprintf("%dh %dm", hours, minutes)
}

// FormatMillis renders a millisecond amount such as a pause duration.
func FormatMillis(ms decimal.Decimal) string {
	return FormatDuration(time.Duration(ms.Mul(nanosPerMilli).IntPart()))
}

// FormatSeconds renders a JVM uptime in seconds.
func FormatSeconds(s decimal.Decimal) string {
	return s.StringFixed(3) + "s"
}
