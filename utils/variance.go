package utils

type Numeric interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Population variance (divides by n)
func CalculateVariance[T Numeric](values []T, mean T) float64 {
	if len(values) < 2 {
		return 0
	}

	variance := 0.0
	for _, v := range values {
		diff := float64(v) - float64(mean)
		variance += diff * diff
	}
	return variance / float64(len(values))
}

// Coefficient of variation squared (normalized variance)
func CalculateNormalizedVariance[T Numeric](values []T, mean T) float64 {
	variance := CalculateVariance(values, mean)
	meanFloat := float64(mean)
	if meanFloat > 0 {
		return variance / (meanFloat * meanFloat)
	}
	return 0
}
