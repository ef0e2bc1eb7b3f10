package game

import (
	"math"
	"slices"
)

// Sum ...
func Sum(data []float64) (result float64) {
	for _, v := range data {
		result += v
	}
	return result
}

// Mean ...
func Mean(data []float64) float64 {
	count := float64(len(data))
	if count == 0 {
		return 0
	}
	return Sum(data) / count
}

// Median returns the median of data without reordering it.
func Median(data []float64) float64 {
	return median(slices.Sorted(slices.Values(data)))
}

func median(sorted []float64) float64 {
	count := len(sorted)
	if count == 0 {
		return 0
	}
	if count%2 != 0 {
		return sorted[count/2]
	}
	return (sorted[count/2-1] + sorted[count/2]) * 0.5
}

// Variance ...
func Variance(data []float64) (variance float64) {
	count := float64(len(data))
	if count == 0 {
		return 0
	}
	mean := Sum(data) / count

	for _, number := range data {
		variance += math.Pow(number-mean, 2)
	}
	return variance / count
}

// StandardDeviation ...
func StandardDeviation(data []float64) float64 {
	return math.Sqrt(Variance(data))
}

// Outliers returns the number of values further than 1.5 times the interquartile
// range away from the lower or upper quartile.
func Outliers(data []float64) int {
	sorted := slices.Sorted(slices.Values(data))
	half := int(math.Ceil(float64(len(sorted)) * 0.5))
	q1, q3 := median(sorted[:half]), median(sorted[half:])

	iqr := math.Abs(q3 - q1)
	low, high := q1-1.5*iqr, q3+1.5*iqr

	var count int
	for _, v := range sorted {
		if v < low || v > high {
			count++
		}
	}
	return count
}
