package metrics

import "math"

// Mean of the observations, 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// SampleStdDev is the n-1 (Bessel-corrected) standard deviation.
// Fewer than two observations have no spread.
func SampleStdDev(xs []float64) float64 {
	n := len(xs)
	if n < 2 {
		return 0
	}
	mu := Mean(xs)
	var ss float64
	for _, x := range xs {
		d := x - mu
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-1))
}

// skewness is the adjusted Fisher-Pearson coefficient:
// n/((n-1)(n-2)) * sum(((x-mu)/s)^3). Needs at least three
// observations and nonzero spread.
func skewness(xs []float64) float64 {
	n := float64(len(xs))
	if n < 3 {
		return 0
	}
	s := SampleStdDev(xs)
	if s == 0 {
		return 0
	}
	mu := Mean(xs)
	var sum float64
	for _, x := range xs {
		z := (x - mu) / s
		sum += z * z * z
	}
	return n / ((n - 1) * (n - 2)) * sum
}

// kurtosis is the sample excess kurtosis:
// [n(n+1)/((n-1)(n-2)(n-3))] * sum(((x-mu)/s)^4) - 3(n-1)^2/((n-2)(n-3)).
// Needs at least four observations and nonzero spread; a normal
// distribution scores zero.
func kurtosis(xs []float64) float64 {
	n := float64(len(xs))
	if n < 4 {
		return 0
	}
	s := SampleStdDev(xs)
	if s == 0 {
		return 0
	}
	mu := Mean(xs)
	var sum float64
	for _, x := range xs {
		z := (x - mu) / s
		sum += z * z * z * z
	}
	term := n * (n + 1) / ((n - 1) * (n - 2) * (n - 3)) * sum
	correction := 3 * (n - 1) * (n - 1) / ((n - 2) * (n - 3))
	return term - correction
}
