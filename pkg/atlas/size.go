package atlas

import "golang.org/x/exp/constraints"

// nextPowerOfTwo returns the smallest power of two >= n, and 1 for n <= 1.
func nextPowerOfTwo[T constraints.Integer](n T) T {
	if n <= 1 {
		return 1
	}
	p := T(1)
	for p < n {
		p <<= 1
	}
	return p
}

// clamp limits v to [lo, hi].
func clamp[T constraints.Ordered](v, lo, hi T) T {
	return min(max(v, lo), hi)
}
