package framework

import "cmp"

// Clip clips value to the range [lower, upper].
func Clip[T cmp.Ordered](value, lower, upper T) T {
	return max(min(value, upper), lower)
}

// Product returns the product of dims, or 0 when dims is empty.
func Product(dims []int) int {
	if len(dims) == 0 {
		return 0
	}
	p := 1
	for _, d := range dims {
		p *= d
	}
	return p
}
