package utils

import "golang.org/x/exp/constraints"

// Abs returns the absolute value of x.
func Abs[T constraints.Signed | constraints.Float](x T) T {
	if x < 0 {
		return -x
	}
	return x
}

// Max returns the bigger value among the provided numbers.
func Max[T constraints.Ordered](x T, rest ...T) T {
	for _, v := range rest {
		if v > x {
			x = v
		}
	}
	return x
}
