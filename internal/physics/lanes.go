package physics

// MaxLanes is the widest lane batch Packed accepts.
const MaxLanes = 16

// batch holds one value per lane. Only the first width entries are live.
type batch [MaxLanes]float64

// maskDiagonal zeroes lanes [0, self] of s. self is the lane of the outer
// body inside the batch that contains it. Lane self is the i == j term; the
// lanes left of it pair i with a lower index, which was already applied as
// a reaction when that index was the outer body.
func maskDiagonal(s *batch, self int) {
	for k := 0; k <= self && k < MaxLanes; k++ {
		s[k] = 0
	}
}

// maskTail zeroes lanes [valid, width) of s, the padding slots past the last
// real body. Only the scale is masked: the offsets of those lanes are still
// multiplied by the zero, so they must be finite. Padding positions are
// zeroed at construction and never written, which keeps them finite.
func maskTail(s *batch, valid, width int) {
	for k := max(valid, 0); k < width; k++ {
		s[k] = 0
	}
}

func reduceSum(s *batch, width int) float64 {
	sum := 0.0
	for k := 0; k < width; k++ {
		sum += s[k]
	}
	return sum
}
