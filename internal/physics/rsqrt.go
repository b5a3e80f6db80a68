package physics

import "math"

const (
	rsqrtMagic = 0x5fe6eb50c7b537a9
	rsqrtSteps = 3
	minNormal  = 0x1p-1022
)

// RsqrtErrorBound bounds the relative error of the approximate reciprocal
// square root used by Packed. Inputs outside the positive normal range are
// computed exactly.
const RsqrtErrorBound = 1e-10

// rsqrtApprox estimates 1/sqrt(x) from the exponent bits and refines it with
// rsqrtSteps Newton iterations. The initial guess is within 3.5%; each step
// roughly squares the error. Zero, subnormal, infinite and NaN inputs fall
// back to rsqrtExact: the bit trick is off for subnormals and the Newton
// step turns +Inf into NaN.
func rsqrtApprox(x float64) float64 {
	if !(x >= minNormal && x <= math.MaxFloat64) {
		return rsqrtExact(x)
	}
	y := math.Float64frombits(rsqrtMagic - math.Float64bits(x)>>1)
	h := 0.5 * x
	for range rsqrtSteps {
		y *= 1.5 - h*y*y
	}
	return y
}

func rsqrtExact(x float64) float64 {
	return 1 / math.Sqrt(x)
}
