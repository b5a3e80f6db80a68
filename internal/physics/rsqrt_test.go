package physics

import (
	"math"
	"testing"

	"github.com/san-kum/gravsim/internal/dynamo"
)

func TestRsqrtApproxErrorBound(t *testing.T) {
	worst := 0.0
	for e := -300.0; e <= 300.0; e += 0.37 {
		x := math.Pow(10, e)
		want := 1 / math.Sqrt(x)
		rel := math.Abs(rsqrtApprox(x)-want) / want
		worst = math.Max(worst, rel)
	}
	if worst > RsqrtErrorBound {
		t.Errorf("worst relative error %.3g exceeds bound %.3g", worst, RsqrtErrorBound)
	}
}

func TestRsqrtExact(t *testing.T) {
	if got := rsqrtExact(4); got != 0.5 {
		t.Errorf("rsqrtExact(4) = %v, want 0.5", got)
	}
}

func TestRsqrtApproxNonNormal(t *testing.T) {
	tests := []struct {
		name string
		x    float64
		want float64
	}{
		{"zero", 0, math.Inf(1)},
		{"infinity", math.Inf(1), 0},
		{"subnormal", 1e-310, 1 / math.Sqrt(1e-310)},
		{"smallest normal", 0x1p-1022, 0x1p511},
		{"largest finite", math.MaxFloat64, 1 / math.Sqrt(math.MaxFloat64)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rsqrtApprox(tt.x)
			if math.IsInf(tt.want, 0) || tt.want == 0 {
				if got != tt.want {
					t.Errorf("rsqrtApprox(%g) = %g, want %g", tt.x, got, tt.want)
				}
				return
			}
			if rel := math.Abs(got-tt.want) / tt.want; rel > RsqrtErrorBound {
				t.Errorf("rsqrtApprox(%g) = %g, relative error %.3g", tt.x, got, rel)
			}
		})
	}

	if !math.IsNaN(rsqrtApprox(math.NaN())) {
		t.Error("NaN input should stay NaN")
	}
}

func TestPackedOverflowingSeparation(t *testing.T) {
	// |d|² overflows to +Inf; the force underflows to zero in every strategy.
	bodies := []dynamo.Body{
		{Mass: 1},
		{Mass: 1, Position: dynamo.Vec3{X: 1e155}},
	}

	for _, ens := range []dynamo.Ensemble{
		NewDirect(bodies),
		NewPacked(bodies, WithLanes(4)),
		NewPacked(bodies, WithLanes(4), WithExactRsqrt()),
	} {
		for i, f := range ens.Forces() {
			if f != (dynamo.Vec3{}) {
				t.Errorf("%T body %d: expected zero force, got %v", ens, i, f)
			}
		}
	}
}
