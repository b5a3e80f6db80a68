package dynamo

import "fmt"

// Body is one point mass. Bodies have no identity beyond their index in the
// ensemble that holds them.
type Body struct {
	Mass     float64
	Position Vec3
	Velocity Vec3
}

func (b Body) IsFinite() bool {
	return isFinite(b.Mass) && b.Position.IsFinite() && b.Velocity.IsFinite()
}

// Momentum returns m*v.
func (b Body) Momentum() Vec3 {
	return b.Velocity.Scale(b.Mass)
}

func (b Body) String() string {
	return fmt.Sprintf("m: %.4g p: %v v: %v", b.Mass, b.Position, b.Velocity)
}

// Ensemble is a fixed-size population of bodies with stable indices.
//
// Body and SetBody panic when i is outside [0, Len()). Forces returns the net
// force on every body for the current state without advancing it, and Move
// advances every body by one fixed step dt.
type Ensemble interface {
	Len() int
	Body(i int) Body
	SetBody(i int, b Body)
	Forces() []Vec3
	Move(dt float64)
}

// Bodies copies the current state of every body out of ens.
func Bodies(ens Ensemble) []Body {
	out := make([]Body, ens.Len())
	for i := range out {
		out[i] = ens.Body(i)
	}
	return out
}

// IsFinite reports whether every body of ens holds finite values.
func IsFinite(ens Ensemble) bool {
	for i := 0; i < ens.Len(); i++ {
		if !ens.Body(i).IsFinite() {
			return false
		}
	}
	return true
}

// CheckIndex panics with ErrIndexOutOfRange when i is not a valid index for
// an ensemble of n bodies.
func CheckIndex(i, n int) {
	if i < 0 || i >= n {
		panic(fmt.Errorf("%w: index %d, len %d", ErrIndexOutOfRange, i, n))
	}
}
