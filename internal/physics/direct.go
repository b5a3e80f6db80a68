package physics

import (
	"slices"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/integrators"
)

// Direct stores bodies as a slice of structs and evaluates every ordered
// pair.
type Direct struct {
	bodies []dynamo.Body
	forces []dynamo.Vec3
}

// NewDirect copies bodies into a new ensemble.
func NewDirect(bodies []dynamo.Body) *Direct {
	return &Direct{bodies: slices.Clone(bodies)}
}

// NewDirectN returns an ensemble of n zero-valued bodies to be filled with
// SetBody.
func NewDirectN(n int) *Direct {
	return &Direct{bodies: make([]dynamo.Body, n)}
}

func (d *Direct) Len() int { return len(d.bodies) }

func (d *Direct) Body(i int) dynamo.Body {
	dynamo.CheckIndex(i, len(d.bodies))
	return d.bodies[i]
}

func (d *Direct) SetBody(i int, b dynamo.Body) {
	dynamo.CheckIndex(i, len(d.bodies))
	d.bodies[i] = b
}

// Forces returns the net force on every body for the current positions.
func (d *Direct) Forces() []dynamo.Vec3 {
	d.computeForces()
	return slices.Clone(d.forces)
}

// Move advances every body by one step of dt.
func (d *Direct) Move(dt float64) {
	d.computeForces()
	integrators.AdvanceAll(d.bodies, d.forces, dt)
}

func (d *Direct) computeForces() {
	n := len(d.bodies)
	if len(d.forces) != n {
		d.forces = make([]dynamo.Vec3, n)
	}
	clear(d.forces)

	for i := range d.bodies {
		bi := d.bodies[i]
		var f dynamo.Vec3
		for j := range d.bodies {
			if i == j {
				continue
			}
			f = f.Add(Attraction(bi, d.bodies[j]))
		}
		d.forces[i] = f
	}
}
