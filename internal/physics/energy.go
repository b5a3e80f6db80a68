package physics

import (
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
)

func KineticEnergy(ens dynamo.Ensemble) float64 {
	ke := 0.0
	for i := 0; i < ens.Len(); i++ {
		b := ens.Body(i)
		ke += 0.5 * b.Mass * b.Velocity.Norm2()
	}
	return ke
}

// PotentialEnergy sums -G·mi·mj/r over unordered pairs.
func PotentialEnergy(ens dynamo.Ensemble) float64 {
	bodies := dynamo.Bodies(ens)
	pe := 0.0
	for i := range bodies {
		for j := i + 1; j < len(bodies); j++ {
			r := math.Sqrt(bodies[j].Position.Sub(bodies[i].Position).Norm2())
			pe -= G * bodies[i].Mass * bodies[j].Mass / r
		}
	}
	return pe
}

func TotalEnergy(ens dynamo.Ensemble) float64 {
	return KineticEnergy(ens) + PotentialEnergy(ens)
}

func Momentum(ens dynamo.Ensemble) dynamo.Vec3 {
	var p dynamo.Vec3
	for i := 0; i < ens.Len(); i++ {
		p = p.Add(ens.Body(i).Momentum())
	}
	return p
}

// CenterOfMass returns the mass-weighted mean position, or the zero vector
// for an ensemble without mass.
func CenterOfMass(ens dynamo.Ensemble) dynamo.Vec3 {
	var c dynamo.Vec3
	total := 0.0
	for i := 0; i < ens.Len(); i++ {
		b := ens.Body(i)
		c = c.Add(b.Position.Scale(b.Mass))
		total += b.Mass
	}
	if total == 0 {
		return dynamo.Vec3{}
	}
	return c.Div(total)
}
