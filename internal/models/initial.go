package models

import (
	"math"
	"math/rand"

	"github.com/san-kum/gravsim/internal/dynamo"
)

// RandomCube returns n bodies at rest with masses uniform in (0, maxMass]
// and positions uniform in [0, extent)³.
func RandomCube(n int, maxMass, extent float64, rng *rand.Rand) []dynamo.Body {
	bodies := make([]dynamo.Body, n)
	for i := range bodies {
		bodies[i] = dynamo.Body{
			Mass: maxMass * (1 - rng.Float64()),
			Position: dynamo.Vec3{
				X: extent * rng.Float64(),
				Y: extent * rng.Float64(),
				Z: extent * rng.Float64(),
			},
		}
	}
	return bodies
}

// Ring places n equal masses on a circle of the given radius in the xy plane,
// each moving tangentially (counter-clockwise) at speed.
func Ring(n int, radius, mass, speed float64) []dynamo.Body {
	bodies := make([]dynamo.Body, n)
	for i := range bodies {
		angle := float64(i) * 2 * math.Pi / float64(n)
		sin, cos := math.Sincos(angle)
		bodies[i] = dynamo.Body{
			Mass:     mass,
			Position: dynamo.Vec3{X: radius * cos, Y: radius * sin},
			Velocity: dynamo.Vec3{X: -speed * sin, Y: speed * cos},
		}
	}
	return bodies
}

// Binary returns two bodies at rest, the first at the origin and the second
// separation along +x.
func Binary(m1, m2, separation float64) []dynamo.Body {
	return []dynamo.Body{
		{Mass: m1},
		{Mass: m2, Position: dynamo.Vec3{X: separation}},
	}
}
