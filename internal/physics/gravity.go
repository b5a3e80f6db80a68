package physics

import (
	"math"

	"github.com/san-kum/gravsim/internal/dynamo"
)

// G is the gravitational constant in m³ kg⁻¹ s⁻².
const G = 6.674384e-11

// Attraction returns the force body a feels from body b: magnitude
// G·ma·mb/r², pointing from a toward b. a and b must not coincide.
func Attraction(a, b dynamo.Body) dynamo.Vec3 {
	d := b.Position.Sub(a.Position)
	dist2 := d.Norm2()
	dist := math.Sqrt(dist2)
	fmag := G * a.Mass * b.Mass / dist2
	return d.Div(dist / fmag)
}
