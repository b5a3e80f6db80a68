package viz

import (
	"math"
	"sort"

	"github.com/san-kum/gravsim/internal/dynamo"
)

// Camera projects world positions onto the canvas. Points are first expressed
// relative to Center in units of Extent, so a body at distance Extent from the
// centre lands about a third of the screen away from the middle.
type Camera struct {
	Center           dynamo.Vec3
	Extent           float64
	Distance, Near   float64
	RotX, RotY, RotZ float64
	Zoom             float64
}

func NewCamera(center dynamo.Vec3, extent float64) *Camera {
	if extent <= 0 || math.IsNaN(extent) || math.IsInf(extent, 0) {
		extent = 1
	}
	return &Camera{Center: center, Extent: extent, Distance: 4, Near: 0.1, Zoom: 1.0}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) RotateZ(a float64) { c.RotZ += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(50, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.02, c.Zoom/1.2) }

// RotatePoint rotates p about the x, y and z axes in that order.
func (c *Camera) RotatePoint(p dynamo.Vec3) dynamo.Vec3 {
	cx, sx := math.Cos(c.RotX), math.Sin(c.RotX)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	cy, sy := math.Cos(c.RotY), math.Sin(c.RotY)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	cz, sz := math.Cos(c.RotZ), math.Sin(c.RotZ)
	p.X, p.Y = p.X*cz-p.Y*sz, p.X*sz+p.Y*cz
	return p
}

// Project converts a world position to sub-pixel canvas coordinates.
// Returns x, y, depth, and visibility.
func (c *Camera) Project(p dynamo.Vec3, sw, sh int) (int, int, float64, bool) {
	if !p.IsFinite() {
		return 0, 0, 0, false
	}
	rot := c.RotatePoint(p.Sub(c.Center).Div(c.Extent)).Scale(c.Zoom)
	if rot.Z >= c.Distance-c.Near {
		return 0, 0, 0, false
	}
	scale := c.Distance / (c.Distance - rot.Z)
	pScale := float64(min(sw, sh)) / 3.0
	sx := int(rot.X*scale*pScale) + sw/2
	sy := int(-rot.Y*scale*pScale) + sh/2
	return sx, sy, rot.Z, sx >= 0 && sx < sw && sy >= 0 && sy < sh
}

type Edge struct {
	Start, End dynamo.Vec3
}

type Wireframe struct{ Edges []Edge }

func NewWireframe() *Wireframe                { return &Wireframe{Edges: make([]Edge, 0)} }
func (w *Wireframe) AddEdge(s, e dynamo.Vec3) { w.Edges = append(w.Edges, Edge{s, e}) }
func (w *Wireframe) AddPoint(p dynamo.Vec3)   { w.Edges = append(w.Edges, Edge{p, p}) }
func (w *Wireframe) Len() int                 { return len(w.Edges) }
func (w *Wireframe) Clear()                   { w.Edges = w.Edges[:0] }

type projectedEdge struct {
	x1, y1, x2, y2 int
	depth          float64
}

// Render3D draws the wireframe back to front.
func Render3D(c *Canvas, w *Wireframe, cam *Camera) {
	if c == nil || w == nil || cam == nil {
		return
	}
	sw, sh := c.Width*2, c.Height*4
	proj := make([]projectedEdge, 0, len(w.Edges))
	for _, e := range w.Edges {
		x1, y1, d1, v1 := cam.Project(e.Start, sw, sh)
		x2, y2, d2, v2 := cam.Project(e.End, sw, sh)
		if v1 || v2 {
			proj = append(proj, projectedEdge{x1, y1, x2, y2, (d1 + d2) / 2})
		}
	}
	sort.Slice(proj, func(i, j int) bool { return proj[i].depth < proj[j].depth })
	for _, e := range proj {
		if e.x1 == e.x2 && e.y1 == e.y2 {
			c.Set(e.x1, e.y1)
		} else {
			c.DrawLine(e.x1, e.y1, e.x2, e.y2)
		}
	}
}

// BoxWireframe is the axis-aligned box spanning half-width s around center.
func BoxWireframe(center dynamo.Vec3, s float64) *Wireframe {
	w := NewWireframe()
	v := make([]dynamo.Vec3, 8)
	for i := range v {
		d := dynamo.Vec3{X: -s, Y: -s, Z: -s}
		if i&1 != 0 {
			d.X = s
		}
		if i&2 != 0 {
			d.Y = s
		}
		if i&4 != 0 {
			d.Z = s
		}
		v[i] = center.Add(d)
	}
	for i := range v {
		for _, bit := range []int{1, 2, 4} {
			if j := i | bit; j != i {
				w.AddEdge(v[i], v[j])
			}
		}
	}
	return w
}

// AxesWireframe draws the three coordinate axes of length l from origin.
func AxesWireframe(origin dynamo.Vec3, l float64) *Wireframe {
	w := NewWireframe()
	w.AddEdge(origin, origin.Add(dynamo.Vec3{X: l}))
	w.AddEdge(origin, origin.Add(dynamo.Vec3{Y: l}))
	w.AddEdge(origin, origin.Add(dynamo.Vec3{Z: l}))
	return w
}

// Frame returns the centre of mass of bodies and the largest distance of any
// body from it, ignoring non-finite bodies.
func Frame(bodies []dynamo.Body) (center dynamo.Vec3, extent float64) {
	total := 0.0
	for _, b := range bodies {
		if !b.IsFinite() {
			continue
		}
		center = center.Add(b.Position.Scale(b.Mass))
		total += b.Mass
	}
	if total != 0 {
		center = center.Div(total)
	}
	for _, b := range bodies {
		if !b.IsFinite() {
			continue
		}
		extent = math.Max(extent, b.Position.Sub(center).Norm())
	}
	return center, extent
}
