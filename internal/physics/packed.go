package physics

import (
	"fmt"

	"github.com/san-kum/gravsim/internal/compute"
	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/integrators"
)

type packedOptions struct {
	lanes int
	exact bool
}

// Option configures a Packed ensemble.
type Option func(*packedOptions)

// WithLanes sets the lane width. Values outside [1, MaxLanes] panic.
func WithLanes(lanes int) Option {
	return func(o *packedOptions) {
		if lanes < 1 || lanes > MaxLanes {
			panic(fmt.Sprintf("physics: lane width %d outside [1, %d]", lanes, MaxLanes))
		}
		o.lanes = lanes
	}
}

// WithExactRsqrt replaces the approximate reciprocal square root with
// 1/math.Sqrt.
func WithExactRsqrt() Option {
	return func(o *packedOptions) { o.exact = true }
}

// Packed stores bodies as parallel arrays padded to a multiple of the lane
// width and evaluates each unordered pair once, applying the reaction to the
// inner body.
type Packed struct {
	n     int
	lanes int
	rsqrt func(float64) float64

	mem        *arena
	mass       []float64
	sx, sy, sz []float64
	vx, vy, vz []float64
	fx, fy, fz []float64
}

// NewPacked copies bodies into a new padded ensemble.
func NewPacked(bodies []dynamo.Body, opts ...Option) *Packed {
	p := NewPackedN(len(bodies), opts...)
	for i, b := range bodies {
		p.SetBody(i, b)
	}
	return p
}

// NewPackedN returns an ensemble of n zero-valued bodies to be filled with
// SetBody. The lane width defaults to the one reported by compute.Detect.
func NewPackedN(n int, opts ...Option) *Packed {
	o := packedOptions{lanes: min(compute.Detect().Lanes, MaxLanes)}
	for _, opt := range opts {
		opt(&o)
	}

	mem := newArena(n, o.lanes)
	p := &Packed{
		n:     n,
		lanes: o.lanes,
		rsqrt: rsqrtApprox,
		mem:   mem,
		mass:  mem.view(fieldMass),
		sx:    mem.view(fieldSX),
		sy:    mem.view(fieldSY),
		sz:    mem.view(fieldSZ),
		vx:    mem.view(fieldVX),
		vy:    mem.view(fieldVY),
		vz:    mem.view(fieldVZ),
		fx:    mem.view(fieldFX),
		fy:    mem.view(fieldFY),
		fz:    mem.view(fieldFZ),
	}
	if o.exact {
		p.rsqrt = rsqrtExact
	}
	return p
}

func (p *Packed) Len() int { return p.n }

// Lanes returns the lane width.
func (p *Packed) Lanes() int { return p.lanes }

// Stride returns the padded length of every parallel array.
func (p *Packed) Stride() int { return p.mem.stride }

func (p *Packed) Body(i int) dynamo.Body {
	dynamo.CheckIndex(i, p.n)
	return dynamo.Body{
		Mass:     p.mass[i],
		Position: dynamo.Vec3{X: p.sx[i], Y: p.sy[i], Z: p.sz[i]},
		Velocity: dynamo.Vec3{X: p.vx[i], Y: p.vy[i], Z: p.vz[i]},
	}
}

func (p *Packed) SetBody(i int, b dynamo.Body) {
	dynamo.CheckIndex(i, p.n)
	p.mass[i] = b.Mass
	p.sx[i], p.sy[i], p.sz[i] = b.Position.X, b.Position.Y, b.Position.Z
	p.vx[i], p.vy[i], p.vz[i] = b.Velocity.X, b.Velocity.Y, b.Velocity.Z
}

// Forces returns the net force on every body for the current positions.
func (p *Packed) Forces() []dynamo.Vec3 {
	p.computeForces()
	out := make([]dynamo.Vec3, p.n)
	for i := range out {
		out[i] = dynamo.Vec3{X: p.fx[i], Y: p.fy[i], Z: p.fz[i]}
	}
	return out
}

// Move advances every body by one step of dt.
func (p *Packed) Move(dt float64) {
	p.computeForces()
	integrators.AdvanceLanes(p.view(), p.n, dt)
}

func (p *Packed) view() integrators.Lanes {
	return integrators.Lanes{
		Mass: p.mass,
		SX:   p.sx, SY: p.sy, SZ: p.sz,
		VX: p.vx, VY: p.vy, VZ: p.vz,
		FX: p.fx, FY: p.fy, FZ: p.fz,
	}
}

// computeForces fills fx, fy, fz. Body i is the scalar outer operand; the
// inner operand is a batch of lanes starting at the batch that holds i, so
// each unordered pair is visited once. The batch force is reduced into i and
// subtracted lane by lane from the inner bodies.
func (p *Packed) computeForces() {
	clear(p.fx)
	clear(p.fy)
	clear(p.fz)

	n, width := p.n, p.lanes
	var dx, dy, dz, scale batch

	for i := 0; i < n; i++ {
		xi, yi, zi := p.sx[i], p.sy[i], p.sz[i]
		gmi := G * p.mass[i]

		for j0 := i - i%width; j0 < n; j0 += width {
			sx, sy, sz := p.sx[j0:j0+width], p.sy[j0:j0+width], p.sz[j0:j0+width]
			mass := p.mass[j0 : j0+width]

			for k := 0; k < width; k++ {
				dx[k] = sx[k] - xi
				dy[k] = sy[k] - yi
				dz[k] = sz[k] - zi
				d2 := dx[k]*dx[k] + dy[k]*dy[k] + dz[k]*dz[k]
				scale[k] = gmi * mass[k] / d2 * p.rsqrt(d2)
			}

			if j0 <= i {
				maskDiagonal(&scale, i-j0)
			}
			if j0+width > n {
				maskTail(&scale, n-j0, width)
			}

			fx, fy, fz := p.fx[j0:j0+width], p.fy[j0:j0+width], p.fz[j0:j0+width]
			for k := 0; k < width; k++ {
				dx[k] *= scale[k]
				dy[k] *= scale[k]
				dz[k] *= scale[k]
				fx[k] -= dx[k]
				fy[k] -= dy[k]
				fz[k] -= dz[k]
			}

			p.fx[i] += reduceSum(&dx, width)
			p.fy[i] += reduceSum(&dy, width)
			p.fz[i] += reduceSum(&dz, width)
		}
	}
}
