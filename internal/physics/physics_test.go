package physics_test

import (
	"math"
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/gravsim/internal/dynamo"
	"github.com/san-kum/gravsim/internal/models"
	"github.com/san-kum/gravsim/internal/physics"
)

type factory func([]dynamo.Body) dynamo.Ensemble

func direct(bodies []dynamo.Body) dynamo.Ensemble { return physics.NewDirect(bodies) }

func packed(lanes int, opts ...physics.Option) factory {
	return func(bodies []dynamo.Body) dynamo.Ensemble {
		return physics.NewPacked(bodies, append([]physics.Option{physics.WithLanes(lanes)}, opts...)...)
	}
}

var strategies = []TableEntry{
	Entry("direct", factory(direct)),
	Entry("packed, 1 lane", packed(1)),
	Entry("packed, 2 lanes", packed(2)),
	Entry("packed, 4 lanes", packed(4)),
	Entry("packed, 8 lanes", packed(8)),
	Entry("packed, 16 lanes", packed(16)),
	Entry("packed, 8 lanes, exact rsqrt", packed(8, physics.WithExactRsqrt())),
}

func cube(n int, seed int64) []dynamo.Body {
	return models.RandomCube(n, 1000, 1, rand.New(rand.NewSource(seed)))
}

func twoBodies(m1, m2, r float64) []dynamo.Body {
	return []dynamo.Body{
		{Mass: m1},
		{Mass: m2, Position: dynamo.Vec3{X: r}},
	}
}

func maxNorm(vs []dynamo.Vec3) float64 {
	m := 0.0
	for _, v := range vs {
		m = math.Max(m, v.Norm())
	}
	return m
}

var _ = Describe("Force accumulation", func() {
	DescribeTable("sums to zero over the ensemble",
		func(newEnsemble factory) {
			ens := newEnsemble(cube(37, 1))
			forces := ens.Forces()

			var sum dynamo.Vec3
			scale := 0.0
			for _, f := range forces {
				sum = sum.Add(f)
				scale += f.Norm()
			}
			Expect(scale).To(BeNumerically(">", 0))
			Expect(sum.Norm()).To(BeNumerically("<=", 1e-12*scale))
		},
		strategies,
	)

	DescribeTable("matches the two-body closed form",
		func(newEnsemble factory) {
			m1, m2, r := 3.0, 5.0, 2.0
			forces := newEnsemble(twoBodies(m1, m2, r)).Forces()
			want := physics.G * m1 * m2 / (r * r)

			Expect(forces).To(HaveLen(2))
			Expect(forces[0].X).To(BeNumerically("~", want, want*1e-9))
			Expect(forces[1].X).To(BeNumerically("~", -want, want*1e-9))
			Expect(forces[0].Y).To(BeZero())
			Expect(forces[0].Z).To(BeZero())
			Expect(forces[1].Y).To(BeZero())
			Expect(forces[1].Z).To(BeZero())
		},
		strategies,
	)

	DescribeTable("does not advance the ensemble",
		func(newEnsemble factory) {
			bodies := cube(9, 2)
			ens := newEnsemble(bodies)
			ens.Forces()
			Expect(dynamo.Bodies(ens)).To(Equal(bodies))
		},
		strategies,
	)

	DescribeTable("produces non-finite forces for coincident bodies",
		func(newEnsemble factory) {
			bodies := twoBodies(1, 1, 0)
			forces := newEnsemble(bodies).Forces()
			Expect(forces[0].IsFinite()).To(BeFalse())
		},
		strategies,
	)

	Describe("packed padding", func() {
		It("never changes the forces on real bodies", func() {
			bodies := cube(5, 3)
			reference := physics.NewPacked(bodies, physics.WithLanes(1), physics.WithExactRsqrt()).Forces()
			tol := 1e-12 * maxNorm(reference)

			for _, lanes := range []int{2, 4, 8, 16} {
				ens := physics.NewPacked(bodies, physics.WithLanes(lanes), physics.WithExactRsqrt())
				Expect(ens.Stride()).To(BeNumerically(">=", 5))
				Expect(ens.Stride() % lanes).To(BeZero())

				forces := ens.Forces()
				for i := range forces {
					Expect(forces[i].Sub(reference[i]).Norm()).To(BeNumerically("<=", tol), "lanes %d body %d", lanes, i)
				}
			}
		})
	})
})

var _ = Describe("Stepping", func() {
	DescribeTable("follows the constant-acceleration kinematics for one step",
		func(newEnsemble factory) {
			bodies := twoBodies(2, 7, 1.5)
			bodies[0].Velocity = dynamo.Vec3{X: 0.25, Y: -1}
			bodies[1].Velocity = dynamo.Vec3{Z: 0.5}
			dt := 10.0

			ens := newEnsemble(bodies)
			forces := ens.Forces()
			ens.Move(dt)

			for i, b0 := range bodies {
				a := forces[i].Div(b0.Mass)
				wantV := b0.Velocity.Add(a.Scale(dt))
				wantP := b0.Position.Add(b0.Velocity.Scale(dt)).Add(a.Scale(0.5 * dt * dt))

				got := ens.Body(i)
				Expect(got.Velocity.Sub(wantV).Norm()).To(BeNumerically("<=", 1e-15*(1+wantV.Norm())))
				Expect(got.Position.Sub(wantP).Norm()).To(BeNumerically("<=", 1e-15*(1+wantP.Norm())))
				Expect(got.Mass).To(Equal(b0.Mass))
			}
		},
		strategies,
	)

	DescribeTable("is deterministic",
		func(newEnsemble factory) {
			bodies := cube(21, 4)
			a, b := newEnsemble(bodies), newEnsemble(bodies)
			for range 5 {
				a.Move(0.1)
				b.Move(0.1)
			}
			Expect(dynamo.Bodies(a)).To(Equal(dynamo.Bodies(b)))
		},
		strategies,
	)

	DescribeTable("pulls two unit masses toward each other",
		func(newEnsemble factory) {
			ens := newEnsemble(twoBodies(1, 1, 1))
			ens.Move(1)

			b0, b1 := ens.Body(0), ens.Body(1)
			Expect(b0.Position.X).To(BeNumerically(">", 0))
			Expect(b1.Position.X).To(BeNumerically("<", 1))
			Expect(b0.Position.X).To(BeNumerically("~", physics.G/2, physics.G*1e-9))
			Expect(b0.Velocity.X).To(BeNumerically("~", physics.G, physics.G*1e-9))
			Expect(b1.Velocity.X).To(BeNumerically("~", -physics.G, physics.G*1e-9))
			Expect(b0.Velocity.Y).To(BeZero())
			Expect(b1.Velocity.Z).To(BeZero())
		},
		strategies,
	)

	DescribeTable("agrees with the reference strategy",
		func(newEnsemble factory) {
			bodies := cube(37, 5)
			ref := physics.NewDirect(bodies)
			ens := newEnsemble(bodies)
			for range 10 {
				ref.Move(0.1)
				ens.Move(0.1)
			}

			want, got := dynamo.Bodies(ref), dynamo.Bodies(ens)
			velocities := make([]dynamo.Vec3, len(want))
			for i := range want {
				velocities[i] = want[i].Velocity
			}
			vtol := 1e-7 * maxNorm(velocities)

			for i := range want {
				Expect(got[i].Position.Sub(want[i].Position).Norm()).To(BeNumerically("<=", 1e-9*(1+want[i].Position.Norm())))
				Expect(got[i].Velocity.Sub(want[i].Velocity).Norm()).To(BeNumerically("<=", vtol))
			}
		},
		strategies,
	)

	DescribeTable("conserves momentum",
		func(newEnsemble factory) {
			ens := newEnsemble(models.Ring(12, 1, 1e6, 1e-3))
			p0 := physics.Momentum(ens)
			for range 20 {
				ens.Move(1)
			}
			p1 := physics.Momentum(ens)

			scale := 0.0
			for _, b := range dynamo.Bodies(ens) {
				scale += b.Momentum().Norm()
			}
			Expect(p1.Sub(p0).Norm()).To(BeNumerically("<", 1e-12*scale))
		},
		strategies,
	)
})

var _ = Describe("Body access", func() {
	DescribeTable("round-trips SetBody and Body",
		func(newEnsemble factory) {
			ens := newEnsemble(cube(3, 6))
			b := dynamo.Body{Mass: 4, Position: dynamo.Vec3{X: 1, Y: 2, Z: 3}, Velocity: dynamo.Vec3{X: -1}}
			ens.SetBody(1, b)
			Expect(ens.Body(1)).To(Equal(b))
			Expect(ens.Len()).To(Equal(3))
		},
		strategies,
	)

	DescribeTable("panics on an index past the end",
		func(newEnsemble factory) {
			ens := newEnsemble(cube(3, 7))
			Expect(func() { ens.Body(3) }).To(PanicWith(MatchError(dynamo.ErrIndexOutOfRange)))
			Expect(func() { ens.SetBody(-1, dynamo.Body{}) }).To(PanicWith(MatchError(dynamo.ErrIndexOutOfRange)))
		},
		strategies,
	)

	It("builds empty ensembles to fill by index", func() {
		for _, ens := range []dynamo.Ensemble{physics.NewDirectN(2), physics.NewPackedN(2, physics.WithLanes(8))} {
			for i, b := range twoBodies(1, 1, 1) {
				ens.SetBody(i, b)
			}
			ens.Move(1)
			Expect(ens.Body(0).Velocity.X).To(BeNumerically(">", 0))
		}
	})

	It("rejects lane widths outside the supported range", func() {
		Expect(func() { physics.NewPackedN(4, physics.WithLanes(0)) }).To(Panic())
		Expect(func() { physics.NewPackedN(4, physics.WithLanes(physics.MaxLanes + 1)) }).To(Panic())
	})
})
