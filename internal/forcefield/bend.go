package forcefield

import (
	"github.com/san-kum/molsim/internal/dynamo"
	"github.com/san-kum/molsim/internal/params"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	// bendScale is 143.88/2·(π/180)², taking mdyn·Å/rad² to kcal/mol/deg².
	bendScale = 0.021914
	// stretchBendScale is 143.88·π/180.
	stretchBendScale = 2.51118
)

// Bend is the sextic angle-bend polynomial of one angle A-C-B with its
// stretch-bend cross term.
type Bend struct {
	A, C, B int

	// K is in kJ/mol/deg², Theta in radians, StretchBend in
	// kJ/mol/(Å·deg) and the leg lengths in nm.
	K           float64
	Theta       float64
	StretchBend float64
	LengthA     float64
	LengthB     float64
}

func NewBend(a, c, b int, p params.Bend, angleType int, legA, legB params.Stretch) *Bend {
	return &Bend{
		A:           a,
		C:           c,
		B:           b,
		K:           bendScale * p.Stiffness * dynamo.KJPerKcal,
		Theta:       p.Angles[angleType-1] / dynamo.DegPerRad,
		StretchBend: stretchBendScale * p.StretchBend * dynamo.KJPerKcal,
		LengthA:     legA.Length * dynamo.NmPerAngstrom,
		LengthB:     legB.Length * dynamo.NmPerAngstrom,
	}
}

func (b *Bend) Kind() Kind { return KindBend }
func (b *Bend) Size() int  { return 1 }

func (b *Bend) Evaluate(pos, forces []r3.Vec) float64 {
	theta, ga, gc, gb := angle(pos[b.A], pos[b.C], pos[b.B])
	d := (theta - b.Theta) * dynamo.DegPerRad
	d2 := d * d

	e := b.K * d2 * (1 - 0.014*d + 5.6e-5*d2 - 7.0e-7*d2*d + 9.0e-10*d2*d2)
	de := b.K * d * (2 - 0.042*d + 2.24e-4*d2 - 3.5e-6*d2*d + 5.4e-9*d2*d2)

	if b.StretchBend != 0 {
		ra, ua := distance(pos[b.A], pos[b.C])
		rb, ub := distance(pos[b.B], pos[b.C])
		dra := (ra - b.LengthA) * dynamo.AngstromPerNm
		drb := (rb - b.LengthB) * dynamo.AngstromPerNm

		e += b.StretchBend * (dra + drb) * d
		de += b.StretchBend * (dra + drb)

		dr := b.StretchBend * d * dynamo.AngstromPerNm
		push(forces, b.A, dr, ua)
		push(forces, b.B, dr, ub)
		push(forces, b.C, -dr, r3.Add(ua, ub))
	}

	de *= dynamo.DegPerRad
	push(forces, b.A, de, ga)
	push(forces, b.C, de, gc)
	push(forces, b.B, de, gb)
	return e
}

// BendBend couples two angles sharing the leg Center-J.
type BendBend struct {
	Center, J, K, L int

	// Coupling is in kJ/mol/deg² with its sign folded in. Theta1 is the
	// equilibrium of J-Center-K and Theta2 of J-Center-L, in radians.
	Coupling float64
	Theta1   float64
	Theta2   float64
}

func (bb *BendBend) Kind() Kind { return KindBendBend }
func (bb *BendBend) Size() int  { return 1 }

func (bb *BendBend) Evaluate(pos, forces []r3.Vec) float64 {
	t1, gj1, gc1, gk := angle(pos[bb.J], pos[bb.Center], pos[bb.K])
	t2, gj2, gc2, gl := angle(pos[bb.J], pos[bb.Center], pos[bb.L])
	d1 := (t1 - bb.Theta1) * dynamo.DegPerRad
	d2 := (t2 - bb.Theta2) * dynamo.DegPerRad

	de1 := bb.Coupling * d2 * dynamo.DegPerRad
	de2 := bb.Coupling * d1 * dynamo.DegPerRad
	push(forces, bb.J, de1, gj1)
	push(forces, bb.Center, de1, gc1)
	push(forces, bb.K, de1, gk)
	push(forces, bb.J, de2, gj2)
	push(forces, bb.Center, de2, gc2)
	push(forces, bb.L, de2, gl)
	return bb.Coupling * d1 * d2
}
