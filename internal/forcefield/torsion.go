package forcefield

import (
	"math"

	"github.com/san-kum/molsim/internal/dynamo"
	"github.com/san-kum/molsim/internal/params"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	torsionStretchScale  = 11.995
	bendTorsionBendScale = 0.043828
)

// Torsion is the three-term Fourier torsion of A-B-C-D with the
// torsion-stretch coupling on the central bond.
type Torsion struct {
	A, B, C, D int

	// Barriers are in kJ/mol. Stretch is ½·11.995·k_ts in kJ/mol/Å and
	// Length the central bond equilibrium in nm.
	V1      float64
	V2      float64
	V3      float64
	Fold    float64
	Stretch float64
	Length  float64
}

func NewTorsion(a, b, c, d int, p params.Torsion, central params.Stretch) *Torsion {
	return &Torsion{
		A:       a,
		B:       b,
		C:       c,
		D:       d,
		V1:      p.V1 * dynamo.KJPerKcal,
		V2:      p.V2 * dynamo.KJPerKcal,
		V3:      p.V3 * dynamo.KJPerKcal,
		Fold:    float64(p.V2Fold),
		Stretch: 0.5 * torsionStretchScale * p.TorsionStretch * dynamo.KJPerKcal,
		Length:  central.Length * dynamo.NmPerAngstrom,
	}
}

func (t *Torsion) Kind() Kind { return KindTorsion }
func (t *Torsion) Size() int  { return 1 }

func (t *Torsion) Evaluate(pos, forces []r3.Vec) float64 {
	phi, g := dihedral(pos[t.A], pos[t.B], pos[t.C], pos[t.D])
	n := t.Fold
	cos3 := math.Cos(3 * phi)
	sin3 := math.Sin(3 * phi)

	e := 0.5 * (t.V1*(1+math.Cos(phi)) + t.V2*(1-math.Cos(n*phi)) + t.V3*(1+cos3))
	de := 0.5 * (-t.V1*math.Sin(phi) + n*t.V2*math.Sin(n*phi) - 3*t.V3*sin3)

	if t.Stretch != 0 {
		r, dir := distance(pos[t.C], pos[t.B])
		dr := (r - t.Length) * dynamo.AngstromPerNm
		e += t.Stretch * dr * (1 + cos3)
		de += -3 * t.Stretch * dr * sin3

		ds := t.Stretch * (1 + cos3) * dynamo.AngstromPerNm
		push(forces, t.C, ds, dir)
		push(forces, t.B, -ds, dir)
	}

	push(forces, t.A, de, g[0])
	push(forces, t.B, de, g[1])
	push(forces, t.C, de, g[2])
	push(forces, t.D, de, g[3])
	return e
}

// BendTorsionBend couples the angles A-B-C and B-C-D through the cosine
// of the A-B-C-D torsion.
type BendTorsionBend struct {
	A, B, C, D int

	// K is in kJ/mol/deg²; Theta1 and Theta2 are the equilibria of
	// A-B-C and B-C-D in radians.
	K      float64
	Theta1 float64
	Theta2 float64
}

func NewBendTorsionBend(a, b, c, d int, k, theta1, theta2 float64) *BendTorsionBend {
	return &BendTorsionBend{
		A:      a,
		B:      b,
		C:      c,
		D:      d,
		K:      bendTorsionBendScale * k * dynamo.KJPerKcal,
		Theta1: theta1,
		Theta2: theta2,
	}
}

func (t *BendTorsionBend) Kind() Kind { return KindBendTorsionBend }
func (t *BendTorsionBend) Size() int  { return 1 }

func (t *BendTorsionBend) Evaluate(pos, forces []r3.Vec) float64 {
	t1, ga1, gb1, gc1 := angle(pos[t.A], pos[t.B], pos[t.C])
	t2, gb2, gc2, gd2 := angle(pos[t.B], pos[t.C], pos[t.D])
	phi, g := dihedral(pos[t.A], pos[t.B], pos[t.C], pos[t.D])

	d1 := (t1 - t.Theta1) * dynamo.DegPerRad
	d2 := (t2 - t.Theta2) * dynamo.DegPerRad
	cos := math.Cos(phi)

	de1 := t.K * d2 * cos * dynamo.DegPerRad
	de2 := t.K * d1 * cos * dynamo.DegPerRad
	dphi := -t.K * d1 * d2 * math.Sin(phi)

	push(forces, t.A, de1, ga1)
	push(forces, t.B, de1, gb1)
	push(forces, t.C, de1, gc1)
	push(forces, t.B, de2, gb2)
	push(forces, t.C, de2, gc2)
	push(forces, t.D, de2, gd2)
	push(forces, t.A, dphi, g[0])
	push(forces, t.B, dphi, g[1])
	push(forces, t.C, dphi, g[2])
	push(forces, t.D, dphi, g[3])
	return t.K * d1 * d2 * cos
}
