package forcefield

import (
	"math"

	"github.com/san-kum/molsim/internal/dynamo"
	"github.com/san-kum/molsim/internal/params"
	"gonum.org/v1/gonum/spatial/r3"
)

// aJPerNm2PerMdynPerA takes a stiffness in mdyn/Å to aJ/nm².
const aJPerNm2PerMdynPerA = 100.0

// Morse is the dissociative bond stretch D·((1 - e^(-β·Δr))² - 1). Its
// curvature at the minimum equals the polynomial stretch's stiffness, but
// it levels off at zero instead of growing without bound.
type Morse struct {
	I, J int

	// WellDepth in kJ/mol, Beta in 1/nm, Length in nm.
	WellDepth float64
	Beta      float64
	Length    float64
}

// NewMorse derives β = sqrt(k / 2D) from the bond's stiffness so the
// harmonic limit matches the polynomial form.
func NewMorse(i, j int, p params.Stretch) *Morse {
	k := p.Stiffness * aJPerNm2PerMdynPerA
	return &Morse{
		I:         i,
		J:         j,
		WellDepth: p.WellDepth * dynamo.KJPerAttojoule,
		Beta:      math.Sqrt(k / (2 * p.WellDepth)),
		Length:    p.Length * dynamo.NmPerAngstrom,
	}
}

func (m *Morse) Kind() Kind { return KindMorse }
func (m *Morse) Size() int  { return 1 }

func (m *Morse) Evaluate(pos, forces []r3.Vec) float64 {
	r, dir := distance(pos[m.I], pos[m.J])
	x := math.Exp(-m.Beta * (r - m.Length))
	u := 1 - x

	e := m.WellDepth * (u*u - 1)
	de := 2 * m.WellDepth * m.Beta * u * x

	push(forces, m.I, de, dir)
	push(forces, m.J, -de, dir)
	return e
}
