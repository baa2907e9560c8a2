package forcefield

import (
	"github.com/san-kum/molsim/internal/dynamo"
	"github.com/san-kum/molsim/internal/params"
	"gonum.org/v1/gonum/spatial/r3"
)

// stretchScale is 143.88/2, taking mdyn/Å·Å² to kcal/mol.
const stretchScale = 71.94

// Stretch is the sextic bond-stretch polynomial of one bond.
type Stretch struct {
	I, J int

	// K is in kJ/mol/Å², Length in nm, Cubic in 1/Å.
	K       float64
	Length  float64
	Cubic   float64
	Quintic float64
	Sextic  float64
}

func NewStretch(i, j int, p params.Stretch) *Stretch {
	return &Stretch{
		I:       i,
		J:       j,
		K:       stretchScale * p.Stiffness * dynamo.KJPerKcal,
		Length:  p.Length * dynamo.NmPerAngstrom,
		Cubic:   p.Cubic,
		Quintic: p.Quintic,
		Sextic:  p.Sextic,
	}
}

func (s *Stretch) Kind() Kind { return KindStretch }
func (s *Stretch) Size() int  { return 1 }

func (s *Stretch) Evaluate(pos, forces []r3.Vec) float64 {
	r, dir := distance(pos[s.I], pos[s.J])
	x := (r - s.Length) * dynamo.AngstromPerNm
	c := s.Cubic
	c2 := c * c
	x2 := x * x

	e := s.K * x2 * (1 - c*x + 7.0/12*c2*x2 - s.Quintic*c2*c*x2*x + s.Sextic*c2*c2*x2*x2)
	de := s.K * x * (2 - 3*c*x + 7.0/3*c2*x2 - 5*s.Quintic*c2*c*x2*x + 6*s.Sextic*c2*c2*x2*x2)

	de *= dynamo.AngstromPerNm
	push(forces, s.I, de, dir)
	push(forces, s.J, -de, dir)
	return e
}
