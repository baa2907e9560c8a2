package forcefield

import (
	"math"

	"github.com/san-kum/molsim/internal/dynamo"
	"github.com/san-kum/molsim/internal/params"
	"gonum.org/v1/gonum/spatial/r3"
)

// Buckingham-type van der Waals constants.
const (
	vdwAttraction = 2.25
	vdwRepulsion  = 1.84e5
	vdwExponent   = 12.0
)

// pairChunk is the smallest number of pairs handed to one worker.
const pairChunk = 512

// switchRatio places the start of the switching window at this fraction
// of the cutoff.
var switchRatio = math.Pow(1.0/3, 1.0/6)

// window is the cutoff region of a pair list. Pairs inside switchOn are
// unmodified, pairs beyond cutoff contribute nothing and pairs between are
// scaled by a quintic switch that takes energy and force to zero with
// continuous first and second derivatives.
type window struct {
	cutoff   float64
	cutoff2  float64
	switchOn float64
}

func newWindow(cutoff float64) window {
	return window{cutoff: cutoff, cutoff2: cutoff * cutoff, switchOn: cutoff * switchRatio}
}

// scale returns the switch value and its derivative with respect to r.
func (w window) scale(r float64) (s, ds float64) {
	if w.cutoff <= 0 || r <= w.switchOn {
		return 1, 0
	}
	width := w.cutoff - w.switchOn
	x := (r - w.switchOn) / width
	x2 := x * x
	s = 1 + x2*x*(-10+x*(15-6*x))
	ds = x2 * (-30 + x*(60-30*x)) / width
	return s, ds
}

// NonbondedPair is one van der Waals interaction. Distance is the combined
// radius in nm and Epsilon the scaled well depth in kJ/mol.
type NonbondedPair struct {
	I, J     int
	Distance float64
	Epsilon  float64
}

func NewNonbondedPair(i, j int, p params.Nonbonded, scale float64) NonbondedPair {
	return NonbondedPair{
		I:        i,
		J:        j,
		Distance: p.Distance * dynamo.NmPerAngstrom,
		Epsilon:  p.Epsilon * dynamo.KJPerKcal * scale,
	}
}

func (p NonbondedPair) evaluate(pos, forces []r3.Vec, w window) float64 {
	d := r3.Sub(pos[p.I], pos[p.J])
	r2 := r3.Norm2(d)
	if w.cutoff2 > 0 && r2 >= w.cutoff2 {
		return 0
	}
	r := math.Sqrt(r2)
	x := p.Distance / r
	x3 := x * x * x
	x6 := x3 * x3
	rep := vdwRepulsion * math.Exp(-vdwExponent*r/p.Distance)

	e := p.Epsilon * (rep - vdwAttraction*x6)
	de := p.Epsilon * (6*vdwAttraction*x6/r - vdwExponent/p.Distance*rep)
	if sw, dsw := w.scale(r); sw != 1 {
		de = de*sw + e*dsw
		e *= sw
	}

	g := r3.Scale(de/r, d)
	forces[p.I] = r3.Sub(forces[p.I], g)
	forces[p.J] = r3.Add(forces[p.J], g)
	return e
}

// Nonbonded evaluates a list of pairs, fanning large lists out over
// per-chunk force buffers that are summed in chunk order.
type Nonbonded struct {
	Pairs  []NonbondedPair
	Cutoff float64

	kind     Kind
	buffers  [][]r3.Vec
	energies []float64
}

func NewNonbonded(kind Kind, pairs []NonbondedPair, cutoff float64) *Nonbonded {
	return &Nonbonded{Pairs: pairs, Cutoff: cutoff, kind: kind}
}

func (n *Nonbonded) Kind() Kind { return n.kind }
func (n *Nonbonded) Size() int  { return len(n.Pairs) }

func (n *Nonbonded) Evaluate(pos, forces []r3.Vec) float64 {
	w := newWindow(n.Cutoff)
	chunks := dynamo.Chunks(len(n.Pairs), pairChunk)
	if chunks == 1 {
		e := 0.0
		for _, p := range n.Pairs {
			e += p.evaluate(pos, forces, w)
		}
		return e
	}

	n.ensureBuffers(chunks, len(pos))
	dynamo.ParallelFor(len(n.Pairs), pairChunk, func(chunk, start, end int) {
		buf := n.buffers[chunk]
		for i := range buf {
			buf[i] = r3.Vec{}
		}
		e := 0.0
		for _, p := range n.Pairs[start:end] {
			e += p.evaluate(pos, buf, w)
		}
		n.energies[chunk] = e
	})

	e := 0.0
	for c := 0; c < chunks; c++ {
		e += n.energies[c]
		for i, f := range n.buffers[c] {
			forces[i] = r3.Add(forces[i], f)
		}
	}
	return e
}

func (n *Nonbonded) ensureBuffers(chunks, atoms int) {
	if len(n.buffers) == chunks && len(n.buffers[0]) == atoms {
		return
	}
	n.buffers = make([][]r3.Vec, chunks)
	for c := range n.buffers {
		n.buffers[c] = make([]r3.Vec, atoms)
	}
	n.energies = make([]float64, chunks)
}
