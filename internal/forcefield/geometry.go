package forcefield

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// degenerate guards against collinear atoms, where angle and dihedral
// gradients have no direction.
const degenerate = 1e-18

// angle returns the angle a-c-b in radians and its gradients with respect
// to a, c and b.
func angle(a, c, b r3.Vec) (theta float64, ga, gc, gb r3.Vec) {
	u := r3.Sub(a, c)
	w := r3.Sub(b, c)
	p := r3.Cross(u, w)
	pn := r3.Norm(p)
	theta = math.Atan2(pn, r3.Dot(u, w))
	if pn*pn < degenerate {
		return theta, r3.Vec{}, r3.Vec{}, r3.Vec{}
	}
	ga = r3.Scale(1/(r3.Norm2(u)*pn), r3.Cross(u, p))
	gb = r3.Scale(1/(r3.Norm2(w)*pn), r3.Cross(p, w))
	gc = r3.Scale(-1, r3.Add(ga, gb))
	return theta, ga, gc, gb
}

// dihedral returns the torsion angle p0-p1-p2-p3 in (-π, π] and its
// gradients with respect to each atom.
func dihedral(p0, p1, p2, p3 r3.Vec) (phi float64, g [4]r3.Vec) {
	b1 := r3.Sub(p1, p0)
	b2 := r3.Sub(p2, p1)
	b3 := r3.Sub(p3, p2)
	m := r3.Cross(b1, b2)
	n := r3.Cross(b2, b3)
	lb := r3.Norm(b2)
	phi = math.Atan2(lb*r3.Dot(b1, n), r3.Dot(m, n))

	m2 := r3.Norm2(m)
	n2 := r3.Norm2(n)
	if m2 < degenerate || n2 < degenerate || lb == 0 {
		return phi, g
	}
	g[0] = r3.Scale(-lb/m2, m)
	g[3] = r3.Scale(lb/n2, n)

	f1 := r3.Dot(b1, b2) / (lb * lb)
	f3 := r3.Dot(b3, b2) / (lb * lb)
	g[1] = r3.Add(r3.Scale(-(1+f1), g[0]), r3.Scale(f3, g[3]))
	g[2] = r3.Sub(r3.Scale(f1, g[0]), r3.Scale(1+f3, g[3]))
	return phi, g
}

// distance returns |a-b| and the unit vector from b to a.
func distance(a, b r3.Vec) (float64, r3.Vec) {
	d := r3.Sub(a, b)
	r := r3.Norm(d)
	if r == 0 {
		return 0, r3.Vec{}
	}
	return r, r3.Scale(1/r, d)
}

// push subtracts scale·grad from the force on atom i.
func push(forces []r3.Vec, i int, scale float64, grad r3.Vec) {
	forces[i] = r3.Sub(forces[i], r3.Scale(scale, grad))
}
