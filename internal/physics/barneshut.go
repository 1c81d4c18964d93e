package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// maxTreeDepth bounds subdivision so coincident bodies share a leaf.
const maxTreeDepth = 48

// BarnesHut approximates the gravity field with an octree. Theta is the
// opening angle; Theta = 0 reduces to the exact direct sum. Softening is
// applied to both body-body and body-cell terms with the same Plummer
// kernel as Field.
type BarnesHut struct {
	G         float64
	Theta     float64
	Softening float64
}

func NewBarnesHut(g, theta, softening float64) BarnesHut {
	return BarnesHut{G: g, Theta: theta, Softening: softening}
}

// cell is an octree node. Leaves hold body indices, internal nodes hold
// children. center is the mass-weighted centre of everything below.
type cell struct {
	bounds r3.Box
	bodies []int
	nodes  [8]*cell
	split  bool

	center r3.Vec
	mass   float64
}

// Accelerations builds a fresh tree per call. Non-finite positions yield
// NaN accelerations so the failure surfaces through the solver.
func (b BarnesHut) Accelerations(masses []float64, positions []r3.Vec) []r3.Vec {
	n := len(positions)
	acc := make([]r3.Vec, n)
	if n == 0 {
		return acc
	}

	root, ok := buildTree(masses, positions)
	if !ok {
		nan := math.NaN()
		for i := range acc {
			acc[i] = r3.Vec{X: nan, Y: nan, Z: nan}
		}
		return acc
	}

	eps2 := b.Softening * b.Softening
	for i := range positions {
		acc[i] = r3.Scale(b.G, b.walk(root, i, masses, positions, eps2))
	}
	return acc
}

func buildTree(masses []float64, positions []r3.Vec) (*cell, bool) {
	box := r3.Box{Min: positions[0], Max: positions[0]}
	for _, p := range positions {
		if !finiteVec(p) {
			return nil, false
		}
		box.Min = r3.Vec{X: math.Min(box.Min.X, p.X), Y: math.Min(box.Min.Y, p.Y), Z: math.Min(box.Min.Z, p.Z)}
		box.Max = r3.Vec{X: math.Max(box.Max.X, p.X), Y: math.Max(box.Max.Y, p.Y), Z: math.Max(box.Max.Z, p.Z)}
	}

	root := &cell{bounds: box}
	for i := range positions {
		root.insert(i, positions, 0)
	}
	root.summarize(masses, positions)
	return root, true
}

func (c *cell) insert(i int, positions []r3.Vec, depth int) {
	if !c.split {
		if len(c.bodies) == 0 || depth >= maxTreeDepth {
			c.bodies = append(c.bodies, i)
			return
		}
		held := c.bodies
		c.bodies = nil
		c.split = true
		for _, j := range held {
			c.passDown(j, positions, depth)
		}
	}
	c.passDown(i, positions, depth)
}

func (c *cell) passDown(i int, positions []r3.Vec, depth int) {
	dir := octant(c.bounds, positions[i])
	if c.nodes[dir] == nil {
		c.nodes[dir] = &cell{bounds: splitBox(c.bounds, dir)}
	}
	c.nodes[dir].insert(i, positions, depth+1)
}

// summarize fills in the mass and mass-weighted centre of c and its
// descendants.
func (c *cell) summarize(masses []float64, positions []r3.Vec) {
	var moment r3.Vec
	c.mass = 0
	if c.split {
		for _, d := range c.nodes {
			if d == nil {
				continue
			}
			d.summarize(masses, positions)
			moment = r3.Add(moment, r3.Scale(d.mass, d.center))
			c.mass += d.mass
		}
	} else {
		for _, j := range c.bodies {
			moment = r3.Add(moment, r3.Scale(masses[j], positions[j]))
			c.mass += masses[j]
		}
	}
	if c.mass > 0 {
		c.center = r3.Scale(1/c.mass, moment)
	}
}

// walk returns the acceleration on body i per unit G.
func (b BarnesHut) walk(c *cell, i int, masses []float64, positions []r3.Vec, eps2 float64) r3.Vec {
	pi := positions[i]

	if !c.split {
		var a r3.Vec
		for _, j := range c.bodies {
			if j == i {
				continue
			}
			a = r3.Add(a, pull(masses[j], r3.Sub(positions[j], pi), eps2))
		}
		return a
	}

	// A cell holding the body itself is always opened.
	if b.Theta > 0 && !contains(c.bounds, pi) {
		d := r3.Sub(c.center, pi)
		if dist := r3.Norm(d); dist > 0 && side(c.bounds)/dist < b.Theta {
			return pull(c.mass, d, eps2)
		}
	}

	var a r3.Vec
	for _, d := range c.nodes {
		if d != nil {
			a = r3.Add(a, b.walk(d, i, masses, positions, eps2))
		}
	}
	return a
}

// pull is m d / (|d|^2 + eps2)^(3/2).
func pull(m float64, d r3.Vec, eps2 float64) r3.Vec {
	r2 := r3.Norm2(d) + eps2
	return r3.Scale(m/(r2*math.Sqrt(r2)), d)
}

func octant(b r3.Box, p r3.Vec) int {
	mid := r3.Scale(0.5, r3.Add(b.Min, b.Max))
	dir := 0
	if p.X >= mid.X {
		dir |= 1
	}
	if p.Y >= mid.Y {
		dir |= 2
	}
	if p.Z >= mid.Z {
		dir |= 4
	}
	return dir
}

func splitBox(b r3.Box, dir int) r3.Box {
	mid := r3.Scale(0.5, r3.Add(b.Min, b.Max))
	out := r3.Box{Min: b.Min, Max: mid}
	if dir&1 != 0 {
		out.Min.X, out.Max.X = mid.X, b.Max.X
	}
	if dir&2 != 0 {
		out.Min.Y, out.Max.Y = mid.Y, b.Max.Y
	}
	if dir&4 != 0 {
		out.Min.Z, out.Max.Z = mid.Z, b.Max.Z
	}
	return out
}

func contains(b r3.Box, p r3.Vec) bool {
	return b.Min.X <= p.X && p.X <= b.Max.X &&
		b.Min.Y <= p.Y && p.Y <= b.Max.Y &&
		b.Min.Z <= p.Z && p.Z <= b.Max.Z
}

// side is the longest edge of b.
func side(b r3.Box) float64 {
	d := r3.Sub(b.Max, b.Min)
	return math.Max(d.X, math.Max(d.Y, d.Z))
}

func finiteVec(v r3.Vec) bool {
	for _, x := range []float64{v.X, v.Y, v.Z} {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}
