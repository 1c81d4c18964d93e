package integrators

import "github.com/rbrnka/three-body-problem/internal/dynamo"

// Shampine's quartic continuous extension for Dormand-Prince. Row i weights
// stage k_i; column j multiplies theta^(j+1).
var denseP = [7][4]float64{
	{1, -8048581381.0 / 2820520608.0, 8663915743.0 / 2820520608.0, -12715105075.0 / 11282082432.0},
	{0, 0, 0, 0},
	{0, 131558114200.0 / 32700410799.0, -68118460800.0 / 10900136933.0, 87487479700.0 / 32700410799.0},
	{0, -1754552775.0 / 470086768.0, 14199869525.0 / 1410260304.0, -10690763975.0 / 1880347072.0},
	{0, 127303824393.0 / 49829197408.0, -318862633887.0 / 49829197408.0, 701980252875.0 / 199316789632.0},
	{0, -282668133.0 / 205662961.0, 2019193451.0 / 616988883.0, -1453857185.0 / 822651844.0},
	{0, 40617522.0 / 29380423.0, -110615467.0 / 29380423.0, 69997945.0 / 29380423.0},
}

// dense interpolates inside one accepted step. It matches the step's start
// and end states exactly and its derivative is continuous across steps.
type dense struct {
	t0 float64
	h  float64
	x0 dynamo.State
	q  [4]dynamo.State
}

func newDense(t0, h float64, x0 dynamo.State, k [7]dynamo.State) dense {
	n := len(x0)
	d := dense{t0: t0, h: h, x0: x0}
	for j := 0; j < 4; j++ {
		col := make(dynamo.State, n)
		for s := 0; s < 7; s++ {
			w := denseP[s][j]
			if w == 0 {
				continue
			}
			for i := 0; i < n; i++ {
				col[i] += w * k[s][i]
			}
		}
		d.q[j] = col
	}
	return d
}

func (d dense) at(t float64) dynamo.State {
	theta := (t - d.t0) / d.h
	p1 := theta
	p2 := p1 * theta
	p3 := p2 * theta
	p4 := p3 * theta

	out := make(dynamo.State, len(d.x0))
	for i := range out {
		out[i] = d.x0[i] + d.h*(d.q[0][i]*p1+d.q[1][i]*p2+d.q[2][i]*p3+d.q[3][i]*p4)
	}
	return out
}
