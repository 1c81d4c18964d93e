package integrators

import (
	"math"

	"github.com/rbrnka/three-body-problem/internal/dynamo"
)

// Dormand-Prince coefficients (RK45)
var (
	a2 = 1.0 / 5.0
	a3 = 3.0 / 10.0
	a4 = 4.0 / 5.0
	a5 = 8.0 / 9.0

	b21 = 1.0 / 5.0
	b31 = 3.0 / 40.0
	b32 = 9.0 / 40.0
	b41 = 44.0 / 45.0
	b42 = -56.0 / 15.0
	b43 = 32.0 / 9.0
	b51 = 19372.0 / 6561.0
	b52 = -25360.0 / 2187.0
	b53 = 64448.0 / 6561.0
	b54 = -212.0 / 729.0
	b61 = 9017.0 / 3168.0
	b62 = -355.0 / 33.0
	b63 = 46732.0 / 5247.0
	b64 = 49.0 / 176.0
	b65 = -5103.0 / 18656.0

	c1 = 35.0 / 384.0
	c3 = 500.0 / 1113.0
	c4 = 125.0 / 192.0
	c5 = -2187.0 / 6784.0
	c6 = 11.0 / 84.0

	dc1 = c1 - 5179.0/57600.0
	dc3 = c3 - 7571.0/16695.0
	dc4 = c4 - 393.0/640.0
	dc5 = c5 - -92097.0/339200.0
	dc6 = c6 - 187.0/2100.0
	dc7 = -1.0 / 40.0
)

const errorExponent = -1.0 / 5.0

// Tolerances bound the local error estimate of each accepted step:
// |err_i| <= Abs + Rel * max(|y_i|, |ynew_i|) in the RMS sense.
type Tolerances struct {
	Abs float64
	Rel float64
}

// Options configures a DormandPrince solver. Zero values select defaults
// as documented per field.
type Options struct {
	Tolerances

	// InitialStep, if > 0, is the first trial step. Otherwise it is estimated
	// from the derivative at the initial state.
	InitialStep float64

	// MaxStep, if > 0, caps every step.
	MaxStep float64

	// MinStep is the smallest step the solver may take before giving up.
	// A floor proportional to the float spacing at t always applies.
	MinStep float64

	// MaxSteps bounds accepted plus rejected steps.
	MaxSteps int
}

func DefaultOptions() Options {
	return Options{
		Tolerances: Tolerances{Abs: 1e-9, Rel: 1e-9},
		MaxSteps:   1_000_000,
	}
}

// DormandPrince is an adaptive explicit Runge-Kutta 5(4) solver with
// dense output. The struct only carries immutable settings; all per-run
// state lives in the solve call, so one value may serve concurrent runs.
type DormandPrince struct {
	safety   float64
	minScale float64
	maxScale float64
	opts     Options
}

func NewDormandPrince(opts Options) *DormandPrince {
	if opts.MaxSteps <= 0 {
		opts.MaxSteps = DefaultOptions().MaxSteps
	}
	return &DormandPrince{
		safety:   0.9,
		minScale: 0.2,
		maxScale: 10.0,
		opts:     opts,
	}
}

func (r *DormandPrince) Options() Options { return r.opts }

// Solution holds the states sampled on the requested grid.
type Solution struct {
	Times  []float64
	States []dynamo.State
	Stats  dynamo.Stats
}

// Solve integrates f from (t0, x0) to t1 and samples the solution at every
// grid time. The grid must be strictly increasing and lie within [t0, t1];
// callers validate that. On failure the samples produced so far are returned
// with a *dynamo.SimulationError.
func (r *DormandPrince) Solve(f dynamo.DerivFunc, x0 dynamo.State, t0, t1 float64, grid []float64) (*Solution, error) {
	run := &dpRun{
		dp:   r,
		f:    f,
		grid: grid,
		sol: &Solution{
			Times:  make([]float64, 0, len(grid)),
			States: make([]dynamo.State, 0, len(grid)),
		},
	}
	return run.sol, run.integrate(x0, t0, t1)
}

// dpRun is the mutable state of a single Solve call.
type dpRun struct {
	dp   *DormandPrince
	f    dynamo.DerivFunc
	grid []float64
	next int
	sol  *Solution

	t  float64
	x  dynamo.State
	fx dynamo.State
	k  [7]dynamo.State
}

func (s *dpRun) eval(t float64, x dynamo.State) dynamo.State {
	s.sol.Stats.Evaluations++
	return s.f(t, x)
}

func (s *dpRun) fail(err error) error {
	return &dynamo.SimulationError{
		Step:    s.sol.Stats.Steps,
		Time:    s.t,
		State:   s.x.Clone(),
		Wrapped: err,
	}
}

func (s *dpRun) integrate(x0 dynamo.State, t0, t1 float64) error {
	opts := s.dp.opts

	s.t = t0
	s.x = x0.Clone()
	if !s.x.IsValid() {
		return s.fail(dynamo.ErrNumericalBlowup)
	}
	s.fx = s.eval(t0, s.x)
	if !s.fx.IsValid() {
		return s.fail(dynamo.ErrNumericalBlowup)
	}

	for s.next < len(s.grid) && s.grid[s.next] <= t0 {
		s.emit(t0, s.x.Clone())
	}
	if t1 <= t0 {
		return nil
	}

	h := opts.InitialStep
	if h <= 0 {
		h = s.initialStep(t1 - t0)
	}

	attempts := 0
	for s.t < t1 {
		minStep := math.Max(opts.MinStep, 10*(math.Nextafter(s.t, math.Inf(1))-s.t))
		if opts.MaxStep > 0 {
			h = math.Min(h, opts.MaxStep)
		}
		h = math.Max(h, minStep)

		rejected := false
		for {
			if attempts >= opts.MaxSteps {
				return s.fail(dynamo.ErrStepBudgetExceeded)
			}
			attempts++

			hStep := h
			tNew := s.t + hStep
			if tNew >= t1 {
				tNew = t1
				hStep = t1 - s.t
			}

			xNew, errNorm := s.step(hStep)
			finite := xNew.IsValid() && !math.IsNaN(errNorm) && !math.IsInf(errNorm, 0)

			if finite && errNorm <= 1 {
				scale := s.dp.maxScale
				if errNorm > 0 {
					scale = math.Min(s.dp.maxScale, s.dp.safety*math.Pow(errNorm, errorExponent))
				}
				if rejected {
					scale = math.Min(1, scale)
				}
				s.accept(tNew, hStep, xNew)
				h = hStep * scale
				break
			}

			s.sol.Stats.Rejected++
			rejected = true
			if finite {
				h = hStep * math.Max(s.dp.minScale, s.dp.safety*math.Pow(errNorm, errorExponent))
			} else {
				h = hStep * s.dp.minScale
			}

			if h < minStep {
				if !finite {
					return s.fail(dynamo.ErrNumericalBlowup)
				}
				return s.fail(dynamo.ErrIntegrationDivergence)
			}
		}
	}

	return nil
}

// step evaluates the Dormand-Prince stages from the current point and
// returns the 5th-order solution with its scaled RMS error norm. k[0] is the
// FSAL derivative at the current point; k[6] ends up at the new point.
func (s *dpRun) step(dt float64) (dynamo.State, float64) {
	x := s.x
	n := len(x)
	k := &s.k
	k[0] = s.fx
	t := s.t

	tmp := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		tmp[i] = x[i] + dt*b21*k[0][i]
	}
	k[1] = s.eval(t+a2*dt, tmp)

	tmp = make(dynamo.State, n)
	for i := 0; i < n; i++ {
		tmp[i] = x[i] + dt*(b31*k[0][i]+b32*k[1][i])
	}
	k[2] = s.eval(t+a3*dt, tmp)

	tmp = make(dynamo.State, n)
	for i := 0; i < n; i++ {
		tmp[i] = x[i] + dt*(b41*k[0][i]+b42*k[1][i]+b43*k[2][i])
	}
	k[3] = s.eval(t+a4*dt, tmp)

	tmp = make(dynamo.State, n)
	for i := 0; i < n; i++ {
		tmp[i] = x[i] + dt*(b51*k[0][i]+b52*k[1][i]+b53*k[2][i]+b54*k[3][i])
	}
	k[4] = s.eval(t+a5*dt, tmp)

	tmp = make(dynamo.State, n)
	for i := 0; i < n; i++ {
		tmp[i] = x[i] + dt*(b61*k[0][i]+b62*k[1][i]+b63*k[2][i]+b64*k[3][i]+b65*k[4][i])
	}
	k[5] = s.eval(t+dt, tmp)

	xNew := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		xNew[i] = x[i] + dt*(c1*k[0][i]+c3*k[2][i]+c4*k[3][i]+c5*k[4][i]+c6*k[5][i])
	}

	k[6] = s.eval(t+dt, xNew)

	opts := s.dp.opts
	sum := 0.0
	for i := 0; i < n; i++ {
		errEst := dt * (dc1*k[0][i] + dc3*k[2][i] + dc4*k[3][i] + dc5*k[4][i] + dc6*k[5][i] + dc7*k[6][i])
		scale := opts.Abs + opts.Rel*math.Max(math.Abs(x[i]), math.Abs(xNew[i]))
		e := errEst / scale
		sum += e * e
	}
	if n == 0 {
		return xNew, 0
	}

	return xNew, math.Sqrt(sum / float64(n))
}

// accept commits a step and emits every grid time it covered.
func (s *dpRun) accept(tNew, dt float64, xNew dynamo.State) {
	var q dense
	covered := s.next < len(s.grid) && s.grid[s.next] <= tNew
	if covered {
		q = newDense(s.t, dt, s.x, s.k)
	}

	for s.next < len(s.grid) && s.grid[s.next] <= tNew {
		tg := s.grid[s.next]
		if tg == tNew {
			s.emit(tg, xNew.Clone())
		} else {
			s.emit(tg, q.at(tg))
		}
	}

	s.t = tNew
	s.x = xNew
	s.fx = s.k[6]
	s.sol.Stats.Steps++
	s.sol.Stats.LastStep = dt
}

func (s *dpRun) emit(t float64, x dynamo.State) {
	s.sol.Times = append(s.sol.Times, t)
	s.sol.States = append(s.sol.States, x)
	s.next++
}

// initialStep follows Hairer, Norsett & Wanner (II.4): pick h so that an
// explicit Euler step changes the state by about the tolerance, then refine
// with a second derivative estimate.
func (s *dpRun) initialStep(span float64) float64 {
	opts := s.dp.opts
	n := len(s.x)
	if n == 0 {
		return span
	}

	scale := make([]float64, n)
	for i := range scale {
		scale[i] = opts.Abs + opts.Rel*math.Abs(s.x[i])
	}
	rms := func(v dynamo.State) float64 {
		sum := 0.0
		for i := range v {
			e := v[i] / scale[i]
			sum += e * e
		}
		return math.Sqrt(sum / float64(n))
	}

	d0 := rms(s.x)
	d1 := rms(s.fx)

	h0 := 1e-6
	if d0 >= 1e-5 && d1 >= 1e-5 {
		h0 = 0.01 * d0 / d1
	}
	h0 = math.Min(h0, span)

	x1 := make(dynamo.State, n)
	for i := range x1 {
		x1[i] = s.x[i] + h0*s.fx[i]
	}
	f1 := s.eval(s.t+h0, x1)

	diff := make(dynamo.State, n)
	for i := range diff {
		diff[i] = f1[i] - s.fx[i]
	}
	d2 := rms(diff) / h0

	var h1 float64
	if d1 <= 1e-15 && d2 <= 1e-15 {
		h1 = math.Max(1e-6, h0*1e-3)
	} else {
		h1 = math.Pow(0.01/math.Max(d1, d2), 1.0/5.0)
	}

	h := math.Min(100*h0, h1)
	if math.IsNaN(h) || h <= 0 {
		h = h0
	}
	return math.Min(h, span)
}
