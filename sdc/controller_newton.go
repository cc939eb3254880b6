package sdc

import (
	"fmt"
	"time"

	"github.com/andyc101/gosdc/utils"
)

// jacProblem exposes a frozen linearization through the ordinary Problem
// capability, so the inner linear iterations reuse the level/sweep machinery
// untouched.
type jacProblem struct {
	lin Linearizable
}

func (p *jacProblem) NVars() int { return p.lin.NVars() }

func (p *jacProblem) EvalRHS(u utils.Vector, t float64) (expl, impl utils.Vector) {
	return utils.NewVector(p.lin.NVars()), p.lin.ApplyJacobian(u)
}

func (p *jacProblem) SolveImplicit(rhs utils.Vector, factor float64, guess utils.Vector, t float64) (utils.Vector, error) {
	return p.lin.SolveJacobian(rhs, factor)
}

// NewtonController couples an outer Newton iteration on the full collocation
// system with inner linear multilevel iterations: each outer pass linearizes
// the problems at the current trajectory, solves the linearized defect system
// through the ordinary controller loop, and applies the correction. The
// outer loop terminates on the nonlinear residual, not the linear defect.
type NewtonController struct {
	ctrl          *Controller
	probs         [][]Linearizable // [step][level], the underlying nonlinear problems
	NewtonTol     float64
	NewtonMaxIter int
	OuterIters    int // outer Newton iterations of the last run
	InnerSolves   int // linear solves across all levels, charged to the run
}

func NewNewtonController(desc Description, numSteps int, newtonTol float64, newtonMaxIter int) (nc *NewtonController, err error) {
	if newtonTol <= 0 {
		return nil, configErrorf("NewtonTol", "need a positive outer tolerance, got %g", newtonTol)
	}
	if newtonMaxIter < 1 {
		return nil, configErrorf("NewtonMaxIter", "need a positive outer cap, got %d", newtonMaxIter)
	}
	nc = &NewtonController{
		NewtonTol:     newtonTol,
		NewtonMaxIter: newtonMaxIter,
	}
	// wrap the factory so every constructed problem is captured alongside
	// its jacobian view; NewController calls it step-major, level-minor
	var flat []Linearizable
	base := desc.NewProblem
	desc.NewProblem = func(level int) (Problem, error) {
		p, err := base(level)
		if err != nil {
			return nil, err
		}
		lin, ok := p.(Linearizable)
		if !ok {
			return nil, configErrorf("NewProblem",
				"level %d problem %T cannot be linearized for the Newton-coupled mode", level, p)
		}
		flat = append(flat, lin)
		return &jacProblem{lin: lin}, nil
	}
	if nc.ctrl, err = NewController(desc, numSteps); err != nil {
		return nil, err
	}
	nc.probs = make([][]Linearizable, numSteps)
	for k := 0; k < numSteps; k++ {
		nc.probs[k] = flat[k*desc.NumLevels : (k+1)*desc.NumLevels]
	}
	return
}

// Run integrates u0 over [t0, tend). The returned stats log carries
// "newton_residual" per outer iteration plus "newton_niter" and
// "inner_solves" totals.
func (nc *NewtonController) Run(u0 utils.Vector, t0, tend float64) (uend utils.Vector, stats *Stats, err error) {
	var (
		c     = nc.ctrl
		n     = len(c.Steps)
		fine  = c.Steps[0].Levels[0]
		M     = fine.Coll.NumNodes
		start = time.Now()
	)
	// trajectory over all slices and nodes, seeded zeroth order; the
	// jacobians must be frozen before the first setup touches the wrapped
	// problems
	traj := make([][]utils.Vector, n)
	for k := range traj {
		traj[k] = make([]utils.Vector, M+1)
		for m := range traj[k] {
			traj[k][m] = u0.Copy()
		}
	}
	if err = nc.linearize(traj); err != nil {
		return
	}
	// setup also validates the interval split; the zero start value is
	// replaced by the trajectory logic below
	if err = c.setup(utils.NewVector(fine.Prob.NVars()), t0, tend); err != nil {
		return
	}
	dt := c.Steps[0].Dt
	nc.OuterIters = 0
	nc.InnerSolves = 0
	for {
		defect, resid := nc.defect(traj, u0, dt)
		c.Stats.Add(Entry{Iter: nc.OuterIters, Type: "newton_residual", Value: resid})
		if c.Desc.Verbose {
			fmt.Printf("newton %3d  nonlinear residual = %10.4e  inner solves = %d\n",
				nc.OuterIters, resid, nc.InnerSolves)
		}
		if resid <= nc.NewtonTol || nc.OuterIters >= nc.NewtonMaxIter {
			break
		}
		nc.OuterIters++
		if err = nc.linearize(traj); err != nil {
			return
		}
		// inner linear run on the error equation: zero start value, the
		// nonlinear defect enters as the finest level's correction term
		if err = c.setup(utils.NewVector(fine.Prob.NVars()), t0, tend); err != nil {
			return
		}
		if err = c.predict(); err != nil {
			return
		}
		for k, s := range c.Steps {
			for m := 1; m <= M; m++ {
				s.Levels[0].Tau[m] = defect[k][m].Copy()
			}
			s.Levels[0].ComputeResidual()
		}
		if err = c.loop(); err != nil {
			return
		}
		for k, s := range c.Steps {
			for m := 1; m <= M; m++ {
				traj[k][m].Add(s.Levels[0].U[m])
			}
			if k < n-1 {
				traj[k+1][0] = nc.endValue(traj[k], k, dt)
			}
			for _, lv := range s.Levels {
				nc.InnerSolves += lv.NSolves
			}
		}
	}
	uend = nc.endValue(traj[n-1], n-1, dt)
	c.Stats.Add(Entry{Type: "newton_niter", Value: float64(nc.OuterIters)})
	c.Stats.Add(Entry{Type: "inner_solves", Value: float64(nc.InnerSolves)})
	c.Stats.Add(Entry{Type: "timing_run", Value: time.Since(start).Seconds()})
	stats = c.Stats
	return
}

// defect computes the nonlinear collocation defect per slice and node,
// propagating each slice's end value into its neighbor's start.
func (nc *NewtonController) defect(traj [][]utils.Vector, u0 utils.Vector, dt float64) (b [][]utils.Vector, resid float64) {
	var (
		c    = nc.ctrl
		fine = c.Steps[0].Levels[0]
		M    = fine.Coll.NumNodes
		Q    = fine.Coll.Q
	)
	b = make([][]utils.Vector, len(c.Steps))
	for k, s := range c.Steps {
		if k == 0 {
			traj[0][0] = u0.Copy()
		} else {
			traj[k][0] = nc.endValue(traj[k-1], k-1, dt)
		}
		prob := nc.probs[k][0]
		fs := make([]utils.Vector, M+1)
		for m := 1; m <= M; m++ {
			expl, impl := prob.EvalRHS(traj[k][m], s.Time+dt*fine.Coll.Nodes.AtVec(m-1))
			fs[m] = impl.Add(expl)
		}
		b[k] = make([]utils.Vector, M+1)
		for m := 1; m <= M; m++ {
			r := traj[k][0].Copy()
			for j := 1; j <= M; j++ {
				r.AddScaled(dt*Q.At(m, j), fs[j])
			}
			r.Subtract(traj[k][m])
			b[k][m] = r
			if rn := r.InfNorm(); rn > resid {
				resid = rn
			}
		}
	}
	return
}

// linearize freezes each problem's Jacobian at its slice's starting value,
// spatially restricted for the coarser levels.
func (nc *NewtonController) linearize(traj [][]utils.Vector) (err error) {
	for k := range nc.probs {
		at := traj[k][0]
		for lv, prob := range nc.probs[k] {
			if lv > 0 {
				var R utils.Matrix
				if R, _, err = SpaceTransferOps(nc.probs[k][lv-1].NVars(), prob.NVars()); err != nil {
					return
				}
				at = R.MulVec(at)
			}
			prob.Linearize(at)
		}
	}
	return
}

// endValue evaluates a slice's end-of-interval value from its trajectory.
func (nc *NewtonController) endValue(nodes []utils.Vector, k int, dt float64) utils.Vector {
	var (
		c    = nc.ctrl
		fine = c.Steps[k].Levels[0]
		M    = fine.Coll.NumNodes
	)
	if fine.Coll.RightIsNode {
		return nodes[M].Copy()
	}
	u := nodes[0].Copy()
	prob := nc.probs[k][0]
	for m := 1; m <= M; m++ {
		expl, impl := prob.EvalRHS(nodes[m], c.Steps[k].Time+dt*fine.Coll.Nodes.AtVec(m-1))
		u.AddScaled(dt*fine.Coll.Weights.AtVec(m-1), impl.Add(expl))
	}
	return u
}

// Stats exposes the accumulated log of the wrapped controller.
func (nc *NewtonController) Stats() *Stats { return nc.ctrl.Stats }

// Steps exposes the wrapped controller's slices for inspection.
func (nc *NewtonController) Steps() []*Step { return nc.ctrl.Steps }
