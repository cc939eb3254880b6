package sdc

import "github.com/andyc101/gosdc/utils"

// Level is one rung of a step's discretization hierarchy: a problem instance,
// a sweeper, the collocation node set and the mutable node data. U[0] is the
// interval's starting value, U[1..M] are the unknowns refined by sweeping.
// Tau is the inbound FAS correction from the next-finer level, overwritten
// once per iteration by the transfer operator.
type Level struct {
	ID      int // 0 = finest
	Prob    Problem
	Sweep   Sweeper
	Coll    *Collocation
	Time    float64 // left edge of the owning step's interval
	Dt      float64
	U       []utils.Vector // node values, index 0..M
	FExpl   []utils.Vector
	FImpl   []utils.Vector
	Tau     []utils.Vector // index 1..M, entry 0 unused
	Resid   float64        // residual of the last sweep
	NSolves int            // implicit solve count, consumed by the Newton controller
}

func NewLevel(id int, prob Problem, sweep Sweeper, coll *Collocation) (lv *Level) {
	var (
		M = coll.NumNodes
	)
	lv = &Level{
		ID:    id,
		Prob:  prob,
		Sweep: sweep,
		Coll:  coll,
		U:     make([]utils.Vector, M+1),
		FExpl: make([]utils.Vector, M+1),
		FImpl: make([]utils.Vector, M+1),
		Tau:   make([]utils.Vector, M+1),
	}
	return
}

// SetU0 installs the interval's starting value. The communication step is
// the only caller once the run is underway.
func (lv *Level) SetU0(u0 utils.Vector) {
	lv.U[0] = u0.Copy()
	lv.evalF(0)
}

// Spread seeds every node with the starting value, the zeroth-order initial
// guess of the predictor.
func (lv *Level) Spread() {
	var (
		M = lv.Coll.NumNodes
	)
	for m := 1; m <= M; m++ {
		lv.U[m] = lv.U[0].Copy()
		lv.evalF(m)
		lv.Tau[m] = utils.NewVector(lv.Prob.NVars())
	}
}

// NodeTime returns the absolute time of node m (m=0 is the interval's left
// edge).
func (lv *Level) NodeTime(m int) float64 {
	if m == 0 {
		return lv.Time
	}
	return lv.Time + lv.Dt*lv.Coll.Nodes.AtVec(m-1)
}

func (lv *Level) evalF(m int) {
	lv.FExpl[m], lv.FImpl[m] = lv.Prob.EvalRHS(lv.U[m], lv.NodeTime(m))
}

// EvalFAll recomputes the RHS at every node from the current U.
func (lv *Level) EvalFAll() {
	for m := range lv.U {
		if !lv.U[m].IsNil() {
			lv.evalF(m)
		}
	}
}

// fSum returns FExpl[m] + FImpl[m] without mutating either.
func (lv *Level) fSum(m int) utils.Vector {
	return lv.FImpl[m].Copy().Add(lv.FExpl[m])
}

// ComputeResidual evaluates the quadrature defect
//
//	r_m = u_0 + dt*(Q F)_m + tau_m - u_m
//
// and stores its inf-norm over all nodes.
func (lv *Level) ComputeResidual() float64 {
	var (
		M    = lv.Coll.NumNodes
		norm float64
	)
	for m := 1; m <= M; m++ {
		r := lv.U[0].Copy()
		for j := 1; j <= M; j++ {
			r.AddScaled(lv.Dt*lv.Coll.Q.At(m, j), lv.fSum(j))
		}
		r.Add(lv.Tau[m])
		r.Subtract(lv.U[m])
		if rn := r.InfNorm(); rn > norm {
			norm = rn
		}
	}
	lv.Resid = norm
	return norm
}

// UEnd returns the value at the right edge of the interval: the last node
// when the quadrature includes it, otherwise the weighted quadrature update.
func (lv *Level) UEnd() (u utils.Vector) {
	var (
		M = lv.Coll.NumNodes
	)
	if lv.Coll.RightIsNode {
		return lv.U[M].Copy()
	}
	u = lv.U[0].Copy()
	for m := 1; m <= M; m++ {
		u.AddScaled(lv.Dt*lv.Coll.Weights.AtVec(m-1), lv.fSum(m))
	}
	return
}
