package sdc

import "github.com/andyc101/gosdc/utils"

// Sweeper advances all node values of one level by a single correction
// sweep. Implementations are bound to a collocation node set and its QDelta
// preconditioners at construction.
type Sweeper interface {
	Sweep(lv *Level) error
}

// ImplicitSweeper performs fully implicit SDC sweeps: the whole RHS is
// treated through the implicit solve and any explicit split the problem
// reports is ignored.
type ImplicitSweeper struct {
	QI utils.Matrix
}

func NewImplicitSweeper(coll *Collocation, qdName string) (s *ImplicitSweeper, err error) {
	var qi utils.Matrix
	if qi, err = coll.QDelta(qdName); err != nil {
		return nil, err
	}
	return &ImplicitSweeper{QI: qi}, nil
}

func (s *ImplicitSweeper) Sweep(lv *Level) (err error) {
	var (
		M  = lv.Coll.NumNodes
		dt = lv.Dt
		Q  = lv.Coll.Q
	)
	// integral term, frozen at sweep start
	integ := make([]utils.Vector, M+1)
	for m := 1; m <= M; m++ {
		integ[m] = lv.Tau[m].Copy()
		for j := 1; j <= M; j++ {
			integ[m].AddScaled(dt*(Q.At(m, j)-s.QI.At(m, j)), lv.FImpl[j])
		}
	}
	// forward substitution over nodes, Gauss-Seidel style
	for m := 1; m <= M; m++ {
		rhs := lv.U[0].Copy().Add(integ[m])
		for j := 1; j < m; j++ {
			rhs.AddScaled(dt*s.QI.At(m, j), lv.FImpl[j])
		}
		var u utils.Vector
		if u, err = lv.Prob.SolveImplicit(rhs, dt*s.QI.At(m, m), lv.U[m], lv.NodeTime(m)); err != nil {
			return &SolveFailure{Level: lv.ID, Node: m, Err: err}
		}
		lv.NSolves++
		lv.U[m] = u
		lv.evalF(m)
	}
	lv.ComputeResidual()
	return
}

// IMEXSweeper splits the RHS: the implicit part goes through the QI
// preconditioned solve, the explicit part is advanced with the explicit
// Euler preconditioner.
type IMEXSweeper struct {
	QI, QE utils.Matrix
}

func NewIMEXSweeper(coll *Collocation, qdName string) (s *IMEXSweeper, err error) {
	var qi, qe utils.Matrix
	if qi, err = coll.QDelta(qdName); err != nil {
		return nil, err
	}
	if qe, err = coll.QDelta("EE"); err != nil {
		return nil, err
	}
	return &IMEXSweeper{QI: qi, QE: qe}, nil
}

func (s *IMEXSweeper) Sweep(lv *Level) (err error) {
	var (
		M  = lv.Coll.NumNodes
		dt = lv.Dt
		Q  = lv.Coll.Q
	)
	integ := make([]utils.Vector, M+1)
	for m := 1; m <= M; m++ {
		integ[m] = lv.Tau[m].Copy()
		for j := 1; j <= M; j++ {
			integ[m].AddScaled(dt*(Q.At(m, j)-s.QI.At(m, j)), lv.FImpl[j])
			integ[m].AddScaled(dt*(Q.At(m, j)-s.QE.At(m, j)), lv.FExpl[j])
		}
	}
	for m := 1; m <= M; m++ {
		rhs := lv.U[0].Copy().Add(integ[m])
		for j := 1; j < m; j++ {
			rhs.AddScaled(dt*s.QI.At(m, j), lv.FImpl[j])
			rhs.AddScaled(dt*s.QE.At(m, j), lv.FExpl[j])
		}
		var u utils.Vector
		if u, err = lv.Prob.SolveImplicit(rhs, dt*s.QI.At(m, m), lv.U[m], lv.NodeTime(m)); err != nil {
			return &SolveFailure{Level: lv.ID, Node: m, Err: err}
		}
		lv.NSolves++
		lv.U[m] = u
		lv.evalF(m)
	}
	lv.ComputeResidual()
	return
}
