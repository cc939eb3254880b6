package sdc

import "github.com/andyc101/gosdc/utils"

// Transfer binds two adjacent levels of one step and moves state between
// them: spatial restriction/prolongation plus interpolation between the two
// collocation node sets, with the FAS correction computed on restriction.
type Transfer struct {
	Fine, Coarse *Level
	RSpace       utils.Matrix // fine state -> coarse state
	PSpace       utils.Matrix // coarse state -> fine state
	RColl        utils.Matrix // fine nodes -> coarse nodes, (Mc x Mf)
	PColl        utils.Matrix // coarse nodes -> fine nodes, (Mf x Mc)
	uSaved       []utils.Vector
}

func NewTransfer(fine, coarse *Level) (tr *Transfer, err error) {
	tr = &Transfer{Fine: fine, Coarse: coarse}
	if tr.RSpace, tr.PSpace, err = SpaceTransferOps(fine.Prob.NVars(), coarse.Prob.NVars()); err != nil {
		return nil, err
	}
	tr.RColl = nodeInterpolation(coarse.Coll, fine.Coll)
	tr.PColl = nodeInterpolation(fine.Coll, coarse.Coll)
	return
}

// SpaceTransferOps builds the restriction and prolongation matrices between
// two spatial resolutions. Identity when equal; full weighting and linear
// interpolation for 2:1 coarsening, either periodic (nf = 2 nc) or with
// interior Dirichlet points (nf = 2 nc + 1). Anything else is a TransferError.
func SpaceTransferOps(nf, nc int) (R, P utils.Matrix, err error) {
	switch {
	case nf == nc:
		R = utils.NewIdentity(nf)
		P = utils.NewIdentity(nf)
	case nf == 2*nc:
		// periodic grid, coarse point i at fine point 2i
		R = utils.NewMatrix(nc, nf)
		P = utils.NewMatrix(nf, nc)
		for i := 0; i < nc; i++ {
			R.Set(i, (2*i-1+nf)%nf, 0.25)
			R.Set(i, 2*i, 0.5)
			R.Set(i, (2*i+1)%nf, 0.25)
			P.Set(2*i, i, 1)
			P.Set((2*i+1)%nf, i, 0.5)
			P.Set((2*i+1)%nf, (i+1)%nc, 0.5)
		}
	case nf == 2*nc+1:
		// interior points of a Dirichlet-0 grid, coarse point i at fine 2i+1
		R = utils.NewMatrix(nc, nf)
		P = utils.NewMatrix(nf, nc)
		for i := 0; i < nc; i++ {
			R.Set(i, 2*i, 0.25)
			R.Set(i, 2*i+1, 0.5)
			R.Set(i, 2*i+2, 0.25)
			P.Set(2*i+1, i, 1)
			P.Set(2*i, i, 0.5)
			P.Set(2*i+2, i, 0.5)
		}
	default:
		return utils.Matrix{}, utils.Matrix{},
			&TransferError{Fine: nf, Coarse: nc, Msg: "no restriction/prolongation pair defined"}
	}
	return
}

// nodeInterpolation evaluates the Lagrange polynomial through the source
// node set at the destination nodes. Identical node sets give the identity.
func nodeInterpolation(dst, src *Collocation) (T utils.Matrix) {
	var (
		nd = dst.NumNodes
		ns = src.NumNodes
	)
	T = utils.NewMatrix(nd, ns)
	for i := 0; i < nd; i++ {
		x := dst.Nodes.AtVec(i)
		for j := 0; j < ns; j++ {
			l := 1.
			for k := 0; k < ns; k++ {
				if k == j {
					continue
				}
				l *= (x - src.Nodes.AtVec(k)) / (src.Nodes.AtVec(j) - src.Nodes.AtVec(k))
			}
			T.Set(i, j, l)
		}
	}
	return
}

// RestrictFAS projects the fine state down and installs the FAS correction
//
//	tau_c = R(dt_f Q_f F_f + tau_f) - dt_c Q_c F_c
//
// into the coarse level, where F_c is evaluated from the restricted state.
// The coarse pre-sweep state is saved for the later Prolong.
func (tr *Transfer) RestrictFAS() {
	var (
		fine   = tr.Fine
		coarse = tr.Coarse
		Mf     = fine.Coll.NumNodes
		Mc     = coarse.Coll.NumNodes
	)
	// restrict node values, space first then collocation nodes
	rspace := make([]utils.Vector, Mf+1)
	for j := 0; j <= Mf; j++ {
		rspace[j] = tr.RSpace.MulVec(fine.U[j])
	}
	coarse.U[0] = rspace[0]
	for m := 1; m <= Mc; m++ {
		u := utils.NewVector(coarse.Prob.NVars())
		for j := 1; j <= Mf; j++ {
			u.AddScaled(tr.RColl.At(m-1, j-1), rspace[j])
		}
		coarse.U[m] = u
	}
	coarse.EvalFAll()

	// fine-level quadrature of the current RHS, plus any inbound tau from
	// levels further up
	fInt := make([]utils.Vector, Mf+1)
	for m := 1; m <= Mf; m++ {
		fInt[m] = fine.Tau[m].Copy()
		for j := 1; j <= Mf; j++ {
			fInt[m].AddScaled(fine.Dt*fine.Coll.Q.At(m, j), fine.fSum(j))
		}
	}
	tr.uSaved = make([]utils.Vector, Mc+1)
	for m := 1; m <= Mc; m++ {
		tau := utils.NewVector(coarse.Prob.NVars())
		for j := 1; j <= Mf; j++ {
			tau.AddScaled(tr.RColl.At(m-1, j-1), tr.RSpace.MulVec(fInt[j]))
		}
		for j := 1; j <= Mc; j++ {
			tau.AddScaled(-coarse.Dt*coarse.Coll.Q.At(m, j), coarse.fSum(j))
		}
		coarse.Tau[m] = tau
		tr.uSaved[m] = coarse.U[m].Copy()
	}
}

// Prolong interpolates the coarse-grid correction (against the state saved
// by RestrictFAS) up to the fine level and refreshes the fine RHS.
func (tr *Transfer) Prolong() {
	var (
		fine   = tr.Fine
		coarse = tr.Coarse
		Mf     = fine.Coll.NumNodes
		Mc     = coarse.Coll.NumNodes
	)
	du := make([]utils.Vector, Mc+1)
	for m := 1; m <= Mc; m++ {
		du[m] = coarse.U[m].Copy().Subtract(tr.uSaved[m])
	}
	for m := 1; m <= Mf; m++ {
		corr := utils.NewVector(coarse.Prob.NVars())
		for j := 1; j <= Mc; j++ {
			corr.AddScaled(tr.PColl.At(m-1, j-1), du[j])
		}
		fine.U[m].Add(tr.PSpace.MulVec(corr))
		fine.evalF(m)
	}
}
