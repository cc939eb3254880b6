package TestEquation

import (
	"math"

	"github.com/andyc101/gosdc/sdc"
	"github.com/andyc101/gosdc/utils"
)

// Parameters for the scalar Dahlquist test problem u' = lambda*u.
type Parameters struct {
	NVars  int
	Lambda float64
	U0     float64
}

// TestEquation is the standard linear test problem with a known exponential
// solution, used for convergence and accuracy checks.
type TestEquation struct {
	Parameters
}

func New(p Parameters) (*TestEquation, error) {
	if p.NVars < 1 {
		return nil, &sdc.ConfigurationError{Param: "NVars", Msg: "need at least one variable"}
	}
	if p.Lambda >= 0 {
		return nil, &sdc.ConfigurationError{Param: "Lambda", Msg: "decay problem needs lambda < 0"}
	}
	if p.U0 == 0 {
		p.U0 = 1
	}
	return &TestEquation{Parameters: p}, nil
}

func (te *TestEquation) NVars() int { return te.Parameters.NVars }

func (te *TestEquation) EvalRHS(u utils.Vector, t float64) (expl, impl utils.Vector) {
	expl = utils.NewVector(u.Len())
	impl = u.Copy().Scale(te.Lambda)
	return
}

func (te *TestEquation) SolveImplicit(rhs utils.Vector, factor float64, guess utils.Vector, t float64) (utils.Vector, error) {
	// (1 - factor*lambda) u = rhs, closed form
	return rhs.Copy().Scale(1. / (1. - factor*te.Lambda)), nil
}

func (te *TestEquation) Exact(t float64) (u utils.Vector) {
	u = utils.NewVectorConst(te.Parameters.NVars, te.U0*math.Exp(te.Lambda*t))
	return
}
