package AllenCahn1D

import (
	"fmt"
	"math"

	"github.com/andyc101/gosdc/sdc"
	"github.com/andyc101/gosdc/utils"
	"github.com/james-bowman/sparse"
)

// Parameters for the 1D Allen-Cahn equation on [-0.5, 0.5] with an interior
// Dirichlet grid:
//
//	u_t = u_xx + (1/eps^2) u (1 - u^2)
type Parameters struct {
	NVars         int
	Eps           float64
	Radius        float64 // radius of the initial tanh profile
	NewtonTol     float64
	NewtonMaxIter int
}

// AllenCahn is the fully implicit nonlinear phase-field problem. Its
// implicit solve runs an inner Newton iteration with its own tolerance and
// counters, and it exposes a frozen-Jacobian view for the Newton-coupled
// controller.
type AllenCahn struct {
	Parameters
	dx  float64
	A   *sparse.CSR
	ad  utils.Matrix // dense Laplacian
	jac utils.Matrix // frozen Jacobian, set by Linearize
	X   utils.Vector

	// counters, never reset internally
	NewtonIters int // inner Newton iterations over all implicit solves
	LinSolves   int // linear solves, both inner Newton and jacobian mode
}

func New(p Parameters) (ac *AllenCahn, err error) {
	if p.NVars < 1 {
		return nil, &sdc.ConfigurationError{Param: "NVars", Msg: "need at least one interior point"}
	}
	if p.Eps <= 0 {
		return nil, &sdc.ConfigurationError{Param: "Eps", Msg: "interface width must be positive"}
	}
	if p.NewtonTol <= 0 {
		return nil, &sdc.ConfigurationError{Param: "NewtonTol", Msg: "inner Newton tolerance must be positive"}
	}
	if p.NewtonMaxIter < 1 {
		return nil, &sdc.ConfigurationError{Param: "NewtonMaxIter", Msg: "inner Newton cap must be positive"}
	}
	if p.Radius <= 0 {
		p.Radius = 0.25
	}
	ac = &AllenCahn{Parameters: p}
	n := p.NVars
	ac.dx = 1. / float64(n+1)
	scale := 1. / (ac.dx * ac.dx)
	dok := sparse.NewDOK(n, n)
	for i := 0; i < n; i++ {
		dok.Set(i, i, -2*scale)
		if i > 0 {
			dok.Set(i, i-1, scale)
		}
		if i < n-1 {
			dok.Set(i, i+1, scale)
		}
	}
	ac.A = dok.ToCSR()
	ac.ad = utils.NewMatrix(n, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			ac.ad.Set(i, j, ac.A.At(i, j))
		}
	}
	ac.X = utils.NewVector(n)
	for i := 0; i < n; i++ {
		ac.X.SetVec(i, -0.5+float64(i+1)*ac.dx)
	}
	return
}

func (ac *AllenCahn) NVars() int { return ac.Parameters.NVars }

// InitialValue is the tanh interface profile of the configured radius.
func (ac *AllenCahn) InitialValue() (u utils.Vector) {
	u = ac.X.Copy().Apply(func(x float64) float64 {
		return math.Tanh((ac.Radius - math.Abs(x)) / (math.Sqrt2 * ac.Eps))
	})
	return
}

func (ac *AllenCahn) rhs(u utils.Vector) (f utils.Vector) {
	f = utils.NewVector(u.Len())
	f.V.MulVec(ac.A, u.V)
	e2 := 1. / (ac.Eps * ac.Eps)
	for i, v := range u.DataP() {
		f.DataP()[i] += e2 * v * (1 - v*v)
	}
	return
}

func (ac *AllenCahn) EvalRHS(u utils.Vector, t float64) (expl, impl utils.Vector) {
	return utils.NewVector(u.Len()), ac.rhs(u)
}

// SolveImplicit solves u - factor*f(u) = rhs with a damped-free inner Newton
// iteration. Non-finite residuals abort; running out of inner iterations
// does not (the caller's outer iteration absorbs the remaining defect).
func (ac *AllenCahn) SolveImplicit(rhs utils.Vector, factor float64, guess utils.Vector, t float64) (u utils.Vector, err error) {
	u = guess.Copy()
	e2 := 1. / (ac.Eps * ac.Eps)
	for n := 0; n < ac.NewtonMaxIter; n++ {
		g := u.Copy().AddScaled(-factor, ac.rhs(u)).Subtract(rhs)
		res := g.InfNorm()
		if math.IsNaN(res) || math.IsInf(res, 0) {
			return utils.Vector{}, fmt.Errorf("inner Newton diverged, residual %v", res)
		}
		if res < ac.NewtonTol {
			break
		}
		// J = I - factor*(A + (1/eps^2) diag(1 - 3u^2))
		J := ac.ad.Copy()
		for i, v := range u.DataP() {
			J.Set(i, i, J.At(i, i)+e2*(1-3*v*v))
		}
		J.Scale(-factor).Add(utils.NewIdentity(ac.Parameters.NVars))
		var du utils.Vector
		if du, err = J.LUSolve(g); err != nil {
			return utils.Vector{}, err
		}
		u.Subtract(du)
		ac.NewtonIters++
		ac.LinSolves++
	}
	return
}

// Linearize freezes the Jacobian at u for the jacobian-view capability.
func (ac *AllenCahn) Linearize(u utils.Vector) {
	e2 := 1. / (ac.Eps * ac.Eps)
	ac.jac = ac.ad.Copy()
	for i, v := range u.DataP() {
		ac.jac.Set(i, i, ac.jac.At(i, i)+e2*(1-3*v*v))
	}
}

func (ac *AllenCahn) ApplyJacobian(u utils.Vector) utils.Vector {
	return ac.jac.MulVec(u)
}

func (ac *AllenCahn) SolveJacobian(rhs utils.Vector, factor float64) (utils.Vector, error) {
	ac.LinSolves++
	if factor == 0 {
		return rhs.Copy(), nil
	}
	sys := ac.jac.Copy().Scale(-factor).Add(utils.NewIdentity(ac.Parameters.NVars))
	return sys.LUSolve(rhs)
}
