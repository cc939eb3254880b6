package AdvectionDiffusion1D

import (
	"math"

	"github.com/andyc101/gosdc/sdc"
	"github.com/andyc101/gosdc/utils"
	"github.com/james-bowman/sparse"
)

// Parameters for the periodic advection-diffusion equation on [0,1):
// u_t + c*u_x = nu*u_xx.
type Parameters struct {
	NVars int
	C     float64 // advection speed
	Nu    float64 // diffusion coefficient
	Freq  int     // wave number of the exact solution
}

// AdvectionDiffusion splits the RHS for the IMEX sweeper: centered-difference
// advection explicit, FD diffusion implicit, both periodic and sparse.
type AdvectionDiffusion struct {
	Parameters
	dx   float64
	Adv  *sparse.CSR
	Diff *sparse.CSR
	dd   utils.Matrix // dense diffusion operator for the implicit solves
	X    utils.Vector
}

func New(p Parameters) (ad *AdvectionDiffusion, err error) {
	if p.NVars < 3 {
		return nil, &sdc.ConfigurationError{Param: "NVars", Msg: "periodic stencils need at least 3 points"}
	}
	if p.Nu <= 0 {
		return nil, &sdc.ConfigurationError{Param: "Nu", Msg: "diffusion coefficient must be positive"}
	}
	if p.Freq < 1 {
		p.Freq = 1
	}
	ad = &AdvectionDiffusion{Parameters: p}
	n := p.NVars
	ad.dx = 1. / float64(n)
	advDok := sparse.NewDOK(n, n)
	diffDok := sparse.NewDOK(n, n)
	ca := -p.C / (2 * ad.dx)
	cd := p.Nu / (ad.dx * ad.dx)
	for i := 0; i < n; i++ {
		ip := (i + 1) % n
		im := (i - 1 + n) % n
		advDok.Set(i, ip, ca)
		advDok.Set(i, im, -ca)
		diffDok.Set(i, i, -2*cd)
		diffDok.Set(i, ip, cd)
		diffDok.Set(i, im, cd)
	}
	ad.Adv = advDok.ToCSR()
	ad.Diff = diffDok.ToCSR()
	ad.dd = utils.NewMatrix(n, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			ad.dd.Set(i, j, ad.Diff.At(i, j))
		}
	}
	ad.X = utils.NewVector(n)
	for i := 0; i < n; i++ {
		ad.X.SetVec(i, float64(i)*ad.dx)
	}
	return
}

func (ad *AdvectionDiffusion) NVars() int { return ad.Parameters.NVars }

func (ad *AdvectionDiffusion) EvalRHS(u utils.Vector, t float64) (expl, impl utils.Vector) {
	expl = utils.NewVector(u.Len())
	impl = utils.NewVector(u.Len())
	expl.V.MulVec(ad.Adv, u.V)
	impl.V.MulVec(ad.Diff, u.V)
	return
}

// SolveImplicit solves (I - factor*Diff) u = rhs; only the stiff diffusion
// part is treated implicitly.
func (ad *AdvectionDiffusion) SolveImplicit(rhs utils.Vector, factor float64, guess utils.Vector, t float64) (utils.Vector, error) {
	if factor == 0 {
		return rhs.Copy(), nil
	}
	sys := ad.dd.Copy().Scale(-factor).Add(utils.NewIdentity(ad.Parameters.NVars))
	return sys.LUSolve(rhs)
}

// Exact is the traveling decaying sine wave of the continuum problem. The FD
// discretization adds its own spatial error, so comparisons against it need
// grid-dependent tolerances.
func (ad *AdvectionDiffusion) Exact(t float64) (u utils.Vector) {
	var (
		k = 2 * math.Pi * float64(ad.Freq)
	)
	u = ad.X.Copy().Apply(func(x float64) float64 {
		return math.Exp(-ad.Nu*k*k*t) * math.Sin(k*(x-ad.C*t))
	})
	return
}
