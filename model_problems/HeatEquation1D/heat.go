package HeatEquation1D

import (
	"math"

	"github.com/andyc101/gosdc/sdc"
	"github.com/andyc101/gosdc/utils"
	"github.com/james-bowman/sparse"
)

// Parameters for the 1D heat equation with Dirichlet-0 boundaries on [0,1].
type Parameters struct {
	NVars int     // number of interior grid points
	Nu    float64 // diffusion coefficient
	Freq  int     // wave number of the exact sine solution
}

// Heat is the fully implicit forced-free heat equation: u_t = nu*u_xx. The
// second-order FD Laplacian is assembled sparse; the implicit system is
// solved dense.
type Heat struct {
	Parameters
	dx float64
	A  *sparse.CSR
	ad utils.Matrix // dense copy of A for the implicit solves
	X  utils.Vector // interior grid coordinates
}

func New(p Parameters) (h *Heat, err error) {
	if p.NVars < 1 {
		return nil, &sdc.ConfigurationError{Param: "NVars", Msg: "need at least one interior point"}
	}
	if p.Nu <= 0 {
		return nil, &sdc.ConfigurationError{Param: "Nu", Msg: "diffusion coefficient must be positive"}
	}
	if p.Freq < 1 {
		p.Freq = 1
	}
	h = &Heat{Parameters: p}
	h.dx = 1. / float64(p.NVars+1)
	h.A = laplacian(p.NVars, p.Nu/(h.dx*h.dx))
	h.ad = utils.NewMatrix(p.NVars, p.NVars)
	for i := 0; i < p.NVars; i++ {
		for j := 0; j < p.NVars; j++ {
			h.ad.Set(i, j, h.A.At(i, j))
		}
	}
	h.X = utils.NewVector(p.NVars)
	for i := 0; i < p.NVars; i++ {
		h.X.SetVec(i, float64(i+1)*h.dx)
	}
	return
}

// laplacian assembles the scaled [1 -2 1] stencil with Dirichlet-0 edges.
func laplacian(n int, scale float64) *sparse.CSR {
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
	return dok.ToCSR()
}

func (h *Heat) NVars() int { return h.Parameters.NVars }

func (h *Heat) EvalRHS(u utils.Vector, t float64) (expl, impl utils.Vector) {
	expl = utils.NewVector(u.Len())
	impl = utils.NewVector(u.Len())
	impl.V.MulVec(h.A, u.V)
	return
}

// SolveImplicit solves (I - factor*A) u = rhs directly.
func (h *Heat) SolveImplicit(rhs utils.Vector, factor float64, guess utils.Vector, t float64) (u utils.Vector, err error) {
	if factor == 0 {
		return rhs.Copy(), nil
	}
	sys := h.ad.Copy().Scale(-factor).Add(utils.NewIdentity(h.Parameters.NVars))
	return sys.LUSolve(rhs)
}

// Exact is the decaying sine mode the initial condition selects.
func (h *Heat) Exact(t float64) (u utils.Vector) {
	var (
		k = math.Pi * float64(h.Freq)
	)
	u = h.X.Copy().Apply(func(x float64) float64 {
		return math.Sin(k*x) * math.Exp(-h.Nu*k*k*t)
	})
	return
}
