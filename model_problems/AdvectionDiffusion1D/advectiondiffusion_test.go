package AdvectionDiffusion1D

import (
	"math"
	"testing"

	"github.com/andyc101/gosdc/sdc"
	"github.com/andyc101/gosdc/utils"
	"github.com/stretchr/testify/assert"
)

func TestAdvectionDiffusion(t *testing.T) {
	{ // rejected parameters
		_, err := New(Parameters{NVars: 2, C: 1, Nu: 0.1})
		assert.Error(t, err)
		_, err = New(Parameters{NVars: 16, C: 1, Nu: 0})
		assert.Error(t, err)
	}
	{ // both periodic stencils annihilate constants
		ad, err := New(Parameters{NVars: 16, C: 1, Nu: 0.1})
		assert.NoError(t, err)
		expl, impl := ad.EvalRHS(utils.NewVectorConst(16, 3), 0)
		assert.True(t, expl.InfNorm() < 1.e-12)
		assert.True(t, impl.InfNorm() < 1.e-12)
	}
	{ // the centered difference of a sine is the scaled cosine
		ad, err := New(Parameters{NVars: 64, C: 2, Nu: 0.1, Freq: 1})
		assert.NoError(t, err)
		var (
			k = 2 * math.Pi
			u = ad.X.Copy().Apply(func(x float64) float64 { return math.Sin(k * x) })
		)
		expl, _ := ad.EvalRHS(u, 0)
		fac := -ad.C * math.Sin(k*ad.dx) / ad.dx
		want := ad.X.Copy().Apply(func(x float64) float64 { return fac * math.Cos(k*x) })
		assert.True(t, expl.Subtract(want).InfNorm() < 1.e-10)
	}
	{ // the implicit solve inverts (I - factor*Diff) only
		ad, err := New(Parameters{NVars: 32, C: 1, Nu: 0.1, Freq: 1})
		assert.NoError(t, err)
		rhs := ad.Exact(0)
		u, err := ad.SolveImplicit(rhs, 0.05, rhs, 0)
		assert.NoError(t, err)
		_, impl := ad.EvalRHS(u, 0)
		back := u.Copy().AddScaled(-0.05, impl)
		assert.True(t, back.Subtract(rhs).InfNorm() < 1.e-10)
	}
}

func TestAdvectionDiffusionIMEX(t *testing.T) {
	// two levels with periodic 2:1 coarsening, IMEX sweeps; the tolerance is
	// dominated by the dispersion error of the centered advection stencil
	var (
		nvars = []int{64, 32}
		par   = func(n int) Parameters { return Parameters{NVars: n, C: 1, Nu: 0.02, Freq: 1} }
	)
	desc := sdc.Description{
		NumLevels: 2,
		NumNodes:  []int{3, 2},
		NType:     sdc.Legendre,
		QType:     sdc.RadauRight,
		IMEX:      true,
		NewProblem: func(level int) (sdc.Problem, error) {
			return New(par(nvars[level]))
		},
		RestTol: 1.e-9,
		MaxIter: 40,
	}
	c, err := sdc.NewController(desc, 8)
	assert.NoError(t, err)
	ad, _ := New(par(64))
	uend, _, err := c.Run(ad.Exact(0), 0, 0.25)
	assert.NoError(t, err)
	assert.True(t, c.AllConverged())
	assert.True(t, uend.Copy().Subtract(ad.Exact(0.25)).InfNorm() < 1.e-2)
}
