package sdc

import (
	"math"
	"testing"

	"github.com/andyc101/gosdc/utils"
	"github.com/stretchr/testify/assert"
)

func TestSpaceTransferOps(t *testing.T) {
	{ // equal sizes: identity both ways
		R, P, err := SpaceTransferOps(5, 5)
		assert.NoError(t, err)
		v := utils.NewVector(5, []float64{1, 2, 3, 4, 5})
		assert.True(t, near(R.MulVec(v).Copy().Subtract(v).InfNorm(), 0))
		assert.True(t, near(P.MulVec(v).Copy().Subtract(v).InfNorm(), 0))
	}
	{ // periodic 2:1 coarsening preserves constants both ways
		R, P, err := SpaceTransferOps(8, 4)
		assert.NoError(t, err)
		ones := utils.NewVectorConst(8, 1)
		rc := R.MulVec(ones)
		for i := 0; i < 4; i++ {
			assert.True(t, near(rc.AtVec(i), 1))
		}
		pf := P.MulVec(utils.NewVectorConst(4, 1))
		for i := 0; i < 8; i++ {
			assert.True(t, near(pf.AtVec(i), 1))
		}
	}
	{ // Dirichlet interior grids: linear interpolation is exact on the
		// injected coarse points
		R, P, err := SpaceTransferOps(7, 3)
		assert.NoError(t, err)
		uc := utils.NewVector(3, []float64{1, 2, 3})
		uf := P.MulVec(uc)
		assert.True(t, near(uf.AtVec(1), 1))
		assert.True(t, near(uf.AtVec(3), 2))
		assert.True(t, near(uf.AtVec(5), 3))
		assert.True(t, near(uf.AtVec(2), 1.5))
		// full weighting of the prolonged vector brings the coarse values back
		// up to boundary effects
		rt := R.MulVec(uf)
		assert.True(t, near(rt.AtVec(1), 2))
	}
	{ // anything else is refused
		_, _, err := SpaceTransferOps(10, 4)
		var te *TransferError
		assert.ErrorAs(t, err, &te)
	}
}

func TestNodeInterpolation(t *testing.T) {
	fine, err := NewCollocation(5, 0, 1, Legendre, RadauRight)
	assert.NoError(t, err)
	coarse, err := NewCollocation(3, 0, 1, Legendre, RadauRight)
	assert.NoError(t, err)
	p := func(x float64) float64 { return 1 + x*(2+x*(3+x*(4+5*x))) }
	{ // restriction of a quartic sampled on 5 nodes is exact at the 3 nodes
		T := nodeInterpolation(coarse, fine)
		fv := utils.NewVector(fine.NumNodes)
		for j := 0; j < fine.NumNodes; j++ {
			fv.SetVec(j, p(fine.Nodes.AtVec(j)))
		}
		cv := T.MulVec(fv)
		for i := 0; i < coarse.NumNodes; i++ {
			assert.InDelta(t, p(coarse.Nodes.AtVec(i)), cv.AtVec(i), 1.e-12)
		}
	}
	{ // identical node sets give the identity
		T := nodeInterpolation(fine, fine)
		for i := 0; i < fine.NumNodes; i++ {
			for j := 0; j < fine.NumNodes; j++ {
				want := 0.
				if i == j {
					want = 1
				}
				assert.InDelta(t, want, T.At(i, j), 1.e-12)
			}
		}
	}
}

func TestRestrictFAS(t *testing.T) {
	newLevel := func(id, M int) *Level {
		coll, err := NewCollocation(M, 0, 1, Legendre, RadauRight)
		assert.NoError(t, err)
		sw, err := NewImplicitSweeper(coll, "IE")
		assert.NoError(t, err)
		lv := NewLevel(id, &decayProblem{n: 4, lambda: -1}, sw, coll)
		lv.Dt = 0.1
		return lv
	}
	{ // identical levels: the FAS correction vanishes and the prolongation
		// without an intervening coarse sweep is a no-op
		fine, coarse := newLevel(0, 3), newLevel(1, 3)
		tr, err := NewTransfer(fine, coarse)
		assert.NoError(t, err)
		fine.SetU0(utils.NewVectorConst(4, 1))
		fine.Spread()
		// perturb the nodes so the state is not constant
		for m := 1; m <= 3; m++ {
			fine.U[m].AddScalar(0.1 * float64(m))
			fine.evalF(m)
		}
		before := make([]utils.Vector, 4)
		for m := 1; m <= 3; m++ {
			before[m] = fine.U[m].Copy()
		}
		tr.RestrictFAS()
		for m := 1; m <= 3; m++ {
			assert.True(t, coarse.Tau[m].InfNorm() < 1.e-13)
		}
		tr.Prolong()
		for m := 1; m <= 3; m++ {
			assert.True(t, fine.U[m].Copy().Subtract(before[m]).InfNorm() < 1.e-13)
		}
	}
	{ // node coarsening: the corrected coarse level matches the fine
		// quadrature on polynomial data
		fine, coarse := newLevel(0, 5), newLevel(1, 3)
		tr, err := NewTransfer(fine, coarse)
		assert.NoError(t, err)
		fine.SetU0(utils.NewVectorConst(4, 1))
		fine.Spread()
		tr.RestrictFAS()
		// constant state: RHS is constant, both quadratures integrate it
		// exactly, so tau still vanishes
		for m := 1; m <= 3; m++ {
			assert.True(t, coarse.Tau[m].InfNorm() < 1.e-13)
		}
		// coarse residual with tau equals the restricted fine residual
		fine.ComputeResidual()
		coarse.ComputeResidual()
		assert.InDelta(t, fine.Resid, coarse.Resid, 1.e-12)
	}
}

func TestUEndQuadrature(t *testing.T) {
	// Gauss nodes exclude the right edge, so UEnd integrates with the weights
	coll, err := NewCollocation(3, 0, 1, Legendre, Gauss)
	assert.NoError(t, err)
	sw, err := NewImplicitSweeper(coll, "IE")
	assert.NoError(t, err)
	lv := NewLevel(0, &decayProblem{n: 1, lambda: -1}, sw, coll)
	lv.Dt = 0.1
	lv.SetU0(utils.NewVectorConst(1, 1))
	lv.Spread()
	for k := 0; k < 10; k++ {
		assert.NoError(t, lv.Sweep.Sweep(lv))
	}
	assert.True(t, math.Abs(lv.UEnd().AtVec(0)-math.Exp(-0.1)) < 1.e-6)
}
