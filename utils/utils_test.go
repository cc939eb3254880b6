package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVector(t *testing.T) {
	// Chainable arithmetic
	{
		v := NewVector(3, []float64{1, 2, 3})
		w := NewVector(3, []float64{3, 2, 1})
		v.Add(w).Scale(0.5)
		assert.Equal(t, []float64{2, 2, 2}, v.DataP())
	}
	// AddScaled is axpy
	{
		v := NewVector(2, []float64{1, 1})
		w := NewVector(2, []float64{2, -2})
		v.AddScaled(0.25, w)
		assert.Equal(t, []float64{1.5, 0.5}, v.DataP())
	}
	// Copy does not alias
	{
		v := NewVector(2, []float64{1, 2})
		w := v.Copy()
		w.Scale(0)
		assert.Equal(t, []float64{1, 2}, v.DataP())
	}
	// InfNorm
	{
		v := NewVector(3, []float64{1, -4, 2})
		assert.Equal(t, 4., v.InfNorm())
		assert.InDelta(t, math.Sqrt(21), v.L2Norm(), 1.e-14)
	}
}

func TestMatrix(t *testing.T) {
	// Transpose
	{
		M := NewMatrix(2, 3, []float64{
			1, 2, 3,
			4, 5, 6,
		})
		A := M.Transpose()
		aNr, aNc := A.Dims()
		assert.Equal(t, 3, aNr)
		assert.Equal(t, 2, aNc)
		assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, A.DataP())
	}
	// MulVec
	{
		M := NewMatrix(2, 2, []float64{
			1, 2,
			3, 4,
		})
		v := NewVector(2, []float64{1, 1})
		r := M.MulVec(v)
		assert.Equal(t, []float64{3, 7}, r.DataP())
	}
	// LUSolve round trip
	{
		M := NewMatrix(2, 2, []float64{
			2, 1,
			1, 3,
		})
		b := NewVector(2, []float64{3, 5})
		x, err := M.LUSolve(b)
		assert.NoError(t, err)
		r := M.MulVec(x).Subtract(b)
		assert.InDelta(t, 0, r.InfNorm(), 1.e-14)
	}
	// InfNorm is the max row sum
	{
		M := NewMatrix(2, 2, []float64{
			1, -2,
			3, 4,
		})
		assert.InDelta(t, 7, M.InfNorm(), 1.e-14)
	}
	// Identity
	{
		I := NewIdentity(3)
		v := NewVector(3, []float64{5, 6, 7})
		assert.Equal(t, v.DataP(), I.MulVec(v).DataP())
	}
}
