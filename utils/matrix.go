package utils

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"
)

// Matrix wraps a gonum Dense with chainable methods.
type Matrix struct {
	M *mat.Dense
}

func NewMatrix(nr, nc int, dataO ...[]float64) (R Matrix) {
	var m *mat.Dense
	if len(dataO) != 0 {
		if len(dataO[0]) != nr*nc {
			err := fmt.Errorf("mismatch in allocation: NewMatrix nr,nc = %v,%v, len(data[0]) = %v",
				nr, nc, len(dataO[0]))
			panic(err)
		}
		m = mat.NewDense(nr, nc, dataO[0])
	} else {
		m = mat.NewDense(nr, nc, make([]float64, nr*nc))
	}
	R = Matrix{m}
	return
}

func NewIdentity(n int) (R Matrix) {
	R = NewMatrix(n, n)
	for i := 0; i < n; i++ {
		R.Set(i, i, 1)
	}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m Matrix) Dims() (r, c int)          { return m.M.Dims() }
func (m Matrix) At(i, j int) float64       { return m.M.At(i, j) }
func (m Matrix) T() mat.Matrix             { return m.M.T() }
func (m Matrix) RawMatrix() blas64.General { return m.M.RawMatrix() }
func (m Matrix) DataP() []float64          { return m.M.RawMatrix().Data }
func (m Matrix) Set(i, j int, val float64) { m.M.Set(i, j, val) }
func (m Matrix) IsNil() bool               { return m.M == nil }

func (m Matrix) Copy() (R Matrix) {
	var (
		nr, nc = m.Dims()
	)
	R = NewMatrix(nr, nc)
	copy(R.DataP(), m.DataP())
	return
}

func (m Matrix) Transpose() (R Matrix) {
	var (
		nr, nc = m.Dims()
	)
	R = NewMatrix(nc, nr)
	for j := 0; j < nc; j++ {
		for i := 0; i < nr; i++ {
			R.Set(j, i, m.At(i, j))
		}
	}
	return
}

// Chainable methods, mutate the receiver
func (m Matrix) Scale(a float64) Matrix {
	var (
		data = m.DataP()
	)
	for i := range data {
		data[i] *= a
	}
	return m
}

func (m Matrix) Add(A Matrix) Matrix {
	var (
		data  = m.DataP()
		dataA = A.DataP()
	)
	for i := range data {
		data[i] += dataA[i]
	}
	return m
}

func (m Matrix) Subtract(A Matrix) Matrix {
	var (
		data  = m.DataP()
		dataA = A.DataP()
	)
	for i := range data {
		data[i] -= dataA[i]
	}
	return m
}

func (m Matrix) Apply(f func(float64) float64) Matrix {
	var (
		data = m.DataP()
	)
	for i, val := range data {
		data[i] = f(val)
	}
	return m
}

// Non-mutating products
func (m Matrix) Mul(A Matrix) (R Matrix) {
	var (
		nrM, _ = m.Dims()
		_, ncA = A.Dims()
	)
	R = NewMatrix(nrM, ncA)
	R.M.Mul(m.M, A.M)
	return
}

func (m Matrix) MulVec(v Vector) (r Vector) {
	var (
		nr, _ = m.Dims()
	)
	r = NewVector(nr)
	r.V.MulVec(m.M, v.V)
	return
}

func (m Matrix) Row(i int) (r Vector) {
	var (
		_, nc = m.Dims()
	)
	r = NewVector(nc)
	for j := 0; j < nc; j++ {
		r.SetVec(j, m.At(i, j))
	}
	return
}

func (m Matrix) SetRow(i int, v Vector) Matrix {
	m.M.SetRow(i, v.DataP())
	return m
}

// LUSolve solves m*x = b for a square receiver using dense LU with partial
// pivoting.
func (m Matrix) LUSolve(b Vector) (x Vector, err error) {
	var (
		lu mat.LU
	)
	lu.Factorize(m.M)
	x = NewVector(b.Len())
	if err = lu.SolveVecTo(x.V, false, b.V); err != nil {
		return Vector{}, fmt.Errorf("dense LU solve failed: %w", err)
	}
	return
}

// InfNorm is the max row sum norm.
func (m Matrix) InfNorm() float64 {
	return mat.Norm(m.M, math.Inf(1))
}
