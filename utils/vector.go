package utils

import (
	"math"

	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"
)

// Vector wraps a gonum VecDense with chainable methods. It doubles as the
// state container for time integration: node values, RHS evaluations and
// correction terms are all Vectors.
type Vector struct {
	V *mat.VecDense
}

func NewVector(n int, dataO ...[]float64) (v Vector) {
	if len(dataO) != 0 {
		if len(dataO[0]) != n {
			panic("mismatch in allocation: NewVector length != len(data)")
		}
		v = Vector{mat.NewVecDense(n, dataO[0])}
	} else {
		v = Vector{mat.NewVecDense(n, make([]float64, n))}
	}
	return
}

func NewVectorConst(n int, val float64) (v Vector) {
	v = NewVector(n)
	for i := range v.DataP() {
		v.DataP()[i] = val
	}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (v Vector) Dims() (r, c int)          { return v.V.Dims() }
func (v Vector) At(i, j int) float64       { return v.V.At(i, j) }
func (v Vector) T() mat.Matrix             { return v.V.T() }
func (v Vector) AtVec(i int) float64       { return v.V.AtVec(i) }
func (v Vector) SetVec(i int, val float64) { v.V.SetVec(i, val) }
func (v Vector) Len() int                  { return v.V.Len() }
func (v Vector) RawVector() blas64.Vector  { return v.V.RawVector() }
func (v Vector) DataP() []float64          { return v.V.RawVector().Data }
func (v Vector) IsNil() bool               { return v.V == nil }

func (v Vector) Copy() (r Vector) {
	r = NewVector(v.Len())
	copy(r.DataP(), v.DataP())
	return
}

// Chainable methods, all mutate the receiver's storage.
func (v Vector) Set(val float64) Vector {
	for i := range v.DataP() {
		v.DataP()[i] = val
	}
	return v
}

func (v Vector) Scale(a float64) Vector {
	for i := range v.DataP() {
		v.DataP()[i] *= a
	}
	return v
}

func (v Vector) AddScalar(a float64) Vector {
	for i := range v.DataP() {
		v.DataP()[i] += a
	}
	return v
}

func (v Vector) Add(a Vector) Vector {
	var (
		data  = v.DataP()
		dataA = a.DataP()
	)
	for i := range data {
		data[i] += dataA[i]
	}
	return v
}

func (v Vector) Subtract(a Vector) Vector {
	var (
		data  = v.DataP()
		dataA = a.DataP()
	)
	for i := range data {
		data[i] -= dataA[i]
	}
	return v
}

// AddScaled adds fac*a into the receiver (axpy).
func (v Vector) AddScaled(fac float64, a Vector) Vector {
	var (
		data  = v.DataP()
		dataA = a.DataP()
	)
	for i := range data {
		data[i] += fac * dataA[i]
	}
	return v
}

func (v Vector) ElMul(a Vector) Vector {
	var (
		data  = v.DataP()
		dataA = a.DataP()
	)
	for i := range data {
		data[i] *= dataA[i]
	}
	return v
}

func (v Vector) POW(p int) Vector {
	var (
		data = v.DataP()
	)
	for i, val := range data {
		y := 1.
		for k := 0; k < p; k++ {
			y *= val
		}
		data[i] = y
	}
	return v
}

func (v Vector) Apply(f func(float64) float64) Vector {
	var (
		data = v.DataP()
	)
	for i, val := range data {
		data[i] = f(val)
	}
	return v
}

// Non-mutating reductions
func (v Vector) Min() (min float64) {
	var (
		data = v.DataP()
	)
	min = data[0]
	for _, val := range data {
		if val < min {
			min = val
		}
	}
	return
}

func (v Vector) Max() (max float64) {
	var (
		data = v.DataP()
	)
	max = data[0]
	for _, val := range data {
		if val > max {
			max = val
		}
	}
	return
}

// InfNorm is the residual norm used throughout: max abs value.
func (v Vector) InfNorm() (norm float64) {
	for _, val := range v.DataP() {
		if a := math.Abs(val); a > norm {
			norm = a
		}
	}
	return
}

func (v Vector) L2Norm() (norm float64) {
	for _, val := range v.DataP() {
		norm += val * val
	}
	norm = math.Sqrt(norm)
	return
}
