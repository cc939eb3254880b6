package sdc

import (
	"math"
	"strings"

	"github.com/andyc101/gosdc/utils"
	"gonum.org/v1/gonum/mat"
)

type NodeType uint8

const (
	Equidistant NodeType = iota
	Legendre
)

func (nt NodeType) String() string {
	switch nt {
	case Equidistant:
		return "EQUID"
	case Legendre:
		return "LEGENDRE"
	}
	return "UNKNOWN"
}

func ParseNodeType(s string) (NodeType, error) {
	switch strings.ToUpper(s) {
	case "EQUID", "EQUIDISTANT":
		return Equidistant, nil
	case "LEGENDRE":
		return Legendre, nil
	}
	return 0, configErrorf("NodeType", "unknown node type %q", s)
}

type QuadType uint8

const (
	Lobatto QuadType = iota
	RadauRight
	Gauss
)

func (qt QuadType) String() string {
	switch qt {
	case Lobatto:
		return "LOBATTO"
	case RadauRight:
		return "RADAU-RIGHT"
	case Gauss:
		return "GAUSS"
	}
	return "UNKNOWN"
}

func ParseQuadType(s string) (QuadType, error) {
	switch strings.ToUpper(s) {
	case "LOBATTO":
		return Lobatto, nil
	case "RADAU-RIGHT", "RADAURIGHT":
		return RadauRight, nil
	case "GAUSS":
		return Gauss, nil
	}
	return 0, configErrorf("QuadType", "unknown quadrature type %q", s)
}

// Collocation holds the node set and quadrature matrices for one level.
//
// The matrices are (M+1)x(M+1) with row and column 0 reserved for the left
// interval edge: row m of Q integrates the collocation polynomial from TLeft
// to node m, so Q has an empty first column while the explicit preconditioner
// QDelta("EE") does not (an explicit Euler step out of the left edge uses the
// RHS evaluated there).
type Collocation struct {
	NumNodes      int
	TLeft, TRight float64
	NType         NodeType
	QType         QuadType
	Nodes         utils.Vector // M nodes, ascending, within (TLeft, TRight]
	Weights       utils.Vector // integration weights for the full interval
	Q             utils.Matrix
	Delta         utils.Vector // node spacings, Delta[0] = Nodes[0]-TLeft
	RightIsNode   bool
}

func NewCollocation(M int, tleft, tright float64, ntype NodeType, qtype QuadType) (c *Collocation, err error) {
	if M < 1 {
		return nil, configErrorf("NumNodes", "need at least 1 collocation node, got %d", M)
	}
	if tleft >= tright {
		return nil, configErrorf("Interval", "left edge %g must be below right edge %g", tleft, tright)
	}
	c = &Collocation{
		NumNodes: M,
		TLeft:    tleft,
		TRight:   tright,
		NType:    ntype,
		QType:    qtype,
	}
	var nodes []float64
	switch {
	case ntype == Equidistant && qtype == Lobatto:
		if M < 2 {
			return nil, configErrorf("NumNodes", "equidistant Lobatto nodes include both edges, need M >= 2")
		}
		nodes = make([]float64, M)
		h := (tright - tleft) / float64(M-1)
		for i := range nodes {
			nodes[i] = tleft + float64(i)*h
		}
		nodes[M-1] = tright
		c.RightIsNode = true
	case ntype == Legendre && qtype == RadauRight:
		nodes = make([]float64, 0, M)
		if M > 1 {
			// Interior Radau-right points are the Gauss points of the
			// (1-x) weighted Jacobi rule.
			var x utils.Vector
			if x, _, err = jacobiGQ(1, 0, M-2); err != nil {
				return nil, err
			}
			for i := 0; i < x.Len(); i++ {
				nodes = append(nodes, mapFromReference(x.AtVec(i), tleft, tright))
			}
		}
		nodes = append(nodes, tright)
		c.RightIsNode = true
	case ntype == Legendre && qtype == Gauss:
		var x utils.Vector
		if x, _, err = jacobiGQ(0, 0, M-1); err != nil {
			return nil, err
		}
		nodes = make([]float64, M)
		for i := range nodes {
			nodes[i] = mapFromReference(x.AtVec(i), tleft, tright)
		}
	default:
		return nil, configErrorf("NodeType/QuadType",
			"unsupported combination %v nodes with %v quadrature", ntype, qtype)
	}
	c.Nodes = utils.NewVector(M, nodes)
	c.Delta = utils.NewVector(M)
	prev := tleft
	for i := 0; i < M; i++ {
		c.Delta.SetVec(i, nodes[i]-prev)
		prev = nodes[i]
	}
	if err = c.buildQ(); err != nil {
		return nil, err
	}
	return
}

func mapFromReference(x, a, b float64) float64 {
	return a + 0.5*(b-a)*(x+1)
}

// buildQ computes the integration weights and the Q matrix by expressing the
// Lagrange basis on the nodes in monomial form (inverse Vandermonde) and
// integrating the monomials exactly.
func (c *Collocation) buildQ() (err error) {
	var (
		M     = c.NumNodes
		nodes = c.Nodes.DataP()
		V     = utils.NewMatrix(M, M)
		inv   mat.Dense
	)
	for i := 0; i < M; i++ {
		p := 1.
		for k := 0; k < M; k++ {
			V.Set(i, k, p)
			p *= nodes[i]
		}
	}
	if err = inv.Inverse(V.M); err != nil {
		return configErrorf("Collocation", "node Vandermonde is singular: %v", err)
	}
	// antiderivative of t^k evaluated from TLeft to x
	primitive := func(j int, x float64) (s float64) {
		for k := 0; k < M; k++ {
			kp := float64(k + 1)
			s += inv.At(k, j) * (math.Pow(x, kp) - math.Pow(c.TLeft, kp)) / kp
		}
		return
	}
	c.Q = utils.NewMatrix(M+1, M+1)
	c.Weights = utils.NewVector(M)
	for j := 0; j < M; j++ {
		c.Weights.SetVec(j, primitive(j, c.TRight))
		for m := 0; m < M; m++ {
			c.Q.Set(m+1, j+1, primitive(j, nodes[m]))
		}
	}
	return
}

// QDelta builds a named sweep preconditioner:
//
//	"IE" — implicit Euler, lower triangular with node spacings
//	"EE" — explicit Euler, strictly lower triangular (for the IMEX split)
//	"LU" — transpose of the upper LU factor of Q', after Weiser
func (c *Collocation) QDelta(name string) (QD utils.Matrix, err error) {
	var (
		M = c.NumNodes
	)
	QD = utils.NewMatrix(M+1, M+1)
	switch strings.ToUpper(name) {
	case "IE":
		for m := 1; m <= M; m++ {
			for j := 1; j <= m; j++ {
				QD.Set(m, j, c.Delta.AtVec(j-1))
			}
		}
	case "EE":
		for m := 1; m <= M; m++ {
			for j := 0; j < m; j++ {
				QD.Set(m, j, c.Delta.AtVec(j))
			}
		}
	case "LU":
		var (
			lu mat.LU
			qT = utils.NewMatrix(M, M)
		)
		for i := 0; i < M; i++ {
			for j := 0; j < M; j++ {
				qT.Set(i, j, c.Q.At(j+1, i+1))
			}
		}
		lu.Factorize(qT.M)
		u := mat.NewTriDense(M, mat.Upper, nil)
		lu.UTo(u)
		for m := 1; m <= M; m++ {
			for j := 1; j <= m; j++ {
				QD.Set(m, j, u.At(j-1, m-1))
			}
		}
	default:
		return utils.Matrix{}, configErrorf("QDelta", "unknown preconditioner %q", name)
	}
	return
}

// jacobiGQ computes the Gauss quadrature points and weights for the Jacobi
// weight (1-x)^alpha (1+x)^beta on [-1,1] via the eigendecomposition of the
// symmetric tridiagonal recurrence matrix.
func jacobiGQ(alpha, beta float64, N int) (X, W utils.Vector, err error) {
	if N == 0 {
		x := []float64{-(alpha - beta) / (alpha + beta + 2.)}
		w := []float64{2.}
		return utils.NewVector(1, x), utils.NewVector(1, w), nil
	}
	var (
		h1 = make([]float64, N+1)
		d0 = make([]float64, N+1)
		d1 = make([]float64, N)
	)
	for i := 0; i < N+1; i++ {
		h1[i] = 2*float64(i) + alpha + beta
	}
	fac := -(alpha*alpha - beta*beta)
	for i := 0; i < N+1; i++ {
		val := h1[i]
		d0[i] = fac / (val * (val + 2.))
	}
	if alpha+beta < 10*2.3e-16 {
		d0[0] = 0.
	}
	for i := 0; i < N; i++ {
		ip1 := float64(i + 1)
		val := h1[i]
		d1[i] = 2. / (val + 2.)
		d1[i] *= math.Sqrt(ip1 * (ip1 + alpha + beta) * (ip1 + alpha) * (ip1 + beta) /
			((val + 1.) * (val + 3.)))
	}
	JJ := mat.NewSymBandDense(N+1, 1, nil)
	for i := 0; i < N+1; i++ {
		JJ.SetSymBand(i, i, d0[i])
		if i < N {
			JJ.SetSymBand(i, i+1, d1[i])
		}
	}
	var eig mat.EigenSym
	if ok := eig.Factorize(JJ, true); !ok {
		return utils.Vector{}, utils.Vector{},
			configErrorf("Collocation", "eigenvalue decomposition of the Jacobi matrix failed")
	}
	x := eig.Values(nil)
	X = utils.NewVector(N+1, x)
	VVr := mat.NewDense(len(x), len(x), nil)
	eig.VectorsTo(VVr)
	W = utils.NewVector(len(x), VVr.RawRowView(0)).POW(2).Scale(gamma0(alpha, beta))
	return
}

func gamma0(alpha, beta float64) float64 {
	ab1 := alpha + beta + 1.
	a1 := alpha + 1.
	b1 := beta + 1.
	return math.Gamma(a1) * math.Gamma(b1) * math.Pow(2, ab1) / ab1 / math.Gamma(ab1)
}
