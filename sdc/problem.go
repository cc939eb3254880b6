package sdc

import "github.com/andyc101/gosdc/utils"

// Problem is the capability every pluggable problem type provides. The state
// space is utils.Vector; EvalRHS splits the right-hand side into an
// explicitly evaluated and an implicitly solved part. Fully implicit problems
// return a zero vector for the explicit part.
type Problem interface {
	NVars() int
	EvalRHS(u utils.Vector, t float64) (expl, impl utils.Vector)
	// SolveImplicit solves (I - factor*Operator)*u = rhs starting from guess.
	SolveImplicit(rhs utils.Vector, factor float64, guess utils.Vector, t float64) (utils.Vector, error)
}

// ReferenceProblem additionally knows an exact or reference solution, used
// only for error reporting.
type ReferenceProblem interface {
	Problem
	Exact(t float64) utils.Vector
}

// Linearizable is the capability the Newton-coupled controller needs: the
// problem can freeze its Jacobian at a state and expose the linearized
// operator for the inner linear iterations.
type Linearizable interface {
	Problem
	Linearize(u utils.Vector)
	ApplyJacobian(u utils.Vector) utils.Vector
	// SolveJacobian solves (I - factor*J)*x = rhs for the frozen Jacobian.
	SolveJacobian(rhs utils.Vector, factor float64) (utils.Vector, error)
}
