package sdc

import "fmt"

// ConfigurationError reports invalid construction-time parameters. It is
// always fatal and raised before any iteration starts.
type ConfigurationError struct {
	Param string
	Msg   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s: %s", e.Param, e.Msg)
}

func configErrorf(param, format string, args ...interface{}) error {
	return &ConfigurationError{Param: param, Msg: fmt.Sprintf(format, args...)}
}

// SolveFailure wraps an error from a problem's implicit solve, attributed to
// the (step, level, node, iteration) that triggered it. Step and Iter are
// filled in as the failure propagates upward.
type SolveFailure struct {
	Step, Level, Node, Iter int
	Err                     error
}

func (e *SolveFailure) Error() string {
	return fmt.Sprintf("implicit solve failed at step %d, level %d, node %d, iteration %d: %v",
		e.Step, e.Level, e.Node, e.Iter, e.Err)
}

func (e *SolveFailure) Unwrap() error { return e.Err }

// TransferError reports an incompatible level pair at hierarchy construction.
type TransferError struct {
	Fine, Coarse int // spatial sizes of the offending pair
	Msg          string
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("transfer error between sizes %d and %d: %s", e.Fine, e.Coarse, e.Msg)
}
