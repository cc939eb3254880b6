package sdc

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/andyc101/gosdc/utils"
	"github.com/stretchr/testify/assert"
)

// failingProblem errors out of every implicit solve.
type failingProblem struct{ decayProblem }

func (p *failingProblem) SolveImplicit(rhs utils.Vector, factor float64, guess utils.Vector, t float64) (utils.Vector, error) {
	return utils.Vector{}, errors.New("factorization broke down")
}

// countingHook tallies its callbacks.
type countingHook struct {
	BaseHook
	iters, steps, runs int
}

func (h *countingHook) PostIteration(c *Controller, s *Step) { h.iters++ }
func (h *countingHook) PostStep(c *Controller, s *Step)      { h.steps++ }
func (h *countingHook) PostRun(c *Controller)                { h.runs++ }

func decayDescription(levels int, nvars []int, lambda float64) Description {
	return Description{
		NumLevels: levels,
		NumNodes:  []int{5, 3, 2}[:levels],
		NType:     Legendre,
		QType:     RadauRight,
		NewProblem: func(level int) (Problem, error) {
			return &decayProblem{n: nvars[level], lambda: lambda}, nil
		},
		RestTol: 1.e-10,
		MaxIter: 25,
	}
}

func TestControllerSerial(t *testing.T) {
	{ // one slice, one level: plain SDC to tolerance
		c, err := NewController(decayDescription(1, []int{1}, -1), 1)
		assert.NoError(t, err)
		uend, stats, err := c.Run(utils.NewVectorConst(1, 1), 0, 0.5)
		assert.NoError(t, err)
		assert.True(t, c.AllConverged())
		assert.InDelta(t, math.Exp(-0.5), uend.AtVec(0), 1.e-9)
		assert.NotEmpty(t, FilterType(stats.Entries(), "residual"))
		assert.Len(t, FilterType(stats.Entries(), "niter"), 1)
	}
	{ // chained slices reproduce the serial decay
		c, err := NewController(decayDescription(1, []int{1}, -1), 4)
		assert.NoError(t, err)
		uend, _, err := c.Run(utils.NewVectorConst(1, 1), 0, 1)
		assert.NoError(t, err)
		assert.True(t, c.AllConverged())
		assert.InDelta(t, math.Exp(-1), uend.AtVec(0), 1.e-8)
	}
}

func TestControllerMultiLevel(t *testing.T) {
	// two levels with spatial and node coarsening, four simultaneous slices
	desc := decayDescription(2, []int{8, 4}, -1)
	c, err := NewController(desc, 4)
	assert.NoError(t, err)
	uend, stats, err := c.Run(utils.NewVectorConst(8, 1), 0, 0.4)
	assert.NoError(t, err)
	assert.True(t, c.AllConverged())
	exact := math.Exp(-0.4)
	for i := 0; i < 8; i++ {
		assert.InDelta(t, exact, uend.AtVec(i), 1.e-8)
	}
	niter := SortByTime(FilterType(stats.Entries(), "niter"))
	assert.Len(t, niter, 4)
	for _, e := range niter {
		fmt.Printf("step %d converged after %v iterations\n", e.Step, e.Value)
		assert.True(t, e.Value <= float64(desc.MaxIter))
	}
	assert.True(t, c.GlobalIter() <= desc.MaxIter)
}

func TestControllerConvergedState(t *testing.T) {
	// a slice that reports CONVERGED must still satisfy its tolerance against
	// the starting value it ends up with, and the chain of hand-offs must be
	// bitwise consistent
	desc := decayDescription(2, []int{8, 4}, -1)
	c, err := NewController(desc, 4)
	assert.NoError(t, err)
	_, _, err = c.Run(utils.NewVectorConst(8, 1), 0, 0.4)
	assert.NoError(t, err)
	assert.True(t, c.AllConverged())
	for k, s := range c.Steps {
		if k > 0 {
			assert.Equal(t, c.Steps[k-1].UEnd().DataP(), s.Levels[0].U[0].DataP())
		}
		s.Levels[0].ComputeResidual()
		assert.True(t, s.Residual() <= desc.RestTol,
			"step %d residual %v against final starting value", k, s.Residual())
	}
}

// causalityHook snapshots, after every communication phase, what step 1
// received against what step 0 is holding.
type causalityHook struct {
	BaseHook
	got, want [][]float64
}

func (h *causalityHook) PostIteration(c *Controller, s *Step) {
	if s.ID != 1 {
		return
	}
	h.got = append(h.got, append([]float64{}, s.Levels[0].U[0].DataP()...))
	h.want = append(h.want, append([]float64{}, c.Steps[0].UEnd().DataP()...))
}

func TestControllerCausality(t *testing.T) {
	// a slice's starting value after each communication is its left
	// neighbor's current end value, bitwise
	h := &causalityHook{}
	desc := decayDescription(1, []int{3}, -1)
	desc.RestTol = 0
	desc.MaxIter = 2
	desc.Hooks = []Hook{h}
	c, err := NewController(desc, 3)
	assert.NoError(t, err)
	_, _, err = c.Run(utils.NewVectorConst(3, 1), 0, 0.3)
	assert.NoError(t, err)
	assert.True(t, len(h.got) >= 2)
	for i := range h.got {
		assert.Equal(t, h.want[i], h.got[i])
	}
}

func TestControllerPipelineBalance(t *testing.T) {
	// staggered pipeline entry plus the predictor's depth-dependent burn-in
	// keeps later slices from needing more iterations than earlier ones
	desc := decayDescription(2, []int{32, 16}, -1)
	c, err := NewController(desc, 2)
	assert.NoError(t, err)
	_, stats, err := c.Run(utils.NewVectorConst(32, 1), 0, 0.2)
	assert.NoError(t, err)
	assert.True(t, c.AllConverged())
	niter := SortByTime(FilterType(stats.Entries(), "niter"))
	assert.Len(t, niter, 2)
	assert.True(t, niter[1].Value <= niter[0].Value,
		"step 1 took %v iterations, step 0 took %v", niter[1].Value, niter[0].Value)
}

func TestControllerMaxIter(t *testing.T) {
	// an unreachable tolerance is reported through the step status, not as an
	// error
	desc := decayDescription(1, []int{1}, -1)
	desc.RestTol = 0
	desc.MaxIter = 3
	c, err := NewController(desc, 2)
	assert.NoError(t, err)
	_, stats, err := c.Run(utils.NewVectorConst(1, 1), 0, 0.2)
	assert.NoError(t, err)
	assert.False(t, c.AllConverged())
	for _, s := range c.Steps {
		assert.Equal(t, MaxIterReached, s.Status)
		assert.True(t, s.Iter <= desc.MaxIter+1)
	}
	assert.Len(t, FilterType(stats.Entries(), "niter"), 2)
}

func TestControllerConfigErrors(t *testing.T) {
	var ce *ConfigurationError
	{ // mismatched node counts
		desc := decayDescription(2, []int{4, 2}, -1)
		desc.NumNodes = []int{3}
		_, err := NewController(desc, 1)
		assert.ErrorAs(t, err, &ce)
	}
	{ // no slices
		_, err := NewController(decayDescription(1, []int{1}, -1), 0)
		assert.ErrorAs(t, err, &ce)
	}
	{ // fixed dt that does not tile the interval
		desc := decayDescription(1, []int{1}, -1)
		desc.Dt = 0.3
		c, err := NewController(desc, 2)
		assert.NoError(t, err)
		_, _, err = c.Run(utils.NewVectorConst(1, 1), 0, 1)
		assert.ErrorAs(t, err, &ce)
	}
	{ // empty interval
		c, err := NewController(decayDescription(1, []int{1}, -1), 1)
		assert.NoError(t, err)
		_, _, err = c.Run(utils.NewVectorConst(1, 1), 1, 1)
		assert.ErrorAs(t, err, &ce)
	}
	{ // initial value of the wrong size
		c, err := NewController(decayDescription(1, []int{2}, -1), 1)
		assert.NoError(t, err)
		_, _, err = c.Run(utils.NewVectorConst(3, 1), 0, 1)
		assert.ErrorAs(t, err, &ce)
	}
}

func TestControllerSolveFailure(t *testing.T) {
	desc := decayDescription(1, []int{1}, -1)
	desc.NewProblem = func(level int) (Problem, error) {
		return &failingProblem{decayProblem{n: 1, lambda: -1}}, nil
	}
	c, err := NewController(desc, 3)
	assert.NoError(t, err)
	_, _, err = c.Run(utils.NewVectorConst(1, 1), 0, 0.3)
	var sf *SolveFailure
	assert.ErrorAs(t, err, &sf)
	assert.Equal(t, 0, sf.Step)
	assert.True(t, sf.Node >= 1)
}

func TestControllerHooks(t *testing.T) {
	h := &countingHook{}
	desc := decayDescription(1, []int{3}, -1)
	desc.Hooks = []Hook{h}
	c, err := NewController(desc, 2)
	assert.NoError(t, err)
	_, _, err = c.Run(utils.NewVectorConst(3, 1), 0, 0.2)
	assert.NoError(t, err)
	assert.Equal(t, 2, h.steps)
	assert.Equal(t, 1, h.runs)
	assert.True(t, h.iters >= h.steps)
}

func TestStatsFilters(t *testing.T) {
	st := NewStats()
	st.Add(Entry{Step: 1, Time: 0.1, Iter: 2, Type: "residual", Value: 1})
	st.Add(Entry{Step: 0, Time: 0.0, Iter: 1, Type: "residual", Value: 2})
	st.Add(Entry{Step: 0, Time: 0.0, Iter: 1, Type: "niter", Value: 3})
	res := FilterType(st.Entries(), "residual")
	assert.Len(t, res, 2)
	byTime := SortByTime(res)
	assert.Equal(t, 0, byTime[0].Step)
	byStep := SortByStep(st.Entries())
	assert.Equal(t, 0, byStep[0].Step)
	only := Filter(st.Entries(), func(e Entry) bool { return e.Step == 1 })
	assert.Len(t, only, 1)
}
