package sdc

import (
	"fmt"
	"math"
	"time"

	"github.com/andyc101/gosdc/utils"
)

// Description configures the level hierarchy every step is built from.
type Description struct {
	NumLevels     int
	NumNodes      []int // per level, finest first
	NType         NodeType
	QType         QuadType
	QDeltaName    string // "IE" or "LU", default "IE"
	IMEX          bool
	NewProblem    func(level int) (Problem, error)
	Dt            float64 // optional; checked against the run interval when set
	RestTol       float64
	MaxIter       int
	PredictSweeps int // base coarse-level burn-in count, default 1
	Hooks         []Hook
	Verbose       bool
}

func (d *Description) validate() error {
	if d.NumLevels < 1 {
		return configErrorf("NumLevels", "need at least one level, got %d", d.NumLevels)
	}
	if len(d.NumNodes) != d.NumLevels {
		return configErrorf("NumNodes", "got %d node counts for %d levels", len(d.NumNodes), d.NumLevels)
	}
	if d.NewProblem == nil {
		return configErrorf("NewProblem", "no problem factory")
	}
	if d.MaxIter < 1 {
		return configErrorf("MaxIter", "need a positive iteration cap, got %d", d.MaxIter)
	}
	if d.RestTol < 0 {
		return configErrorf("RestTol", "negative residual tolerance %g", d.RestTol)
	}
	if d.QDeltaName == "" {
		d.QDeltaName = "IE"
	}
	if d.PredictSweeps < 1 {
		d.PredictSweeps = 1
	}
	return nil
}

// Controller owns the ordered list of steps (the simulated-parallel
// processes) and drives the global iteration loop. All inter-step data
// motion goes through its communication phase; steps never touch each other
// directly.
type Controller struct {
	Desc  Description
	Steps []*Step
	Stats *Stats
	iter  int // global iteration counter
}

func NewController(desc Description, numSteps int) (c *Controller, err error) {
	if err = desc.validate(); err != nil {
		return nil, err
	}
	if numSteps < 1 {
		return nil, configErrorf("NumSteps", "need at least one time-slice, got %d", numSteps)
	}
	c = &Controller{
		Desc:  desc,
		Stats: NewStats(),
	}
	c.Steps = make([]*Step, numSteps)
	for k := 0; k < numSteps; k++ {
		levels := make([]*Level, desc.NumLevels)
		for lv := 0; lv < desc.NumLevels; lv++ {
			var (
				prob  Problem
				coll  *Collocation
				sweep Sweeper
			)
			if prob, err = desc.NewProblem(lv); err != nil {
				return nil, err
			}
			if coll, err = NewCollocation(desc.NumNodes[lv], 0, 1, desc.NType, desc.QType); err != nil {
				return nil, err
			}
			if desc.IMEX {
				sweep, err = NewIMEXSweeper(coll, desc.QDeltaName)
			} else {
				sweep, err = NewImplicitSweeper(coll, desc.QDeltaName)
			}
			if err != nil {
				return nil, err
			}
			levels[lv] = NewLevel(lv, prob, sweep, coll)
		}
		if c.Steps[k], err = NewStep(k, levels, 0, 0, desc.RestTol, desc.MaxIter, desc.PredictSweeps); err != nil {
			return nil, err
		}
	}
	return
}

// Run integrates u0 from t0 to tend across the configured time-slices and
// returns the end value together with the run's statistics log. A slice that
// exhausts its iteration budget is reported through its MAXITER_REACHED
// status and the stats log, not as an error.
func (c *Controller) Run(u0 utils.Vector, t0, tend float64) (uend utils.Vector, stats *Stats, err error) {
	start := time.Now()
	if err = c.setup(u0, t0, tend); err != nil {
		return
	}
	if err = c.predict(); err != nil {
		return
	}
	if err = c.loop(); err != nil {
		return
	}
	uend = c.Steps[len(c.Steps)-1].UEnd()
	c.Stats.Add(Entry{Type: "timing_run", Value: time.Since(start).Seconds()})
	stats = c.Stats
	for _, h := range c.Desc.Hooks {
		h.PostRun(c)
	}
	return
}

func (c *Controller) setup(u0 utils.Vector, t0, tend float64) (err error) {
	var (
		n = len(c.Steps)
	)
	if tend <= t0 {
		return configErrorf("Interval", "end time %g must be above start time %g", tend, t0)
	}
	dt := (tend - t0) / float64(n)
	if c.Desc.Dt > 0 {
		slices := (tend - t0) / c.Desc.Dt
		if math.Abs(slices-float64(n)) > 1.e-9 {
			return configErrorf("Dt",
				"interval [%g,%g) does not divide evenly into %d slices of dt=%g", t0, tend, n, c.Desc.Dt)
		}
		dt = c.Desc.Dt
	}
	if u0.Len() != c.Steps[0].Levels[0].Prob.NVars() {
		return configErrorf("InitialValue", "got %d vars, problem has %d",
			u0.Len(), c.Steps[0].Levels[0].Prob.NVars())
	}
	c.iter = 0
	for k, s := range c.Steps {
		s.Time = t0 + float64(k)*dt
		s.Dt = dt
		s.Iter = 0
		s.Status = Pending
		for _, lv := range s.Levels {
			lv.Time = s.Time
			lv.Dt = dt
			lv.NSolves = 0
		}
		s.SetU0(u0)
	}
	return
}

// predict chains the predictor left to right so each slice starts from its
// neighbor's coarse-level end value rather than the global initial value.
func (c *Controller) predict() (err error) {
	for k, s := range c.Steps {
		if k > 0 {
			s.SetU0(c.Steps[k-1].UEnd())
		}
		if err = s.Predict(); err != nil {
			return
		}
		c.record(s, "residual_predict", s.Residual())
	}
	return
}

func (c *Controller) loop() (err error) {
	var (
		n = len(c.Steps)
	)
	for {
		c.iter++
		// computation phase: the active steps are logically independent this
		// round; slice k enters the pipeline at round k+1, so its iteration
		// count only ticks once real neighbor values are flowing its way
		for k, s := range c.Steps {
			if c.iter <= k {
				continue
			}
			if err = s.Iterate(); err != nil {
				return
			}
		}
		// communication phase, left to right; a slice only receives a value
		// its neighbor has actually produced for this or a prior iteration,
		// and its residual is re-evaluated against what it just received
		for k := 0; k < n-1; k++ {
			if c.Steps[k+1].Terminal() {
				continue
			}
			if c.Steps[k].Terminal() || c.Steps[k].Iter >= c.Steps[k+1].Iter {
				c.Steps[k+1].SetU0(c.Steps[k].UEnd())
				c.Steps[k+1].Levels[0].ComputeResidual()
			}
		}
		// bookkeeping phase
		done := true
		for k, s := range c.Steps {
			if s.Terminal() {
				continue
			}
			if c.iter <= k {
				done = false
				continue
			}
			c.record(s, "residual", s.Residual())
			if c.Desc.Verbose {
				fmt.Printf("iter %3d  step %3d  t=%8.5f  residual = %10.4e  [%s]\n",
					s.Iter, s.ID, s.Time, s.Residual(), s.Status)
			}
			s.UpdateStatus(k == 0 || c.Steps[k-1].Terminal())
			if s.Terminal() {
				c.record(s, "niter", float64(s.Iter))
				for _, h := range c.Desc.Hooks {
					h.PostStep(c, s)
				}
			} else {
				done = false
			}
			for _, h := range c.Desc.Hooks {
				h.PostIteration(c, s)
			}
		}
		if done {
			return
		}
		// absolute ceiling: refuse to loop forever on a stuck slice
		if c.iter > c.Desc.MaxIter {
			for _, s := range c.Steps {
				if !s.Terminal() {
					s.Status = MaxIterReached
					c.record(s, "niter", float64(s.Iter))
				}
			}
			return
		}
	}
}

func (c *Controller) record(s *Step, typ string, val float64) {
	c.Stats.Add(Entry{
		Step:  s.ID,
		Time:  s.Time,
		Level: 0,
		Iter:  s.Iter,
		Type:  typ,
		Value: val,
	})
}

// GlobalIter reports how many global iterations the last run used.
func (c *Controller) GlobalIter() int { return c.iter }

// AllConverged reports whether every step ended in CONVERGED.
func (c *Controller) AllConverged() bool {
	for _, s := range c.Steps {
		if s.Status != Converged {
			return false
		}
	}
	return true
}
