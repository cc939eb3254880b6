package sdc

import (
	"errors"

	"github.com/andyc101/gosdc/utils"
)

type Status uint8

const (
	Pending Status = iota
	Predicting
	Iterating
	Converged
	MaxIterReached
)

func (st Status) String() string {
	switch st {
	case Pending:
		return "PENDING"
	case Predicting:
		return "PREDICTING"
	case Iterating:
		return "ITERATING"
	case Converged:
		return "CONVERGED"
	case MaxIterReached:
		return "MAXITER_REACHED"
	}
	return "UNKNOWN"
}

// Step owns one time-slice: the full level stack (index 0 = finest), the
// transfers between adjacent levels, and the per-slice iteration state.
type Step struct {
	ID            int
	Levels        []*Level
	Transfers     []*Transfer // Transfers[i] binds Levels[i] (fine) and Levels[i+1]
	Time, Dt      float64
	Iter          int
	MaxIter       int
	RestTol       float64
	PredictSweeps int
	Status        Status
}

func NewStep(id int, levels []*Level, time, dt, restol float64, maxiter, predictSweeps int) (s *Step, err error) {
	if len(levels) == 0 {
		return nil, configErrorf("Levels", "step %d has no levels", id)
	}
	s = &Step{
		ID:            id,
		Levels:        levels,
		Time:          time,
		Dt:            dt,
		MaxIter:       maxiter,
		RestTol:       restol,
		PredictSweeps: predictSweeps,
	}
	for i, lv := range levels {
		lv.ID = i
		lv.Time = time
		lv.Dt = dt
	}
	s.Transfers = make([]*Transfer, len(levels)-1)
	for i := 0; i < len(levels)-1; i++ {
		if s.Transfers[i], err = NewTransfer(levels[i], levels[i+1]); err != nil {
			return nil, err
		}
	}
	return
}

func (s *Step) Terminal() bool {
	return s.Status == Converged || s.Status == MaxIterReached
}

func (s *Step) SetU0(u0 utils.Vector) {
	s.Levels[0].SetU0(u0)
}

func (s *Step) UEnd() utils.Vector {
	return s.Levels[0].UEnd()
}

func (s *Step) Residual() float64 {
	return s.Levels[0].Resid
}

// Predict seeds every node and level with the starting value, burns in the
// coarsest level with a few sweeps (later slices get more, so downstream
// guesses improve with pipeline depth), and carries the result back up.
func (s *Step) Predict() (err error) {
	s.Status = Predicting
	s.Levels[0].Spread()
	for _, tr := range s.Transfers {
		tr.RestrictFAS()
	}
	coarsest := s.Levels[len(s.Levels)-1]
	for k := 0; k < s.PredictSweeps+s.ID; k++ {
		if err = coarsest.Sweep.Sweep(coarsest); err != nil {
			return s.attribute(err)
		}
	}
	for i := len(s.Transfers) - 1; i >= 0; i-- {
		s.Transfers[i].Prolong()
		if i > 0 { // fine-level sweeps wait for the first real iteration
			lv := s.Levels[i]
			if err = lv.Sweep.Sweep(lv); err != nil {
				return s.attribute(err)
			}
		}
	}
	s.Levels[0].ComputeResidual()
	s.Status = Iterating
	return
}

// Iterate runs one V-cycle pass: fine sweep, FAS restriction and sweep down
// to the coarsest level, then prolongation with a corrective sweep per level
// on the way back up. The finest residual after the pass is the step's
// residual for the stopping test.
func (s *Step) Iterate() (err error) {
	if s.Terminal() {
		return nil
	}
	if s.Status == Pending {
		return configErrorf("Step", "step %d iterated before prediction", s.ID)
	}
	s.Iter++
	fine := s.Levels[0]
	if err = fine.Sweep.Sweep(fine); err != nil {
		return s.attribute(err)
	}
	for _, tr := range s.Transfers {
		tr.RestrictFAS()
		if err = tr.Coarse.Sweep.Sweep(tr.Coarse); err != nil {
			return s.attribute(err)
		}
	}
	for i := len(s.Transfers) - 1; i >= 0; i-- {
		s.Transfers[i].Prolong()
		lv := s.Levels[i]
		if err = lv.Sweep.Sweep(lv); err != nil {
			return s.attribute(err)
		}
	}
	return
}

// UpdateStatus applies the two terminal transitions. A slice may only settle
// on CONVERGED once its left neighbor is terminal, so it never freezes on a
// starting value that is still moving.
func (s *Step) UpdateStatus(leftDone bool) {
	if s.Terminal() {
		return
	}
	switch {
	case leftDone && s.Residual() <= s.RestTol:
		s.Status = Converged
	case s.Iter >= s.MaxIter:
		s.Status = MaxIterReached
	}
}

func (s *Step) attribute(err error) error {
	var sf *SolveFailure
	if errors.As(err, &sf) {
		sf.Step = s.ID
		sf.Iter = s.Iter
	}
	return err
}
