package sdc

// Hook receives controller callbacks during a run. Implementations must not
// mutate step state; they exist for logging, plotting and custom statistics.
type Hook interface {
	PostIteration(c *Controller, s *Step)
	PostStep(c *Controller, s *Step)
	PostRun(c *Controller)
}

// BaseHook is a no-op Hook for embedding.
type BaseHook struct{}

func (BaseHook) PostIteration(*Controller, *Step) {}
func (BaseHook) PostStep(*Controller, *Step)      {}
func (BaseHook) PostRun(*Controller)              {}
