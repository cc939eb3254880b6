package sdc

import "sort"

// Entry is one appended statistics record. Entries are never mutated after
// Add; callers extract what they need with Filter and the sort helpers.
type Entry struct {
	Step  int
	Time  float64
	Level int
	Iter  int
	Type  string
	Value float64
}

// Stats is the append-only log a run produces.
type Stats struct {
	entries []Entry
}

func NewStats() *Stats { return &Stats{} }

func (s *Stats) Add(e Entry) {
	s.entries = append(s.entries, e)
}

func (s *Stats) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Filter returns the entries matching pred, preserving append order.
func Filter(entries []Entry, pred func(Entry) bool) (out []Entry) {
	for _, e := range entries {
		if pred(e) {
			out = append(out, e)
		}
	}
	return
}

// FilterType keeps entries of one metric type.
func FilterType(entries []Entry, typ string) []Entry {
	return Filter(entries, func(e Entry) bool { return e.Type == typ })
}

// SortByTime orders a copy of entries by slice start time, then step id.
func SortByTime(entries []Entry) (out []Entry) {
	out = make([]Entry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Time != out[j].Time {
			return out[i].Time < out[j].Time
		}
		return out[i].Step < out[j].Step
	})
	return
}

// SortByStep orders a copy of entries by step id, then iteration.
func SortByStep(entries []Entry) (out []Entry) {
	out = make([]Entry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Step != out[j].Step {
			return out[i].Step < out[j].Step
		}
		return out[i].Iter < out[j].Iter
	})
	return
}
