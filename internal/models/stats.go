package models

// Counters is one set of run counters.
type Counters struct {
	Processed         int
	Added             int
	NotFound          int
	SkippedDuplicates int
}

func (c *Counters) add(o Counters) {
	c.Processed += o.Processed
	c.Added += o.Added
	c.NotFound += o.NotFound
	c.SkippedDuplicates += o.SkippedDuplicates
}

// RunStats keeps [Counters] per destination; the global figures are their sum.
type RunStats struct {
	byDestination map[Destination]*Counters
}

// NewRunStats creates zeroed stats.
func NewRunStats() *RunStats {
	return &RunStats{byDestination: make(map[Destination]*Counters)}
}

func (s *RunStats) get(d Destination) *Counters {
	c, ok := s.byDestination[d]
	if !ok {
		c = &Counters{}
		s.byDestination[d] = c
	}
	return c
}

func (s *RunStats) RecordProcessed(d Destination)    { s.get(d).Processed++ }
func (s *RunStats) RecordNotFound(d Destination)     { s.get(d).NotFound++ }
func (s *RunStats) RecordSkipped(d Destination)      { s.get(d).SkippedDuplicates++ }
func (s *RunStats) RecordAdded(d Destination, n int) { s.get(d).Added += n }

// For returns a copy of the counters for d.
func (s *RunStats) For(d Destination) Counters {
	if c, ok := s.byDestination[d]; ok {
		return *c
	}
	return Counters{}
}

// Total returns the global counters.
func (s *RunStats) Total() Counters {
	var total Counters
	for _, c := range s.byDestination {
		total.add(*c)
	}
	return total
}
