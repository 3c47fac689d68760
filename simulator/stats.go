package simulator

import "time"

// Stats tracks defragmentation progress. MovedClusters is non-decreasing and
// never exceeds TotalToMove; equality is what drives the transition to
// PhaseFinished.
type Stats struct {
	MovedClusters int       `json:"movedClusters"` // clusters relocated so far
	TotalToMove   int       `json:"totalToMove"`   // fixed once Initializing completes
	StallTicks    int       `json:"stallTicks"`    // ticks with no eligible move
	Ticks         int64     `json:"ticks"`         // total ticks processed
	StartTime     time.Time `json:"startTime"`
}

// ProgressPercent returns completion as a percentage, 100 for an empty workload
func (s *Stats) ProgressPercent() float64 {
	if s.TotalToMove == 0 {
		return 100.0
	}
	return float64(s.MovedClusters) / float64(s.TotalToMove) * 100.0
}

// Elapsed returns wall time since the session started
func (s *Stats) Elapsed() time.Duration {
	return time.Since(s.StartTime)
}

// ETA estimates the remaining wall time from the observed move rate.
// Returns false before any move completes, when no rate is measurable.
func (s *Stats) ETA() (time.Duration, bool) {
	if s.MovedClusters == 0 {
		return 0, false
	}
	remaining := s.TotalToMove - s.MovedClusters
	if remaining <= 0 {
		return 0, true
	}
	rate := float64(s.MovedClusters) / s.Elapsed().Seconds()
	if rate <= 0 {
		return 0, false
	}
	return time.Duration(float64(remaining) / rate * float64(time.Second)), true
}
