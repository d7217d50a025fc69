package frame

import (
	"time"

	"github.com/df07/go-sound-tracer/pkg/tracer"
)

// Stats summarizes the chains of one frame
type Stats struct {
	Rays            int           `json:"rays"`
	Records         int           `json:"records"`
	HitSource       int           `json:"hitSource"`   // Chains ending on a source
	Missed          int           `json:"missed"`      // Chains that left the scene
	BounceLimit     int           `json:"bounceLimit"` // Chains cut off by the budget
	MeanChainLength float64       `json:"meanChainLength"`
	MaxWeight       float64       `json:"maxWeight"`
	Duration        time.Duration `json:"duration"`
}

// AddChain accumulates one chain; call Finish once every chain is added
func (s *Stats) AddChain(chain tracer.Chain) {
	s.Rays++
	s.Records += len(chain.Records)
	switch chain.Termination {
	case tracer.HitSource:
		s.HitSource++
	case tracer.Missed:
		s.Missed++
	case tracer.BounceLimitReached:
		s.BounceLimit++
	}
	for _, rec := range chain.Records {
		s.MaxWeight = max(s.MaxWeight, rec.CumulativeRetained)
	}
}

// Finish computes the derived averages
func (s *Stats) Finish(duration time.Duration) {
	s.Duration = duration
	if s.Rays > 0 {
		s.MeanChainLength = float64(s.Records) / float64(s.Rays)
	}
}
