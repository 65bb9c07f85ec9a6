package generator

import (
	"math"
	"math/rand"

	"github.com/meshpulse/meshpulse/pkg/types"
)

// Generator produces synthetic telemetry on demand. Implementations must
// be side-effect-free and callable at arbitrary frequency.
type Generator interface {
	GenerateMetrics() types.MetricsReading
	RandomStatus() types.Status
}

// Synthetic is the default generator backed by a pseudo-random source.
type Synthetic struct {
	rng *rand.Rand
}

// New creates a generator seeded from the given value. The same seed
// yields the same sample sequence.
func New(seed int64) *Synthetic {
	return &Synthetic{rng: rand.New(rand.NewSource(seed))}
}

// NewWithRand creates a generator using the supplied random source.
func NewWithRand(rng *rand.Rand) *Synthetic {
	return &Synthetic{rng: rng}
}

// GenerateMetrics returns one synthetic metrics sample with
// rps in [300,1000), latency in [50,250) and error rate in [0,5)
// rounded to two decimals.
func (g *Synthetic) GenerateMetrics() types.MetricsReading {
	return types.MetricsReading{
		RPS:       g.rng.Intn(1000-300) + 300,
		Latency:   g.rng.Intn(250-50) + 50,
		ErrorRate: math.Round(g.rng.Float64()*5*100) / 100,
	}
}

// RandomStatus returns a status drawn uniformly from the known set.
func (g *Synthetic) RandomStatus() types.Status {
	return types.AllStatuses[g.rng.Intn(len(types.AllStatuses))]
}
