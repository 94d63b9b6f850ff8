package discovery

import (
	"context"
	"math/rand"
	"sync"
	"time"
)

// Strategy defines how to select one endpoint among several.
type Strategy string

const (
	StrategyRandom     Strategy = "random"
	StrategyRoundRobin Strategy = "round_robin"
	StrategyWeighted   Strategy = "weighted"
)

// Selector picks one instance per request according to a load-balancing
// strategy, keeping a per-service round-robin cursor.
type Selector struct {
	discovery Discovery
	strategy  Strategy

	mu      sync.Mutex
	r       *rand.Rand
	rrIndex map[string]int
}

// NewSelector creates a Selector over the given Discovery backend.
func NewSelector(disc Discovery, strategy Strategy) *Selector {
	if strategy == "" {
		strategy = StrategyRoundRobin
	}
	return &Selector{
		discovery: disc,
		strategy:  strategy,
		r:         rand.New(rand.NewSource(time.Now().UnixNano())),
		rrIndex:   make(map[string]int),
	}
}

// Select returns a single instance of the named service.
func (s *Selector) Select(ctx context.Context, serviceName string) (Instance, error) {
	instances, err := s.discovery.Discover(ctx, serviceName)
	if err != nil {
		return Instance{}, err
	}
	if len(instances) == 0 {
		return Instance{}, ErrNoHealthyEndpoints
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.strategy {
	case StrategyRoundRobin:
		idx := s.rrIndex[serviceName]
		inst := instances[idx%len(instances)]
		s.rrIndex[serviceName] = (idx + 1) % len(instances)
		return inst, nil

	case StrategyWeighted:
		return s.selectWeighted(instances), nil

	default:
		return instances[s.r.Intn(len(instances))], nil
	}
}

func (s *Selector) selectWeighted(instances []Instance) Instance {
	total := 0
	for _, inst := range instances {
		total += inst.Weight
	}
	if total <= 0 {
		return instances[s.r.Intn(len(instances))]
	}
	n := s.r.Intn(total)
	for _, inst := range instances {
		n -= inst.Weight
		if n < 0 {
			return inst
		}
	}
	return instances[len(instances)-1]
}
