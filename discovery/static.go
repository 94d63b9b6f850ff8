package discovery

import (
	"context"
	"fmt"
	"sync"
)

// Static implements Discovery using an in-memory endpoint table.
// Useful for local development and testing.
type Static struct {
	mu        sync.RWMutex
	instances map[string][]Instance // keyed by service name
}

// NewStatic creates a Static backend pre-populated with the given instances.
func NewStatic(instances ...Instance) *Static {
	s := &Static{instances: make(map[string][]Instance)}
	for _, inst := range instances {
		s.add(inst)
	}
	return s
}

func (s *Static) add(inst Instance) {
	if inst.ID == "" {
		inst.ID = fmt.Sprintf("%s-%s-%d", inst.Name, inst.Address, inst.Port)
	}
	if inst.Weight <= 0 {
		inst.Weight = 1
	}
	s.instances[inst.Name] = append(s.instances[inst.Name], inst)
}

// Register adds an instance to the table.
func (s *Static) Register(inst Instance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.add(inst)
}

// Deregister removes an instance by service name and id.
func (s *Static) Deregister(serviceName, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.instances[serviceName][:0]
	for _, inst := range s.instances[serviceName] {
		if inst.ID != id {
			kept = append(kept, inst)
		}
	}
	s.instances[serviceName] = kept
}

// Discover returns all healthy instances of the named service.
func (s *Static) Discover(_ context.Context, serviceName string) ([]Instance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all, ok := s.instances[serviceName]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrServiceNotFound, serviceName)
	}

	healthy := make([]Instance, 0, len(all))
	for _, inst := range all {
		if inst.Healthy {
			healthy = append(healthy, inst)
		}
	}
	if len(healthy) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoHealthyEndpoints, serviceName)
	}
	return healthy, nil
}

// Close releases resources. The static backend holds none.
func (s *Static) Close() error { return nil }
