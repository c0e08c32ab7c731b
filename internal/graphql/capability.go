package graphql

import "sync/atomic"

// Capability tracks whether one optional schema feature (a field, argument,
// or directive newer backends have and older ones lack) is still worth
// requesting. It starts enabled and latches off permanently the first time
// the backend rejects it; there is no re-enable, so each process pays the
// discovery cost at most once per feature.
type Capability struct {
	name     string
	disabled atomic.Bool
}

// NewCapability returns an enabled capability with the given schema-facing
// name (the field or argument as it appears in queries).
func NewCapability(name string) *Capability {
	return &Capability{name: name}
}

func (c *Capability) Name() string { return c.name }

func (c *Capability) Enabled() bool { return !c.disabled.Load() }

// Disable latches the capability off. Safe for concurrent use.
func (c *Capability) Disable() { c.disabled.Store(true) }

// CapabilitySet groups the capabilities of one backend domain.
type CapabilitySet struct {
	caps []*Capability
}

func NewCapabilitySet(caps ...*Capability) *CapabilitySet {
	return &CapabilitySet{caps: caps}
}

// ByName returns the capability with the given schema-facing name, or nil.
func (s *CapabilitySet) ByName(name string) *Capability {
	for _, c := range s.caps {
		if c.name == name {
			return c
		}
	}
	return nil
}

// All returns the capabilities in registration order.
func (s *CapabilitySet) All() []*Capability {
	return s.caps
}
