// Package selfset implements the process-wide set of "agent" process
// groups referenced by : "SELF detection requires a
// process-wide set of 'agent' process groups; model as a small
// concurrent set with lookup-on-hot-path."
package selfset

import "sync"

// Set is a concurrent set of process-group ids belonging to the
// user-space decision agent. Membership is consulted on every hook's
// hot path to decide whether an event carries the SELF flag, so Lookup
// must stay cheap; sync.Map is the right shape here since writes
// (agent registration/deregistration) are rare relative to reads.
type Set struct {
	m sync.Map // pgid uint32 -> struct{}
}

// New returns an empty Set.
func New() *Set { return &Set{} }

// Add registers pgid as belonging to the agent.
func (s *Set) Add(pgid uint32) { s.m.Store(pgid, struct{}{}) }

// Remove deregisters pgid.
func (s *Set) Remove(pgid uint32) { s.m.Delete(pgid) }

// Contains reports whether pgid belongs to a registered agent process
// group — the hot-path lookup.
func (s *Set) Contains(pgid uint32) bool {
	_, ok := s.m.Load(pgid)
	return ok
}
