// Package draw is the core of the gift-exchange service: the derangement
// engine, the per-participant reveal state machine, and the persistence
// boundary for the draw aggregate.
//
// A Draw is always loaded, mutated in memory, and saved wholesale; the
// Service serializes every load-mutate-save cycle behind one mutex so the
// lazy-mode name pool can never be claimed twice concurrently.
//
// Assignment strategies:
//   - eager: a complete derangement is computed at setup time.
//   - lazy: recipients are claimed from a shrinking pool at first reveal.
//
// Both strategies uphold the same invariants: nobody gifts themselves,
// no recipient is claimed twice, and a reveal is irreversible.
package draw
