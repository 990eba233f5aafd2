package draw

import "context"

// Store is the persistence boundary for the draw aggregate.
//
// Requirements:
//   - Load never fails toward the core: absent or unreadable state
//     degrades to the empty default Draw.
//   - Save writes the whole aggregate atomically; a failed Save must not
//     be observable as a partial write by a later Load.
//
// There is deliberately no finer-grained primitive: every mutation is
// "read everything, mutate in memory, write everything back".
type Store interface {
	Load(ctx context.Context) (Draw, error)
	Save(ctx context.Context, d Draw) error
	Close() error
}
