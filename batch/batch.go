package batch

import (
	"context"
	"sync"

	"coverTonic/artwork"
	"coverTonic/utils"

	"golang.org/x/sync/errgroup"
)

const DefaultConcurrency = 8

// Resolver is the part of artwork.ImageCache a batch needs.
type Resolver interface {
	Lookup(ctx context.Context, class artwork.EntityClass, identity, displayName string) artwork.Result
}

// Outcome is the result for one entity of a batch.
type Outcome struct {
	Index  int
	Entity utils.Entity
	Result artwork.Result
}

// Summary tallies a finished batch by tier.
type Summary struct {
	Total   int
	ByTier  map[artwork.Tier]int
	Missing int
}

func (s *Summary) add(r artwork.Result) {
	if s.ByTier == nil {
		s.ByTier = make(map[artwork.Tier]int)
	}
	s.Total++
	if r.Image == nil {
		s.Missing++
		return
	}
	s.ByTier[r.Tier]++
}

// Run resolves every entity with at most concurrency lookups at a time.
// onOutcome, if set, is called once per entity from the worker goroutines.
// Duplicate entities in one batch are coalesced by the cache.
func Run(ctx context.Context, r Resolver, entities []utils.Entity, concurrency int, onOutcome func(Outcome)) Summary {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	var (
		mu      sync.Mutex
		summary Summary
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, e := range entities {
		i, e := i, e
		g.Go(func() error {
			res := r.Lookup(gctx, e.Class, e.ID, e.Name)
			mu.Lock()
			summary.add(res)
			mu.Unlock()
			if onOutcome != nil {
				onOutcome(Outcome{Index: i, Entity: e, Result: res})
			}
			return nil
		})
	}
	_ = g.Wait()

	if summary.ByTier == nil {
		summary.ByTier = make(map[artwork.Tier]int)
	}
	return summary
}
