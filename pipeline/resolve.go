package pipeline

import (
	"context"
	"sort"
	"sync"

	"modpack-builder/modrinth"

	"golang.org/x/sync/errgroup"
)

// VersionSource yields the newest version of a project for a target.
// *modrinth.Lookup implements it.
type VersionSource interface {
	LatestVersion(ctx context.Context, projectID, gameVersion, loader string) (modrinth.Version, bool, error)
}

// idSet is the resolver's seen-set. claim adds an id and reports whether the
// caller is the one that added it; only that caller may schedule the id, so
// each id is explored at most once no matter how many paths reach it.
type idSet struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

func newIDSet() *idSet {
	return &idSet{ids: make(map[string]struct{})}
}

func (s *idSet) claim(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

func (s *idSet) sorted() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Resolve returns the closure of seeds under "required dependency of the
// newest matching version", sorted. Every seed is in the result, including
// seeds without a matching version. Ids are explored concurrently.
func Resolve(ctx context.Context, source VersionSource, seeds []string, gameVersion, loader string) ([]string, error) {
	resolved := newIDSet()
	g, gctx := errgroup.WithContext(ctx)

	var explore func(id string)
	explore = func(id string) {
		g.Go(func() error {
			v, ok, err := source.LatestVersion(gctx, id, gameVersion, loader)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			for _, dep := range v.RequiredDependencies() {
				if resolved.claim(dep) {
					explore(dep)
				}
			}
			return nil
		})
	}

	for _, id := range seeds {
		if id != "" && resolved.claim(id) {
			explore(id)
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return resolved.sorted(), nil
}
