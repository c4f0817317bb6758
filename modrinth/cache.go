package modrinth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"modpack-builder/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Registry is the remote surface the lookup layer memoizes. *Client implements it.
type Registry interface {
	Search(ctx context.Context, name string) (*Project, error)
	ListVersions(ctx context.Context, projectID, gameVersion, loader string) ([]Version, error)
}

var _ Registry = (*Client)(nil)

type searchResult struct {
	project Project
	found   bool
}

// Cache memoizes search results by name and filtered version lists by
// (project, game version, loader). A Cache belongs to a single build; create
// a fresh one per run and drop it afterwards. Negative results are stored too.
type Cache struct {
	mu       sync.Mutex
	searches map[string]searchResult
	versions map[string][]Version

	searchGroup  singleflight.Group
	versionGroup singleflight.Group
}

func NewCache() *Cache {
	return &Cache{
		searches: make(map[string]searchResult),
		versions: make(map[string][]Version),
	}
}

func versionKey(projectID, gameVersion, loader string) string {
	return fmt.Sprintf("%s:%s:%s", projectID, gameVersion, strings.ToLower(loader))
}

// memoize returns table[key], filling it through group so concurrent callers
// for the same key share one fetch. A fetch error is returned to every waiter
// and nothing is stored. When the shared fetch was cut short by the leading
// caller's context, waiters whose own ctx is still live fetch again.
func memoize[V any](ctx context.Context, mu *sync.Mutex, group *singleflight.Group, table map[string]V, key string, fetch func() (V, error)) (V, error) {
	for {
		mu.Lock()
		v, ok := table[key]
		mu.Unlock()
		if ok {
			return v, nil
		}

		res, err, _ := group.Do(key, func() (any, error) {
			mu.Lock()
			v, ok := table[key]
			mu.Unlock()
			if ok {
				return v, nil
			}
			v, err := fetch()
			if err != nil {
				return v, err
			}
			mu.Lock()
			table[key] = v
			mu.Unlock()
			return v, nil
		})
		if err == nil {
			return res.(V), nil
		}
		if isContextErr(err) && ctx.Err() == nil {
			continue
		}
		var zero V
		return zero, err
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// Lookup is the cached, failure-tolerant view of a Registry used by the
// build pipeline. Registry failures are logged and read as "no result";
// only context cancellation is reported to the caller.
type Lookup struct {
	registry Registry
	cache    *Cache
	log      *zap.SugaredLogger
}

func NewLookup(registry Registry, cache *Cache, log *zap.SugaredLogger) *Lookup {
	if cache == nil {
		cache = NewCache()
	}
	return &Lookup{registry: registry, cache: cache, log: logger.OrNop(log)}
}

// Search returns the top search hit for name.
func (l *Lookup) Search(ctx context.Context, name string) (Project, bool, error) {
	res, err := memoize(ctx, &l.cache.mu, &l.cache.searchGroup, l.cache.searches, name, func() (searchResult, error) {
		p, err := l.registry.Search(ctx, name)
		switch {
		case err == nil:
			return searchResult{project: *p, found: true}, nil
		case ctx.Err() != nil:
			return searchResult{}, ctx.Err()
		case errors.Is(err, ErrNotFound):
			l.log.Infow("No search hit", zap.String("name", name))
		default:
			l.log.Warnw("Search failed, treating as not found", zap.String("name", name), zap.Error(err))
		}
		return searchResult{}, nil
	})
	if err != nil {
		return Project{}, false, err
	}
	return res.project, res.found, nil
}

// Versions returns the versions of projectID supporting gameVersion and
// loader, newest first.
func (l *Lookup) Versions(ctx context.Context, projectID, gameVersion, loader string) ([]Version, error) {
	key := versionKey(projectID, gameVersion, loader)
	return memoize(ctx, &l.cache.mu, &l.cache.versionGroup, l.cache.versions, key, func() ([]Version, error) {
		versions, err := l.registry.ListVersions(ctx, projectID, gameVersion, loader)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			l.log.Warnw("Version lookup failed, treating as empty",
				zap.String("project_id", projectID),
				zap.Error(err),
			)
			return []Version{}, nil
		}
		return FilterVersions(versions, gameVersion, loader), nil
	})
}

// LatestVersion returns the newest version of projectID matching the target.
func (l *Lookup) LatestVersion(ctx context.Context, projectID, gameVersion, loader string) (Version, bool, error) {
	versions, err := l.Versions(ctx, projectID, gameVersion, loader)
	if err != nil {
		return Version{}, false, err
	}
	v, ok := LatestVersion(versions, gameVersion, loader)
	return v, ok, nil
}
