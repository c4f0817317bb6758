// Package modrinthtest provides an in-memory modrinth.Registry for tests.
package modrinthtest

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"modpack-builder/modrinth"
)

// Fake serves canned search hits and version lists and counts remote calls.
type Fake struct {
	mu       sync.Mutex
	projects map[string]modrinth.Project
	versions map[string][]modrinth.Version
	failing  map[string]bool

	// BeforeCall, when set, runs at the start of every call. Tests use it to
	// hold calls open and force overlap.
	BeforeCall func(ctx context.Context)

	SearchCalls   atomic.Int64
	VersionsCalls atomic.Int64

	perKey sync.Map // key -> *atomic.Int64
}

var _ modrinth.Registry = (*Fake)(nil)

func New() *Fake {
	return &Fake{
		projects: make(map[string]modrinth.Project),
		versions: make(map[string][]modrinth.Version),
		failing:  make(map[string]bool),
	}
}

// AddProject registers a search hit for name.
func (f *Fake) AddProject(name string, p modrinth.Project) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.projects[name] = p
	return f
}

// AddMod registers a mod named title with project id id.
func (f *Fake) AddMod(title, id string) *Fake {
	return f.AddProject(title, modrinth.Project{ID: id, Slug: id, Title: title, ProjectType: "mod", Categories: []string{}})
}

// AddVersion registers a version of projectID.
func (f *Fake) AddVersion(projectID string, v modrinth.Version) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	v.ProjectID = projectID
	f.versions[projectID] = append(f.versions[projectID], v)
	return f
}

// Fail makes every call for the search name or project id return an error.
func (f *Fake) Fail(key string) *Fake {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing[key] = true
	return f
}

// Calls returns how many remote calls were made for a search name or project id.
func (f *Fake) Calls(key string) int64 {
	if c, ok := f.perKey.Load(key); ok {
		return c.(*atomic.Int64).Load()
	}
	return 0
}

func (f *Fake) count(key string) {
	c, _ := f.perKey.LoadOrStore(key, new(atomic.Int64))
	c.(*atomic.Int64).Add(1)
}

func (f *Fake) Search(ctx context.Context, name string) (*modrinth.Project, error) {
	f.SearchCalls.Add(1)
	f.count(name)
	if f.BeforeCall != nil {
		f.BeforeCall(ctx)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing[name] {
		return nil, fmt.Errorf("search %q: %w: status 500", name, modrinth.ErrUnexpectedStatus)
	}
	p, ok := f.projects[name]
	if !ok {
		return nil, fmt.Errorf("search %q: %w", name, modrinth.ErrNotFound)
	}
	return &p, nil
}

func (f *Fake) ListVersions(ctx context.Context, projectID, gameVersion, loader string) ([]modrinth.Version, error) {
	f.VersionsCalls.Add(1)
	f.count(projectID)
	if f.BeforeCall != nil {
		f.BeforeCall(ctx)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing[projectID] {
		return nil, fmt.Errorf("versions %q: %w: status 500", projectID, modrinth.ErrUnexpectedStatus)
	}
	return append([]modrinth.Version(nil), f.versions[projectID]...), nil
}

// Version builds a version for gameVersion/loader published on the given day
// of 2024, requiring the listed project ids and shipping one primary file.
func Version(id, gameVersion, loader string, day int, fileURL string, requires ...string) modrinth.Version {
	v := modrinth.Version{
		ID:           id,
		GameVersions: []string{gameVersion},
		Loaders:      []string{loader},
		PublishedAt:  time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC),
	}
	for _, dep := range requires {
		v.Dependencies = append(v.Dependencies, modrinth.Dependency{ProjectID: dep, Kind: modrinth.DependencyRequired})
	}
	if fileURL != "" {
		v.Files = []modrinth.File{{URL: fileURL, Primary: true}}
	}
	return v
}
