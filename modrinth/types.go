package modrinth

import (
	"strings"
	"time"
)

// DependencyKind is the registry's dependency_type tag.
type DependencyKind string

const (
	DependencyRequired     DependencyKind = "required"
	DependencyOptional     DependencyKind = "optional"
	DependencyIncompatible DependencyKind = "incompatible"
	DependencyEmbedded     DependencyKind = "embedded"
)

// Project is a registry search hit.
type Project struct {
	ID          string
	Slug        string
	Title       string
	ProjectType string // e.g., "mod", "resourcepack", "shader"
	Downloads   int64
	Categories  []string
	Color       int
}

// IsMod reports whether the project is a mod, as opposed to a resource pack,
// shader, modpack or plugin.
func (p Project) IsMod() bool {
	return p.ProjectType == "mod"
}

// Dependency references another project. ProjectID is empty for dependencies
// that only name a version or an external file.
type Dependency struct {
	ProjectID string
	Kind      DependencyKind
}

// File is one distributable file of a version.
type File struct {
	URL      string
	Filename string
	Primary  bool
	Size     int64
	Hashes   map[string]string // e.g., {"sha512": "...", "sha1": "..."}
}

// Version is one published release of a project.
type Version struct {
	ID            string
	ProjectID     string
	Name          string
	VersionNumber string
	GameVersions  []string
	Loaders       []string
	PublishedAt   time.Time
	Dependencies  []Dependency
	Files         []File
}

// RequiredDependencies returns the project ids this version requires, in
// declaration order. Dependencies without a project id are ignored.
func (v Version) RequiredDependencies() []string {
	var ids []string
	for _, d := range v.Dependencies {
		if d.Kind == DependencyRequired && d.ProjectID != "" {
			ids = append(ids, d.ProjectID)
		}
	}
	return ids
}

// --- Wire formats ---

type searchResponse struct {
	Hits []searchHit `json:"hits"`
}

type searchHit struct {
	ProjectID   string   `json:"project_id"`
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	ProjectType string   `json:"project_type"`
	Downloads   int64    `json:"downloads"`
	Categories  []string `json:"categories"`
	Color       *int     `json:"color"`
}

func (h searchHit) project() Project {
	p := Project{
		ID:          h.ProjectID,
		Slug:        h.Slug,
		Title:       h.Title,
		ProjectType: h.ProjectType,
		Downloads:   h.Downloads,
		Categories:  h.Categories,
	}
	if h.Color != nil {
		p.Color = *h.Color
	}
	if p.Categories == nil {
		p.Categories = []string{}
	}
	return p
}

type versionWire struct {
	ID            string           `json:"id"`
	ProjectID     string           `json:"project_id"`
	Name          string           `json:"name"`
	VersionNumber string           `json:"version_number"`
	GameVersions  []string         `json:"game_versions"`
	Loaders       []string         `json:"loaders"`
	DatePublished string           `json:"date_published"`
	Dependencies  []dependencyWire `json:"dependencies"`
	Files         []fileWire       `json:"files"`
}

type dependencyWire struct {
	ProjectID      *string `json:"project_id"`
	VersionID      *string `json:"version_id"`
	FileName       *string `json:"file_name"`
	DependencyType string  `json:"dependency_type"`
}

type fileWire struct {
	URL      string            `json:"url"`
	Filename string            `json:"filename"`
	Primary  *bool             `json:"primary"`
	Size     int64             `json:"size"`
	Hashes   map[string]string `json:"hashes"`
}

// version converts the wire form. A missing or malformed date_published
// yields the zero time, which sorts after every dated version. Files without
// a URL are dropped, and an absent primary flag means false.
func (w versionWire) version() Version {
	v := Version{
		ID:            w.ID,
		ProjectID:     w.ProjectID,
		Name:          w.Name,
		VersionNumber: w.VersionNumber,
		GameVersions:  w.GameVersions,
		Loaders:       make([]string, 0, len(w.Loaders)),
	}
	for _, l := range w.Loaders {
		v.Loaders = append(v.Loaders, strings.ToLower(l))
	}
	if t, err := time.Parse(time.RFC3339Nano, w.DatePublished); err == nil {
		v.PublishedAt = t
	}
	for _, d := range w.Dependencies {
		dep := Dependency{Kind: DependencyKind(d.DependencyType)}
		if d.ProjectID != nil {
			dep.ProjectID = *d.ProjectID
		}
		v.Dependencies = append(v.Dependencies, dep)
	}
	for _, f := range w.Files {
		if f.URL == "" {
			continue
		}
		v.Files = append(v.Files, File{
			URL:      f.URL,
			Filename: f.Filename,
			Primary:  f.Primary != nil && *f.Primary,
			Size:     f.Size,
			Hashes:   f.Hashes,
		})
	}
	return v
}
