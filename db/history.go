package db

import (
	"path/filepath"

	"modpack-builder/pipeline"

	"gorm.io/gorm"
)

// NewBuild turns a finished pipeline run into its history record.
func NewBuild(req pipeline.Request, res *pipeline.Result) Build {
	b := Build{
		Name:        filepath.Base(res.ArchivePath),
		GameVersion: req.GameVersion,
		Loader:      req.Loader,
		Theme:       req.Theme,
		ArchivePath: res.ArchivePath,
	}

	files := make(map[string]pipeline.Download, len(res.Downloads))
	for _, d := range res.Downloads {
		files[d.ProjectID] = d
	}
	fileFor := func(projectID string) (string, string) {
		d, ok := files[projectID]
		if !ok {
			return "", ""
		}
		name, err := pipeline.EntryName(d.URL)
		if err != nil {
			return "", d.URL
		}
		return name, d.URL
	}

	for _, m := range res.Mods {
		name, url := fileFor(m.ProjectID)
		b.Mods = append(b.Mods, BuildMod{
			ProjectID:       m.ProjectID,
			Slug:            m.Slug,
			Title:           m.Name,
			Color:           m.Color,
			RequestedByUser: m.RequestedByUser,
			FileName:        name,
			URL:             url,
		})
	}
	for _, id := range res.Dependencies() {
		name, url := fileFor(id)
		b.Mods = append(b.Mods, BuildMod{ProjectID: id, Dependency: true, FileName: name, URL: url})
	}
	for _, s := range res.Skipped {
		b.Skipped = append(b.Skipped, SkippedMod{
			Stage:     string(s.Stage),
			Name:      s.Name,
			ProjectID: s.ProjectID,
			Reason:    s.Reason,
		})
	}
	return b
}

// RecordBuild stores a build with its mods and skips.
func RecordBuild(conn *gorm.DB, b *Build) error {
	return conn.Create(b).Error
}

// ListBuilds returns the most recent builds first, with mods and skips loaded.
func ListBuilds(conn *gorm.DB, limit int) ([]Build, error) {
	var builds []Build
	q := conn.Preload("Mods").Preload("Skipped").Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&builds).Error; err != nil {
		return nil, err
	}
	return builds, nil
}
