package db

import (
	"gorm.io/gorm"
)

// Build is one produced modpack archive.
type Build struct {
	gorm.Model
	Name        string // archive file name
	GameVersion string
	Loader      string
	Theme       string
	ArchivePath string
	Mods        []BuildMod   `gorm:"constraint:OnDelete:CASCADE"`
	Skipped     []SkippedMod `gorm:"constraint:OnDelete:CASCADE"`
}

// BuildMod is a project included in a build, either seeded or pulled in as a dependency.
type BuildMod struct {
	gorm.Model
	BuildID         uint   `gorm:"index"`
	ProjectID       string // Modrinth Project ID
	Slug            string
	Title           string
	Color           int
	RequestedByUser bool
	Dependency      bool   // added by dependency resolution rather than the seed list
	FileName        string // archive entry, empty when no file was selected
	URL             string
}

// SkippedMod is a seed or project that dropped out of a build.
type SkippedMod struct {
	gorm.Model
	BuildID   uint `gorm:"index"`
	Stage     string
	Name      string
	ProjectID string
	Reason    string
}
