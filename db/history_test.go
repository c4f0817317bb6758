package db

import (
	"path/filepath"
	"testing"

	"modpack-builder/pipeline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult() (pipeline.Request, *pipeline.Result) {
	req := pipeline.Request{Seeds: []string{"Sodium", "Nope"}, Theme: "fast pack", GameVersion: "1.20.1", Loader: "fabric"}
	res := &pipeline.Result{
		Plan: pipeline.Plan{
			Mods:     []pipeline.ModRecord{{Name: "Sodium", Slug: "sodium", ProjectID: "sodium-id", Color: 0x00ff00}},
			Resolved: []string{"fabric-api", "sodium-id"},
			Downloads: []pipeline.Download{
				{ProjectID: "sodium-id", URL: "https://cdn/sodium-0.5.jar"},
				{ProjectID: "fabric-api", URL: "https://cdn/fabric-api.jar"},
			},
			Skipped: []pipeline.Skip{{Stage: pipeline.StageEnrich, Name: "Nope", Reason: "no search result"}},
		},
		ArchivePath: "/out/minecraft_1.20.1_fabric_modpack.zip",
	}
	return req, res
}

func TestNewBuild(t *testing.T) {
	b := NewBuild(sampleResult())

	assert.Equal(t, "minecraft_1.20.1_fabric_modpack.zip", b.Name)
	require.Len(t, b.Mods, 2)
	assert.Equal(t, "sodium-id", b.Mods[0].ProjectID)
	assert.False(t, b.Mods[0].Dependency)
	assert.Equal(t, "sodium-0.5.jar", b.Mods[0].FileName)
	assert.Equal(t, "fabric-api", b.Mods[1].ProjectID)
	assert.True(t, b.Mods[1].Dependency)
	assert.Equal(t, "fabric-api.jar", b.Mods[1].FileName)
	require.Len(t, b.Skipped, 1)
	assert.Equal(t, "enrich", b.Skipped[0].Stage)
}

func TestRecordAndListBuilds(t *testing.T) {
	conn, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)

	first := NewBuild(sampleResult())
	require.NoError(t, RecordBuild(conn, &first))

	req, res := sampleResult()
	req.Loader = "quilt"
	second := NewBuild(req, res)
	require.NoError(t, RecordBuild(conn, &second))

	builds, err := ListBuilds(conn, 0)
	require.NoError(t, err)
	require.Len(t, builds, 2)
	assert.Equal(t, "quilt", builds[0].Loader, "newest first")
	assert.Len(t, builds[0].Mods, 2)
	assert.Len(t, builds[0].Skipped, 1)

	limited, err := ListBuilds(conn, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}
