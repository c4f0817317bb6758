package catalog

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoaders(t *testing.T) {
	assert.Equal(t, []string{"forge", "fabric", "neoforge", "quilt"}, Loaders())

	l := Loaders()
	l[0] = "mutated"
	assert.Equal(t, "forge", Loaders()[0], "Loaders returns a copy")
}

func TestValidateLoader(t *testing.T) {
	for _, l := range []string{"forge", "Fabric", "NEOFORGE", "quilt"} {
		assert.NoError(t, ValidateLoader(l), l)
	}
	for _, l := range []string{"", "rift", "liteloader"} {
		assert.ErrorIs(t, ValidateLoader(l), ErrInvalidLoader, l)
	}
}

func TestValidateGameVersion(t *testing.T) {
	available := []string{"1.21.1", "1.20.1"}
	assert.NoError(t, ValidateGameVersion("1.20.1", available))
	assert.ErrorIs(t, ValidateGameVersion("1.7.10", available), ErrInvalidGameVersion)
}

func TestSortVersionsDesc(t *testing.T) {
	got := SortVersionsDesc([]string{"1.8.9", "1.20.1", "1.21", "24w14a", "1.20.10", "1.21.1", "1.20.1", "1.12.2"})
	assert.Equal(t, []string{"1.21.1", "1.21", "1.20.10", "1.20.1", "1.12.2", "1.8.9"}, got)
}

func TestGameVersions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"result":["1.20.1","1.21.4","1.19.2"]}`))
	}))
	defer srv.Close()

	src := &VersionSource{URL: srv.URL, UserAgent: "test-agent"}
	got, err := src.GameVersions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"1.21.5", "1.21.4", "1.21.3", "1.21.1", "1.20.1", "1.19.2"}, got)
}

func TestGameVersionsUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := (&VersionSource{URL: srv.URL}).GameVersions(context.Background())
	assert.Error(t, err)
}
