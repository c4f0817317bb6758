package modrinth_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"modpack-builder/modrinth"
	"modpack-builder/modrinth/modrinthtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupSearchMemoizes(t *testing.T) {
	fake := modrinthtest.New().AddMod("Sodium", "sodium")
	l := modrinth.NewLookup(fake, modrinth.NewCache(), nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		p, found, err := l.Search(ctx, "Sodium")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "sodium", p.ID)
	}
	assert.EqualValues(t, 1, fake.SearchCalls.Load())
}

func TestLookupStoresNotFound(t *testing.T) {
	fake := modrinthtest.New().Fail("Broken")
	l := modrinth.NewLookup(fake, modrinth.NewCache(), nil)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, found, err := l.Search(ctx, "NotARealMod")
		require.NoError(t, err)
		assert.False(t, found)

		_, found, err = l.Search(ctx, "Broken")
		require.NoError(t, err, "registry failures degrade to not found")
		assert.False(t, found)
	}
	assert.EqualValues(t, 1, fake.Calls("NotARealMod"))
	assert.EqualValues(t, 1, fake.Calls("Broken"))
}

func TestLookupSingleFlight(t *testing.T) {
	release := make(chan struct{})
	fake := modrinthtest.New().AddMod("Sodium", "sodium")
	fake.AddVersion("sodium", modrinthtest.Version("v1", "1.20.1", "fabric", 1, "https://cdn/s.jar"))
	fake.BeforeCall = func(ctx context.Context) { <-release }

	l := modrinth.NewLookup(fake, modrinth.NewCache(), nil)
	ctx := context.Background()

	const callers = 8
	var wg sync.WaitGroup
	results := make([]string, callers)
	for i := 0; i < callers; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			p, _, _ := l.Search(ctx, "Sodium")
			results[i] = p.ID
		}(i)
		go func() {
			defer wg.Done()
			_, _ = l.Versions(ctx, "sodium", "1.20.1", "fabric")
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, fake.SearchCalls.Load())
	assert.EqualValues(t, 1, fake.VersionsCalls.Load())
	for _, id := range results {
		assert.Equal(t, "sodium", id)
	}
}

func TestLookupVersionsKeyedByTarget(t *testing.T) {
	fake := modrinthtest.New()
	fake.AddVersion("p", modrinthtest.Version("fabric-1", "1.20.1", "fabric", 1, "https://cdn/f1.jar"))
	fake.AddVersion("p", modrinthtest.Version("fabric-2", "1.20.1", "fabric", 5, "https://cdn/f2.jar"))
	fake.AddVersion("p", modrinthtest.Version("forge-1", "1.20.1", "forge", 9, "https://cdn/g1.jar"))
	l := modrinth.NewLookup(fake, nil, nil)
	ctx := context.Background()

	v, ok, err := l.LatestVersion(ctx, "p", "1.20.1", "Fabric")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "fabric-2", v.ID)

	_, _, _ = l.LatestVersion(ctx, "p", "1.20.1", "fabric")
	assert.EqualValues(t, 1, fake.VersionsCalls.Load(), "loader case does not split the cache key")

	v, ok, err = l.LatestVersion(ctx, "p", "1.20.1", "forge")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "forge-1", v.ID)
	assert.EqualValues(t, 2, fake.VersionsCalls.Load())

	_, ok, err = l.LatestVersion(ctx, "p", "1.19.2", "forge")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLookupDoesNotCacheCancellation(t *testing.T) {
	fake := modrinthtest.New().AddMod("Sodium", "sodium")
	l := modrinth.NewLookup(fake, modrinth.NewCache(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := l.Search(ctx, "Sodium")
	require.ErrorIs(t, err, context.Canceled)

	p, found, err := l.Search(context.Background(), "Sodium")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "sodium", p.ID)
	assert.EqualValues(t, 2, fake.SearchCalls.Load())
}

func TestLookupWaiterOutlivesCancelledLeader(t *testing.T) {
	started := make(chan struct{})
	var calls atomic.Int64
	fake := modrinthtest.New().AddMod("Sodium", "sodium")
	fake.BeforeCall = func(ctx context.Context) {
		if calls.Add(1) == 1 {
			close(started)
			<-ctx.Done()
		}
	}
	l := modrinth.NewLookup(fake, modrinth.NewCache(), nil)

	leaderCtx, cancel := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, _, err := l.Search(leaderCtx, "Sodium")
		leaderErr <- err
	}()
	<-started

	type result struct {
		p     modrinth.Project
		found bool
		err   error
	}
	waiter := make(chan result, 1)
	go func() {
		p, found, err := l.Search(context.Background(), "Sodium")
		waiter <- result{p, found, err}
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	require.ErrorIs(t, <-leaderErr, context.Canceled)
	got := <-waiter
	require.NoError(t, got.err)
	assert.True(t, got.found)
	assert.Equal(t, "sodium", got.p.ID)
	assert.EqualValues(t, 2, fake.SearchCalls.Load())
}

func TestSeparateCachesDoNotShare(t *testing.T) {
	fake := modrinthtest.New().AddMod("Sodium", "sodium")
	ctx := context.Background()

	_, _, _ = modrinth.NewLookup(fake, modrinth.NewCache(), nil).Search(ctx, "Sodium")
	_, _, _ = modrinth.NewLookup(fake, modrinth.NewCache(), nil).Search(ctx, "Sodium")
	assert.EqualValues(t, 2, fake.SearchCalls.Load())
}
