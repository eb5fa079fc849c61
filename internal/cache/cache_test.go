package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/quantmind-br/libmgr/internal/core"
	"github.com/quantmind-br/libmgr/internal/syspkg"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(p *syspkg.MockProvider) *MetadataCache {
	log := zerolog.Nop()
	return New(p, &log)
}

func TestNew(t *testing.T) {
	c := New(syspkg.NewMockProvider(), nil)
	assert.NotNil(t, c)
	assert.NotNil(t, c.log)
}

func TestInstalledLibraries(t *testing.T) {
	ctx := context.Background()
	p := syspkg.NewMockProvider().AddLibrary("a", "1.0.0", "b")
	c := newTestCache(p)

	first, err := c.InstalledLibraries(ctx, false)
	require.NoError(t, err)
	assert.True(t, first.Equal(core.NewNameSet("a", "b")))

	// cached: no new query
	second, err := c.InstalledLibraries(ctx, false)
	require.NoError(t, err)
	assert.True(t, second.Equal(first))
	assert.Equal(t, 1, p.ListCalls)

	// callers cannot corrupt the cache
	second.Add("zzz")
	third, err := c.InstalledLibraries(ctx, false)
	require.NoError(t, err)
	assert.False(t, third.Has("zzz"))

	// forced refresh sees new state
	p.AddLibrary("c", "1.0.0")
	refreshed, err := c.InstalledLibraries(ctx, true)
	require.NoError(t, err)
	assert.True(t, refreshed.Has("c"))
	assert.Equal(t, 2, p.ListCalls)
}

func TestInstalledLibraries_Error(t *testing.T) {
	p := syspkg.NewMockProvider()
	p.ListErr = &core.CommandError{Op: "list", Err: errors.New("pip missing")}
	c := newTestCache(p)

	_, err := c.InstalledLibraries(context.Background(), false)
	assert.ErrorIs(t, err, core.ErrCommandFailed)
}

func TestDetailsOf_Known(t *testing.T) {
	ctx := context.Background()
	p := syspkg.NewMockProvider().AddLibrary("requests", "2.31.0", "idna", "certifi")
	c := newTestCache(p)

	lookup, err := c.DetailsOf(ctx, "requests")
	require.NoError(t, err)
	assert.True(t, lookup.Known)
	assert.Equal(t, "2.31.0", lookup.Record.Version)
	assert.Equal(t, []string{"certifi", "idna"}, lookup.Record.Requires.Sorted())

	idna, err := c.DetailsOf(ctx, "idna")
	require.NoError(t, err)
	assert.True(t, idna.Record.RequiredBy.Has("requests"))

	_, err = c.DetailsOf(ctx, "requests")
	require.NoError(t, err)
	assert.Equal(t, 1, p.ShowCalls["requests"])
}

func TestDetailsOf_UnknownIsEmptyAndNotQueried(t *testing.T) {
	ctx := context.Background()
	p := syspkg.NewMockProvider().AddLibrary("a", "1.0.0")
	c := newTestCache(p)

	lookup, err := c.DetailsOf(ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, lookup.Known)
	assert.Equal(t, "ghost", lookup.Record.Name)
	assert.Zero(t, lookup.Record.Requires.Len())
	assert.Zero(t, lookup.Record.RequiredBy.Len())
	assert.Zero(t, p.ShowCalls["ghost"])

	// the synthesized record is cached, not recomputed against a fresh list
	p.AddLibrary("ghost", "1.0.0")
	again, err := c.DetailsOf(ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, again.Known)
	assert.Equal(t, 1, p.ListCalls)
}

func TestDetailsOf_ReturnedRecordIsACopy(t *testing.T) {
	ctx := context.Background()
	p := syspkg.NewMockProvider().AddLibrary("a", "1.0.0", "b")
	c := newTestCache(p)

	rec, err := c.Record(ctx, "a")
	require.NoError(t, err)
	rec.Requires.Add("mutated")

	again, err := c.Record(ctx, "a")
	require.NoError(t, err)
	assert.False(t, again.Requires.Has("mutated"))
}

func TestDetailsOf_ShowErrorNotCached(t *testing.T) {
	ctx := context.Background()
	p := syspkg.NewMockProvider().AddLibrary("a", "1.0.0")
	p.ShowErr["a"] = &core.ParseError{Library: "a", Field: "Requires"}
	c := newTestCache(p)

	_, err := c.DetailsOf(ctx, "a")
	assert.ErrorIs(t, err, core.ErrMalformedOutput)

	delete(p.ShowErr, "a")
	lookup, err := c.DetailsOf(ctx, "a")
	require.NoError(t, err)
	assert.True(t, lookup.Known)
	assert.Equal(t, 2, p.ShowCalls["a"])
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	p := syspkg.NewMockProvider().AddLibrary("a", "1.0.0")
	c := newTestCache(p)

	_, err := c.DetailsOf(ctx, "a")
	require.NoError(t, err)

	assert.Equal(t, 1, p.ListCalls)

	c.Refresh()
	installed, err := c.IsInstalled(ctx, "a")
	require.NoError(t, err)
	assert.True(t, installed)
	assert.Equal(t, 2, p.ListCalls)

	_, err = c.DetailsOf(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, p.ShowCalls["a"])
}
