package index

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdood/gloop/pkg/types"
)

// fixtureCompilation builds a two-command compilation for a root. The hash
// parameter stands in for a real content hash so tests can force dedup hits
// and misses.
func fixtureCompilation(root, hash string) *types.Compilation {
	compID := newID()
	return &types.Compilation{
		CompilationID: compID,
		Root:          root,
		ContentHash:   hash,
		CreatedAt:     time.Now().UTC(),
		Commands: []types.Command{
			{
				CommandID:     newID(),
				CompilationID: compID,
				Position:      1,
				SeqPath:       "1",
				Argv:          []string{"systemctl", "restart", "nginx"},
				Shell:         "systemctl restart nginx",
				Source:        "0001-systemctl",
			},
			{
				CommandID:     newID(),
				CompilationID: compID,
				Position:      2,
				SeqPath:       "2",
				Argv:          []string{"reboot", "--force"},
				Shell:         "reboot --force",
				Source:        "0002-reboot!force.c",
			},
		},
		Diagnostics: []types.Diagnostic{
			{Severity: types.SeverityInfo, Path: "README.md", Message: "no sequence prefix; entry is inert"},
		},
	}
}

func TestSaveAndGetCompilation(t *testing.T) {
	s := attachedStore(t)

	comp := fixtureCompilation("/srv/deploy", "hash-1")
	res, err := s.SaveCompilation(comp)
	require.NoError(t, err)
	assert.True(t, res.Saved)
	assert.Equal(t, comp.CompilationID, res.CompilationID)

	got, err := s.GetCompilation(comp.CompilationID)
	require.NoError(t, err)
	assert.Equal(t, comp.Root, got.Root)
	assert.Equal(t, comp.ContentHash, got.ContentHash)
	require.Len(t, got.Commands, 2)
	assert.Equal(t, comp.Commands[0].Argv, got.Commands[0].Argv)
	assert.Equal(t, comp.Commands[1].Shell, got.Commands[1].Shell)
	require.Len(t, got.Diagnostics, 1)
	assert.Equal(t, "README.md", got.Diagnostics[0].Path)
	assert.WithinDuration(t, comp.CreatedAt, got.CreatedAt, time.Millisecond)
}

func TestGetCompilationNotFound(t *testing.T) {
	s := attachedStore(t)
	_, err := s.GetCompilation("no-such-id")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestSaveDeduplicatesUnchangedHash(t *testing.T) {
	s := attachedStore(t)

	first := fixtureCompilation("/srv/deploy", "hash-1")
	res, err := s.SaveCompilation(first)
	require.NoError(t, err)
	require.True(t, res.Saved)

	// Same root, same hash: skipped.
	dup := fixtureCompilation("/srv/deploy", "hash-1")
	res, err = s.SaveCompilation(dup)
	require.NoError(t, err)
	assert.False(t, res.Saved)
	assert.Equal(t, first.CompilationID, res.CompilationID)

	// Same hash under a different root still saves.
	other := fixtureCompilation("/srv/other", "hash-1")
	res, err = s.SaveCompilation(other)
	require.NoError(t, err)
	assert.True(t, res.Saved)

	// Changed hash saves again.
	changed := fixtureCompilation("/srv/deploy", "hash-2")
	res, err = s.SaveCompilation(changed)
	require.NoError(t, err)
	assert.True(t, res.Saved)
}

func TestLatestCompilation(t *testing.T) {
	s := attachedStore(t)

	_, err := s.LatestCompilation("/srv/deploy")
	assert.ErrorIs(t, err, types.ErrNotFound)

	for i := 1; i <= 3; i++ {
		comp := fixtureCompilation("/srv/deploy", fmt.Sprintf("hash-%d", i))
		_, err := s.SaveCompilation(comp)
		require.NoError(t, err)
	}

	latest, err := s.LatestCompilation("/srv/deploy")
	require.NoError(t, err)
	assert.Equal(t, "hash-3", latest.ContentHash)
	assert.Len(t, latest.Commands, 2)
}

func TestListCompilations(t *testing.T) {
	s := attachedStore(t)

	for i := 1; i <= 3; i++ {
		_, err := s.SaveCompilation(fixtureCompilation("/srv/a", fmt.Sprintf("a-%d", i)))
		require.NoError(t, err)
	}
	_, err := s.SaveCompilation(fixtureCompilation("/srv/b", "b-1"))
	require.NoError(t, err)

	t.Run("all, newest first", func(t *testing.T) {
		comps, err := s.ListCompilations(types.ListFilter{})
		require.NoError(t, err)
		require.Len(t, comps, 4)
		assert.Equal(t, "b-1", comps[0].ContentHash)
		assert.Equal(t, "a-3", comps[1].ContentHash)
	})

	t.Run("filter by root", func(t *testing.T) {
		comps, err := s.ListCompilations(types.ListFilter{Root: "/srv/a"})
		require.NoError(t, err)
		assert.Len(t, comps, 3)
	})

	t.Run("limit", func(t *testing.T) {
		comps, err := s.ListCompilations(types.ListFilter{Limit: 2})
		require.NoError(t, err)
		assert.Len(t, comps, 2)
	})

	t.Run("commands hydrated", func(t *testing.T) {
		comps, err := s.ListCompilations(types.ListFilter{Limit: 1})
		require.NoError(t, err)
		require.Len(t, comps, 1)
		assert.Len(t, comps[0].Commands, 2)
	})
}

func TestDeleteCompilation(t *testing.T) {
	s := attachedStore(t)

	comp := fixtureCompilation("/srv/deploy", "hash-1")
	_, err := s.SaveCompilation(comp)
	require.NoError(t, err)

	require.NoError(t, s.DeleteCompilation(comp.CompilationID))
	_, err = s.GetCompilation(comp.CompilationID)
	assert.ErrorIs(t, err, types.ErrNotFound)

	assert.ErrorIs(t, s.DeleteCompilation(comp.CompilationID), types.ErrNotFound)
}

func TestPrune(t *testing.T) {
	s := attachedStore(t)

	for i := 1; i <= 5; i++ {
		_, err := s.SaveCompilation(fixtureCompilation("/srv/a", fmt.Sprintf("a-%d", i)))
		require.NoError(t, err)
	}
	for i := 1; i <= 2; i++ {
		_, err := s.SaveCompilation(fixtureCompilation("/srv/b", fmt.Sprintf("b-%d", i)))
		require.NoError(t, err)
	}

	deleted, err := s.Prune(2)
	require.NoError(t, err)
	assert.Equal(t, 3, deleted)

	a, err := s.ListCompilations(types.ListFilter{Root: "/srv/a"})
	require.NoError(t, err)
	require.Len(t, a, 2)
	assert.Equal(t, "a-5", a[0].ContentHash)
	assert.Equal(t, "a-4", a[1].ContentHash)

	b, err := s.ListCompilations(types.ListFilter{Root: "/srv/b"})
	require.NoError(t, err)
	assert.Len(t, b, 2)
}
