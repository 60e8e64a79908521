package filesystem

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryFileSystem_Basic(t *testing.T) {
	mfs := NewMemoryFileSystem("/data/gis")

	mfs.AddFile("roads.shp", 1024)
	mfs.AddFile("admin/districts.shp", 2048)

	dir, err := mfs.Open("/data/gis")
	require.NoError(t, err)
	require.NotNil(t, dir)

	var fileCount int
	err = dir.Walk(func(file File, err error) error {
		require.NoError(t, err)
		if !file.Info().IsDir() {
			fileCount++
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 2, fileCount)
}

func TestMemoryFileSystem_Stat(t *testing.T) {
	mfs := NewMemoryFileSystem("/data/gis")
	mfs.AddFile("roads.shp", 100)

	info, err := mfs.Stat("/data/gis/roads.shp")
	require.NoError(t, err)
	assert.False(t, info.IsDir())
	assert.Equal(t, "roads.shp", info.Name())
	assert.Equal(t, int64(100), info.Size())

	info, err = mfs.Stat("/data/gis")
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestMemoryFileSystem_StatMissingIsNotExist(t *testing.T) {
	mfs := NewMemoryFileSystem("/data/gis")

	_, err := mfs.Stat("/data/other")
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))

	_, err = mfs.Open("/data/other")
	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestMemoryFileSystem_OpenFileIsNotDirectory(t *testing.T) {
	mfs := NewMemoryFileSystem("/data/gis")
	mfs.AddFile("roads.shp", 1)

	_, err := mfs.Open("/data/gis/roads.shp")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestMemoryFileSystem_WalkOrderMatchesFilepathWalk(t *testing.T) {
	mfs := NewMemoryFileSystem("/r")
	mfs.AddFile("b.shp", 1)
	mfs.AddFile("a-b/x.shp", 1)
	mfs.AddFile("a/x.shp", 1)
	mfs.AddFile("a.shp", 1)

	dir, err := mfs.Open("/r")
	require.NoError(t, err)

	var rels []string
	require.NoError(t, dir.Walk(func(f File, err error) error {
		rels = append(rels, f.RelativePath())
		return nil
	}))

	assert.Equal(t, []string{".", "a", "a/x.shp", "a-b", "a-b/x.shp", "a.shp", "b.shp"}, rels)
}

func TestMemoryFileSystem_WalkStopsOnCallbackError(t *testing.T) {
	mfs := NewMemoryFileSystem("/r")
	mfs.AddFile("a.shp", 1)
	mfs.AddFile("b.shp", 1)

	dir, err := mfs.Open("/r")
	require.NoError(t, err)

	stop := errors.New("stop")
	visited := 0
	err = dir.Walk(func(f File, err error) error {
		visited++
		if f.RelativePath() == "a.shp" {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 2, visited)
}

func TestMemoryFileSystem_WalkRecoversPanic(t *testing.T) {
	mfs := NewMemoryFileSystem("/r")
	mfs.AddFile("a.shp", 1)

	dir, err := mfs.Open("/r")
	require.NoError(t, err)

	err = dir.Walk(func(f File, err error) error {
		if f.RelativePath() == "a.shp" {
			panic("boom")
		}
		return nil
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "panicked")
}

func TestMemoryFileSystem_AddDir(t *testing.T) {
	mfs := NewMemoryFileSystem("/r")
	mfs.AddDir("empty/nested")

	info, err := mfs.Stat("/r/empty")
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	_, err = mfs.Open("empty/nested")
	require.NoError(t, err)
}
