package fixtures

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/shp2pg/internal/logging"
	"github.com/vvka-141/shp2pg/internal/shapefile"
)

func TestStandardTree_Build(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, StandardTree().Build(root))

	for _, rel := range []string{"roads.shp", "roads.shx", "roads.dbf", "roads.prj", "a/roads.shp", "b/c/wells.dbf", "broken/rivers.shp"} {
		_, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel)))
		assert.NoError(t, err, rel)
	}
	_, err := os.Stat(filepath.Join(root, "b", "c", "wells.prj"))
	assert.True(t, os.IsNotExist(err), "wells.shp has no .prj")
	_, err = os.Stat(filepath.Join(root, "roadsdbf"))
	assert.True(t, os.IsNotExist(err), "table file is renamed to .dbf")
}

func TestStandardTree_Readable(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, StandardTree().Build(root))
	reader := shapefile.NewReader(logging.NewNullLogger())

	ds, err := reader.Read(context.Background(), filepath.Join(root, "roads.shp"))
	require.NoError(t, err)
	assert.Len(t, ds.Features, 3)
	assert.Equal(t, 4326, ds.EPSG)

	ds, err = reader.Read(context.Background(), filepath.Join(root, "b", "parcels.shp"))
	require.NoError(t, err)
	assert.Equal(t, 4490, ds.EPSG)

	ds, err = reader.Read(context.Background(), filepath.Join(root, "b", "c", "wells.shp"))
	require.NoError(t, err)
	assert.Zero(t, ds.EPSG)

	_, err = reader.Read(context.Background(), filepath.Join(root, "broken", "rivers.shp"))
	assert.Error(t, err)
}

func TestTreeBuilder_Paths(t *testing.T) {
	assert.Equal(t,
		[]string{"a/roads.shp", "b/c/wells.shp", "b/parcels.shp", "broken/rivers.shp", "roads.shp"},
		StandardTree().Paths())
}
