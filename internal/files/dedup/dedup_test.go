package dedup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/shp2pg/pkg/shp2pg"
)

func vf(rel, name string) shp2pg.VectorFile {
	return shp2pg.VectorFile{Path: "/data/" + rel, Name: name, RelativePath: rel}
}

func TestDeduplicate_KeepsFirstOccurrence(t *testing.T) {
	files := []shp2pg.VectorFile{
		vf("a.shp", "a.shp"),
		vf("b.shp", "b.shp"),
		vf("subdir/a.shp", "a.shp"),
	}

	res := Deduplicate(files)

	require.Len(t, res.Retained, 2)
	assert.Equal(t, "a.shp", res.Retained[0].RelativePath)
	assert.Equal(t, "b.shp", res.Retained[1].RelativePath)
	assert.Equal(t, []string{"a.shp"}, res.Duplicates)
	assert.Equal(t, "/data/a.shp", res.Index["a.shp"].Path)
	assert.True(t, res.HasDuplicates())
}

func TestDeduplicate_RetainedCountEqualsDistinctNames(t *testing.T) {
	files := []shp2pg.VectorFile{
		vf("x/roads.shp", "roads.shp"),
		vf("y/roads.shp", "roads.shp"),
		vf("z/roads.shp", "roads.shp"),
		vf("x/rivers.shp", "rivers.shp"),
		vf("y/rivers.shp", "rivers.shp"),
		vf("lakes.shp", "lakes.shp"),
	}

	res := Deduplicate(files)

	assert.Len(t, res.Retained, 3)
	assert.Len(t, res.Index, 3)
	assert.Equal(t, []string{"roads.shp", "rivers.shp"}, res.Duplicates)
}

func TestDeduplicate_NamesAreCaseSensitive(t *testing.T) {
	res := Deduplicate([]shp2pg.VectorFile{
		vf("Roads.shp", "Roads.shp"),
		vf("roads.shp", "roads.shp"),
	})

	assert.Len(t, res.Retained, 2)
	assert.Empty(t, res.Duplicates)
	assert.False(t, res.HasDuplicates())
}

func TestDeduplicate_Empty(t *testing.T) {
	res := Deduplicate(nil)
	assert.Empty(t, res.Retained)
	assert.Empty(t, res.Duplicates)
	assert.NotNil(t, res.Index)
}

func TestDeduplicate_DoesNotMutateInput(t *testing.T) {
	files := []shp2pg.VectorFile{vf("a.shp", "a.shp"), vf("s/a.shp", "a.shp")}
	_ = Deduplicate(files)
	assert.Equal(t, "s/a.shp", files[1].RelativePath)
}
