package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/shp2pg/pkg/shp2pg"
)

func sampleReport() *shp2pg.BatchReport {
	r := shp2pg.NewBatchReport("/data/gis")
	r.Discovered = 4
	r.Retained = 3
	r.Duplicates = []string{"roads.shp"}
	r.Add(shp2pg.Success(shp2pg.VectorFile{Name: "roads.shp", RelativePath: "a/roads.shp"}, 4326, true, 1200, time.Second))
	r.Add(shp2pg.Success(shp2pg.VectorFile{Name: "parcels.shp", RelativePath: "parcels.shp"}, 4490, false, 7, time.Second))
	r.Add(shp2pg.Failure(shp2pg.VectorFile{Name: "rivers.shp", RelativePath: "b/rivers.shp"},
		errors.Join(shp2pg.ErrParseFailed, errors.New("truncated record"))))
	r.Finish()
	return r
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatText, f)

	f, err = ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)

	_, err = ParseFormat("xml")
	assert.ErrorIs(t, err, shp2pg.ErrInvalidConfig)
}

func TestRenderText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf, FormatText).Render(sampleReport()))

	out := buf.String()
	assert.Contains(t, out, "Root:       /data/gis")
	assert.Contains(t, out, "Discovered: 4   Retained: 3   Loaded: 2   Failed: 1   Duplicates: 1")
	assert.Contains(t, out, "Succeeded (2)")
	assert.Contains(t, out, "a/roads.shp → roads  1200 rows  SRID 4326 (default)")
	assert.Contains(t, out, "parcels.shp → parcels  7 rows  SRID 4490\n")
	assert.Contains(t, out, "Failed (1)")
	assert.Contains(t, out, "b/rivers.shp: ")
	assert.Contains(t, out, "truncated record")
	assert.Contains(t, out, "Duplicate names (first occurrence loaded)")
	assert.Contains(t, out, "Default spatial reference applied")
	assert.Contains(t, out, "roads.shp (SRID 4326)")
	assert.NotContains(t, out, "\x1b[", "no ANSI escapes when not writing to a terminal")
}

func TestRenderText_EmptyRun(t *testing.T) {
	r := shp2pg.NewBatchReport("/empty")
	r.Finish()

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf, FormatText).Render(r))

	assert.Contains(t, buf.String(), "Discovered: 0   Retained: 0   Loaded: 0   Failed: 0   Duplicates: 0")
	assert.NotContains(t, buf.String(), "Succeeded")
	assert.NotContains(t, buf.String(), "Failed (")
}

func TestRenderJSON(t *testing.T) {
	report := sampleReport()

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf, FormatJSON).Render(report))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, report.RunID.String(), got["run_id"])
	assert.Equal(t, "partial", got["status"])
	assert.EqualValues(t, 2, got["succeeded"])
	assert.EqualValues(t, 1, got["failed"])
	assert.EqualValues(t, 4, got["discovered"])
	assert.Equal(t, []any{"roads.shp"}, got["duplicates"])

	failures := got["failures"].([]any)
	require.Len(t, failures, 1)
	first := failures[0].(map[string]any)
	assert.Equal(t, "failure", first["status"])
	assert.Equal(t, "rivers.shp", first["file_name"])
	assert.NotContains(t, first, "Err")
}

func TestRenderJSON_AllSucceeded(t *testing.T) {
	r := shp2pg.NewBatchReport("/d")
	r.Add(shp2pg.Success(shp2pg.VectorFile{Name: "a.shp"}, 4326, false, 1, 0))
	r.Finish()

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf, FormatJSON).Render(r))
	assert.Contains(t, buf.String(), `"status": "ok"`)
}

func TestRenderText_TruncatesLongReasons(t *testing.T) {
	r := shp2pg.NewBatchReport("/d")
	r.Add(shp2pg.Failure(shp2pg.VectorFile{Name: "a.shp", RelativePath: "a.shp"}, errors.New(strings.Repeat("x", 1000))))
	r.Finish()

	var buf bytes.Buffer
	require.NoError(t, NewRenderer(&buf, FormatText).Render(r))
	assert.Contains(t, buf.String(), strings.Repeat("x", shp2pg.MaxReasonLength-1)+"…")
	assert.NotContains(t, buf.String(), strings.Repeat("x", shp2pg.MaxReasonLength))
}

func TestRender_NilReport(t *testing.T) {
	assert.Error(t, NewRenderer(&bytes.Buffer{}, FormatText).Render(nil))
}

func TestColorEnabled(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	t.Setenv("CI", "")
	assert.False(t, ColorEnabled(&bytes.Buffer{}), "buffers are never terminals")

	t.Setenv("NO_COLOR", "1")
	assert.False(t, ColorEnabled(&bytes.Buffer{}))
}
