// Package report renders a shp2pg.BatchReport for people (styled text) or
// machines (JSON).
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/vvka-141/shp2pg/pkg/shp2pg"
)

// Format selects the report rendering.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat validates an --output value.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text or json): %w", s, shp2pg.ErrInvalidConfig)
	}
}

// Renderer writes reports to one destination.
type Renderer struct {
	w      io.Writer
	format Format
	color  bool
}

// NewRenderer creates a renderer for w. Colour is enabled when w is a terminal.
func NewRenderer(w io.Writer, format Format) *Renderer {
	return &Renderer{w: w, format: format, color: ColorEnabled(w)}
}

// Render writes report in the renderer's format.
func (r *Renderer) Render(report *shp2pg.BatchReport) error {
	if report == nil {
		return fmt.Errorf("no report to render")
	}
	if r.format == FormatJSON {
		return renderJSON(r.w, report)
	}
	return renderText(r.w, report, newStyles(r.w, r.color))
}

// jsonReport adds derived totals to the report fields.
type jsonReport struct {
	*shp2pg.BatchReport
	Status    string `json:"status"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	ElapsedMS int64  `json:"elapsed_ms"`
}

func renderJSON(w io.Writer, report *shp2pg.BatchReport) error {
	status := "ok"
	if report.HasFailures() {
		status = "partial"
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonReport{
		BatchReport: report,
		Status:      status,
		Succeeded:   len(report.Successes),
		Failed:      len(report.Failures),
		ElapsedMS:   report.Elapsed().Milliseconds(),
	})
}

func renderText(w io.Writer, report *shp2pg.BatchReport, st styles) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n", st.title.Render("shp2pg load report"), st.muted.Render("run "+report.RunID.String()))
	fmt.Fprintf(&b, "Root:       %s\n", report.RootDir)
	fmt.Fprintf(&b, "Discovered: %d   Retained: %d   Loaded: %d   Failed: %d   Duplicates: %d   Elapsed: %s\n",
		report.Discovered, report.Retained, len(report.Successes), len(report.Failures), len(report.Duplicates),
		report.Elapsed().Round(time.Millisecond))

	if len(report.Successes) > 0 {
		fmt.Fprintf(&b, "\n%s\n", st.heading.Render(fmt.Sprintf("Succeeded (%d)", len(report.Successes))))
		for _, o := range report.Successes {
			fmt.Fprintf(&b, "  %s %s %s %s  %d rows  SRID %d%s\n",
				st.success.Render(symbolCheck), o.RelativePath, symbolArrow, o.Table, o.Rows, o.SRID, defaultedNote(o))
		}
	}

	if len(report.Failures) > 0 {
		fmt.Fprintf(&b, "\n%s\n", st.heading.Render(fmt.Sprintf("Failed (%d)", len(report.Failures))))
		for _, o := range report.Failures {
			fmt.Fprintf(&b, "  %s %s: %s\n", st.failure.Render(symbolCross), o.RelativePath, truncate(o.Reason, shp2pg.MaxReasonLength))
		}
	}

	if len(report.Duplicates) > 0 {
		fmt.Fprintf(&b, "\n%s\n", st.heading.Render("Duplicate names (first occurrence loaded)"))
		for _, name := range report.Duplicates {
			fmt.Fprintf(&b, "  %s %s\n", st.warning.Render(symbolBullet), name)
		}
	}

	if defaulted := report.Defaulted(); len(defaulted) > 0 {
		fmt.Fprintf(&b, "\n%s\n", st.heading.Render("Default spatial reference applied"))
		for _, o := range defaulted {
			fmt.Fprintf(&b, "  %s %s (SRID %d)\n", st.warning.Render(symbolBullet), o.FileName, o.SRID)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func defaultedNote(o shp2pg.LoadOutcome) string {
	if o.SRIDDefaulted {
		return " (default)"
	}
	return ""
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
