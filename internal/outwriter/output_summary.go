package outwriter

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/revmetrics/internal/contract"
	"github.com/huangsam/revmetrics/schema"
)

// runSummaryJSON is the JSON shape of a run summary.
type runSummaryJSON struct {
	Resumed    bool    `json:"resumed"`
	Measured   int64   `json:"measured"`
	Skipped    int64   `json:"skipped"`
	Failed     int64   `json:"failed"`
	Flushes    int     `json:"flushes"`
	DurationMS float64 `json:"duration_ms"`
}

// WriteRunSummary writes the outcome of a collection run. CSV output uses
// the text form since a summary is a single record.
func WriteRunSummary(w io.Writer, summary schema.RunSummary, cfg *contract.Config, duration time.Duration) error {
	if cfg.Output == schema.JSONOut {
		return writeJSON(w, runSummaryJSON{
			Resumed:    summary.Resumed,
			Measured:   summary.Measured,
			Skipped:    summary.Skipped,
			Failed:     summary.Failed,
			Flushes:    summary.Flushes,
			DurationMS: float64(duration.Microseconds()) / 1000,
		})
	}

	mode := "fresh"
	if summary.Resumed {
		mode = "resumed"
	}
	_, err := fmt.Fprintf(w, "Measured %s files (%s skipped, %s failed) in %s %s, %s run completed in %v\n",
		humanize.Comma(summary.Measured),
		humanize.Comma(summary.Skipped),
		humanize.Comma(summary.Failed),
		humanize.Comma(int64(summary.Flushes)),
		pluralize(summary.Flushes, "batch", "batches"),
		mode,
		duration.Round(time.Millisecond))
	return err
}

func pluralize(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
