package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/revmetrics/internal/contract"
	"github.com/huangsam/revmetrics/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

const runTimeFormat = "2006-01-02 15:04:05"

// WriteRuns writes recorded runs in the configured format.
func WriteRuns(w io.Writer, runs []schema.RunRecord, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if runs == nil {
			runs = []schema.RunRecord{}
		}
		return writeJSON(w, runs)
	case schema.CSVOut:
		header := []string{"id", "repository_uri", "started_at", "ended_at", "measured", "skipped", "failed", "status"}
		return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
			for _, r := range runs {
				ended := ""
				if r.EndedAt != nil {
					ended = r.EndedAt.UTC().Format(time.RFC3339)
				}
				rec := []string{
					strconv.FormatInt(r.ID, 10),
					r.RepositoryURI,
					r.StartedAt.UTC().Format(time.RFC3339),
					ended,
					strconv.FormatInt(r.Measured, 10),
					strconv.FormatInt(r.Skipped, 10),
					strconv.FormatInt(r.Failed, 10),
					string(r.Status),
				}
				if err := cw.Write(rec); err != nil {
					return fmt.Errorf("failed to write CSV record: %w", err)
				}
			}
			return nil
		})
	default:
		return writeRunsTable(w, runs, cfg)
	}
}

func writeRunsTable(w io.Writer, runs []schema.RunRecord, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"ID", "Repository", "Started", "Duration", "Measured", "Skipped", "Failed", "Status"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	uriWidth := getMaxTableColumnWidth(cfg, 85)
	var data [][]string
	for _, r := range runs {
		duration := "-"
		if r.EndedAt != nil {
			duration = r.EndedAt.Sub(r.StartedAt).Round(time.Second).String()
		}
		data = append(data, []string{
			strconv.FormatInt(r.ID, 10),
			contract.TruncatePath(r.RepositoryURI, uriWidth),
			r.StartedAt.Local().Format(runTimeFormat),
			duration,
			humanize.Comma(r.Measured),
			humanize.Comma(r.Skipped),
			humanize.Comma(r.Failed),
			contract.GetColorStatus(r.Status, cfg.UseColors),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d runs\n", len(runs))
	return err
}
