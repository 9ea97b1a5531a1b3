package outwriter

import (
	"cmp"
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/huangsam/revmetrics/internal/contract"
	"github.com/huangsam/revmetrics/schema"
)

// WriteStatus writes the metrics store status in the configured format.
func WriteStatus(w io.Writer, status schema.MetricsStatus, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeJSON(w, status)
	case schema.CSVOut:
		return writeCSVWithHeader(w, []string{"key", "value"}, func(cw *csv.Writer) error {
			records := [][]string{
				{"backend", status.Backend},
				{"connected", strconv.FormatBool(status.Connected)},
				{"table_exists", strconv.FormatBool(status.TableExists)},
				{"total_rows", strconv.FormatInt(status.TotalRows, 10)},
				{"distinct_files", strconv.FormatInt(status.DistinctFiles, 10)},
				{"max_id", strconv.FormatInt(status.MaxID, 10)},
				{"total_runs", strconv.FormatInt(status.TotalRuns, 10)},
			}
			for _, lang := range sortedLanguages(status.Languages) {
				records = append(records, []string{"lang:" + lang, strconv.FormatInt(status.Languages[lang], 10)})
			}
			return cw.WriteAll(records)
		})
	default:
		return writeStatusText(w, status, cfg)
	}
}

func writeStatusText(w io.Writer, status schema.MetricsStatus, cfg *contract.Config) error {
	var lines []string
	lines = append(lines,
		fmt.Sprintf("Metrics Backend: %s", status.Backend),
		fmt.Sprintf("Connected: %t", status.Connected))
	if status.Connected {
		lines = append(lines, fmt.Sprintf("Table Exists: %t", status.TableExists))
		if status.TableExists {
			lines = append(lines,
				fmt.Sprintf("Total Rows: %s", humanize.Comma(status.TotalRows)),
				fmt.Sprintf("Distinct Files: %s", humanize.Comma(status.DistinctFiles)),
				fmt.Sprintf("Max ID: %d", status.MaxID))
			if len(status.Languages) > 0 {
				lines = append(lines, "Languages:")
				for _, lang := range sortedLanguages(status.Languages) {
					lines = append(lines, fmt.Sprintf("  %s: %s rows", lang, humanize.Comma(status.Languages[lang])))
				}
			}
		}
		lines = append(lines, fmt.Sprintf("Total Runs: %s", humanize.Comma(status.TotalRuns)))
		if run := status.LastRun; run != nil {
			lines = append(lines, fmt.Sprintf("Last Run: #%d %s (%s, %s measured)",
				run.ID,
				contract.GetColorStatus(run.Status, cfg.UseColors),
				humanize.Time(run.StartedAt),
				humanize.Comma(run.Measured)))
		}
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// sortedLanguages orders languages by row count, largest first.
func sortedLanguages(langs map[string]int64) []string {
	names := make([]string, 0, len(langs))
	for name := range langs {
		names = append(names, name)
	}
	slices.SortFunc(names, func(a, b string) int {
		if c := cmp.Compare(langs[b], langs[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	return names
}
