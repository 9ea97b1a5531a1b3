package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/huangsam/revmetrics/internal/contract"
	"github.com/huangsam/revmetrics/schema"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// metricCSVHeader mirrors the metrics table columns.
var metricCSVHeader = []string{
	"id", "file_id", "commit_id", "lang", "sloc", "loc", "ncomment", "lcomment", "lblank", "nfunctions",
	"mccabe_max", "mccabe_min", "mccabe_sum", "mccabe_mean", "mccabe_median",
	"halstead_length", "halstead_vol", "halstead_level", "halstead_md",
}

// WriteMetricRows writes persisted metric rows in the configured format.
func WriteMetricRows(w io.Writer, rows []schema.MetricRow, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		if rows == nil {
			rows = []schema.MetricRow{}
		}
		return writeJSON(w, rows)
	case schema.CSVOut:
		return writeCSVWithHeader(w, metricCSVHeader, func(cw *csv.Writer) error {
			for _, r := range rows {
				if err := cw.Write(metricCSVRecord(r, cfg.Precision)); err != nil {
					return fmt.Errorf("failed to write CSV record: %w", err)
				}
			}
			return nil
		})
	default:
		return writeMetricTable(w, rows, cfg)
	}
}

// metricCSVRecord renders a row with empty cells for unset values.
func metricCSVRecord(r schema.MetricRow, precision int) []string {
	optInt := func(v *int) string {
		if v == nil {
			return ""
		}
		return strconv.Itoa(*v)
	}
	level := ""
	if r.HalsteadLevel != nil {
		level = strconv.FormatFloat(*r.HalsteadLevel, 'f', precision, 64)
	}
	lang := ""
	if r.Lang != nil {
		lang = *r.Lang
	}
	return []string{
		strconv.FormatInt(r.ID, 10),
		strconv.FormatInt(r.FileID, 10),
		strconv.FormatInt(r.CommitID, 10),
		lang,
		optInt(r.SLOC),
		optInt(r.LOC),
		optInt(r.NComment),
		optInt(r.LComment),
		optInt(r.LBlank),
		optInt(r.NFunctions),
		optInt(r.McCabeMax),
		optInt(r.McCabeMin),
		optInt(r.McCabeSum),
		optInt(r.McCabeMean),
		optInt(r.McCabeMedian),
		optInt(r.HalsteadLength),
		optInt(r.HalsteadVol),
		level,
		optInt(r.HalsteadMD),
	}
}

func writeMetricTable(w io.Writer, rows []schema.MetricRow, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"ID", "File", "Commit", "Lang", "LOC", "SLOC", "Comments", "Blank", "Funcs", "McCabe Max", "McCabe Mean", "Halstead Vol", "Halstead Level"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, r := range rows {
		data = append(data, []string{
			strconv.FormatInt(r.ID, 10),
			strconv.FormatInt(r.FileID, 10),
			strconv.FormatInt(r.CommitID, 10),
			schema.FormatOptionalString(r.Lang),
			schema.FormatOptionalInt(r.LOC),
			schema.FormatOptionalInt(r.SLOC),
			schema.FormatOptionalInt(r.LComment),
			schema.FormatOptionalInt(r.LBlank),
			schema.FormatOptionalInt(r.NFunctions),
			schema.FormatOptionalInt(r.McCabeMax),
			schema.FormatOptionalInt(r.McCabeMean),
			schema.FormatOptionalInt(r.HalsteadVol),
			schema.FormatOptionalFloat(r.HalsteadLevel, cfg.Precision),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Showing %d rows\n", len(rows))
	return err
}
