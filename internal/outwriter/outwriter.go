// Package outwriter has output and writer logic.
package outwriter

import (
	"io"
	"time"

	"github.com/huangsam/revmetrics/internal/contract"
	"github.com/huangsam/revmetrics/schema"
)

// OutWriter provides a unified interface for all output operations.
// Each method writes to cfg.OutputFile, or stdout when it is empty.
type OutWriter struct{}

// NewOutWriter creates a new instance of the output writer.
func NewOutWriter() *OutWriter {
	return &OutWriter{}
}

// WriteStatus prints the metrics store status using the configured output format.
func (ow *OutWriter) WriteStatus(status schema.MetricsStatus, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteStatus(w, status, cfg)
	}, "Wrote status")
}

// WriteRuns prints recorded runs using the configured output format.
func (ow *OutWriter) WriteRuns(runs []schema.RunRecord, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteRuns(w, runs, cfg)
	}, "Wrote runs")
}

// WriteMetricRows prints persisted metric rows using the configured output format.
func (ow *OutWriter) WriteMetricRows(rows []schema.MetricRow, cfg *contract.Config) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteMetricRows(w, rows, cfg)
	}, "Wrote metrics")
}

// WriteRunSummary prints the outcome of a collection run.
func (ow *OutWriter) WriteRunSummary(summary schema.RunSummary, cfg *contract.Config, duration time.Duration) error {
	return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
		return WriteRunSummary(w, summary, cfg, duration)
	}, "Wrote run summary")
}
