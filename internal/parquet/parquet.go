// Package parquet provides data structures and functions for exporting the
// metrics and metrics_runs tables to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"os"
	"time"

	"github.com/huangsam/revmetrics/schema"
	"github.com/parquet-go/parquet-go"
)

// Metric represents one measured (file, commit) pair.
// This struct maps to the metrics database table; unset measurements are null.
type Metric struct {
	ID             int64    `parquet:"id,snappy"`
	FileID         int64    `parquet:"file_id,snappy"`
	CommitID       int64    `parquet:"commit_id,snappy"`
	Lang           *string  `parquet:"lang,optional,snappy,dict"`
	SLOC           *int32   `parquet:"sloc,optional,snappy"`
	LOC            *int32   `parquet:"loc,optional,snappy"`
	NComment       *int32   `parquet:"ncomment,optional,snappy"`
	LComment       *int32   `parquet:"lcomment,optional,snappy"`
	LBlank         *int32   `parquet:"lblank,optional,snappy"`
	NFunctions     *int32   `parquet:"nfunctions,optional,snappy"`
	McCabeMax      *int32   `parquet:"mccabe_max,optional,snappy"`
	McCabeMin      *int32   `parquet:"mccabe_min,optional,snappy"`
	McCabeSum      *int32   `parquet:"mccabe_sum,optional,snappy"`
	McCabeMean     *int32   `parquet:"mccabe_mean,optional,snappy"`
	McCabeMedian   *int32   `parquet:"mccabe_median,optional,snappy"`
	HalsteadLength *int32   `parquet:"halstead_length,optional,snappy"`
	HalsteadVol    *int32   `parquet:"halstead_vol,optional,snappy"`
	HalsteadLevel  *float64 `parquet:"halstead_level,optional,snappy"`
	HalsteadMD     *int32   `parquet:"halstead_md,optional,snappy"`
}

// Run represents a single collection run with its outcome counts.
// This struct maps to the metrics_runs database table.
type Run struct {
	// ID is the unique identifier for this run
	ID int64 `parquet:"id,snappy"`

	// RepositoryURI is the repository the run measured
	RepositoryURI string `parquet:"repository_uri,snappy"`

	// StartedAt is when the run began (stored as TIMESTAMP with nanosecond precision)
	StartedAt time.Time `parquet:"started_at,snappy"`

	// EndedAt is when the run finished (nullable while running)
	EndedAt *time.Time `parquet:"ended_at,optional,snappy"`

	// DurationMs is the run duration in milliseconds (nullable while running)
	DurationMs *int64 `parquet:"duration_ms,optional,snappy"`

	Measured int64  `parquet:"measured,snappy"`
	Skipped  int64  `parquet:"skipped,snappy"`
	Failed   int64  `parquet:"failed,snappy"`
	Status   string `parquet:"status,snappy,dict"`
}

// WriteMetricsParquet writes a slice of Metric structs to a Parquet file.
func WriteMetricsParquet(data []Metric, outputPath string) error {
	return writeParquet(data, outputPath)
}

// WriteRunsParquet writes a slice of Run structs to a Parquet file.
func WriteRunsParquet(data []Run, outputPath string) error {
	return writeParquet(data, outputPath)
}

// writeParquet infers the schema from the struct tags of T.
func writeParquet[T any](data []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	writer := parquet.NewGenericWriter[T](file)
	if _, err := writer.Write(data); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return file.Close()
}

// ConvertMetricRows converts schema.MetricRow to Metric for Parquet export.
func ConvertMetricRows(rows []schema.MetricRow) []Metric {
	result := make([]Metric, len(rows))
	for i, r := range rows {
		result[i] = Metric{
			ID:             r.ID,
			FileID:         r.FileID,
			CommitID:       r.CommitID,
			Lang:           r.Lang,
			SLOC:           int32Ptr(r.SLOC),
			LOC:            int32Ptr(r.LOC),
			NComment:       int32Ptr(r.NComment),
			LComment:       int32Ptr(r.LComment),
			LBlank:         int32Ptr(r.LBlank),
			NFunctions:     int32Ptr(r.NFunctions),
			McCabeMax:      int32Ptr(r.McCabeMax),
			McCabeMin:      int32Ptr(r.McCabeMin),
			McCabeSum:      int32Ptr(r.McCabeSum),
			McCabeMean:     int32Ptr(r.McCabeMean),
			McCabeMedian:   int32Ptr(r.McCabeMedian),
			HalsteadLength: int32Ptr(r.HalsteadLength),
			HalsteadVol:    int32Ptr(r.HalsteadVol),
			HalsteadLevel:  r.HalsteadLevel,
			HalsteadMD:     int32Ptr(r.HalsteadMD),
		}
	}
	return result
}

// ConvertRunRecords converts schema.RunRecord to Run for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []Run {
	result := make([]Run, len(records))
	for i, r := range records {
		run := Run{
			ID:            r.ID,
			RepositoryURI: r.RepositoryURI,
			StartedAt:     r.StartedAt,
			EndedAt:       r.EndedAt,
			Measured:      r.Measured,
			Skipped:       r.Skipped,
			Failed:        r.Failed,
			Status:        string(r.Status),
		}
		if r.EndedAt != nil {
			ms := r.EndedAt.Sub(r.StartedAt).Milliseconds()
			run.DurationMs = &ms
		}
		result[i] = run
	}
	return result
}

func int32Ptr(v *int) *int32 {
	if v == nil {
		return nil
	}
	n := int32(*v)
	return &n
}
