// Package schema has the models and constants shared by all parts of revmetrics.
package schema

import "strings"

// WorkItem identifies one file's content as of one commit.
// It is read from the history tables and never mutated afterwards.
type WorkItem struct {
	Revision string // Revision token as stored in scmlog.rev
	Path     string // Repository-relative path from file_paths
	CommitID int64  // scmlog.id
	FileID   int64  // tree.id
	Composed bool   // Revision carries extra state after ComposedRevisionSeparator
}

// CheckoutRevision returns the token used to materialize the item.
// Composed revisions only use the leading component.
func (w WorkItem) CheckoutRevision() string {
	if !w.Composed {
		return w.Revision
	}
	rev, _, _ := strings.Cut(w.Revision, ComposedRevisionSeparator)
	return rev
}

// Key returns the skip-set key for the item.
func (w WorkItem) Key() MeasuredKey {
	return MeasuredKey{FileID: w.FileID, CommitID: w.CommitID}
}

// MeasuredKey identifies a (file, commit) pair that already has a metrics row.
type MeasuredKey struct {
	FileID   int64
	CommitID int64
}

// TopLevelDir is a root-level directory of a hierarchical repository along
// with the oldest revision in which it appears.
type TopLevelDir struct {
	Name          string
	TreeID        int64
	FirstRevision string
}

// Measures holds one file's metric results.
// Every field is optional: nil means the value was not computed, which is
// distinct from a computed zero.
type Measures struct {
	Lang           *string  `json:"lang"`
	SLOC           *int     `json:"sloc"`
	LOC            *int     `json:"loc"`
	NComment       *int     `json:"ncomment"`
	LComment       *int     `json:"lcomment"`
	LBlank         *int     `json:"lblank"`
	NFunctions     *int     `json:"nfunctions"`
	McCabeMax      *int     `json:"mccabe_max"`
	McCabeMin      *int     `json:"mccabe_min"`
	McCabeSum      *int     `json:"mccabe_sum"`
	McCabeMean     *int     `json:"mccabe_mean"`
	McCabeMedian   *int     `json:"mccabe_median"`
	HalsteadLength *int     `json:"halstead_length"`
	HalsteadVol    *int     `json:"halstead_vol"`
	HalsteadLevel  *float64 `json:"halstead_level"`
	HalsteadMD     *int     `json:"halstead_md"`
}

// ApplyMcCabe copies the aggregated complexity statistics into the record.
func (m *Measures) ApplyMcCabe(s McCabeStats) {
	m.McCabeMax = s.Max
	m.McCabeMin = s.Min
	m.McCabeSum = s.Sum
	m.McCabeMean = s.Mean
	m.McCabeMedian = s.Median
}

// ApplyComments copies comment and blank counts into the record.
func (m *Measures) ApplyComments(c CommentCounts) {
	m.NComment = c.NComment
	m.LComment = c.LComment
	m.LBlank = c.LBlank
}

// ApplyHalstead copies the informational complexity values into the record.
func (m *Measures) ApplyHalstead(h Halstead) {
	m.HalsteadLength = h.Length
	m.HalsteadVol = h.Volume
	m.HalsteadLevel = h.Level
	m.HalsteadMD = h.MD
}

// CommentCounts is the result of a comments-and-blanks measurement.
type CommentCounts struct {
	NComment *int // Number of comments
	LComment *int // Lines of comments
	LBlank   *int // Blank lines
}

// Halstead is the result of an informational complexity measurement.
type Halstead struct {
	Length *int
	Volume *int
	Level  *float64
	MD     *int // Maintainability index as reported by the tool
}

// McCabeStats summarizes per-unit cyclomatic complexity values.
type McCabeStats struct {
	Sum    *int
	Min    *int
	Max    *int
	Mean   *int
	Median *int
}

// MetricRow is the persisted form of Measures.
type MetricRow struct {
	ID       int64 `json:"id"`
	FileID   int64 `json:"file_id"`
	CommitID int64 `json:"commit_id"`
	Measures
}
