package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend holding history and metrics.
	DatabaseBackend string

	// VCSType represents the version control system behind a repository.
	VCSType string

	// Language represents a language tag reported by the size classifier.
	Language string

	// RunStatus represents the final state of an extension run.
	RunStatus string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
)

// All database backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
)

// All version control systems supported.
const (
	SVN VCSType = "svn"
	CVS VCSType = "cvs"
	Git VCSType = "git"
)

// Language tags as emitted by sloccount.
const (
	LangC       Language = "ansic"
	LangPython  Language = "python"
	LangCPP     Language = "cpp"
	LangJava    Language = "java"
	LangUnknown Language = "unknown" // default
)

// Run states recorded in the run log.
const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// ComposedRevisionSeparator splits a composed revision into its checkout token and extra state.
const ComposedRevisionSeparator = "|"

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
}

// ValidVCSTypes lists all valid version control systems.
var ValidVCSTypes = map[VCSType]struct{}{
	SVN: {},
	CVS: {},
	Git: {},
}

// IsHierarchical reports whether the VCS materializes whole subtrees that are
// advanced in place rather than checking out single files.
func (v VCSType) IsHierarchical() bool {
	return v == SVN
}

// TracksPathHistory reports whether the VCS records renames and deletions that
// require history lookups before materializing a path.
func (v VCSType) TracksPathHistory() bool {
	return v != CVS
}
