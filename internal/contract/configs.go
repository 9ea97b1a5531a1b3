package contract

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/huangsam/revmetrics/schema"
)

// Default values for configuration.
const (
	DefaultRetries   = 1
	DefaultBatchSize = 100
	DefaultLimit     = 25
	MaxLimit         = 10000
	DefaultPrecision = 2
)

// Config holds the runtime configuration for an extension run and the
// reporting commands. This struct is the "final, validated" config.
type Config struct {
	RepoURI  string         // Repository URI as recorded in the repositories table
	RepoPath string         // Local path used by per-file backends
	VCS      schema.VCSType // Version control system behind the repository

	DatabaseBackend schema.DatabaseBackend
	DatabaseConnect string // Please use env var as this is plaintext

	MeasureAll    bool     // Measure every revision instead of the branch head only
	Retries       int      // Extra materialization attempts after the first
	BatchSize     int      // Rows per flush
	ToolPaths     []string // Extra directories searched for measurement tools
	WorkspaceDir  string   // Parent of the temporary workspace (empty means os.TempDir)
	KeepWorkspace bool     // Leave the workspace behind for debugging

	LogLevel    slog.Level
	LogFormat   string
	MetricsAddr string // Address serving /metrics during a run (empty disables)

	Output     schema.OutputMode
	OutputFile string
	FileID     int64
	Limit      int
	Precision  int
	Width      int // Terminal width override (0 = auto-detect)
	UseColors  bool
}

// ConfigRawInput holds the raw inputs from all sources (flags, env, config file).
// Viper unmarshals into this struct.
type ConfigRawInput struct {
	// This is set manually from positional args, so no tag
	RepoPathStr string

	// --- Fields from rootCmd.PersistentFlags() ---
	DatabaseBackend string `mapstructure:"database-backend"`
	DatabaseConnect string `mapstructure:"database-connect"`
	LogLevel        string `mapstructure:"log-level"`
	LogFormat       string `mapstructure:"log-format"`
	Output          string `mapstructure:"output"`
	OutputFile      string `mapstructure:"output-file"`
	Precision       int    `mapstructure:"precision"`
	Width           int    `mapstructure:"width"`
	Color           string `mapstructure:"color"`

	// --- Fields from runCmd.Flags() ---
	RepoURI       string `mapstructure:"repo-uri"`
	VCS           string `mapstructure:"vcs"`
	MetricsAll    bool   `mapstructure:"metrics-all"`
	Retries       int    `mapstructure:"retries"`
	BatchSize     int    `mapstructure:"batch-size"`
	ToolPaths     string `mapstructure:"tool-paths"`
	WorkspaceDir  string `mapstructure:"workspace-dir"`
	KeepWorkspace bool   `mapstructure:"keep-workspace"`
	MetricsAddr   string `mapstructure:"metrics-addr"`

	// --- Fields from showCmd.Flags() ---
	FileID int64 `mapstructure:"file-id"`
	Limit  int   `mapstructure:"limit"`
}

// Clone returns a deep copy of the Config struct.
func (c *Config) Clone() *Config {
	clone := *c
	if c.ToolPaths != nil {
		clone.ToolPaths = make([]string, len(c.ToolPaths))
		copy(clone.ToolPaths, c.ToolPaths)
	}
	return &clone
}

// ProcessAndValidate validates the inputs shared by every command and
// populates cfg from them.
func ProcessAndValidate(cfg *Config, input *ConfigRawInput) error {
	if err := validateDatabaseConfig(cfg, input); err != nil {
		return err
	}
	return validateSimpleInputs(cfg, input)
}

// ResolveRepository validates the inputs needed to mine a repository:
// location, version control system and run tuning.
func ResolveRepository(cfg *Config, input *ConfigRawInput) error {
	repoPath := input.RepoPathStr
	if repoPath == "" {
		repoPath = "."
	}
	absPath, err := filepath.Abs(repoPath)
	if err != nil {
		return fmt.Errorf("failed to resolve repository path %q: %w", repoPath, err)
	}
	cfg.RepoPath = absPath

	cfg.RepoURI = strings.TrimSpace(input.RepoURI)
	if cfg.RepoURI == "" {
		cfg.RepoURI = cfg.RepoPath
	}

	if input.VCS == "" {
		detectFrom := cfg.RepoURI
		if cfg.RepoURI == cfg.RepoPath || !strings.Contains(cfg.RepoURI, "://") {
			detectFrom = cfg.RepoPath
		}
		if cfg.VCS, err = DetectVCS(detectFrom); err != nil {
			return err
		}
	} else {
		cfg.VCS = schema.VCSType(strings.ToLower(input.VCS))
		if _, ok := schema.ValidVCSTypes[cfg.VCS]; !ok {
			return fmt.Errorf("invalid vcs '%s'. must be svn, cvs, git", input.VCS)
		}
	}

	if input.Retries < 0 {
		return fmt.Errorf("retries must be zero or greater")
	}
	cfg.Retries = input.Retries

	if input.BatchSize < 1 {
		return fmt.Errorf("batch-size must be at least 1")
	}
	cfg.BatchSize = input.BatchSize

	cfg.MeasureAll = input.MetricsAll
	cfg.ToolPaths = splitList(input.ToolPaths)
	cfg.WorkspaceDir = input.WorkspaceDir
	cfg.KeepWorkspace = input.KeepWorkspace
	cfg.MetricsAddr = input.MetricsAddr
	return nil
}

// ValidateDatabaseConnectionString validates the connection string for the given backend.
func ValidateDatabaseConnectionString(backend schema.DatabaseBackend, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		return nil
	case schema.MySQLBackend:
		if connStr == "" {
			return fmt.Errorf("database-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "@tcp(") {
			return fmt.Errorf("MySQL connection string must contain '@tcp(' for host:port specification")
		}
		if !strings.Contains(connStr, "/") {
			return fmt.Errorf("MySQL connection string must contain '/' followed by database name")
		}
	case schema.PostgreSQLBackend:
		if connStr == "" {
			return fmt.Errorf("database-connect is required when using %s backend", backend)
		}
		if !strings.Contains(connStr, "host=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'host=' parameter")
		}
		if !strings.Contains(connStr, "dbname=") {
			return fmt.Errorf("PostgreSQL connection string must contain 'dbname=' parameter")
		}
	}
	return nil
}

// validateDatabaseConfig validates the backend and its connection string.
func validateDatabaseConfig(cfg *Config, input *ConfigRawInput) error {
	cfg.DatabaseBackend = schema.DatabaseBackend(strings.ToLower(input.DatabaseBackend))
	if _, ok := schema.ValidDatabaseBackends[cfg.DatabaseBackend]; !ok {
		return fmt.Errorf("invalid database backend '%s'. must be sqlite, mysql, postgresql", input.DatabaseBackend)
	}
	cfg.DatabaseConnect = input.DatabaseConnect
	return ValidateDatabaseConnectionString(cfg.DatabaseBackend, cfg.DatabaseConnect)
}

// validateSimpleInputs processes and validates all non-database fields.
func validateSimpleInputs(cfg *Config, input *ConfigRawInput) error {
	cfg.OutputFile = input.OutputFile
	cfg.Width = input.Width
	cfg.FileID = input.FileID

	colors, err := ParseBoolString(input.Color)
	if err != nil {
		return fmt.Errorf("invalid --color value: %w", err)
	}
	cfg.UseColors = colors

	cfg.Output = schema.OutputMode(strings.ToLower(input.Output))
	if _, ok := schema.ValidOutputModes[cfg.Output]; !ok {
		return fmt.Errorf("invalid output format '%s'. must be text, csv, json, parquet", input.Output)
	}

	if input.Precision < 0 || input.Precision > 6 {
		return fmt.Errorf("precision must be between 0 and 6")
	}
	cfg.Precision = input.Precision

	if input.Limit < 0 || input.Limit > MaxLimit {
		return fmt.Errorf("limit must be between 0 and %d", MaxLimit)
	}
	cfg.Limit = input.Limit

	if cfg.LogLevel, err = ParseLogLevel(input.LogLevel); err != nil {
		return err
	}
	cfg.LogFormat = strings.ToLower(input.LogFormat)
	if _, ok := validLogFormats[cfg.LogFormat]; !ok {
		return fmt.Errorf("invalid log format '%s'. must be text, json", input.LogFormat)
	}
	return nil
}

// splitList splits a comma or path-list separated string into trimmed entries.
func splitList(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == filepath.ListSeparator
	})
	var out []string
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
