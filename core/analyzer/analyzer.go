// Package analyzer wraps external measurement tools behind one capability
// interface with a variant per detected language.
package analyzer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/huangsam/revmetrics/internal/contract"
	"github.com/huangsam/revmetrics/schema"
)

var (
	// ErrToolNotAvailable signals that the external program behind a measurement is not installed.
	ErrToolNotAvailable = errors.New("measurement tool not available")

	// ErrUnsupported signals that a measurement is not defined for the file's language.
	ErrUnsupported = errors.New("measurement not supported for language")
)

// ToolNotFoundError names the missing program. It matches ErrToolNotAvailable.
type ToolNotFoundError struct {
	Program string
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("program %s not found", e.Program)
}

// Unwrap lets errors.Is match ErrToolNotAvailable.
func (e *ToolNotFoundError) Unwrap() error {
	return ErrToolNotAvailable
}

// FileAnalyzer measures a single materialized file. Every operation is
// independently fallible; a failure in one never affects the others.
type FileAnalyzer interface {
	// Language returns the detected language tag.
	Language() schema.Language

	// LineCount counts all lines in the file.
	LineCount(ctx context.Context) (int, error)

	// SizeAndLanguage returns the source line count and language tag from the classifier.
	SizeAndLanguage(ctx context.Context) (int, schema.Language, error)

	// CommentsAndBlanks returns comment and blank line counts.
	CommentsAndBlanks(ctx context.Context) (schema.CommentCounts, error)

	// StructuralComplexity returns one McCabe value per unit and the number of units.
	StructuralComplexity(ctx context.Context) ([]int, int, error)

	// InformationalComplexity returns the Halstead summary.
	InformationalComplexity(ctx context.Context) (schema.Halstead, error)
}

// base carries the state shared by every variant and answers the
// operations that need no language-specific tool.
type base struct {
	path    string
	lang    schema.Language
	sloc    int
	slocErr error
	runner  contract.ToolRunner
}

func (b *base) Language() schema.Language { return b.lang }

func (b *base) LineCount(_ context.Context) (int, error) {
	content, err := os.ReadFile(b.path)
	if err != nil {
		return 0, err
	}
	return countLines(content), nil
}

func (b *base) SizeAndLanguage(_ context.Context) (int, schema.Language, error) {
	if b.slocErr != nil {
		return 0, b.lang, b.slocErr
	}
	return b.sloc, b.lang, nil
}

// run locates program and executes it with args. Tools that exit non-zero
// after printing a report still have that report parsed.
func (b *base) run(ctx context.Context, program string, args ...string) ([]byte, error) {
	return runTool(ctx, b.runner, program, args...)
}

func runTool(ctx context.Context, runner contract.ToolRunner, program string, args ...string) ([]byte, error) {
	path, err := runner.LookPath(program)
	if err != nil {
		if errors.Is(err, contract.ErrProgramNotFound) {
			return nil, &ToolNotFoundError{Program: program}
		}
		return nil, err
	}
	out, err := runner.Run(ctx, path, args...)
	if err != nil && ctx.Err() == nil && len(bytes.TrimSpace(out)) > 0 {
		return out, nil
	}
	return out, err
}

// countLines counts newline-terminated lines plus a trailing partial line.
func countLines(content []byte) int {
	n := bytes.Count(content, []byte{'\n'})
	if len(content) > 0 && content[len(content)-1] != '\n' {
		n++
	}
	return n
}
