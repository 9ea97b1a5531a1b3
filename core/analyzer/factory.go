package analyzer

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/src-d/enry/v2"

	"github.com/huangsam/revmetrics/internal/contract"
	"github.com/huangsam/revmetrics/schema"
)

// enrySampleSize bounds how much content is read for fallback detection.
const enrySampleSize = 16 * 1024

// enryLanguages maps enry language names onto the classifier tags.
var enryLanguages = map[string]schema.Language{
	"C":      schema.LangC,
	"Python": schema.LangPython,
	"C++":    schema.LangCPP,
	"Java":   schema.LangJava,
}

// Factory builds the analyzer variant for a materialized file.
type Factory struct {
	runner contract.ToolRunner
}

// NewFactory creates a Factory that runs measurement tools through runner.
func NewFactory(runner contract.ToolRunner) *Factory {
	return &Factory{runner: runner}
}

// ForFile classifies path and returns the analyzer for its language.
// Classification never fails: when sloccount is unavailable or broken the
// language falls back to content detection and SizeAndLanguage reports the error.
func (f *Factory) ForFile(ctx context.Context, path string) FileAnalyzer {
	b := base{path: path, runner: f.runner}
	b.sloc, b.lang, b.slocErr = classify(ctx, f.runner, path)
	if b.slocErr != nil {
		b.lang = detectLanguage(path)
	}

	switch b.lang {
	case schema.LangC:
		return &cAnalyzer{base: b}
	case schema.LangPython:
		return &pythonAnalyzer{base: b}
	case schema.LangCPP:
		return &ccccAnalyzer{base: b, toolLang: "c++"}
	case schema.LangJava:
		return &ccccAnalyzer{base: b, toolLang: "java"}
	default:
		return &defaultAnalyzer{base: b}
	}
}

// classify runs sloccount over path and reads the source line count and
// language from its top_dir detail line. Output without such a line means
// sloccount found nothing it recognizes.
func classify(ctx context.Context, runner contract.ToolRunner, path string) (int, schema.Language, error) {
	out, err := runTool(ctx, runner, "sloccount", "--wide", "--details", path)
	if err != nil {
		return 0, schema.LangUnknown, err
	}
	return parseSloccount(out)
}

func parseSloccount(out []byte) (int, schema.Language, error) {
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, "\ttop_dir\t") {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 4 {
			continue
		}
		sloc, err := strconv.Atoi(strings.TrimSpace(fields[0]))
		if err != nil {
			return 0, schema.LangUnknown, err
		}
		return sloc, schema.Language(strings.TrimSpace(fields[1])), nil
	}
	if err := scanner.Err(); err != nil {
		return 0, schema.LangUnknown, err
	}
	return 0, schema.LangUnknown, nil
}

// detectLanguage guesses the language from the file name and a content sample.
func detectLanguage(path string) schema.Language {
	file, err := os.Open(path)
	if err != nil {
		return schema.LangUnknown
	}
	defer func() { _ = file.Close() }()

	sample, err := io.ReadAll(io.LimitReader(file, enrySampleSize))
	if err != nil {
		return schema.LangUnknown
	}
	if lang, ok := enryLanguages[enry.GetLanguage(filepath.Base(path), sample)]; ok {
		return lang
	}
	return schema.LangUnknown
}
