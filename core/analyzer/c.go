package analyzer

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/huangsam/revmetrics/schema"
)

// cAnalyzer measures ANSI C sources with the kdsi, halstead and mccabe tools.
type cAnalyzer struct {
	base
}

var _ FileAnalyzer = &cAnalyzer{} // Compile-time check

func (a *cAnalyzer) CommentsAndBlanks(ctx context.Context) (schema.CommentCounts, error) {
	out, err := a.run(ctx, "kdsi", a.path)
	if err != nil {
		return schema.CommentCounts{}, err
	}
	return parseKdsi(out)
}

func (a *cAnalyzer) StructuralComplexity(ctx context.Context) ([]int, int, error) {
	out, err := a.run(ctx, "mccabe", "-n", a.path)
	if err != nil {
		return nil, 0, err
	}
	values := parseMcCabe(out)
	return values, len(values), nil
}

func (a *cAnalyzer) InformationalComplexity(ctx context.Context) (schema.Halstead, error) {
	out, err := a.run(ctx, "halstead", a.path)
	if err != nil {
		return schema.Halstead{}, err
	}
	return parseHalstead(out)
}

// parseKdsi reads "<code> <blank> <comment lines> <comments> <file>".
func parseKdsi(out []byte) (schema.CommentCounts, error) {
	fields := strings.Fields(string(out))
	if len(fields) != 5 {
		return schema.CommentCounts{}, fmt.Errorf("unexpected kdsi output: %q", strings.TrimSpace(string(out)))
	}
	blank, err := strconv.Atoi(fields[1])
	if err != nil {
		return schema.CommentCounts{}, fmt.Errorf("invalid kdsi blank count: %w", err)
	}
	lines, err := strconv.Atoi(fields[2])
	if err != nil {
		return schema.CommentCounts{}, fmt.Errorf("invalid kdsi comment line count: %w", err)
	}
	number, err := strconv.Atoi(fields[3])
	if err != nil {
		return schema.CommentCounts{}, fmt.Errorf("invalid kdsi comment count: %w", err)
	}
	return schema.CommentCounts{
		NComment: schema.Ptr(number),
		LComment: schema.Ptr(lines),
		LBlank:   schema.Ptr(blank),
	}, nil
}

// parseMcCabe keeps the per-function lines, which have exactly five tab
// separated fields with the complexity second to last.
func parseMcCabe(out []byte) []int {
	var values []int
	for _, line := range strings.Split(string(out), "\n") {
		fields := strings.Split(line, "\t")
		if len(fields) != 5 {
			continue
		}
		v, err := strconv.Atoi(strings.TrimSpace(fields[len(fields)-2]))
		if err != nil {
			v = 0
		}
		values = append(values, v)
	}
	return values
}

// parseHalstead reads "<file>\t<length>\t<volume>\t<level>\t<md>". Fields that
// do not parse are left unset.
func parseHalstead(out []byte) (schema.Halstead, error) {
	fields := strings.Split(strings.TrimSpace(string(out)), "\t")
	if len(fields) < 5 {
		return schema.Halstead{}, fmt.Errorf("unexpected halstead output: %q", strings.TrimSpace(string(out)))
	}

	var h schema.Halstead
	if v, err := strconv.Atoi(strings.TrimSpace(fields[1])); err == nil {
		h.Length = schema.Ptr(v)
	}
	if v, err := strconv.Atoi(strings.TrimSpace(fields[2])); err == nil {
		h.Volume = schema.Ptr(v)
	}
	level := strings.ReplaceAll(strings.TrimSpace(fields[3]), ",", ".")
	if v, err := strconv.ParseFloat(level, 64); err == nil && !math.IsInf(v, 0) && !math.IsNaN(v) {
		h.Level = schema.Ptr(v)
	}
	if v, err := strconv.Atoi(strings.TrimSpace(fields[4])); err == nil {
		h.MD = schema.Ptr(v)
	}
	return h, nil
}
