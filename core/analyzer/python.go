package analyzer

import (
	"context"
	"regexp"
	"strconv"

	"github.com/huangsam/revmetrics/schema"
)

var (
	pymetricsCommentsRe = regexp.MustCompile(`(?m)^[ \x08\t]+([0-9]+)[ \x08\t]+numComments\r?$`)
	pymetricsMcCabeRe   = regexp.MustCompile(`(?m)^[ \x08\t]+([0-9]+)[ \x08\t]+(.*)$`)
)

// pythonAnalyzer measures Python sources with pymetrics.
type pythonAnalyzer struct {
	base
}

var _ FileAnalyzer = &pythonAnalyzer{} // Compile-time check

// CommentsAndBlanks only reports comment lines; pymetrics has no blank or comment counts.
// Output without a numComments line leaves every count unset.
func (a *pythonAnalyzer) CommentsAndBlanks(ctx context.Context) (schema.CommentCounts, error) {
	out, err := a.run(ctx, "pymetrics", "-C", "-S", "-i", "simple:SimpleMetric", a.path)
	if err != nil {
		return schema.CommentCounts{}, err
	}
	m := pymetricsCommentsRe.FindSubmatch(out)
	if m == nil {
		return schema.CommentCounts{}, nil
	}
	lines, err := strconv.Atoi(string(m[1]))
	if err != nil {
		return schema.CommentCounts{}, err
	}
	return schema.CommentCounts{LComment: schema.Ptr(lines)}, nil
}

func (a *pythonAnalyzer) StructuralComplexity(ctx context.Context) ([]int, int, error) {
	out, err := a.run(ctx, "pymetrics", "-C", "-S", "-B", "-i", "mccabe:McCabeMetric", a.path)
	if err != nil {
		return nil, 0, err
	}
	var values []int
	for _, m := range pymetricsMcCabeRe.FindAllSubmatch(out, -1) {
		v, err := strconv.Atoi(string(m[1]))
		if err != nil {
			v = 0
		}
		values = append(values, v)
	}
	return values, len(values), nil
}

func (a *pythonAnalyzer) InformationalComplexity(context.Context) (schema.Halstead, error) {
	return schema.Halstead{}, ErrUnsupported
}
