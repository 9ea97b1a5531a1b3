package analyzer

import (
	"context"

	"github.com/huangsam/revmetrics/schema"
)

// defaultAnalyzer reports size only. It serves languages without a dedicated tool.
type defaultAnalyzer struct {
	base
}

var _ FileAnalyzer = &defaultAnalyzer{} // Compile-time check

func (a *defaultAnalyzer) CommentsAndBlanks(context.Context) (schema.CommentCounts, error) {
	return schema.CommentCounts{}, ErrUnsupported
}

func (a *defaultAnalyzer) StructuralComplexity(context.Context) ([]int, int, error) {
	return nil, 0, ErrUnsupported
}

func (a *defaultAnalyzer) InformationalComplexity(context.Context) (schema.Halstead, error) {
	return schema.Halstead{}, ErrUnsupported
}
