package analyzer

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/huangsam/revmetrics/schema"
)

// ccccReport is what the analyzer needs from cccc.xml.
type ccccReport struct {
	commentLines *int
	mccabe       []int
	modules      int
}

// ccccAnalyzer measures C++ and Java sources with cccc. The tool runs at
// most once per file and its report answers every measurement.
type ccccAnalyzer struct {
	base
	toolLang string

	once   sync.Once
	report ccccReport
	err    error
}

var _ FileAnalyzer = &ccccAnalyzer{} // Compile-time check

func (a *ccccAnalyzer) CommentsAndBlanks(ctx context.Context) (schema.CommentCounts, error) {
	report, err := a.load(ctx)
	if err != nil {
		return schema.CommentCounts{}, err
	}
	return schema.CommentCounts{LComment: report.commentLines}, nil
}

func (a *ccccAnalyzer) StructuralComplexity(ctx context.Context) ([]int, int, error) {
	report, err := a.load(ctx)
	if err != nil {
		return nil, 0, err
	}
	if len(report.mccabe) == 0 {
		return nil, 0, nil
	}
	return report.mccabe, report.modules, nil
}

func (a *ccccAnalyzer) InformationalComplexity(context.Context) (schema.Halstead, error) {
	return schema.Halstead{}, ErrUnsupported
}

func (a *ccccAnalyzer) load(ctx context.Context) (ccccReport, error) {
	a.once.Do(func() {
		a.report, a.err = a.runCCCC(ctx)
	})
	return a.report, a.err
}

func (a *ccccAnalyzer) runCCCC(ctx context.Context) (ccccReport, error) {
	outDir, err := os.MkdirTemp("", "cccc-")
	if err != nil {
		return ccccReport{}, fmt.Errorf("failed to create cccc output directory: %w", err)
	}
	defer func() { _ = os.RemoveAll(outDir) }()

	// cccc exits non-zero on parse warnings while still writing a usable report.
	_, runErr := a.run(ctx, "cccc", "--outdir="+outDir, "--lang="+a.toolLang, a.path)
	var notFound *ToolNotFoundError
	if errors.As(runErr, &notFound) {
		return ccccReport{}, runErr
	}

	file, err := os.Open(filepath.Join(outDir, "cccc.xml"))
	if err != nil {
		if runErr != nil {
			return ccccReport{}, runErr
		}
		return ccccReport{}, fmt.Errorf("cccc produced no report: %w", err)
	}
	defer func() { _ = file.Close() }()
	return parseCCCC(file)
}

// parseCCCC streams the report. Comment lines come from project_summary;
// every module element counts as a unit and contributes its McCabe value.
func parseCCCC(r io.Reader) (ccccReport, error) {
	var report ccccReport
	decoder := xml.NewDecoder(r)
	current := ""
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			return report, nil
		}
		if err != nil {
			return ccccReport{}, fmt.Errorf("failed to parse cccc report: %w", err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "project_summary":
				current = el.Name.Local
			case "module":
				current = el.Name.Local
				report.modules++
			case "lines_of_comment":
				if current == "project_summary" {
					if v, ok := intAttr(el, "value"); ok {
						report.commentLines = schema.Ptr(v)
					}
				}
			case "McCabes_cyclomatic_complexity":
				if current == "module" {
					if v, ok := intAttr(el, "value"); ok {
						report.mccabe = append(report.mccabe, v)
					}
				}
			}
		case xml.EndElement:
			if el.Name.Local == "project_summary" || el.Name.Local == "module" {
				current = ""
			}
		}
	}
}

func intAttr(el xml.StartElement, name string) (int, bool) {
	for _, attr := range el.Attr {
		if attr.Name.Local == name {
			v, err := strconv.Atoi(attr.Value)
			return v, err == nil
		}
	}
	return 0, false
}
