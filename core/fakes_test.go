package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/huangsam/revmetrics/core/analyzer"
	"github.com/huangsam/revmetrics/internal/contract"
	"github.com/huangsam/revmetrics/schema"
)

// fakeRepo serves file contents keyed by path and numeric revision. The
// content of a path at rev is its newest version not after rev.
type fakeRepo struct {
	vcs    schema.VCSType
	files  map[string]map[int]string
	broken map[string]bool // paths whose checkout fails
	stuck  map[string]bool // destinations that never reach the requested revision

	mu      sync.Mutex
	roots   map[string]string
	revs    map[string]string
	calls   []string
	updates int
}

var _ contract.Repository = &fakeRepo{}

func newFakeRepo(vcs schema.VCSType) *fakeRepo {
	return &fakeRepo{
		vcs:    vcs,
		files:  make(map[string]map[int]string),
		broken: make(map[string]bool),
		stuck:  make(map[string]bool),
		roots:  make(map[string]string),
		revs:   make(map[string]string),
	}
}

func (r *fakeRepo) add(path string, rev int, content string) {
	if r.files[path] == nil {
		r.files[path] = make(map[int]string)
	}
	r.files[path][rev] = content
}

func (r *fakeRepo) Type() schema.VCSType { return r.vcs }

func (r *fakeRepo) URI() string { return "fake://repo" }

func (r *fakeRepo) Checkout(_ context.Context, path, dest, rev string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, "checkout "+path+"@"+rev)
	if r.broken[path] {
		return errors.New("backend unavailable")
	}
	if r.vcs.IsHierarchical() {
		r.roots[dest] = path
		return r.syncLocked(dest, rev)
	}
	content, ok := r.contentAt(path, rev)
	if !ok {
		return fmt.Errorf("%s does not exist at %s", path, rev)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(dest, []byte(content), 0o644); err != nil {
		return err
	}
	r.revs[dest] = rev
	return nil
}

func (r *fakeRepo) Update(_ context.Context, dest, rev string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates++
	r.calls = append(r.calls, "update "+filepath.Base(dest)+"@"+rev)
	return r.syncLocked(dest, rev)
}

func (r *fakeRepo) LastRevision(_ context.Context, dest string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stuck[filepath.Base(dest)] {
		return "0", nil
	}
	rev, ok := r.revs[dest]
	if !ok {
		return "", fmt.Errorf("nothing checked out at %s", dest)
	}
	return rev, nil
}

func (r *fakeRepo) syncLocked(dest, rev string) error {
	root := r.roots[dest]
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}
	for path := range r.files {
		rel, ok := strings.CutPrefix(path, root+"/")
		if !ok {
			continue
		}
		target := filepath.Join(dest, rel)
		content, ok := r.contentAt(path, rev)
		if !ok {
			_ = os.Remove(target)
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
			return err
		}
	}
	r.revs[dest] = rev
	return nil
}

func (r *fakeRepo) contentAt(path, rev string) (string, bool) {
	want, err := strconv.Atoi(rev)
	if err != nil {
		return "", false
	}
	best := -1
	for v := range r.files[path] {
		if v <= want && v > best {
			best = v
		}
	}
	if best < 0 {
		return "", false
	}
	return r.files[path][best], true
}

// fakeHistory answers history queries from fixed data.
type fakeHistory struct {
	repoID  int64
	dirs    []schema.TopLevelDir
	items   []schema.WorkItem
	deleted map[schema.MeasuredKey]bool
}

var _ contract.History = &fakeHistory{}

func (h *fakeHistory) RepositoryID(_ context.Context, uri string) (int64, error) {
	if h.repoID == 0 {
		return 0, fmt.Errorf("repository %s not found in history", uri)
	}
	return h.repoID, nil
}

func (h *fakeHistory) TopLevelDirs(context.Context, int64, bool) ([]schema.TopLevelDir, error) {
	return h.dirs, nil
}

func (h *fakeHistory) WorkItems(context.Context, int64, bool) ([]schema.WorkItem, error) {
	return h.items, nil
}

func (h *fakeHistory) PathForRevision(_ context.Context, _ int64, path string, _ int64, _ string) (string, error) {
	return strings.Trim(path, "/"), nil
}

func (h *fakeHistory) PathIsDeleted(_ context.Context, _ int64, _ string, fileID int64, rev string) (bool, error) {
	return h.deleted[schema.MeasuredKey{FileID: fileID, CommitID: mustAtoi(rev)}], nil
}

func mustAtoi(s string) int64 {
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

// stubAnalyzer counts lines itself and returns canned results for the rest.
type stubAnalyzer struct {
	path        string
	lang        schema.Language
	commentsErr error
	mccabeErr   error
	halsteadErr error
	values      []int
	units       int
}

func (a *stubAnalyzer) Language() schema.Language { return a.lang }

func (a *stubAnalyzer) LineCount(context.Context) (int, error) {
	content, err := os.ReadFile(a.path)
	if err != nil {
		return 0, err
	}
	return strings.Count(string(content), "\n"), nil
}

func (a *stubAnalyzer) SizeAndLanguage(ctx context.Context) (int, schema.Language, error) {
	n, err := a.LineCount(ctx)
	return n, a.lang, err
}

func (a *stubAnalyzer) CommentsAndBlanks(context.Context) (schema.CommentCounts, error) {
	if a.commentsErr != nil {
		return schema.CommentCounts{}, a.commentsErr
	}
	return schema.CommentCounts{NComment: schema.Ptr(2), LComment: schema.Ptr(3), LBlank: schema.Ptr(1)}, nil
}

func (a *stubAnalyzer) StructuralComplexity(context.Context) ([]int, int, error) {
	if a.mccabeErr != nil {
		return nil, 0, a.mccabeErr
	}
	return a.values, a.units, nil
}

func (a *stubAnalyzer) InformationalComplexity(context.Context) (schema.Halstead, error) {
	if a.halsteadErr != nil {
		return schema.Halstead{}, a.halsteadErr
	}
	return schema.Halstead{}, analyzer.ErrUnsupported
}

// stubFactory records every file it is asked to analyze.
type stubFactory struct {
	configure func(a *stubAnalyzer)

	mu    sync.Mutex
	paths []string
}

func (f *stubFactory) ForFile(_ context.Context, path string) analyzer.FileAnalyzer {
	f.mu.Lock()
	f.paths = append(f.paths, path)
	f.mu.Unlock()
	a := &stubAnalyzer{path: path, lang: schema.LangPython, values: []int{1, 3}, units: 2}
	if f.configure != nil {
		f.configure(a)
	}
	return a
}

func (f *stubFactory) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.paths...)
}

// recordingObserver tallies observer callbacks.
type recordingObserver struct {
	mu          sync.Mutex
	measured    int
	skipped     map[string]int
	failed      int
	flushes     int
	unavailable map[string]int
	onMeasured  func()
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{skipped: make(map[string]int), unavailable: make(map[string]int)}
}

func (o *recordingObserver) ItemMeasured() {
	o.mu.Lock()
	o.measured++
	cb := o.onMeasured
	o.mu.Unlock()
	if cb != nil {
		cb()
	}
}

func (o *recordingObserver) ItemSkipped(reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.skipped[reason]++
}

func (o *recordingObserver) ItemFailed() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failed++
}

func (o *recordingObserver) BatchFlushed() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.flushes++
}

func (o *recordingObserver) MeasurementUnavailable(measurement, reason string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.unavailable[measurement+"/"+reason]++
}
