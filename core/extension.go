package core

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/huangsam/revmetrics/internal/contract"
	"github.com/huangsam/revmetrics/schema"
)

// MetricsExtension is the name the metrics collector is registered under.
const MetricsExtension = "Metrics"

// RunFunc executes an extension against a repository.
type RunFunc func(ctx context.Context, cfg *contract.Config, deps Deps) (schema.RunSummary, error)

// Extension declares a unit of work and the extensions that must run before it.
type Extension struct {
	Name string
	Deps []string
	Run  RunFunc
}

var (
	extensionsMu sync.RWMutex
	extensions   = make(map[string]Extension)
)

func init() {
	if err := RegisterExtension(Extension{
		Name: MetricsExtension,
		Deps: []string{"FilePaths", "FileTypes"},
		Run: func(ctx context.Context, cfg *contract.Config, deps Deps) (schema.RunSummary, error) {
			return NewCollector(cfg, deps).Run(ctx)
		},
	}); err != nil {
		panic(err)
	}
}

// RegisterExtension adds ext to the registry. Names must be unique.
func RegisterExtension(ext Extension) error {
	if ext.Name == "" {
		return fmt.Errorf("extension name is required")
	}
	extensionsMu.Lock()
	defer extensionsMu.Unlock()
	if _, ok := extensions[ext.Name]; ok {
		return fmt.Errorf("extension %s is already registered", ext.Name)
	}
	extensions[ext.Name] = ext
	return nil
}

// GetExtension returns the extension registered under name.
func GetExtension(name string) (Extension, error) {
	extensionsMu.RLock()
	defer extensionsMu.RUnlock()
	ext, ok := extensions[name]
	if !ok {
		return Extension{}, fmt.Errorf("unknown extension %s", name)
	}
	return ext, nil
}

// ExtensionNames returns the registered names in sorted order.
func ExtensionNames() []string {
	extensionsMu.RLock()
	defer extensionsMu.RUnlock()
	names := make([]string, 0, len(extensions))
	for name := range extensions {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
