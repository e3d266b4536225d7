package runtime

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/risor-io/risor"
	"github.com/risor-io/risor/importer"
	"github.com/risor-io/risor/object"
)

// ErrNoDecision is returned when a script finishes without calling decide.
var ErrNoDecision = errors.New("script did not call decide")

// Runtime embeds a Risor VM and evaluates oracle scripts against parser
// configurations.
type Runtime struct {
	scriptsDir string
	fsys       fs.FS
	logger     *slog.Logger

	mu      sync.RWMutex
	sources map[string]string // script path → source
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithRuntimeFS configures the Runtime to load scripts from an fs.FS
// instead of from disk. Also configures the Risor importer to use
// FSImporter for import statement resolution.
func WithRuntimeFS(fsys fs.FS) RuntimeOption {
	return func(r *Runtime) {
		r.fsys = fsys
	}
}

// WithRuntimeLogger sets the logger behind the scripts' log object.
func WithRuntimeLogger(l *slog.Logger) RuntimeOption {
	return func(r *Runtime) {
		r.logger = l
	}
}

// NewRuntime creates a Runtime that resolves relative script paths against
// scriptsDir.
func NewRuntime(scriptsDir string, opts ...RuntimeOption) *Runtime {
	r := &Runtime{
		scriptsDir: scriptsDir,
		logger:     slog.Default(),
		sources:    make(map[string]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunScript loads the script at scriptPath (cached after the first load)
// and evaluates it against cfg, returning the name passed to decide.
func (r *Runtime) RunScript(ctx context.Context, scriptPath string, cfg Config) (string, error) {
	src, err := r.cachedScript(scriptPath)
	if err != nil {
		return "", err
	}
	return r.eval(ctx, src, scriptPath, cfg)
}

// RunSource evaluates Risor source directly. Useful for testing without
// script files.
func (r *Runtime) RunSource(ctx context.Context, source string, cfg Config) (string, error) {
	return r.eval(ctx, source, "<inline>", cfg)
}

func (r *Runtime) eval(ctx context.Context, source, label string, cfg Config) (string, error) {
	d := &decision{}
	globals := r.buildGlobals(cfg, d)

	var opts []risor.Option
	for name, val := range globals {
		opts = append(opts, risor.WithGlobal(name, val))
	}

	// Wire importer so Risor import statements resolve correctly.
	if imp := r.buildImporter(globals); imp != nil {
		opts = append(opts, risor.WithImporter(imp))
	}

	if _, err := risor.Eval(ctx, source, opts...); err != nil {
		return "", fmt.Errorf("runtime: script %s: %w", label, err)
	}
	if !d.set {
		return "", fmt.Errorf("runtime: script %s: %w", label, ErrNoDecision)
	}
	return d.name, nil
}

// buildImporter returns a Risor importer configured for the Runtime's script source.
// Returns nil if neither fs.FS nor scriptsDir is configured.
func (r *Runtime) buildImporter(globals map[string]any) importer.Importer {
	globalNames := make([]string, 0, len(globals))
	for name := range globals {
		globalNames = append(globalNames, name)
	}

	if r.fsys != nil {
		return importer.NewFSImporter(importer.FSImporterOptions{
			GlobalNames: globalNames,
			SourceFS:    r.fsys,
			Extensions:  []string{".risor"},
		})
	}
	if r.scriptsDir != "" {
		return importer.NewLocalImporter(importer.LocalImporterOptions{
			GlobalNames: globalNames,
			SourceDir:   r.scriptsDir,
			Extensions:  []string{".risor"},
		})
	}
	return nil
}

// Source returns the script at path as RunScript evaluates it. The first
// load is cached, so later edits to the file are not seen.
func (r *Runtime) Source(path string) (string, error) {
	return r.cachedScript(path)
}

func (r *Runtime) cachedScript(path string) (string, error) {
	r.mu.RLock()
	src, ok := r.sources[path]
	r.mu.RUnlock()
	if ok {
		return src, nil
	}
	src, err := r.LoadScript(path)
	if err != nil {
		return "", err
	}
	r.mu.Lock()
	r.sources[path] = src
	r.mu.Unlock()
	return src, nil
}

// LoadScript reads a .risor file and returns its source code.
// When an fs.FS is configured, uses fs.ReadFile on the embedded filesystem.
// Otherwise, uses os.ReadFile with scriptsDir as the base directory.
func (r *Runtime) LoadScript(path string) (string, error) {
	if r.fsys != nil {
		// For fs.FS, strip any leading path separator so the path is
		// relative within the FS (e.g., "/oracle/baseline.risor" -> "oracle/baseline.risor").
		fsPath := strings.TrimPrefix(filepath.ToSlash(path), "/")
		data, err := fs.ReadFile(r.fsys, fsPath)
		if err != nil {
			return "", fmt.Errorf("runtime: loading script %s from fs: %w", fsPath, err)
		}
		return string(data), nil
	}

	fullPath := path
	if !filepath.IsAbs(path) {
		fullPath = filepath.Join(r.scriptsDir, path)
	}

	data, err := os.ReadFile(fullPath)
	if err != nil {
		return "", fmt.Errorf("runtime: loading script %s: %w", fullPath, err)
	}
	return string(data), nil
}

// OracleScriptPath returns the path to a named oracle script.
func OracleScriptPath(name string) string {
	return filepath.Join("oracle", name+".risor")
}

// buildGlobals constructs the full set of globals exposed to Risor scripts.
// Risor's default builtins replace globals of the same name, so none of
// these may shadow one. The buffer is exposed as queue for that reason.
func (r *Runtime) buildGlobals(cfg Config, d *decision) map[string]any {
	return map[string]any{
		"stack":       tokenList(cfg.Stack),
		"queue":       tokenList(cfg.Buffer),
		"arcs":        arcList(cfg.Arcs),
		"sentence_id": object.NewInt(int64(cfg.SentenceID)),
		"steps":       object.NewInt(int64(cfg.Steps)),
		"stack_at":    makeStackAtFn(cfg),
		"queue_at":    makeQueueAtFn(cfg),
		"has_head":    makeHasHeadFn(cfg),
		"decide":      makeDecideFn(d),
		"log":         mustProxy(&logObject{logger: r.logger, sentenceID: cfg.SentenceID}),
	}
}

func mustProxy(v any) object.Object {
	p, err := object.NewProxy(v)
	if err != nil {
		panic(fmt.Sprintf("runtime: proxy error: %v", err))
	}
	return p
}
