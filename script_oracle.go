package depparse

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"

	depruntime "github.com/jward/depparse/internal/runtime"
)

// ScriptOracle decides transitions by running a Risor script once per
// configuration. The script reads the globals stack, queue (the buffer),
// arcs, sentence_id and steps, may call stack_at(i), queue_at(i) and
// has_head(position), and must call decide("S"|"LA"|"RA").
type ScriptOracle struct {
	runtime *depruntime.Runtime
	path    string
	source  string
}

var _ Oracle = (*ScriptOracle)(nil)

// ScriptOption configures a ScriptOracle.
type ScriptOption func(*scriptConfig)

type scriptConfig struct {
	dir    string
	fsys   fs.FS
	logger *slog.Logger
}

// WithScriptsDir resolves relative script paths and imports against dir.
func WithScriptsDir(dir string) ScriptOption {
	return func(c *scriptConfig) {
		c.dir = dir
	}
}

// WithScriptsFS loads scripts and imports from fsys instead of disk.
func WithScriptsFS(fsys fs.FS) ScriptOption {
	return func(c *scriptConfig) {
		c.fsys = fsys
	}
}

// WithScriptLogger routes the scripts' log.info/warn/error calls to l.
func WithScriptLogger(l *slog.Logger) ScriptOption {
	return func(c *scriptConfig) {
		c.logger = l
	}
}

// NewScriptOracle creates an oracle running the script at path.
func NewScriptOracle(path string, opts ...ScriptOption) *ScriptOracle {
	return &ScriptOracle{runtime: newScriptRuntime(opts), path: path}
}

// NewSourceOracle creates an oracle running inline Risor source.
func NewSourceOracle(source string, opts ...ScriptOption) *ScriptOracle {
	return &ScriptOracle{runtime: newScriptRuntime(opts), source: source}
}

func newScriptRuntime(opts []ScriptOption) *depruntime.Runtime {
	c := &scriptConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	rtOpts := []depruntime.RuntimeOption{depruntime.WithRuntimeLogger(c.logger)}
	if c.fsys != nil {
		rtOpts = append(rtOpts, depruntime.WithRuntimeFS(c.fsys))
	}
	return depruntime.NewRuntime(c.dir, rtOpts...)
}

// Name identifies the oracle by its script path and the content of the
// script source. Imported modules are not part of the name. A script that
// cannot be loaded is named by its path alone; Predict then fails on it.
func (o *ScriptOracle) Name() string {
	if o.path == "" {
		return "script:inline:" + contentKey(o.source)
	}
	src, err := o.runtime.Source(o.path)
	if err != nil {
		return "script:" + o.path
	}
	return "script:" + o.path + ":" + contentKey(src)
}

func (o *ScriptOracle) Predict(ctx context.Context, batch []*ParseState) ([]Transition, error) {
	out := make([]Transition, len(batch))
	for i, s := range batch {
		var (
			name string
			err  error
		)
		if o.path != "" {
			name, err = o.runtime.RunScript(ctx, o.path, runtimeView(s))
		} else {
			name, err = o.runtime.RunSource(ctx, o.source, runtimeView(s))
		}
		if err != nil {
			return nil, fmt.Errorf("sentence %d: %w", s.ID(), err)
		}
		t, err := ParseTransition(name)
		if err != nil {
			return nil, fmt.Errorf("sentence %d: %w", s.ID(), err)
		}
		out[i] = t
	}
	return out, nil
}

// runtimeView converts a state into the runtime's view of it.
func runtimeView(s *ParseState) depruntime.Config {
	item := func(pos int) depruntime.Item {
		return depruntime.Item{Position: pos, Token: string(s.Token(pos))}
	}
	cfg := depruntime.Config{
		SentenceID: s.ID(),
		Steps:      s.Steps(),
		Stack:      make([]depruntime.Item, len(s.stack)),
		Buffer:     make([]depruntime.Item, 0, s.bufferLen()),
		Arcs:       make([]depruntime.ArcItem, len(s.arcs)),
	}
	for i, pos := range s.stack {
		cfg.Stack[i] = item(pos)
	}
	for _, pos := range s.buffer[s.front:] {
		cfg.Buffer = append(cfg.Buffer, item(pos))
	}
	for i, a := range s.arcs {
		cfg.Arcs[i] = depruntime.ArcItem{Head: item(a.Head), Dependent: item(a.Dependent)}
	}
	return cfg
}
