package runtime

import (
	"context"
	"log/slog"

	"github.com/risor-io/risor/object"
)

// Item is one stack or buffer entry as seen by a script. Position 0 is ROOT.
type Item struct {
	Position int
	Token    string
}

// ArcItem is an attached dependency as seen by a script.
type ArcItem struct {
	Head      Item
	Dependent Item
}

// Config is the read-only view of a parser configuration handed to a script.
type Config struct {
	SentenceID int
	Steps      int
	Stack      []Item // bottom first
	Buffer     []Item // front first
	Arcs       []ArcItem
}

// decision records the transition name a script chose.
type decision struct {
	name string
	set  bool
}

func tokenList(items []Item) *object.List {
	out := make([]object.Object, len(items))
	for i, it := range items {
		out[i] = object.NewString(it.Token)
	}
	return object.NewList(out)
}

func itemMap(it Item) *object.Map {
	return object.NewMap(map[string]object.Object{
		"token":    object.NewString(it.Token),
		"position": object.NewInt(int64(it.Position)),
	})
}

func arcList(arcs []ArcItem) *object.List {
	out := make([]object.Object, len(arcs))
	for i, a := range arcs {
		out[i] = object.NewMap(map[string]object.Object{
			"head":      itemMap(a.Head),
			"dependent": itemMap(a.Dependent),
		})
	}
	return object.NewList(out)
}

// makeDecideFn creates the "decide" host function. The last call wins.
//
// decide(name)
func makeDecideFn(d *decision) *object.Builtin {
	return object.NewBuiltin("decide", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("decide", 1, len(args))
		}
		name, ok := args[0].(*object.String)
		if !ok {
			return object.Errorf("decide: expected string, got %s", args[0].Type())
		}
		d.name = name.Value()
		d.set = true
		return object.Nil
	})
}

// makeStackAtFn creates "stack_at". Index 0 is the top of the stack.
//
// stack_at(i) → {token, position} or nil
func makeStackAtFn(cfg Config) *object.Builtin {
	return object.NewBuiltin("stack_at", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("stack_at", 1, len(args))
		}
		i, ok := args[0].(*object.Int)
		if !ok {
			return object.Errorf("stack_at: expected int, got %s", args[0].Type())
		}
		idx := len(cfg.Stack) - 1 - int(i.Value())
		if i.Value() < 0 || idx < 0 {
			return object.Nil
		}
		return itemMap(cfg.Stack[idx])
	})
}

// makeQueueAtFn creates "queue_at". Index 0 is the front of the buffer.
//
// queue_at(i) → {token, position} or nil
func makeQueueAtFn(cfg Config) *object.Builtin {
	return object.NewBuiltin("queue_at", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("queue_at", 1, len(args))
		}
		i, ok := args[0].(*object.Int)
		if !ok {
			return object.Errorf("queue_at: expected int, got %s", args[0].Type())
		}
		idx := int(i.Value())
		if idx < 0 || idx >= len(cfg.Buffer) {
			return object.Nil
		}
		return itemMap(cfg.Buffer[idx])
	})
}

// makeHasHeadFn creates "has_head", reporting whether the token at a
// sentence position is already attached as a dependent.
//
// has_head(position) → bool
func makeHasHeadFn(cfg Config) *object.Builtin {
	attached := make(map[int64]bool, len(cfg.Arcs))
	for _, a := range cfg.Arcs {
		attached[int64(a.Dependent.Position)] = true
	}
	return object.NewBuiltin("has_head", func(ctx context.Context, args ...object.Object) object.Object {
		if len(args) != 1 {
			return object.NewArgsError("has_head", 1, len(args))
		}
		pos, ok := args[0].(*object.Int)
		if !ok {
			return object.Errorf("has_head: expected int, got %s", args[0].Type())
		}
		return object.NewBool(attached[pos.Value()])
	})
}

// logObject provides log.info/warn/error methods for Risor scripts.
type logObject struct {
	logger     *slog.Logger
	sentenceID int
}

func (l *logObject) Info(msg string) {
	l.logger.Info(msg, "source", "script", "sentence", l.sentenceID)
}

func (l *logObject) Warn(msg string) {
	l.logger.Warn(msg, "source", "script", "sentence", l.sentenceID)
}

func (l *logObject) Error(msg string) {
	l.logger.Error(msg, "source", "script", "sentence", l.sentenceID)
}
