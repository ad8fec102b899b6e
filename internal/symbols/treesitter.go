//go:build cgo

package symbols

import (
	"context"
	"fmt"
	"os"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

// Outliner parses Python files and resolves dotted symbol paths in them.
type Outliner struct {
	mu     sync.Mutex
	parser *sitter.Parser
}

// NewOutliner creates an Outliner for Python sources.
func NewOutliner() *Outliner {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	return &Outliner{parser: parser}
}

// Available reports whether symbol outline is compiled in.
func Available() bool {
	return true
}

func (o *Outliner) parse(ctx context.Context, source []byte) (*sitter.Node, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	tree, err := o.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		return nil, fmt.Errorf("parse error: %w", err)
	}
	return tree.RootNode(), nil
}

// Outline returns every class and function defined in the file at path,
// nested definitions included, in source order.
func (o *Outliner) Outline(ctx context.Context, path string) ([]Symbol, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return o.OutlineSource(ctx, path, source)
}

// OutlineSource is Outline for source already in memory.
func (o *Outliner) OutlineSource(ctx context.Context, path string, source []byte) ([]Symbol, error) {
	root, err := o.parse(ctx, source)
	if err != nil {
		return nil, err
	}

	var out []Symbol
	var walk func(block *sitter.Node, container string, inClass bool)
	walk = func(block *sitter.Node, container string, inClass bool) {
		for _, def := range definitions(block) {
			sym := newSymbol(def, source, path, container, inClass)
			out = append(out, sym)
			if body := def.ChildByFieldName("body"); body != nil {
				walk(body, sym.QualifiedPath, sym.Kind == KindClass)
			}
		}
	}
	walk(root, "", false)

	return out, nil
}

// Find resolves leftover segments to a definition in the file at path,
// descending through class and function bodies one segment at a time.
// An empty leftover names the file itself and yields nil.
func (o *Outliner) Find(ctx context.Context, path string, leftover []string) (*Symbol, error) {
	if len(leftover) == 0 {
		return nil, nil
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return o.FindSource(ctx, path, source, leftover)
}

// FindSource is Find for source already in memory.
func (o *Outliner) FindSource(ctx context.Context, path string, source []byte, leftover []string) (*Symbol, error) {
	if len(leftover) == 0 {
		return nil, nil
	}

	root, err := o.parse(ctx, source)
	if err != nil {
		return nil, err
	}

	var found *Symbol
	block := root
	inClass := false
	for i, segment := range leftover {
		def := lookup(block, segment, source)
		if def == nil {
			return nil, fmt.Errorf("%w: %s in %s", ErrSymbolNotFound, joinSegments(leftover[:i+1]), path)
		}

		container := ""
		if found != nil {
			container = found.QualifiedPath
		}
		sym := newSymbol(def, source, path, container, inClass)
		found = &sym

		block = def.ChildByFieldName("body")
		inClass = sym.Kind == KindClass
		if block == nil && i < len(leftover)-1 {
			return nil, fmt.Errorf("%w: %s in %s", ErrSymbolNotFound, joinSegments(leftover[:i+2]), path)
		}
	}

	return found, nil
}

// definitions returns the class and function definitions directly inside
// block, unwrapping decorators.
func definitions(block *sitter.Node) []*sitter.Node {
	var defs []*sitter.Node
	for i := 0; i < int(block.NamedChildCount()); i++ {
		child := block.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "class_definition", "function_definition":
			defs = append(defs, child)
		case "decorated_definition":
			if def := child.ChildByFieldName("definition"); def != nil {
				defs = append(defs, def)
			}
		}
	}
	return defs
}

// lookup returns the last definition of name in block, matching what the
// name is bound to once the block has executed.
func lookup(block *sitter.Node, name string, source []byte) *sitter.Node {
	var match *sitter.Node
	for _, def := range definitions(block) {
		if nodeName(def, source) == name {
			match = def
		}
	}
	return match
}

func nodeName(def *sitter.Node, source []byte) string {
	nameNode := def.ChildByFieldName("name")
	if nameNode == nil {
		return ""
	}
	return nameNode.Content(source)
}

func newSymbol(def *sitter.Node, source []byte, path, container string, inClass bool) Symbol {
	name := nodeName(def, source)

	kind := KindFunction
	switch {
	case def.Type() == "class_definition":
		kind = KindClass
	case inClass:
		kind = KindMethod
	}

	return Symbol{
		Name:          name,
		QualifiedPath: qualify(container, name),
		Kind:          kind,
		Path:          path,
		Line:          int(def.StartPoint().Row) + 1,
		EndLine:       int(def.EndPoint().Row) + 1,
	}
}
