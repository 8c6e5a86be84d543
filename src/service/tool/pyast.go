package tool

import (
	"errors"
	"os"
	"strings"
	"unicode/utf8"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

var pythonLanguage = sitter.NewLanguage(tree_sitter_python.Language())

var (
	errSyntax    = errors.New("syntax error")
	errNotUTF8   = errors.New("file is not valid UTF-8")
	errParseFail = errors.New("parser returned no tree")
)

// pyParser wraps a tree-sitter parser. It is not safe for concurrent use.
type pyParser struct {
	parser *sitter.Parser
}

func newPyParser() (*pyParser, error) {
	parser := sitter.NewParser()
	if err := parser.SetLanguage(pythonLanguage); err != nil {
		parser.Close()
		return nil, err
	}
	return &pyParser{parser: parser}, nil
}

func (p *pyParser) Close() {
	p.parser.Close()
}

// pyFile is a parsed Python source file
type pyFile struct {
	src  []byte
	tree *sitter.Tree
}

func (f *pyFile) Close() {
	if f.tree != nil {
		f.tree.Close()
	}
}

func (f *pyFile) root() *sitter.Node {
	return f.tree.RootNode()
}

// parseFile reads and parses path. Files that are not valid UTF-8 or do not
// parse cleanly are rejected the way the Python compiler would reject them.
func (p *pyParser) parseFile(path string) (*pyFile, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return p.parse(src)
}

func (p *pyParser) parse(src []byte) (*pyFile, error) {
	if !utf8.Valid(src) {
		return nil, errNotUTF8
	}
	tree := p.parser.Parse(src, nil)
	if tree == nil {
		return nil, errParseFail
	}
	f := &pyFile{src: src, tree: tree}
	if f.root().HasError() {
		f.Close()
		return nil, errSyntax
	}
	return f, nil
}

// walkScoped visits nodes in source order, reporting whether each node is
// nested (at any depth) inside a class body.
func walkScoped(root *sitter.Node, visit func(n *sitter.Node, inClass bool)) {
	type frame struct {
		node    *sitter.Node
		inClass bool
	}

	stack := []frame{{node: root}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visit(top.node, top.inClass)

		childInClass := top.inClass || top.node.Kind() == "class_definition"
		for i := int(top.node.ChildCount()) - 1; i >= 0; i-- {
			if child := top.node.Child(uint(i)); child != nil {
				stack = append(stack, frame{node: child, inClass: childInClass})
			}
		}
	}
}

func isFunction(n *sitter.Node) bool {
	return n.Kind() == "function_definition"
}

func isAsyncFunction(n *sitter.Node) bool {
	if !isFunction(n) || n.ChildCount() == 0 {
		return false
	}
	first := n.Child(0)
	return first != nil && first.Kind() == "async"
}

func nodeName(n *sitter.Node, src []byte) string {
	name := n.ChildByFieldName("name")
	if name == nil {
		return ""
	}
	return name.Utf8Text(src)
}

func nodeLine(n *sitter.Node) int {
	return int(n.StartPosition().Row) + 1
}

// docstring returns the docstring of a function or class body and whether
// one exists. Only plain (non f-, non bytes) string literals count.
func docstring(def *sitter.Node, src []byte) (string, bool) {
	body := def.ChildByFieldName("body")
	if body == nil {
		return "", false
	}

	var first *sitter.Node
	for i := uint(0); i < body.NamedChildCount(); i++ {
		child := body.NamedChild(i)
		if child == nil || child.Kind() == "comment" {
			continue
		}
		first = child
		break
	}
	if first == nil || first.Kind() != "expression_statement" || first.NamedChildCount() != 1 {
		return "", false
	}

	expr := first.NamedChild(0)
	if expr == nil {
		return "", false
	}

	switch expr.Kind() {
	case "string":
		return stringContent(expr, src)
	case "concatenated_string":
		var sb strings.Builder
		for i := uint(0); i < expr.NamedChildCount(); i++ {
			part, ok := stringContent(expr.NamedChild(i), src)
			if !ok {
				return "", false
			}
			sb.WriteString(part)
		}
		return sb.String(), true
	}
	return "", false
}

func stringContent(str *sitter.Node, src []byte) (string, bool) {
	if str == nil || str.Kind() != "string" {
		return "", false
	}

	var sb strings.Builder
	for i := uint(0); i < str.ChildCount(); i++ {
		child := str.Child(i)
		if child == nil {
			continue
		}
		switch child.Kind() {
		case "string_start":
			prefix := strings.ToLower(strings.TrimRight(child.Utf8Text(src), `"'`))
			if strings.ContainsAny(prefix, "fb") {
				return "", false
			}
		case "string_content", "escape_sequence":
			sb.WriteString(child.Utf8Text(src))
		case "interpolation":
			return "", false
		}
	}
	return sb.String(), true
}
