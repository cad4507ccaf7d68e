package dfg

import (
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
)

// TreeSitterClassifier finds definitions by parsing each statement with the
// tree-sitter C grammar. The statement is wrapped in a function body so that
// both declarations and expression statements parse; an unbalanced brace on
// the statement is left to the parser's error recovery.
//
// The first initialised declarator, assignment or update expression whose
// target is a plain identifier, in source order, is the definition.
type TreeSitterClassifier struct {
	mu     sync.Mutex
	parser *sitter.Parser
}

// NewTreeSitterClassifier creates a classifier with its own parser.
func NewTreeSitterClassifier() *TreeSitterClassifier {
	parser := sitter.NewParser()
	parser.SetLanguage(c.GetLanguage())
	return &TreeSitterClassifier{parser: parser}
}

const (
	wrapPrefix = "void __rdflow(void) {\n"
	wrapSuffix = "\n}\n"
)

// AssignedVariable implements Classifier.
func (t *TreeSitterClassifier) AssignedVariable(stmt string) (string, bool) {
	content := []byte(wrapPrefix + stmt + wrapSuffix)

	t.mu.Lock()
	if t.parser == nil {
		t.mu.Unlock()
		return "", false
	}
	tree := t.parser.Parse(nil, content)
	t.mu.Unlock()
	if tree == nil {
		return "", false
	}
	defer tree.Close()

	name := findDefinedIdentifier(tree.RootNode(), content)
	return name, name != ""
}

// Close releases the parser.
func (t *TreeSitterClassifier) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.parser != nil {
		t.parser.Close()
		t.parser = nil
	}
}

func findDefinedIdentifier(node *sitter.Node, content []byte) string {
	if node == nil {
		return ""
	}

	switch node.Type() {
	case "init_declarator":
		if id := declaratorIdentifier(node.ChildByFieldName("declarator")); id != nil {
			return nodeText(id, content)
		}
	case "assignment_expression":
		if left := node.ChildByFieldName("left"); left != nil && left.Type() == "identifier" {
			return nodeText(left, content)
		}
	case "update_expression":
		if arg := node.ChildByFieldName("argument"); arg != nil && arg.Type() == "identifier" {
			return nodeText(arg, content)
		}
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		if name := findDefinedIdentifier(node.Child(i), content); name != "" {
			return name
		}
	}
	return ""
}

// declaratorIdentifier unwraps pointer, array and parenthesized declarators.
func declaratorIdentifier(node *sitter.Node) *sitter.Node {
	for node != nil {
		switch node.Type() {
		case "identifier":
			return node
		case "pointer_declarator", "array_declarator", "parenthesized_declarator":
			next := node.ChildByFieldName("declarator")
			if next == nil && node.NamedChildCount() > 0 {
				next = node.NamedChild(0)
			}
			node = next
		default:
			return nil
		}
	}
	return nil
}

func nodeText(node *sitter.Node, content []byte) string {
	start, end := node.StartByte(), node.EndByte()
	if start >= uint32(len(content)) || end > uint32(len(content)) || start > end {
		return ""
	}
	return string(content[start:end])
}
