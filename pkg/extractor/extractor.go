// Package extractor parses Python source files into structured syntax
// summaries using tree-sitter. It extracts functions, classes, imports and
// module-level variables together with exact line spans, and records the raw
// call sites inside each function body for later call-graph construction.
package extractor

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"

	"github.com/pyrisk/pyrisk/pkg/types"
)

// Extensions lists the file extensions the extractor understands.
var Extensions = []string{".py", ".pyw", ".pyi"}

// Supported reports whether the given path has a Python extension.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// PythonExtractor parses Python files into types.SourceFile summaries.
type PythonExtractor struct {
	parser *sitter.Parser
}

// New creates a new Python extractor with an initialized parser.
func New() *PythonExtractor {
	parser := sitter.NewParser()
	parser.SetLanguage(python.GetLanguage())
	return &PythonExtractor{parser: parser}
}

// ParseFile reads and parses a single Python file. The returned SourceFile
// uses relPath as its identity. A syntactically broken file is not an error:
// it comes back with ParseFailed status, line counts, and no symbols.
func (e *PythonExtractor) ParseFile(fullPath, relPath string) (*types.SourceFile, error) {
	content, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", fullPath, err)
	}
	return e.ParseBytes(content, relPath)
}

// ParseBytes parses Python source code bytes into a SourceFile summary.
func (e *PythonExtractor) ParseBytes(content []byte, relPath string) (*types.SourceFile, error) {
	file := &types.SourceFile{
		Path:      relPath,
		Status:    types.ParseStatus{State: types.ParseOK},
		Functions: []types.FunctionSymbol{},
		Classes:   []types.ClassSymbol{},
		Imports:   []types.ImportRef{},
		Globals:   []types.GlobalVariable{},
	}
	file.TotalLines, file.CodeLines = countLines(content)

	tree := e.parser.Parse(nil, content)
	if tree == nil {
		file.Status = types.ParseStatus{State: types.ParseFailed, Message: "parser returned no tree"}
		return file, nil
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		line := firstErrorLine(root)
		file.Status = types.ParseStatus{
			State:   types.ParseFailed,
			Message: fmt.Sprintf("syntax error near line %d", line),
		}
		// A failed file contributes line counts but zero symbols.
		return file, nil
	}

	w := &walker{content: content, file: relPath}
	w.walkModule(root)

	file.Functions = w.functions
	file.Classes = w.classes
	file.Imports = parseImports(root, content)
	file.Globals = extractGlobals(root, content, relPath)
	file.MaxNestingDepth = maxNestingDepth(root, 0)

	return file, nil
}

// countLines returns total line count and code line count. Blank lines and
// full-line comments are excluded from code lines; lines mixing code with a
// trailing comment count as code.
func countLines(content []byte) (total, code int) {
	if len(content) == 0 {
		return 0, 0
	}
	lines := strings.Split(string(content), "\n")
	// A trailing newline produces one empty final element, not an extra line.
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	total = len(lines)
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed != "" && !strings.HasPrefix(trimmed, "#") {
			code++
		}
	}
	return total, code
}

// firstErrorLine finds the 1-based line of the first ERROR node in the tree.
func firstErrorLine(node *sitter.Node) int {
	if node == nil {
		return 0
	}
	if node.Type() == "ERROR" || node.IsMissing() {
		return int(node.StartPoint().Row) + 1
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		if line := firstErrorLine(node.Child(i)); line > 0 {
			return line
		}
	}
	return 0
}

// maxNestingDepth measures the deepest chain of nested block nodes. A
// top-level function body is depth 1; a loop body inside it is depth 2.
func maxNestingDepth(node *sitter.Node, depth int) int {
	if node == nil {
		return depth
	}
	if node.Type() == "block" {
		depth++
	}
	max := depth
	for i := 0; i < int(node.ChildCount()); i++ {
		if d := maxNestingDepth(node.Child(i), depth); d > max {
			max = d
		}
	}
	return max
}

// nodeText extracts the text content of a node from the source.
func nodeText(node *sitter.Node, content []byte) string {
	if node == nil {
		return ""
	}
	start := node.StartByte()
	end := node.EndByte()
	if start >= uint32(len(content)) || end > uint32(len(content)) {
		return ""
	}
	return string(content[start:end])
}
