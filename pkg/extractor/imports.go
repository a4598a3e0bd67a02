package extractor

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/pyrisk/pyrisk/pkg/types"
)

// parseImports extracts all import statements from the tree, including those
// nested inside functions.
func parseImports(root *sitter.Node, content []byte) []types.ImportRef {
	imports := []types.ImportRef{}
	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		if node == nil {
			return
		}
		switch node.Type() {
		case "import_statement":
			imports = append(imports, parseImportStatement(node, content)...)
			return
		case "import_from_statement":
			if imp := parseImportFromStatement(node, content); imp != nil {
				imports = append(imports, *imp)
			}
			return
		}
		for i := 0; i < int(node.ChildCount()); i++ {
			walk(node.Child(i))
		}
	}
	walk(root)
	return imports
}

// parseImportStatement parses "import x" / "import x as y" / "import a, b".
// Each imported module becomes its own ImportRef, matching how Python treats
// comma-separated imports as independent bindings.
func parseImportStatement(node *sitter.Node, content []byte) []types.ImportRef {
	var refs []types.ImportRef
	line := int(node.StartPoint().Row) + 1

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "dotted_name":
			refs = append(refs, types.ImportRef{
				Module: nodeText(child, content),
				Kind:   types.ImportPlain,
				Line:   line,
			})
		case "aliased_import":
			module, alias := parseAliasedImport(child, content)
			if module != "" {
				refs = append(refs, types.ImportRef{
					Module: module,
					Alias:  alias,
					Kind:   types.ImportPlain,
					Line:   line,
				})
			}
		}
	}
	return refs
}

// parseImportFromStatement parses "from x import a, b", "from . import x",
// "from ..pkg import y" and "from x import *".
func parseImportFromStatement(node *sitter.Node, content []byte) *types.ImportRef {
	ref := &types.ImportRef{
		Kind: types.ImportFrom,
		Line: int(node.StartPoint().Row) + 1,
	}
	moduleSeen := false

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "dotted_name":
			// The first dotted_name is the source module; subsequent ones
			// are imported names.
			if !moduleSeen {
				ref.Module = nodeText(child, content)
				moduleSeen = true
			} else {
				ref.Names = append(ref.Names, nodeText(child, content))
			}
		case "relative_import":
			ref.Module, ref.RelativeDepth = parseRelativeImport(child, content)
			moduleSeen = true
		case "aliased_import":
			name, alias := parseAliasedImport(child, content)
			if name != "" {
				ref.Names = append(ref.Names, name)
				ref.Alias = alias
			}
		case "wildcard_import":
			ref.Kind = types.ImportFromStar
		}
	}

	if !moduleSeen {
		return nil
	}
	return ref
}

// parseAliasedImport handles "x as y", returning the real name and the alias.
func parseAliasedImport(node *sitter.Node, content []byte) (name, alias string) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "dotted_name":
			name = nodeText(child, content)
		case "identifier":
			alias = nodeText(child, content)
		}
	}
	return name, alias
}

// parseRelativeImport splits "..pkg.mod" into the bare module path and the
// number of leading dots.
func parseRelativeImport(node *sitter.Node, content []byte) (module string, depth int) {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "import_prefix":
			depth = strings.Count(nodeText(child, content), ".")
		case "dotted_name":
			module = nodeText(child, content)
		}
	}
	return module, depth
}

// extractGlobals collects module-level assignments. Only direct children of
// the module node count as globals; assignments inside functions or classes
// are locals and attributes.
func extractGlobals(root *sitter.Node, content []byte, file string) []types.GlobalVariable {
	globals := []types.GlobalVariable{}
	if root == nil || root.Type() != "module" {
		return globals
	}

	for i := 0; i < int(root.ChildCount()); i++ {
		stmt := root.Child(i)
		if stmt == nil || stmt.Type() != "expression_statement" {
			continue
		}
		assign := childOfType(stmt, "assignment")
		if assign == nil {
			continue
		}
		left := assign.ChildByFieldName("left")
		if left == nil || left.Type() != "identifier" {
			continue
		}

		name := nodeText(left, content)
		g := types.GlobalVariable{
			Name:       name,
			File:       file,
			Line:       int(assign.StartPoint().Row) + 1,
			IsConstant: isConstantName(name),
		}
		if right := assign.ChildByFieldName("right"); right != nil {
			g.Value = nodeText(right, content)
			g.LiteralType = literalType(right.Type())
		}
		globals = append(globals, g)
	}
	return globals
}

// isConstantName applies the ALL_CAPS convention for module constants.
func isConstantName(name string) bool {
	hasLetter := false
	for _, r := range name {
		if r >= 'a' && r <= 'z' {
			return false
		}
		if r >= 'A' && r <= 'Z' {
			hasLetter = true
		}
	}
	return hasLetter
}

// literalType maps a tree-sitter value node type to a Python type name,
// returning "" for non-literal initializers.
func literalType(nodeType string) string {
	switch nodeType {
	case "string", "concatenated_string":
		return "str"
	case "integer":
		return "int"
	case "float":
		return "float"
	case "true", "false":
		return "bool"
	case "none":
		return "None"
	case "list", "list_comprehension":
		return "list"
	case "dictionary", "dictionary_comprehension":
		return "dict"
	case "tuple":
		return "tuple"
	case "set", "set_comprehension":
		return "set"
	default:
		return ""
	}
}
