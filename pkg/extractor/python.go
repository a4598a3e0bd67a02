package extractor

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/pyrisk/pyrisk/pkg/types"
)

// walker accumulates symbols while traversing a parsed module.
type walker struct {
	content   []byte
	file      string
	functions []types.FunctionSymbol
	classes   []types.ClassSymbol
}

// walkModule finds all function and class definitions reachable from node.
// Class bodies are handled by parseClass, which owns method extraction.
func (w *walker) walkModule(node *sitter.Node) {
	if node == nil {
		return
	}

	switch node.Type() {
	case "decorated_definition":
		decorators := collectDecorators(node, w.content)
		for i := 0; i < int(node.ChildCount()); i++ {
			child := node.Child(i)
			if child == nil {
				continue
			}
			switch child.Type() {
			case "function_definition":
				w.addFunction(child, decorators, false, "")
			case "class_definition":
				w.addClass(child, decorators)
			}
		}
		return
	case "function_definition":
		w.addFunction(node, nil, false, "")
		return
	case "class_definition":
		w.addClass(node, nil)
		return
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		w.walkModule(node.Child(i))
	}
}

// addFunction parses a function definition, then walks its body for nested
// definitions so they are recorded as symbols of their own.
func (w *walker) addFunction(node *sitter.Node, decorators []string, isMethod bool, parentClass string) {
	fn := w.parseFunction(node, decorators, isMethod, parentClass)
	if fn == nil {
		return
	}
	w.functions = append(w.functions, *fn)
	if body := childOfType(node, "block"); body != nil {
		for i := 0; i < int(body.ChildCount()); i++ {
			w.walkModule(body.Child(i))
		}
	}
}

// addClass parses a class definition and records it, then walks method bodies
// for nested definitions. Nested classes are recorded as separate classes.
func (w *walker) addClass(node *sitter.Node, decorators []string) {
	cls := w.parseClass(node, decorators)
	if cls == nil {
		return
	}
	w.classes = append(w.classes, *cls)

	body := childOfType(node, "block")
	if body == nil {
		return
	}
	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "function_definition":
			// Already captured as a method; still walk its body for
			// nested functions.
			if inner := childOfType(child, "block"); inner != nil {
				for j := 0; j < int(inner.ChildCount()); j++ {
					w.walkModule(inner.Child(j))
				}
			}
		case "decorated_definition":
			if fn := childOfType(child, "function_definition"); fn != nil {
				if inner := childOfType(fn, "block"); inner != nil {
					for j := 0; j < int(inner.ChildCount()); j++ {
						w.walkModule(inner.Child(j))
					}
				}
			}
			if nested := childOfType(child, "class_definition"); nested != nil {
				w.addClass(nested, collectDecorators(child, w.content))
			}
		case "class_definition":
			w.addClass(child, nil)
		}
	}
}

// parseFunction extracts function information from a function_definition node.
// The span covers the def line through the last body line, decorators excluded.
func (w *walker) parseFunction(node *sitter.Node, decorators []string, isMethod bool, parentClass string) *types.FunctionSymbol {
	if node == nil || node.Type() != "function_definition" {
		return nil
	}

	fn := &types.FunctionSymbol{
		File:        w.file,
		StartLine:   int(node.StartPoint().Row) + 1,
		EndLine:     int(node.EndPoint().Row) + 1,
		Decorators:  decorators,
		IsMethod:    isMethod,
		ParentClass: parentClass,
		Params:      []types.Param{},
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "async":
			fn.IsAsync = true
		case "identifier":
			if fn.Name == "" {
				fn.Name = nodeText(child, w.content)
			}
		case "parameters":
			fn.Params = parseParameters(child, w.content)
		case "type":
			fn.ReturnType = strings.TrimSpace(nodeText(child, w.content))
		case "block":
			fn.Docstring = extractDocstring(child, w.content)
			fn.Calls = collectCallSites(child, w.content)
		}
	}

	if fn.Name == "" {
		return nil
	}
	return fn
}

// parseClass extracts class information including its methods.
func (w *walker) parseClass(node *sitter.Node, decorators []string) *types.ClassSymbol {
	if node == nil || node.Type() != "class_definition" {
		return nil
	}

	cls := &types.ClassSymbol{
		File:       w.file,
		StartLine:  int(node.StartPoint().Row) + 1,
		EndLine:    int(node.EndPoint().Row) + 1,
		Decorators: decorators,
		Methods:    []types.FunctionSymbol{},
	}

	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "identifier":
			if cls.Name == "" {
				cls.Name = nodeText(child, w.content)
			}
		case "argument_list":
			cls.Bases = parseBaseClasses(child, w.content)
		case "block":
			cls.Docstring = extractDocstring(child, w.content)
			cls.Methods = w.parseMethods(child, cls.Name)
		}
	}

	if cls.Name == "" {
		return nil
	}
	return cls
}

// parseMethods extracts direct function definitions from a class body.
func (w *walker) parseMethods(body *sitter.Node, className string) []types.FunctionSymbol {
	methods := []types.FunctionSymbol{}
	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "function_definition":
			if m := w.parseFunction(child, nil, true, className); m != nil {
				methods = append(methods, *m)
			}
		case "decorated_definition":
			if fn := childOfType(child, "function_definition"); fn != nil {
				if m := w.parseFunction(fn, collectDecorators(child, w.content), true, className); m != nil {
					methods = append(methods, *m)
				}
			}
		}
	}
	return methods
}

// collectDecorators extracts decorator expressions from a decorated_definition
// node, preserving source order and dropping the leading "@".
func collectDecorators(node *sitter.Node, content []byte) []string {
	var decorators []string
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil || child.Type() != "decorator" {
			continue
		}
		for j := 0; j < int(child.ChildCount()); j++ {
			expr := child.Child(j)
			if expr == nil || expr.Type() == "@" {
				continue
			}
			if text := nodeText(expr, content); text != "" {
				decorators = append(decorators, text)
				break
			}
		}
	}
	return decorators
}

// parseParameters extracts the parameter list with type annotations.
// Handles typed, defaulted, *args and **kwargs forms.
func parseParameters(node *sitter.Node, content []byte) []types.Param {
	params := []types.Param{}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "identifier":
			params = append(params, types.Param{Name: nodeText(child, content)})
		case "typed_parameter":
			params = append(params, parseTypedParam(child, content))
		case "default_parameter":
			if name := childOfType(child, "identifier"); name != nil {
				params = append(params, types.Param{Name: nodeText(name, content)})
			}
		case "typed_default_parameter":
			params = append(params, parseTypedParam(child, content))
		case "list_splat_pattern":
			if name := childOfType(child, "identifier"); name != nil {
				params = append(params, types.Param{Name: "*" + nodeText(name, content)})
			}
		case "dictionary_splat_pattern":
			if name := childOfType(child, "identifier"); name != nil {
				params = append(params, types.Param{Name: "**" + nodeText(name, content)})
			}
		}
	}
	return params
}

// parseTypedParam handles "x: int" and "x: int = 5" parameter forms.
func parseTypedParam(node *sitter.Node, content []byte) types.Param {
	var p types.Param
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "identifier":
			if p.Name == "" {
				p.Name = nodeText(child, content)
			}
		case "type":
			p.Annotation = strings.TrimSpace(nodeText(child, content))
		}
	}
	return p
}

// parseBaseClasses extracts base class names from an argument_list node.
// Handles plain names, module-qualified names and subscripted generics.
func parseBaseClasses(node *sitter.Node, content []byte) []string {
	var bases []string
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "(", ")", ",", "comment":
			continue
		case "keyword_argument":
			// metaclass=... and friends are not base classes
			continue
		default:
			if text := nodeText(child, content); text != "" {
				bases = append(bases, text)
			}
		}
	}
	return bases
}

// extractDocstring returns the docstring of a function or class body: a bare
// string expression as the first statement.
func extractDocstring(body *sitter.Node, content []byte) string {
	for i := 0; i < int(body.ChildCount()); i++ {
		child := body.Child(i)
		if child == nil {
			continue
		}
		if child.Type() == "comment" {
			continue
		}
		if child.Type() != "expression_statement" {
			return ""
		}
		for j := 0; j < int(child.ChildCount()); j++ {
			grandchild := child.Child(j)
			if grandchild == nil {
				continue
			}
			if grandchild.Type() == "string" || grandchild.Type() == "concatenated_string" {
				return trimDocstring(nodeText(grandchild, content))
			}
		}
		return ""
	}
	return ""
}

// trimDocstring strips surrounding quotes and whitespace from a raw docstring.
func trimDocstring(raw string) string {
	for _, quote := range []string{`"""`, `'''`, `"`, `'`} {
		if strings.HasPrefix(raw, quote) && strings.HasSuffix(raw, quote) && len(raw) >= 2*len(quote) {
			return strings.TrimSpace(raw[len(quote) : len(raw)-len(quote)])
		}
	}
	return strings.TrimSpace(raw)
}

// collectCallSites finds bare-name call expressions in a function body,
// scoped to that function: nested function and class definitions keep their
// own calls. Method calls (obj.method()) are not collected; only direct
// identifier invocations match the call-graph resolution policy.
func collectCallSites(body *sitter.Node, content []byte) []types.CallSite {
	var calls []types.CallSite
	var walk func(node *sitter.Node)
	walk = func(node *sitter.Node) {
		if node == nil {
			return
		}
		switch node.Type() {
		case "function_definition", "class_definition":
			return
		case "call":
			if fn := node.Child(0); fn != nil && fn.Type() == "identifier" {
				calls = append(calls, types.CallSite{
					Name: nodeText(fn, content),
					Line: int(node.StartPoint().Row) + 1,
				})
			}
		}
		for i := 0; i < int(node.ChildCount()); i++ {
			walk(node.Child(i))
		}
	}
	for i := 0; i < int(body.ChildCount()); i++ {
		walk(body.Child(i))
	}
	return calls
}

// childOfType returns the first direct child with the given node type.
func childOfType(node *sitter.Node, nodeType string) *sitter.Node {
	if node == nil {
		return nil
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child != nil && child.Type() == nodeType {
			return child
		}
	}
	return nil
}
