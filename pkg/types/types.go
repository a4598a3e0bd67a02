// Package types defines the core data structures for code representation.
// It includes types for source files, symbols, imports, call edges, and the
// result of a project scan.
package types

import (
	"sort"
	"time"
)

// ParseState describes what happened when a file was parsed.
type ParseState string

const (
	// ParseOK means the file parsed cleanly and its symbols were extracted.
	ParseOK ParseState = "ok"
	// ParseFailed means the file could not be parsed; no symbols were extracted.
	ParseFailed ParseState = "failed"
	// ParseSkippedTooLarge means the file exceeded the size limit and was not parsed.
	ParseSkippedTooLarge ParseState = "skipped: too-large"
)

// ParseStatus is the parse outcome for a single file.
type ParseStatus struct {
	State   ParseState `json:"state"`
	Message string     `json:"message,omitempty"`
}

// OK reports whether the file parsed successfully.
func (s ParseStatus) OK() bool {
	return s.State == ParseOK
}

// Param represents a single function parameter.
type Param struct {
	Name       string `json:"name"`
	Annotation string `json:"annotation,omitempty"`
}

// FunctionID uniquely identifies a function definition. The start line
// disambiguates same-named definitions within one file.
type FunctionID struct {
	File string `json:"file"`
	Name string `json:"name"`
	Line int    `json:"line"`
}

// CallSite is a single call expression found inside a function body,
// recorded before any resolution happens.
type CallSite struct {
	Name string `json:"name"`
	Line int    `json:"line"`
}

// FunctionSymbol represents a function or method definition.
type FunctionSymbol struct {
	Name        string     `json:"name"`
	File        string     `json:"file"`
	Params      []Param    `json:"params"`
	ReturnType  string     `json:"return_type,omitempty"`
	Docstring   string     `json:"docstring,omitempty"`
	StartLine   int        `json:"start_line"`
	EndLine     int        `json:"end_line"`
	Decorators  []string   `json:"decorators,omitempty"`
	IsAsync     bool       `json:"is_async,omitempty"`
	IsMethod    bool       `json:"is_method,omitempty"`
	ParentClass string     `json:"parent_class,omitempty"`
	Calls       []CallSite `json:"calls,omitempty"`
}

// ID returns the identity of this function.
func (f *FunctionSymbol) ID() FunctionID {
	return FunctionID{File: f.File, Name: f.Name, Line: f.StartLine}
}

// ClassSymbol represents a class definition and its methods.
type ClassSymbol struct {
	Name       string           `json:"name"`
	File       string           `json:"file"`
	Bases      []string         `json:"bases,omitempty"`
	Decorators []string         `json:"decorators,omitempty"`
	Docstring  string           `json:"docstring,omitempty"`
	Methods    []FunctionSymbol `json:"methods"`
	StartLine  int              `json:"start_line"`
	EndLine    int              `json:"end_line"`
}

// ImportKind distinguishes the forms an import statement can take.
type ImportKind string

const (
	ImportPlain    ImportKind = "import"
	ImportFrom     ImportKind = "from_import"
	ImportFromStar ImportKind = "from_import_all"
)

// ImportRef represents a single import statement.
type ImportRef struct {
	// Module is the dotted module path without any leading dots
	// (empty for "from . import name").
	Module string `json:"module"`
	// Names are the imported names; empty means a whole-module import.
	Names []string   `json:"names,omitempty"`
	Alias string     `json:"alias,omitempty"`
	Kind  ImportKind `json:"kind"`
	// RelativeDepth is the number of leading dots (0 for absolute imports).
	RelativeDepth int `json:"relative_depth,omitempty"`
	Line          int `json:"line"`
	// Resolved is set during dependency-graph construction when the import
	// target is a file inside the scanned project.
	Resolved bool `json:"resolved"`
}

// GlobalVariable represents a module-level assignment.
type GlobalVariable struct {
	Name string `json:"name"`
	File string `json:"file"`
	Line int    `json:"line"`
	// LiteralType is the inferred type when the initializer is a simple
	// literal ("str", "int", "list", ...), empty otherwise.
	LiteralType string `json:"literal_type,omitempty"`
	Value       string `json:"value,omitempty"`
	IsConstant  bool   `json:"is_constant,omitempty"`
}

// SourceFile is the parsed summary of one file. It is created once per scan
// and never mutated afterwards; a re-scan replaces it wholesale.
type SourceFile struct {
	Path            string           `json:"path"`
	TotalLines      int              `json:"total_lines"`
	CodeLines       int              `json:"code_lines"`
	MaxNestingDepth int              `json:"max_nesting_depth"`
	Status          ParseStatus      `json:"status"`
	Functions       []FunctionSymbol `json:"functions"`
	Classes         []ClassSymbol    `json:"classes"`
	Imports         []ImportRef      `json:"imports"`
	Globals         []GlobalVariable `json:"globals"`
}

// AllFunctions returns top-level functions followed by all class methods,
// in declaration order.
func (f *SourceFile) AllFunctions() []FunctionSymbol {
	out := make([]FunctionSymbol, 0, len(f.Functions))
	out = append(out, f.Functions...)
	for _, cls := range f.Classes {
		out = append(out, cls.Methods...)
	}
	return out
}

// CallEdge is a directed edge in the call graph. Repeated calls from the same
// caller to the same callee collapse into one edge with a count.
type CallEdge struct {
	Caller     FunctionID `json:"caller"`
	CalleeName string     `json:"callee_name"`
	// Callee is the resolved target; only meaningful when Resolved is true.
	Callee   FunctionID `json:"callee,omitempty"`
	Resolved bool       `json:"resolved"`
	Count    int        `json:"count"`
	// Line is the first call site's line number.
	Line int `json:"line"`
}

// ScanError records a per-file failure that did not abort the scan.
type ScanError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ScanResult is the output of scanning a project tree. Files are keyed by
// their slash-normalized path relative to Root.
type ScanResult struct {
	Root      string                 `json:"root"`
	Files     map[string]*SourceFile `json:"files"`
	Errors    []ScanError            `json:"errors,omitempty"`
	ScannedAt time.Time              `json:"scanned_at"`
}

// Paths returns the scanned file paths in lexicographic order.
func (r *ScanResult) Paths() []string {
	paths := make([]string, 0, len(r.Files))
	for p := range r.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
