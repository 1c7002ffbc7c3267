package sourceparser

import (
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"

	"github.com/standardbeagle/perfguard/internal/model"
)

// PythonParser implements Parser for Python sources: function and
// decorated-function definitions, dotted-module imports. Grounded on
// the original aioptim PythonParser's queries and the teacher's own
// Python tree-sitter setup (setupPython).
type PythonParser struct {
	*baseParser
}

// NewPythonParser builds a ready-to-use Python parser. Queries are
// compiled once; the instance is safe to share across files and ticks.
func NewPythonParser() *PythonParser {
	const methodQuery = `
		(function_definition
			name: (identifier) @identifier
			parameters: (parameters) @parameters
		) @method
	`
	const decoratorQuery = `
		(decorated_definition
			(decorator
				(call
					arguments: (argument_list) @decorator))
			definition: (function_definition
				name: (identifier) @identifier
				parameters: (parameters) @parameters
			)
		) @method
	`
	const callQuery = `(call function: (_)) @call`
	const importQuery = `
		(import_statement name: (dotted_name) @import)
		(import_from_statement module_name: (dotted_name) @import)
	`

	return &PythonParser{
		baseParser: newBaseParser(tree_sitter_python.Language(), methodQuery, decoratorQuery, callQuery, importQuery),
	}
}

func (p *PythonParser) IndexMethods(file *model.File) {
	p.indexMethods(file)
}

func (p *PythonParser) Reachable(start *model.Method) []*model.Method {
	return p.reachable(start)
}

func (p *PythonParser) ResolveEndpoint(files []*model.File, label string) *model.Method {
	return resolveEndpoint(files, label)
}

// ExtendByImports merges methods from files referenced by an explicit
// "import a.b.c" or "from a.b import c" statement — the only import
// mechanism Python has, per SPEC_FULL.md §4.2.
func (p *PythonParser) ExtendByImports(files []*model.File) {
	for _, file := range files {
		content := []byte(file.Content)
		tree := p.parser.Parse(content, nil)
		imports := p.extractCaptureTexts(content, tree, p.importQuery, "import")
		tree.Close()

		mergeByPathFragment(file, files, imports)
	}
}
