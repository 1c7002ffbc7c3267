package sourceparser

import (
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"

	"github.com/standardbeagle/perfguard/internal/model"
)

// JavaParser implements Parser for Java sources: method declarations
// and annotated method declarations, scoped-identifier imports, and
// package declarations. Grounded on the original aioptim JavaParser's
// queries and the teacher's setupJava.
type JavaParser struct {
	*baseParser
	packageQueryStr string
}

func NewJavaParser() *JavaParser {
	const methodQuery = `
		(method_declaration
			name: (identifier) @identifier
			parameters: (formal_parameters) @parameters
		) @method
	`
	const decoratorQuery = `
		(method_declaration
			(modifiers
				(annotation
					arguments: (annotation_argument_list) @decorator))
			name: (identifier) @identifier
			parameters: (formal_parameters) @parameters
		) @method
	`
	const callQuery = `(method_invocation name: (identifier) @call)`
	const importQuery = `(import_declaration (scoped_identifier) @import)`

	return &JavaParser{
		baseParser:      newBaseParser(tree_sitter_java.Language(), methodQuery, decoratorQuery, callQuery, importQuery),
		packageQueryStr: `(package_declaration (scoped_identifier) @package)`,
	}
}

func (p *JavaParser) IndexMethods(file *model.File) {
	p.indexMethods(file)
}

func (p *JavaParser) Reachable(start *model.Method) []*model.Method {
	return p.reachable(start)
}

func (p *JavaParser) ResolveEndpoint(files []*model.File, label string) *model.Method {
	return resolveEndpoint(files, label)
}

// ExtendByImports merges methods from files referenced by an explicit
// import, or — Java-only, per SPEC_FULL.md §4.2 — from any other file
// declaring the same package, even absent an explicit import.
func (p *JavaParser) ExtendByImports(files []*model.File) {
	packageOf := make(map[*model.File]string, len(files))
	for _, file := range files {
		packageOf[file] = p.filePackage(file)
	}

	for _, file := range files {
		content := []byte(file.Content)
		tree := p.parser.Parse(content, nil)
		imports := p.extractCaptureTexts(content, tree, p.importQuery, "import")
		tree.Close()

		mergeByPathFragment(file, files, imports)

		pkg := packageOf[file]
		if pkg == "" {
			continue
		}
		for _, other := range files {
			if other == file {
				continue
			}
			if packageOf[other] == pkg {
				file.Extend(other.Methods)
			}
		}
	}
}

func (p *JavaParser) filePackage(file *model.File) string {
	content := []byte(file.Content)
	tree := p.parser.Parse(content, nil)
	defer tree.Close()

	query, err := compileQuery(p.language, p.packageQueryStr)
	if err != nil || query == nil {
		return ""
	}
	defer query.Close()

	names := p.extractCaptureTexts(content, tree, query, "package")
	if len(names) == 0 {
		return ""
	}
	return names[0]
}
