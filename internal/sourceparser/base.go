package sourceparser

import (
	"strings"
	"unsafe"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/standardbeagle/perfguard/internal/model"
)

// baseParser holds the tree-sitter plumbing shared by every concrete
// language parser: one parser/query set per language, reused across
// files and ticks (parsers are stateless beyond their compiled
// queries, so a single instance is safe to share).
type baseParser struct {
	language       *tree_sitter.Language
	parser         *tree_sitter.Parser
	methodQuery    *tree_sitter.Query
	decoratorQuery *tree_sitter.Query
	callQuery      *tree_sitter.Query
	importQuery    *tree_sitter.Query
}

func newBaseParser(languagePtr unsafe.Pointer, methodQueryStr, decoratorQueryStr, callQueryStr, importQueryStr string) *baseParser {
	language := tree_sitter.NewLanguage(languagePtr)
	parser := tree_sitter.NewParser()
	_ = parser.SetLanguage(language)

	b := &baseParser{language: language, parser: parser}
	if q, err := tree_sitter.NewQuery(language, methodQueryStr); err == nil {
		b.methodQuery = q
	}
	if q, err := tree_sitter.NewQuery(language, decoratorQueryStr); err == nil {
		b.decoratorQuery = q
	}
	if q, err := tree_sitter.NewQuery(language, callQueryStr); err == nil {
		b.callQuery = q
	}
	if q, err := tree_sitter.NewQuery(language, importQueryStr); err == nil {
		b.importQuery = q
	}
	return b
}

// indexMethods runs the plain method query first, then the decorated
// one; the decorated pass overwrites any plain entry of the same name,
// per SPEC_FULL.md §4.2 ("the decorated match takes precedence").
func (b *baseParser) indexMethods(file *model.File) {
	content := []byte(file.Content)
	tree := b.parser.Parse(content, nil)
	defer tree.Close()

	b.applyMethodQuery(file, content, tree, b.methodQuery)
	b.applyMethodQuery(file, content, tree, b.decoratorQuery)
}

func (b *baseParser) applyMethodQuery(file *model.File, content []byte, tree *tree_sitter.Tree, query *tree_sitter.Query) {
	if query == nil {
		return
	}
	qc := tree_sitter.NewQueryCursor()
	defer qc.Close()

	captureNames := query.CaptureNames()
	matches := qc.Matches(query, tree.RootNode(), content)
	for {
		match := matches.Next()
		if match == nil {
			break
		}

		var identifier, parameters, decorator, body string
		var hasDecorator bool
		for _, c := range match.Captures {
			name := captureNames[c.Index]
			text := string(content[c.Node.StartByte():c.Node.EndByte()])
			switch name {
			case "identifier":
				identifier = text
			case "parameters":
				parameters = text
			case "decorator":
				decorator = text
				hasDecorator = true
			case "method":
				body = text
			}
		}
		if identifier == "" {
			continue
		}
		m := &model.Method{Name: identifier, Parameters: parameters, Body: body}
		if hasDecorator {
			d := decorator
			m.Decorator = &d
		}
		file.AddMethod(m)
	}
}

// compileQuery compiles a one-off query against language, for callers
// (like JavaParser.filePackage) that need a query not already held by
// baseParser.
func compileQuery(language *tree_sitter.Language, queryStr string) (*tree_sitter.Query, error) {
	return tree_sitter.NewQuery(language, queryStr)
}

// extractCaptureTexts returns the source text of every node captured
// under captureLabel across all matches of query against content/tree.
func (b *baseParser) extractCaptureTexts(content []byte, tree *tree_sitter.Tree, query *tree_sitter.Query, captureLabel string) []string {
	if query == nil {
		return nil
	}
	qc := tree_sitter.NewQueryCursor()
	defer qc.Close()

	captureNames := query.CaptureNames()
	matches := qc.Matches(query, tree.RootNode(), content)
	var out []string
	for {
		match := matches.Next()
		if match == nil {
			break
		}
		for _, c := range match.Captures {
			if captureNames[c.Index] == captureLabel {
				out = append(out, string(content[c.Node.StartByte():c.Node.EndByte()]))
			}
		}
	}
	return out
}

// extractCalls returns the textual form of every call expression found
// in a method body, re-parsing the body in isolation — mirroring the
// original aioptim parser's parse_method_calls, which re-parses
// node.method rather than walking the whole-file tree.
func (b *baseParser) extractCalls(body string) []string {
	if b.callQuery == nil {
		return nil
	}
	content := []byte(body)
	tree := b.parser.Parse(content, nil)
	defer tree.Close()
	return b.extractCaptureTexts(content, tree, b.callQuery, "call")
}

// reachable performs the BFS call-graph walk shared by every parser:
// visit start, extract its calls, resolve each call's tail identifier
// against start's owning file's (already import-extended) method map,
// and enqueue unvisited matches.
func (b *baseParser) reachable(start *model.Method) []*model.Method {
	if start == nil {
		return nil
	}

	visited := model.NewFaultLine()
	visited.Add(start)
	queue := []*model.Method{start}

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]

		if node.Owner == nil {
			continue
		}
		for _, call := range b.extractCalls(node.Body) {
			tail := callTailIdentifier(call)
			if tail == "" {
				continue
			}
			target, ok := node.Owner.Methods[tail]
			if !ok || visited.Contains(target) {
				continue
			}
			visited.Add(target)
			queue = append(queue, target)
		}
	}
	return visited.Slice()
}

// mergeByPathFragment merges other's methods into file whenever the
// dotted import path, rewritten with '/' separators, appears as a
// substring of other's path (SPEC_FULL.md §4.2 "Matching rule").
func mergeByPathFragment(file *model.File, files []*model.File, imports []string) {
	for _, imp := range imports {
		fragment := strings.ReplaceAll(imp, ".", "/")
		if fragment == "" {
			continue
		}
		for _, other := range files {
			if other == file {
				continue
			}
			if strings.Contains(other.Path, fragment) {
				file.Extend(other.Methods)
			}
		}
	}
}
