// Package sourceparser implements SPEC_FULL.md §4.2: per-language
// parsing of method definitions, import-aware call-graph extension,
// transitive reachability from a handler, and fuzzy endpoint-to-handler
// resolution. Two concrete parsers are provided, Python and Java, both
// built on github.com/tree-sitter/go-tree-sitter.
package sourceparser

import (
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/standardbeagle/perfguard/internal/model"
)

// Parser is the capability interface every language parser implements
// (SPEC_FULL.md §4.2, §9 "Polymorphic parsers").
type Parser interface {
	// IndexMethods populates file.Methods with every method definition
	// found in file.Content, in two passes: plain definitions first,
	// then decorated/annotated ones, which take precedence.
	IndexMethods(file *model.File)

	// ExtendByImports merges methods from files a given file imports
	// (or, for Java, shares a package with) into that file's method
	// map, without ever shadowing the file's own definitions.
	ExtendByImports(files []*model.File)

	// Reachable returns the set of methods transitively reachable from
	// start via intra-repository calls, including start itself. Nil
	// start yields an empty result.
	Reachable(start *model.Method) []*model.Method

	// ResolveEndpoint ranks every decorated method across files by
	// fuzzy similarity of its decorator text to label and returns the
	// best match, or nil if no decorated method exists anywhere in
	// files.
	ResolveEndpoint(files []*model.File, label string) *model.Method
}

// callTailIdentifier extracts the last dot-separated token before the
// opening parenthesis of a call expression's textual form, e.g.
// "a.b.c(x)" -> "c". This is language-agnostic: the Java call query
// captures the callee name alone, while the Python call query captures
// the whole call expression, so Reachable applies the tail-identifier
// rule to every captured call text (matching the original aioptim
// parser.parse_method_calls).
func callTailIdentifier(call string) string {
	head := call
	if idx := strings.Index(head, "("); idx >= 0 {
		head = head[:idx]
	}
	if idx := strings.LastIndex(head, "."); idx >= 0 {
		head = head[idx+1:]
	}
	return strings.TrimSpace(head)
}

// fuzzyRatio returns a 0-100 normalized similarity score between a and
// b, backing resolveEndpoint's fuzzy decorator match (SPEC_FULL.md
// §4.2, GLOSSARY "Fuzzy ratio"). Built on go-edlib's Levenshtein
// channel, the same library the teacher's semantic.FuzzyMatcher wraps
// for Jaro-Winkler similarity.
func fuzzyRatio(a, b string) float64 {
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	similarity, err := edlib.StringsSimilarity(a, b, edlib.Levenshtein)
	if err != nil {
		return 0
	}
	if similarity < 0 {
		similarity = 0
	}
	return float64(similarity) * 100
}

// resolveEndpoint is the language-agnostic core of ResolveEndpoint,
// shared by every concrete parser. Ties are broken by first occurrence
// in iteration order; since a File's Methods map has no inherent
// order, method names are visited sorted for a deterministic tie-break
// (the source's Python dict preserves insertion order, which a Go map
// cannot reproduce).
func resolveEndpoint(files []*model.File, label string) *model.Method {
	var best *model.Method
	bestScore := -1.0
	for _, file := range files {
		names := make([]string, 0, len(file.Methods))
		for name := range file.Methods {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			m := file.Methods[name]
			if !m.HasDecorator() {
				continue
			}
			score := fuzzyRatio(*m.Decorator, label)
			if score > bestScore {
				bestScore = score
				best = m
			}
		}
	}
	return best
}
