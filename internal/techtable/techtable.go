// Package techtable holds the process-wide Supported-Technology Table
// (SPEC_FULL.md §3): the fixed mapping of language, file extension,
// metrics-backend technology tag, and parser used both to filter
// endpoints and to pick the right parser/extension pair for a given
// endpoint's language.
package techtable

import "github.com/standardbeagle/perfguard/internal/sourceparser"

// Row is one entry of the Supported-Technology Table.
type Row struct {
	Language   string
	Extension  string
	Technology string
	Parser     sourceparser.Parser
}

// table is populated by init with one parser instance per supported
// language; parsers are stateless and safe to share across ticks.
var table []Row

func init() {
	table = []Row{
		{Language: "Python", Extension: "py", Technology: "pythonRuntimePlatform", Parser: sourceparser.NewPythonParser()},
		{Language: "Java", Extension: "java", Technology: "springbootApplicationContainer", Parser: sourceparser.NewJavaParser()},
	}
}

// Technologies returns every supported technology tag, in table order.
func Technologies() []string {
	out := make([]string, 0, len(table))
	for _, row := range table {
		out = append(out, row.Technology)
	}
	return out
}

// ByTechnology returns the table row for a given technology tag, and
// whether one was found.
func ByTechnology(technology string) (Row, bool) {
	for _, row := range table {
		if row.Technology == technology {
			return row, true
		}
	}
	return Row{}, false
}

// Rows returns every row in the table.
func Rows() []Row {
	return table
}
