package model

import "path/filepath"

// File is one source file pulled from the repository. Methods is
// populated by SourceParser.IndexMethods and later extended during
// import-extension with methods merged in from imported files; a
// file's own definitions always win over anything merged in later.
type File struct {
	Path     string
	Language string
	Content  string
	Methods  map[string]*Method
}

// NewFile constructs a File with its language derived from the path's
// extension and an empty method map.
func NewFile(path, content string) *File {
	ext := filepath.Ext(path)
	if len(ext) > 0 {
		ext = ext[1:]
	}
	return &File{
		Path:     path,
		Language: ext,
		Content:  content,
		Methods:  make(map[string]*Method),
	}
}

// AddMethod indexes a freshly parsed method under its name, overwriting
// any previous entry of the same name — callers rely on this to let a
// second, decorator-bearing pass take precedence over a plain one.
func (f *File) AddMethod(m *Method) {
	m.Owner = f
	f.Methods[m.Name] = m
}

// Extend merges another file's methods into this one without
// disturbing names this file already defines locally. Used by
// SourceParser.ExtendByImports; a file's own definitions are never
// shadowed by an import.
func (f *File) Extend(other map[string]*Method) {
	for name, m := range other {
		if _, exists := f.Methods[name]; exists {
			continue
		}
		f.Methods[name] = m
	}
}
