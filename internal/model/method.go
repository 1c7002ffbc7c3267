// Package model holds the data types shared across the remediation
// pipeline: endpoints observed by the metrics backend, source files
// pulled from the repository host, the methods parsed out of them, and
// the fault line a handler traces through.
package model

import (
	"github.com/cespare/xxhash/v2"
)

// Method is a parsed function or method definition. Identity and
// equality are defined by (Name, Parameters) only, per the source
// signature — two overloads that differ only in body are the same
// entry.
type Method struct {
	// Owner is a non-owning back-reference to the File this method was
	// parsed from. It is used only to resolve call targets against the
	// owner's (possibly import-extended) method map and to know the
	// method's language; the File owns the Method, not the reverse.
	Owner *File

	Name       string
	Parameters string
	Body       string

	// Decorator holds the annotation/decorator argument text used for
	// route matching, when the method definition carried one.
	Decorator *string

	// Rewrite holds the last regenerated body the Regenerator produced
	// for this method, once set. It is attached when the retry loop
	// ends, whether or not validation accepted that candidate — see
	// SPEC_FULL.md open question on Regenerator semantics.
	Rewrite *string
}

// Key is the comparable identity of a Method, usable directly as a map
// key (FaultLine is built on top of it).
type Key struct {
	Name       string
	Parameters string
}

// Key returns this method's identity key.
func (m *Method) Key() Key {
	return Key{Name: m.Name, Parameters: m.Parameters}
}

// Equal reports whether two methods share the same identity.
func (m *Method) Equal(other *Method) bool {
	if m == nil || other == nil {
		return m == other
	}
	return m.Name == other.Name && m.Parameters == other.Parameters
}

// Hash returns a fast, non-cryptographic hash of the method's identity,
// consistent with Equal: equal methods always hash equal. Mirrors the
// xxhash fast-path the teacher precomputes per file content.
func (m *Method) Hash() uint64 {
	h := xxhash.New()
	_, _ = h.WriteString(m.Name)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(m.Parameters)
	return h.Sum64()
}

// HasDecorator reports whether the method carries route/annotation
// metadata usable for endpoint resolution.
func (m *Method) HasDecorator() bool {
	return m.Decorator != nil
}
