// Package record extracts field values from the JSON objects of a PNMP
// report stream. It is deliberately not a JSON decoder: values are
// copied out as text, escape sequences are left as they are, and the
// only structure understood is one level of objects and flat arrays.
package record

// MaxElementSize bounds a single array element copied out of a record.
const MaxElementSize = 1023

// Fields is a read-only view of one object's fields. Names match
// case-insensitively because the producers are not consistent.
type Fields interface {
	// Field returns the named scalar, truncated to max bytes
	// (max <= 0 means unlimited). ok is false when the field is absent.
	Field(name string, max int) (value string, ok bool)

	// Elements returns the objects of the named array.
	Elements(name string) ([]Fields, bool)

	// After returns the fields that follow the named field. Lookups on
	// a scoped Object do not depend on order, so it returns itself.
	After(name string) Fields
}

// Raw is the inner text of one complete object, outer braces removed,
// as produced by the stream framer.
type Raw string

// JSON restores the outer braces.
func (r Raw) JSON() string {
	return "{" + string(r) + "}"
}

// Span views the record for textual field search.
func (r Raw) Span() Span {
	return Span(r)
}

// Object indexes the record's top-level fields.
func (r Raw) Object() Object {
	return ParseBody(string(r))
}

// View returns the Fields implementation selected by legacy: the
// textual Span when true, the scoped Object otherwise.
func (r Raw) View(legacy bool) Fields {
	if legacy {
		return r.Span()
	}
	return r.Object()
}
