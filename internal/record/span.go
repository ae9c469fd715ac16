package record

import "unicode/utf8"

// Span is the raw text of a JSON object searched textually, the way the
// PNMP feed has always been read: a field name is found wherever its
// quoted form first appears in the text, regardless of nesting.
type Span string

// Field copies the value of the named field, truncated to max bytes.
// ok is false when the name is absent or is not followed by a colon.
func (s Span) Field(name string, max int) (string, bool) {
	v, _, ok := s.FieldEnd(name, max)
	return v, ok
}

// FieldEnd is Field, also returning the offset just past the value.
func (s Span) FieldEnd(name string, max int) (string, int, bool) {
	start, ok := s.valueStart(name)
	if !ok {
		return "", 0, false
	}

	text := string(s)
	i := start
	if i < len(text) && text[i] == '"' {
		i++
		begin := i
		for i < len(text) && text[i] != '"' {
			i++
		}
		return truncate(text[begin:i], max), min(i+1, len(text)), true
	}

	begin := i
	for i < len(text) && isTokenByte(text[i]) {
		i++
	}
	return truncate(text[begin:i], max), i, true
}

// After returns the remainder of the span following the named field's
// value, or an empty span when the field is absent.
func (s Span) After(name string) Fields {
	_, end, ok := s.FieldEnd(name, 0)
	if !ok {
		return Span("")
	}
	return s[end:]
}

// FindArray returns the offset of the opening bracket of the named
// array. A field whose value is not an array is reported as absent.
func (s Span) FindArray(name string) (int, bool) {
	start, ok := s.valueStart(name)
	if !ok || start >= len(s) || s[start] != '[' {
		return 0, false
	}
	return start, true
}

// FirstElement returns the first flat object of the array whose opening
// bracket is at pos.
func (s Span) FirstElement(pos, max int) (Span, int, bool) {
	i := pos
	for i < len(s) && s[i] != '{' && (i == pos || s[i] != ']') {
		i++
	}
	if i >= len(s) || s[i] != '{' {
		return "", 0, false
	}
	return s.copyElement(i, max), i, true
}

// NextElement skips to the end of the element starting at pos, then
// copies the following element (braces included, at most max bytes)
// and returns its start offset. Elements must not contain braces.
func (s Span) NextElement(pos, max int) (Span, int, bool) {
	i := pos
	for i < len(s) && s[i] != '}' && s[i] != ']' {
		i++
	}
	if i >= len(s) || s[i] != '}' {
		return "", 0, false
	}
	for i < len(s) && s[i] != '{' && s[i] != ']' {
		i++
	}
	if i >= len(s) || s[i] != '{' {
		return "", 0, false
	}
	return s.copyElement(i, max), i, true
}

// Elements collects the flat objects of the named array.
func (s Span) Elements(name string) ([]Fields, bool) {
	pos, ok := s.FindArray(name)
	if !ok {
		return nil, false
	}

	var out []Fields
	elem, at, ok := s.FirstElement(pos, MaxElementSize)
	for ok {
		out = append(out, elem)
		elem, at, ok = s.NextElement(at, MaxElementSize)
	}
	return out, true
}

func (s Span) copyElement(start, max int) Span {
	end := start
	for end < len(s) && end-start < max {
		end++
		if s[end-1] == '}' {
			break
		}
	}
	return s[start:end]
}

// valueStart locates `"name"` case-insensitively and returns the offset
// of the first non-space character after the colon.
func (s Span) valueStart(name string) (int, bool) {
	text := string(s)
	at := indexFold(text, `"`+name+`"`)
	if at < 0 {
		return 0, false
	}

	i := skipSpace(text, at+len(name)+2)
	if i >= len(text) || text[i] != ':' {
		return 0, false
	}
	return skipSpace(text, i+1), true
}

func isTokenByte(c byte) bool {
	return c == '-' || c == '.' ||
		(c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v'
}

func skipSpace(text string, i int) int {
	for i < len(text) && isSpace(text[i]) {
		i++
	}
	return i
}

// indexFold is strings.Index with ASCII case folding.
func indexFold(s, substr string) int {
	n := len(substr)
	for i := 0; i+n <= len(s); i++ {
		if equalFoldASCII(s[i:i+n], substr) {
			return i
		}
	}
	return -1
}

func equalFoldASCII(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		if lower(a[i]) != lower(b[i]) {
			return false
		}
	}
	return true
}

func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}

// truncate cuts v to at most max bytes without splitting a UTF-8
// sequence. A max of zero or less means no limit.
func truncate(v string, max int) string {
	if max <= 0 || len(v) <= max {
		return v
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(v[cut]) {
		cut--
	}
	return v[:cut]
}
