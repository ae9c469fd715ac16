package record

import "strings"

type valueKind int

const (
	kindString valueKind = iota
	kindBare
	kindObject
	kindArray
)

type value struct {
	text string
	kind valueKind
}

// Object is a depth-scoped index of an object's top-level fields. A
// name that only appears as a value, or inside a nested object, is not
// a field of the Object.
type Object struct {
	fields map[string]value
	order  []string
}

// Parse indexes an object given with its braces.
func Parse(text string) Object {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "{") {
		end := skipBalanced(text, 0)
		text = text[1:end]
		text = strings.TrimSuffix(text, "}")
	}
	return ParseBody(text)
}

// ParseBody indexes the inner text of an object. Tokenizing stops at
// the first malformed member; members before it are kept. When a name
// repeats, the first occurrence wins.
func ParseBody(body string) Object {
	o := Object{fields: make(map[string]value)}

	i := 0
	for {
		i = skipSeparators(body, i)
		if i >= len(body) || body[i] != '"' {
			return o
		}

		var name string
		name, i = readString(body, i)
		i = skipSpace(body, i)
		if i >= len(body) || body[i] != ':' {
			return o
		}
		i = skipSpace(body, i+1)
		if i >= len(body) {
			return o
		}

		var v value
		switch body[i] {
		case '"':
			v.kind = kindString
			v.text, i = readString(body, i)
		case '{', '[':
			v.kind = kindObject
			if body[i] == '[' {
				v.kind = kindArray
			}
			end := skipBalanced(body, i)
			v.text = body[i:end]
			i = end
		default:
			v.kind = kindBare
			begin := i
			for i < len(body) && isTokenByte(body[i]) {
				i++
			}
			v.text = body[begin:i]
			for i < len(body) && body[i] != ',' {
				i++
			}
		}

		key := strings.ToLower(name)
		if _, dup := o.fields[key]; !dup {
			o.fields[key] = v
			o.order = append(o.order, name)
		}
	}
}

// Names lists the top-level field names in input order.
func (o Object) Names() []string {
	return o.order
}

// Field returns the named top-level value. Nested objects and arrays
// are returned as their raw text.
func (o Object) Field(name string, max int) (string, bool) {
	v, ok := o.fields[strings.ToLower(name)]
	if !ok {
		return "", false
	}
	return truncate(v.text, max), true
}

// Elements returns the objects of the named top-level array. Elements
// may contain nested objects; non-object elements are skipped.
func (o Object) Elements(name string) ([]Fields, bool) {
	v, ok := o.fields[strings.ToLower(name)]
	if !ok || v.kind != kindArray {
		return nil, false
	}

	text := v.text
	var out []Fields
	i := 1
	for {
		i = skipSeparators(text, i)
		if i >= len(text) || text[i] == ']' {
			return out, true
		}
		switch text[i] {
		case '{':
			end := skipBalanced(text, i)
			out = append(out, Parse(text[i:end]))
			i = end
		case '[':
			i = skipBalanced(text, i)
		case '"':
			_, i = readString(text, i)
		default:
			for i < len(text) && text[i] != ',' && text[i] != ']' {
				i++
			}
		}
	}
}

// After returns o: scoped lookups do not depend on field order.
func (o Object) After(string) Fields {
	return o
}

// readString returns the raw content of the string literal whose
// opening quote is at i, and the offset after its closing quote.
// Escapes are skipped over, not decoded.
func readString(text string, i int) (string, int) {
	j := i + 1
	for j < len(text) {
		switch text[j] {
		case '\\':
			j += 2
			continue
		case '"':
			return text[i+1 : j], j + 1
		}
		j++
	}
	return text[min(i+1, len(text)):], len(text)
}

// skipBalanced returns the offset just past the object or array that
// opens at i. Brackets inside strings are ignored. An unterminated
// value runs to the end of text.
func skipBalanced(text string, i int) int {
	depth := 0
	for i < len(text) {
		switch text[i] {
		case '"':
			_, i = readString(text, i)
			continue
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
		i++
	}
	return len(text)
}

func skipSeparators(text string, i int) int {
	for i < len(text) && (isSpace(text[i]) || text[i] == ',') {
		i++
	}
	return i
}
