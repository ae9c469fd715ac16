// Package framer cuts complete JSON objects out of an undelimited byte
// stream. Only braces, double quotes and the backslash escape are
// significant; everything between objects is discarded.
package framer

import (
	"bufio"
	"errors"
	"io"
	"iter"

	"github.com/rs/zerolog/log"

	"pnmptrace/internal/record"
)

// MaxRecordSize bounds one object. Larger objects are discarded.
const MaxRecordSize = 64 * 1024

// Framer is a pull scanner over a byte stream. It is not safe for
// concurrent use.
type Framer struct {
	r *bufio.Reader

	depth    int
	inString bool
	escaped  bool
	buf      []byte
	overflow bool

	discarded int
}

// New returns a Framer reading from r.
func New(r io.Reader) *Framer {
	return &Framer{
		r:   bufio.NewReader(r),
		buf: make([]byte, 0, 4096),
	}
}

// Next returns the next complete object, outer braces removed. It
// returns io.EOF at the end of the stream; a partial object pending at
// that point is dropped.
func (f *Framer) Next() (record.Raw, error) {
	for {
		c, err := f.r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) && f.depth > 0 {
				log.Debug().Int("bytes", len(f.buf)).Msg("dropping unterminated record at end of input")
				f.reset()
			}
			return "", err
		}

		if rec, ok := f.feed(c); ok {
			return rec, nil
		}
	}
}

// Records yields objects until the stream ends. A read error other than
// io.EOF is yielded once as the final element.
func (f *Framer) Records() iter.Seq2[record.Raw, error] {
	return func(yield func(record.Raw, error) bool) {
		for {
			rec, err := f.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if !yield(rec, err) || err != nil {
				return
			}
		}
	}
}

// Discarded reports how many oversized objects were skipped.
func (f *Framer) Discarded() int {
	return f.discarded
}

// feed advances the state machine by one byte and reports a completed
// object.
func (f *Framer) feed(c byte) (record.Raw, bool) {
	if f.depth == 0 {
		if c == '{' {
			f.depth = 1
			f.buf = f.buf[:0]
		}
		return "", false
	}

	if c == '}' && !f.escaped && !f.inString {
		f.depth--
		if f.depth == 0 {
			return f.complete()
		}
	}

	f.append(c)

	switch {
	case f.escaped:
		f.escaped = false
	case c == '{' && !f.inString:
		f.depth++
	case c == '\\':
		f.escaped = true
	case c == '"':
		f.inString = !f.inString
	}
	return "", false
}

func (f *Framer) append(c byte) {
	if len(f.buf) >= MaxRecordSize {
		f.overflow = true
		return
	}
	f.buf = append(f.buf, c)
}

func (f *Framer) complete() (record.Raw, bool) {
	defer f.reset()
	if f.overflow {
		f.discarded++
		log.Debug().Int("limit", MaxRecordSize).Msg("discarding oversized record")
		return "", false
	}
	return record.Raw(f.buf), true
}

func (f *Framer) reset() {
	f.depth = 0
	f.inString = false
	f.escaped = false
	f.overflow = false
	f.buf = f.buf[:0]
}
