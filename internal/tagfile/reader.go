// Package tagfile parses the RFC-822-like, colon-field, blank-line
// separated textual format used by Debian-family Packages and Translation
// files: records separated by blank lines, fields of the form
// "Key: value" with continuation lines beginning with whitespace belonging
// to the previous field.
//
// The state machine mirrors repogen's deb/parser.go parseControl
// continuation-line handling, generalized from a single record to a
// forward-only sequence of records.
package tagfile

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Reader parses sequential sections of a tag-file. It is single-pass and
// forward-only: once NextSection advances past a record there is no way to
// rewind to it.
type Reader struct {
	scanner *bufio.Scanner
	fields  map[string]string
	closer  io.Closer
	done    bool
}

// Open opens path and returns a Reader over it. The caller must call
// Close when finished.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r := NewReader(f)
	r.closer = f
	return r, nil
}

// NewReader builds a Reader over an already-open io.Reader. The caller is
// responsible for closing the underlying source, if any.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	return &Reader{scanner: sc}
}

// Close releases the underlying file, if the Reader was created with Open.
func (r *Reader) Close() error {
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

// NextSection advances to the next record, returning false once the input
// is exhausted. Malformed lines (continuation before any key, or a line
// with neither a colon nor leading whitespace) are skipped with a warning;
// they never abort the read.
func (r *Reader) NextSection() bool {
	if r.done {
		return false
	}

	fields := make(map[string]string)
	var currentKey string
	var currentValue strings.Builder
	sawAnyLine := false

	flush := func() {
		if currentKey != "" {
			fields[currentKey] = currentValue.String()
		}
	}

	for r.scanner.Scan() {
		line := r.scanner.Text()

		if line == "" {
			// Blank line: end of this record, unless the record is still
			// empty (tolerate leading blank lines between records).
			if sawAnyLine {
				break
			}
			continue
		}
		sawAnyLine = true

		if len(line) > 0 && (line[0] == ' ' || line[0] == '\t') {
			if currentKey == "" {
				logrus.Warnf("tagfile: continuation line before any field, ignoring: %q", line)
				continue
			}
			cont := strings.TrimSpace(line)
			currentValue.WriteString("\n")
			currentValue.WriteString(cont)
			continue
		}

		idx := strings.Index(line, ":")
		if idx < 0 {
			logrus.Warnf("tagfile: malformed line, ignoring: %q", line)
			continue
		}

		flush()

		currentKey = strings.TrimSpace(line[:idx])
		currentValue.Reset()
		currentValue.WriteString(strings.TrimSpace(line[idx+1:]))
	}
	flush()

	if err := r.scanner.Err(); err != nil {
		logrus.Warnf("tagfile: read error, stopping: %v", err)
		r.done = true
	}
	if !sawAnyLine {
		r.done = true
		r.fields = nil
		return false
	}

	r.fields = fields
	return true
}

// ReadField returns the named field's raw value from the current section,
// and whether it was present. Continuation lines are joined with "\n",
// with a lone "." line preserved verbatim (it marks a paragraph break in
// description fields, per the caller's interpretation).
func (r *Reader) ReadField(name string) (string, bool) {
	if r.fields == nil {
		return "", false
	}
	v, ok := r.fields[name]
	return v, ok
}
