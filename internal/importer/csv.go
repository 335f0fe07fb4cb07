package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readRecords tokenizes the whole input before anything is persisted, so a
// malformed record aborts the import with no side effects. Quoted fields may
// contain commas, doubled quotes and newlines. A quote that does not open a
// field is kept as a literal character. Blank lines are skipped and records
// may have any number of fields.
func readRecords(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if line, ok := unterminatedQuote(data); ok {
		return nil, abortf("Parse error at line %d: Quoted field unterminated", line)
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var records [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, abortf("Parse error at line %d: %v", pe.Line, pe.Err)
			}
			return nil, abortf("Parse error: %v", err)
		}
		records = append(records, rec)
	}

	if len(records) < 2 {
		return nil, abortf("CSV file is empty or has no data rows")
	}
	return records, nil
}

// unterminatedQuote reports the line of a quoted field still open at end of
// input. It follows the lazy quoting rules of readRecords: only a quote at
// the start of a field opens one, and inside it a quote closes the field
// only when followed by a comma, a line break or the end of input.
func unterminatedQuote(data []byte) (int, bool) {
	line, openLine := 1, 0
	inQuotes, fieldStart := false, true
	for i := 0; i < len(data); i++ {
		c := data[i]
		if c == '\n' {
			line++
		}
		if inQuotes {
			if c != '"' {
				continue
			}
			next := byte(0)
			if i+1 < len(data) {
				next = data[i+1]
			}
			switch {
			case next == '"':
				i++
			case i+1 == len(data) || next == ',' || next == '\n' || bytes.HasPrefix(data[i+1:], []byte("\r\n")):
				inQuotes = false
			}
			continue
		}
		switch {
		case c == '"' && fieldStart:
			inQuotes, openLine = true, line
			fieldStart = false
		case c == ',' || c == '\n':
			fieldStart = true
		default:
			fieldStart = false
		}
	}
	return openLine, inQuotes
}

// abortError is an input problem that stops the import before any row is
// processed.
type abortError struct {
	msg string
}

func (e *abortError) Error() string { return e.msg }

func (e *abortError) Unwrap() error { return ErrMalformedInput }

func abortf(format string, args ...any) error {
	return &abortError{msg: fmt.Sprintf(format, args...)}
}
