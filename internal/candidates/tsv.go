package candidates

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

type fieldState int

const (
	startField fieldState = iota
	inField
	inQuoted
	quoteInQuoted
)

// rowReader splits tab-separated rows with the quoting rules of Python's
// csv module in its default (non-strict) mode: a quote only opens a field
// at its first character, "" inside quotes is a literal quote, and a
// closing quote followed by anything but a tab resumes an unquoted field.
// A quoted field may span lines.
type rowReader struct {
	r    *bufio.Reader
	line int
}

func newRowReader(r io.Reader) *rowReader {
	return &rowReader{r: bufio.NewReader(r)}
}

// Read returns the next non-empty row and the line it starts on.
func (rr *rowReader) Read() ([]string, int, error) {
	for {
		text, err := rr.readLine()
		if err != nil {
			return nil, 0, err
		}
		start := rr.line
		if text == "" {
			continue
		}

		var (
			fields []string
			field  strings.Builder
			state  = startField
		)
		for {
			for _, c := range text {
				switch state {
				case startField:
					switch c {
					case '"':
						state = inQuoted
					case '\t':
						fields = append(fields, "")
					default:
						field.WriteRune(c)
						state = inField
					}
				case inField:
					if c == '\t' {
						fields = append(fields, field.String())
						field.Reset()
						state = startField
					} else {
						field.WriteRune(c)
					}
				case inQuoted:
					if c == '"' {
						state = quoteInQuoted
					} else {
						field.WriteRune(c)
					}
				case quoteInQuoted:
					switch c {
					case '"':
						field.WriteRune(c)
						state = inQuoted
					case '\t':
						fields = append(fields, field.String())
						field.Reset()
						state = startField
					default:
						field.WriteRune(c)
						state = inField
					}
				}
			}

			if state != inQuoted {
				break
			}
			// Unterminated quote: the field continues on the next line.
			next, err := rr.readLine()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return nil, 0, err
			}
			field.WriteByte('\n')
			text = next
		}

		fields = append(fields, field.String())
		return fields, start, nil
	}
}

// readLine returns the next line without its terminator. io.EOF is returned
// only when no bytes remain.
func (rr *rowReader) readLine() (string, error) {
	s, err := rr.r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", err
	}
	rr.line++
	s = strings.TrimSuffix(s, "\n")
	s = strings.TrimSuffix(s, "\r")
	return s, nil
}
