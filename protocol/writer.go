package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	ErrInvalidField = errors.New("Field contains a separator or line break")

	OkTerminal = []byte("OK\n")
	Terminal   = []byte("\n")
)

// ValidateField checks that value can be framed as a single protocol field.
func ValidateField(value string) error {
	if strings.ContainsAny(value, "|\r\n") {
		return fmt.Errorf("Invalid field %q: %w", value, ErrInvalidField)
	}

	return nil
}

// EncodeRequest renders req as a single terminated line.
func EncodeRequest(req Request) ([]byte, error) {
	return encodeLine(string(req.GetCommand()), req.Fields()...)
}

// WriteRequest writes req to w as a single line. Nothing is written if any of
// its fields fail ValidateField.
func WriteRequest(w io.Writer, req Request) error {
	b, err := EncodeRequest(req)
	if err != nil {
		return err
	}

	_, err = w.Write(b)
	return err
}

func WriteOk(w io.Writer) error {
	_, err := w.Write(OkTerminal)
	return err
}

func WriteError(w io.Writer, errMsg string) error {
	b, err := encodeLine(string(PrefixErr), errMsg)
	if err != nil {
		return err
	}

	_, err = w.Write(b)
	return err
}

func WriteMessage(w io.Writer, m Message) error {
	b, err := encodeLine(string(PrefixMessage), m.Fields()...)
	if err != nil {
		return err
	}

	_, err = w.Write(b)
	return err
}

// WriteLines writes each line followed by a line terminator. The lines are
// written verbatim, without validation.
func WriteLines(w io.Writer, ss ...[]byte) error {
	if len(ss) == 0 {
		return nil
	}

	b := bytes.Join(ss, Terminal)
	b = append(b, Terminal...)

	_, err := w.Write(b)
	return err
}

func encodeLine(tag string, fields ...string) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(tag)

	for _, field := range fields {
		if err := ValidateField(field); err != nil {
			return nil, err
		}

		buf.Write(Separator)
		buf.WriteString(field)
	}

	buf.Write(Terminal)
	return buf.Bytes(), nil
}
