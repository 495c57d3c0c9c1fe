package protocol

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
)

// MaxLineLength bounds the size of a single protocol line, excluding the
// line terminator.
const MaxLineLength = 64 * 1024

var (
	ErrUnknownCommand   = errors.New("Unknown command could not be parsed")
	ErrUnknownResponse  = errors.New("Unknown response could not be parsed")
	ErrRequestMalformed = errors.New("Request is malformed, it has the wrong number of fields")
	ErrMessageMalformed = errors.New("Message response is malformed, it does not split into exactly six fields")
	ErrLineTooLong      = errors.New("Line is longer than the maximum line length")
	ErrEmptyLine        = errors.New("Line is empty")

	PrefixSend    = []byte("SEND")
	PrefixReceive = []byte("RECEIVE")
	PrefixOk      = []byte("OK")
	PrefixErr     = []byte("ERROR")
	PrefixMessage = []byte("MESSAGE")

	Separator = []byte("|")
)

const messageFieldCount = 6

// ReadLine reads a single line from r and returns it without the line
// terminator or an optional trailing '\r'.
//
// If the stream ends with an unterminated line that line is returned with a
// nil error, the following call returns io.EOF.
func ReadLine(r *bufio.Reader) ([]byte, error) {
	var line []byte

	for {
		chunk, err := r.ReadSlice('\n')
		line = append(line, chunk...)

		content := line
		if err == nil {
			content = line[:len(line)-1]
		}

		if len(content) > MaxLineLength {
			return nil, ErrLineTooLong
		}

		switch {
		case err == nil:
			return RemoveTrailingCR(line[:len(line)-1]), nil

		case errors.Is(err, bufio.ErrBufferFull):
			continue

		case errors.Is(err, io.EOF) && len(line) > 0:
			return RemoveTrailingCR(line), nil

		default:
			return nil, err
		}
	}
}

// ReadRequest reads one line from the provided Reader and attempts to parse it
// as a client request.
func ReadRequest(r *bufio.Reader) (Request, error) {
	rawReq, err := ReadLine(r)
	if err != nil {
		return nil, err
	}

	return ParseRequest(rawReq)
}

// ParseRequest parses a single request line, without its line terminator.
func ParseRequest(line []byte) (Request, error) {
	if len(line) == 0 {
		return nil, ErrEmptyLine
	}

	parts := strings.Split(string(line), string(Separator))

	switch Command(parts[0]) {
	case SEND:
		if len(parts) != 5 {
			return nil, fmt.Errorf("Failed to parse '%s': %w", string(line), ErrRequestMalformed)
		}

		return &SendRequest{
			SenderID:    parts[1],
			RecipientID: parts[2],
			Content:     parts[3],
			Timestamp:   parts[4],
		}, nil

	case RECEIVE:
		if len(parts) != 2 {
			return nil, fmt.Errorf("Failed to parse '%s': %w", string(line), ErrRequestMalformed)
		}

		return &ReceiveRequest{UserID: parts[1]}, nil

	default:
		return nil, fmt.Errorf("Failed to parse '%s': %w", string(line), ErrUnknownCommand)
	}
}

// ParseResponse parses a single server line, without its line terminator.
//
// Lines starting with MESSAGE that do not split into exactly six fields fail
// with ErrMessageMalformed. Lines starting with ERROR are always error
// responses, the error message is whatever follows the tag and separator.
func ParseResponse(line []byte) (*Response, error) {
	raw := string(line)

	switch {
	case bytes.HasPrefix(line, PrefixMessage):
		parts := strings.Split(raw, string(Separator))
		if len(parts) != messageFieldCount {
			return nil, fmt.Errorf("Failed to parse '%s': %w", raw, ErrMessageMalformed)
		}

		return &Response{
			Type: RespMessage,
			Raw:  raw,
			Message: Message{
				ID:          parts[1],
				SenderID:    parts[2],
				RecipientID: parts[3],
				Content:     parts[4],
				Timestamp:   parts[5],
			},
		}, nil

	case bytes.HasPrefix(line, PrefixErr):
		errMessage := strings.TrimPrefix(raw[len(PrefixErr):], string(Separator))

		return &Response{
			Type:       RespErr,
			Raw:        raw,
			ErrMessage: errMessage,
		}, nil

	case bytes.Equal(line, PrefixOk):
		return &Response{Type: RespOk, Raw: raw}, nil

	default:
		return nil, fmt.Errorf("Failed to parse '%s': %w", raw, ErrUnknownResponse)
	}
}

func RemoveTrailingCR(data []byte) []byte {
	if len(data) > 0 && data[len(data)-1] == '\r' {
		// Remove the optional trailing \r
		return data[:len(data)-1]
	}

	return data
}
