package linktest

import (
	"context"
	"io"

	"github.com/luma/cosmogram/protocol"
)

// Script replies to every request with lines, each followed by a newline.
func Script(lines ...string) Handler {
	return HandlerFunc(func(ctx context.Context, w io.Writer, req protocol.Request) error {
		raw := make([][]byte, 0, len(lines))
		for _, line := range lines {
			raw = append(raw, []byte(line))
		}

		return protocol.WriteLines(w, raw...)
	})
}

// Raw replies to every request with data, exactly as given.
func Raw(data string) Handler {
	return HandlerFunc(func(ctx context.Context, w io.Writer, req protocol.Request) error {
		_, err := io.WriteString(w, data)
		return err
	})
}

// Hang reads the request and never replies. The connection stays open until
// the server is closed.
func Hang() Handler {
	return HandlerFunc(func(ctx context.Context, w io.Writer, req protocol.Request) error {
		<-ctx.Done()
		return nil
	})
}
