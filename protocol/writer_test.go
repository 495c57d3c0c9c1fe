package protocol_test

import (
	"bytes"
	"errors"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/luma/cosmogram/protocol"
)

var _ = Describe("Parsing/ Writer", func() {
	Describe("WriteRequest", func() {
		It("writes a SEND line with four separators and a trailing newline", func() {
			w := bytes.NewBuffer([]byte{})
			at := time.Date(2024, 1, 1, 13, 4, 5, 0, time.Local)

			req := protocol.NewSendRequest("alice", "bob", "hi there", at)
			Expect(protocol.WriteRequest(w, req)).To(Succeed())

			Expect(w.String()).To(Equal("SEND|alice|bob|hi there|2024-01-01 13:04:05\n"))
			Expect(w.String()).To(MatchRegexp(`^SEND\|[^|]*\|[^|]*\|[^|]*\|\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}\n$`))
		})

		It("writes a RECEIVE line", func() {
			w := bytes.NewBuffer([]byte{})

			Expect(protocol.WriteRequest(w, &protocol.ReceiveRequest{UserID: "bob"})).To(Succeed())
			Expect(w.String()).To(Equal("RECEIVE|bob\n"))
		})

		It("refuses fields that would break the framing and writes nothing", func() {
			for _, content := range []string{"a|b", "a\nb", "a\rb"} {
				w := bytes.NewBuffer([]byte{})
				req := protocol.NewSendRequest("alice", "bob", content, time.Now())

				err := protocol.WriteRequest(w, req)
				Expect(errors.Is(err, protocol.ErrInvalidField)).To(BeTrue())
				Expect(w.Len()).To(BeZero())
			}
		})

		It("can be parsed back by ReadRequest", func() {
			w := bytes.NewBuffer([]byte{})
			req := &protocol.SendRequest{
				SenderID:    "alice",
				RecipientID: "bob",
				Content:     "hi",
				Timestamp:   "2024-01-01 00:00:00",
			}

			Expect(protocol.WriteRequest(w, req)).To(Succeed())
			Expect(protocol.ParseRequest(bytes.TrimSuffix(w.Bytes(), []byte("\n")))).To(Equal(req))
		})
	})

	Describe("FormatTimestamp", func() {
		It("uses the yyyy-MM-dd HH:mm:ss layout in local time", func() {
			at := time.Date(2023, 12, 31, 23, 59, 58, 999, time.Local)
			Expect(protocol.FormatTimestamp(at)).To(Equal("2023-12-31 23:59:58"))
		})
	})

	Describe("WriteOk", func() {
		It("include OK", func() {
			w := bytes.NewBuffer([]byte{})

			Expect(protocol.WriteOk(w)).To(Succeed())
			Expect(w.String()).To(Equal("OK\n"))
		})
	})

	Describe("WriteMessage", func() {
		It("writes a six field MESSAGE line", func() {
			w := bytes.NewBuffer([]byte{})

			Expect(protocol.WriteMessage(w, protocol.Message{
				ID:          "1",
				SenderID:    "alice",
				RecipientID: "bob",
				Content:     "hi",
				Timestamp:   "2024-01-01 00:00:00",
			})).To(Succeed())
			Expect(w.String()).To(Equal("MESSAGE|1|alice|bob|hi|2024-01-01 00:00:00\n"))
		})
	})

	Describe("WriteLines", func() {
		It("ends every line in \n", func() {
			w := bytes.NewBuffer([]byte{})

			Expect(protocol.WriteLines(w, []byte("MESSAGE|only|four|parts"), []byte("ERROR|boom"))).To(Succeed())
			Expect(w.String()).To(Equal("MESSAGE|only|four|parts\nERROR|boom\n"))
		})

		It("writes nothing without lines", func() {
			w := bytes.NewBuffer([]byte{})

			Expect(protocol.WriteLines(w)).To(Succeed())
			Expect(w.Len()).To(BeZero())
		})
	})

	Describe("WriteError", func() {
		It("include the ERROR response code and the error string", func() {
			w := bytes.NewBuffer([]byte{})

			Expect(protocol.WriteError(w, "errMessage")).To(Succeed())
			Expect(w.String()).To(Equal("ERROR|errMessage\n"))
		})
	})
})
