package cmd_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"
	"github.com/tidwall/gjson"

	"github.com/luma/cosmogram/client"
	"github.com/luma/cosmogram/cmd"
	"github.com/luma/cosmogram/internal/linktest"
)

// run executes the root command with args. Flag values stick between runs, so
// every test passes the flags it relies on.
func run(args ...string) (stdout string, stderr string, err error) {
	var out, errOut bytes.Buffer

	cmd.RootCmd.SetOut(&out)
	cmd.RootCmd.SetErr(&errOut)
	cmd.RootCmd.SetArgs(args)

	err = cmd.RootCmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func startServer(handler linktest.Handler) (*linktest.Server, []string) {
	server := linktest.NewServer(linktest.Options{Handler: handler})
	Expect(server.Start(context.Background())).To(Succeed())

	return server, []string{"--host", server.Host(), "--port", strconv.Itoa(server.Port())}
}

var _ = Describe("cmd", func() {
	Describe("send / receive", func() {
		It("delivers a message through the link server", func() {
			server, linkFlags := startServer(linktest.NewMailbox())
			defer func() {
				Expect(server.Close()).To(Succeed())
			}()

			stdout, _, err := run(append([]string{"send", "alice", "bob", "hello", "there"}, linkFlags...)...)
			Expect(err).To(Succeed())
			Expect(stdout).To(Equal("Message sent to bob.\n"))

			stdout, _, err = run(append([]string{"receive", "bob", "--json=false"}, linkFlags...)...)
			Expect(err).To(Succeed())
			Expect(stdout).To(MatchRegexp(`Message 1 from alice to bob at \d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}: hello there\n`))
			Expect(stdout).To(HaveSuffix("Received 1 message(s).\n"))
		})

		It("works with numeric user IDs", func() {
			mailbox := linktest.NewMailbox()
			Expect(mailbox.Restore([]byte(`{"2":[{"id":"9","sender_id":"1","recipient_id":"2","content":"seeded","timestamp":"2024-01-01 00:00:00"}]}`))).To(Succeed())

			server, linkFlags := startServer(mailbox)
			defer func() {
				Expect(server.Close()).To(Succeed())
			}()

			_, _, err := run(append([]string{"send", "1", "bob", "hi", "bob"}, linkFlags...)...)
			Expect(err).To(Succeed())

			backup, err := mailbox.Backup()
			Expect(err).To(Succeed())
			Expect(gjson.GetBytes(backup, "2.#").Int()).To(Equal(int64(1)))
			Expect(gjson.GetBytes(backup, "bob.0.content").String()).To(Equal("hi bob"))

			stdout, _, err := run(append([]string{"receive", "2", "--json=false"}, linkFlags...)...)
			Expect(err).To(Succeed())
			Expect(stdout).To(Equal("Message 9 from 1 to 2 at 2024-01-01 00:00:00: seeded\nReceived 1 message(s).\n"))

			stdout, _, err = run(append([]string{"receive", "2", "--json=false"}, linkFlags...)...)
			Expect(err).To(Succeed())
			Expect(stdout).To(Equal("Received 0 message(s).\n"))
		})

		It("fails when the server refuses the message", func() {
			server, linkFlags := startServer(linktest.Script("FAILSEND"))
			defer func() {
				Expect(server.Close()).To(Succeed())
			}()

			_, stderr, err := run(append([]string{"send", "alice", "bob", "hi"}, linkFlags...)...)
			Expect(errors.Is(err, client.ErrProtocol)).To(BeTrue())
			Expect(stderr).To(ContainSubstring("FAILSEND"))
		})

		It("prints messages as JSON and warns about server errors", func() {
			server, linkFlags := startServer(linktest.Script(
				"MESSAGE|1|alice|bob|hi|2024-01-01 00:00:00",
				"ERROR|boom",
			))
			defer func() {
				Expect(server.Close()).To(Succeed())
			}()

			stdout, stderr, err := run(append([]string{"receive", "bob", "--json"}, linkFlags...)...)
			Expect(err).To(Succeed())

			Expect(gjson.Valid(stdout)).To(BeTrue())
			Expect(gjson.Get(stdout, "messages.#").Int()).To(Equal(int64(1)))
			Expect(gjson.Get(stdout, "messages.0.sender_id").String()).To(Equal("alice"))
			Expect(gjson.Get(stdout, "messages.0.content").String()).To(Equal("hi"))
			Expect(gjson.Get(stdout, "error").String()).To(Equal("boom"))

			Expect(stderr).To(Equal("warning: boom\n"))
		})

		It("requires the content of the message", func() {
			_, _, err := run("send", "alice", "bob")
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("register / login", func() {
		var api *linktest.AccountAPI

		BeforeEach(func() {
			api = linktest.NewAccountAPI(nil)
		})

		AfterEach(func() {
			api.Close()
		})

		It("registers and logs in", func() {
			stdout, _, err := run("register", "user1", "--api-url", api.URL(),
				"--password", "password123", "--confirm-password", "password123")
			Expect(err).To(Succeed())
			Expect(stdout).To(Equal("Registered user1.\n"))

			stdout, _, err = run("login", "user1", "--api-url", api.URL(), "--password", "password123")
			Expect(err).To(Succeed())
			Expect(stdout).To(Equal("Logged in as user1.\n"))
			Expect(api.Logins()).To(Equal(1))
		})

		It("shows the reason a login was refused", func() {
			_, stderr, err := run("login", "nobody", "--api-url", api.URL(), "--password", "nope")
			Expect(err).To(HaveOccurred())
			Expect(stderr).To(ContainSubstring("invalid credentials"))
		})

		It("requires a password", func() {
			_, _, err := run("login", "user1", "--api-url", api.URL(), "--password", "")
			Expect(err).To(MatchError("--password is required"))
		})
	})

	It("prints the version", func() {
		stdout, _, err := run("version")
		Expect(err).To(Succeed())
		Expect(stdout).To(HavePrefix("cosmogram unknown\n"))
	})

	It("generates man pages", func() {
		dir, err := os.MkdirTemp("", "cosmogram-man")
		Expect(err).To(Succeed())
		defer os.RemoveAll(dir)

		_, _, err = run("gen", "man", "--dir", dir)
		Expect(err).To(Succeed())

		Expect(filepath.Join(dir, "cosmogram.1")).To(BeAnExistingFile())
		Expect(filepath.Join(dir, "cosmogram-send.1")).To(BeAnExistingFile())
	})
})
