package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/luma/cosmogram/account"
	"github.com/luma/cosmogram/client"
	"github.com/luma/cosmogram/cmd/gen"
	"github.com/luma/cosmogram/internal/env"
	"github.com/luma/cosmogram/internal/meta"
)

var (
	// The host of the message link server
	host string

	// The port of the message link server
	port int

	// Base URL of the account API
	apiURL string

	logLevel string
)

var RootCmd = &cobra.Command{
	Use:   "cosmogram",
	Short: "Command line client for the Cosmogram messaging service",
	Long: `Command line client for the Cosmogram messaging service

Messages are sent and received over the message link (a line based TCP
protocol), accounts are managed through the account HTTP API.

Every setting can also be provided through COSMOGRAM_* environment
variables or a .env.local file, flags take precedence.
`,
	SilenceUsage: true,
}

func init() {
	flags := RootCmd.PersistentFlags()

	flags.StringVarP(&host, "host", "a", client.DefaultHost, "The host of the message link server")
	flags.IntVarP(&port, "port", "p", client.DefaultPort, "The port of the message link server")
	flags.StringVar(&apiURL, "api-url", account.DefaultBaseURL, "The base URL of the account API")
	flags.StringVar(&logLevel, "log-level", "warn", "The minimum level to log at (debug, info, warn, error)")

	RootCmd.AddCommand(SendCmd)
	RootCmd.AddCommand(ReceiveCmd)
	RootCmd.AddCommand(RegisterCmd)
	RootCmd.AddCommand(LoginCmd)
	RootCmd.AddCommand(VersionCmd)
	RootCmd.AddCommand(gen.RootCmd)
}

// Execute runs the root command and exits non-zero if it fails.
func Execute() {
	ctx, signalStop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := RootCmd.ExecuteContext(ctx)
	signalStop()

	if err != nil {
		os.Exit(1)
	}
}

// session holds what a single command invocation needs: the configuration,
// with flags applied over the environment, and a logger.
type session struct {
	config *env.Config
	log    *zap.Logger
}

func newSession(cmd *cobra.Command) (*session, error) {
	config, err := env.LoadConfig(cmd.Context())
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()

	if flags.Changed("host") {
		config.Host = host
	}

	if flags.Changed("port") {
		config.Port = port
	}

	if flags.Changed("api-url") {
		config.APIURL = apiURL
	}

	if flags.Changed("log-level") {
		config.LogLevel = logLevel
	}

	log, err := env.MakeLogger(config)
	if err != nil {
		return nil, err
	}

	return &session{config: config, log: log}, nil
}

func (s *session) linkClient() *client.Client {
	return client.New(client.Options{
		Host:        s.config.Host,
		Port:        s.config.Port,
		DialTimeout: s.config.DialTimeout,
		IOTimeout:   s.config.IOTimeout,
		Log:         s.log.Named("link"),
	})
}

func (s *session) accountClient() *account.Client {
	return account.New(account.Options{
		BaseURL:   s.config.APIURL,
		UserAgent: meta.UserAgent(),
		Log:       s.log.Named("account"),
	})
}

func (s *session) Close() {
	// Sync fails on some terminals, there is nothing useful to do about it
	_ = s.log.Sync()
}
