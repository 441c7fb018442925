package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/me/linkshort/internal/config"
	"github.com/me/linkshort/internal/links"
	"github.com/me/linkshort/internal/logging"
	"github.com/me/linkshort/internal/session"
	"github.com/me/linkshort/internal/store"
	"github.com/me/linkshort/pkg/gateway"
)

var (
	flagGateway      string
	flagConfig       string
	flagSessionStore string
	flagSessionPath  string
	flagInsecure     bool
	flagTimeout      time.Duration
	flagDebug        bool
	flagLogLevel     string
	flagLogFormat    string

	cfg      config.Config
	logger   *slog.Logger
	sessions *session.Manager
	linkSvc  *links.Service
	st       store.Store
)

// NewRootCmd creates the root cobra command for the linkshort CLI.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "linkshort",
		Short: "linkshort: shorten, share and manage links",
		Long:  "linkshort signs in to a LinkShort gateway and manages your short links.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return teardown()
		},
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flagGateway, "gateway", "", "Gateway base URL (or LINKSHORT_GATEWAY_URL env)")
	pf.StringVar(&flagConfig, "config", "", "Config file (default ~/.linkshort/config.yaml)")
	pf.StringVar(&flagSessionStore, "session-store", "", "Session store: file, sqlite, redis, memory")
	pf.StringVar(&flagSessionPath, "session-path", "", "Session file or database path")
	pf.BoolVar(&flagInsecure, "insecure", false, "Skip TLS certificate verification")
	pf.DurationVar(&flagTimeout, "timeout", 0, "Per-request timeout (0 waits indefinitely)")
	pf.BoolVar(&flagDebug, "debug", false, "Enable debug logging")
	pf.StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&flagLogFormat, "log-format", "", "Log format (text, json)")

	root.AddCommand(
		newLoginCmd(),
		newSignupCmd(),
		newLogoutCmd(),
		newWhoamiCmd(),
		newListCmd(),
		newShortenCmd(),
		newDeleteCmd(),
		newCheckCmd(),
		newResolveCmd(),
		newQRCmd(),
	)

	return root
}

// setup loads configuration, opens the session store and restores the
// persisted session before any command runs.
func setup(cmd *cobra.Command) error {
	ctx := contextOf(cmd)
	if err := teardown(); err != nil {
		return err
	}

	loaded, err := config.Load(ctx, config.LoadOptions{File: flagConfig})
	if err != nil {
		return err
	}
	cfg = applyFlags(cmd, loaded)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger = logging.NewLoggerWithWriter(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat, cmd.ErrOrStderr())

	st, err = store.Open(ctx, cfg.Store(), logger)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}

	state := session.NewState(st, logger)
	client := gateway.NewClient(cfg.Gateway(), logger, gateway.WithTokenSource(state))
	sessions = session.NewManager(state, client, logger)
	linkSvc = links.NewService(client, cfg.ShortDomain, logger)

	if _, err := sessions.Restore(ctx); err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	logger.Debug("ready", "gateway", client.BaseURL(), "signed_in", sessions.State().Current().Present())
	return nil
}

// applyFlags overrides loaded configuration with flags the user set.
func applyFlags(cmd *cobra.Command, c config.Config) config.Config {
	flags := cmd.Flags()
	if flags.Changed("gateway") {
		c.GatewayURL = flagGateway
	}
	if flags.Changed("session-store") {
		c.Session.Backend = flagSessionStore
	}
	if flags.Changed("session-path") {
		c.Session.Path = flagSessionPath
	}
	if flags.Changed("insecure") {
		c.Insecure = flagInsecure
	}
	if flags.Changed("timeout") {
		c.Timeout = flagTimeout
	}
	if flags.Changed("log-level") {
		c.LogLevel = flagLogLevel
	}
	if flags.Changed("log-format") {
		c.LogFormat = flagLogFormat
	}
	if flagDebug {
		c.LogLevel = "debug"
	}
	return c
}

func teardown() error {
	if st == nil {
		return nil
	}
	err := st.Close()
	st = nil
	if err != nil {
		return fmt.Errorf("close session store: %w", err)
	}
	return nil
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
