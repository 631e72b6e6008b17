// Package cli implements the tracker command line client. Every invocation
// restores the persisted session through the same store the board uses.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kidandcat/tracker/internal/api"
	"github.com/kidandcat/tracker/internal/config"
	"github.com/kidandcat/tracker/internal/localstate"
	"github.com/kidandcat/tracker/internal/localstate/filestate"
	"github.com/kidandcat/tracker/internal/localstate/sqlitestate"
	"github.com/kidandcat/tracker/internal/logger"
	"github.com/kidandcat/tracker/internal/store"
)

var (
	errLoginFailed       = errors.New("unknown email or password")
	errNotLoggedIn       = errors.New("not logged in, run `tracker login` first")
	errServerUnavailable = errors.New("server unavailable, session kept; try again later")
	errOfflineOnly       = errors.New("this command needs the server")
)

// CLI holds what a single invocation builds: config, local state, the API
// client and the store on top of them.
type CLI struct {
	configPath string
	format     string
	apiURL     string

	// State, when set, replaces the configured backend. Tests share one
	// across invocations to simulate a persisted token.
	State localstate.Store

	cfg        config.Config
	log        *zap.Logger
	closeState func() error
	client     *api.Client
	store      *store.Store
}

// NewRootCmd wires all subcommands onto a fresh root command.
func NewRootCmd(c *CLI) *cobra.Command {
	root := &cobra.Command{
		Use:   "tracker",
		Short: "Issue tracker client",
		Long: `tracker talks to the issue tracker API.

When the server cannot be reached, login falls back to the built-in demo
directory and changes stay in memory for the duration of the command.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return c.close()
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "Path to JSON config file")
	root.PersistentFlags().StringVarP(&c.format, "output", "o", formatTable, "Output format: table, json or yaml")
	root.PersistentFlags().StringVar(&c.apiURL, "api-url", "", "Override the API base URL")

	root.AddCommand(
		newLoginCmd(c),
		newLogoutCmd(c),
		newWhoamiCmd(c),
		newRegisterCmd(c),
		newIssuesCmd(c),
		newIssueCmd(c),
		newCommentCmd(c),
		newProjectsCmd(c),
		newProjectCmd(c),
		newUsersCmd(c),
		newUserCmd(c),
		newNotificationsCmd(c),
	)
	return root
}

// Execute runs the root command against os.Args.
func Execute() error {
	c := &CLI{}
	root := NewRootCmd(c)
	err := root.Execute()
	if cerr := c.close(); err == nil {
		err = cerr
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	return err
}

func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	if !validFormat(c.format) {
		return fmt.Errorf("unknown output format %q", c.format)
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if c.apiURL != "" {
		cfg.APIURL = c.apiURL
	}
	c.cfg = cfg

	c.log, err = logger.Quiet(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	state := c.State
	if state == nil {
		state, c.closeState, err = openState(cfg)
		if err != nil {
			return err
		}
	}

	c.client = api.New(cfg.APIURL, state,
		api.WithTimeout(cfg.Timeout),
		api.WithLogger(c.log.Named("api")),
	)
	c.store = store.New(c.client, state, c.log.Named("store"))
	return nil
}

func (c *CLI) close() error {
	if c.log != nil {
		_ = c.log.Sync()
	}
	if c.closeState == nil {
		return nil
	}
	err := c.closeState()
	c.closeState = nil
	return err
}

func openState(cfg config.Config) (localstate.Store, func() error, error) {
	switch cfg.StateBackend {
	case config.BackendSQLite:
		s, err := sqlitestate.Open(cfg.StateDir)
		if err != nil {
			return nil, nil, fmt.Errorf("open state: %w", err)
		}
		return s, s.Close, nil
	case config.BackendFile:
		s, err := filestate.Open(cfg.StateDir)
		if err != nil {
			return nil, nil, fmt.Errorf("open state: %w", err)
		}
		return s, nil, nil
	case config.BackendMemory:
		return localstate.NewMemory(), nil, nil
	}
	return nil, nil, fmt.Errorf("%w: %s", config.ErrUnknownBackend, cfg.StateBackend)
}

// session restores the persisted login and fails unless it produced a user.
func (c *CLI) session(ctx context.Context) error {
	switch c.store.RestoreSession(ctx) {
	case store.Authenticated:
		return nil
	case store.Restoring:
		return errServerUnavailable
	}
	return errNotLoggedIn
}

// remoteSession is session plus a check that the store ended up in API mode.
func (c *CLI) remoteSession(ctx context.Context) error {
	if err := c.session(ctx); err != nil {
		return err
	}
	if !c.store.UseAPI() {
		return errOfflineOnly
	}
	return nil
}

func (c *CLI) out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
