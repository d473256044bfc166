// Package terminal implements the fintrack command-line interface.
package terminal

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"fintrack/internal/backend"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

const commandTimeout = 60 * time.Second

// Session is the set of services one command runs against.
type Session struct {
	Finance *services.FinanceService
	Savings *services.SavingsService
	cleanup backend.CleanupFunc
}

// NewSession wires services over store. Activity is recorded in-process.
func NewSession(store ledger.Store, cleanup backend.CleanupFunc, logger *log.Logger) *Session {
	fin := services.NewFinanceService(store, nil, nil, logger)
	return &Session{
		Finance: fin,
		Savings: services.NewSavingsService(store, fin, services.NewDirectPublisher(store), logger),
		cleanup: cleanup,
	}
}

func (s *Session) Close() error {
	if s.cleanup == nil {
		return nil
	}
	return s.cleanup()
}

// OpenFunc builds a session for a loaded profile.
type OpenFunc func(ctx context.Context, p Profile) (*Session, error)

// BackendOpener opens sessions through the backend factory.
func BackendOpener(logger *log.Logger) OpenFunc {
	factory := backend.NewFactory(logger)
	return func(ctx context.Context, p Profile) (*Session, error) {
		res, err := factory.CreateBackend(ctx, p.BackendConfig())
		if err != nil {
			return nil, err
		}
		return NewSession(res.Store, res.Cleanup, logger), nil
	}
}

// CLI represents the command-line interface
type CLI struct {
	open     OpenFunc
	reporter *Reporter
	rootCmd  *cobra.Command

	profilePath string
	user        string
}

type Options struct {
	Output io.Writer
	Logger *log.Logger
	// Open overrides how sessions are created. Defaults to BackendOpener.
	Open OpenFunc
}

func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.Logger == nil {
		opts.Logger = log.Nop()
	}
	logger := opts.Logger.WithComponent(log.ComponentCLI)
	if opts.Open == nil {
		opts.Open = BackendOpener(logger)
	}

	cli := &CLI{
		open:     opts.Open,
		reporter: NewReporter(opts.Output),
	}
	cli.rootCmd = cli.newRootCmd(opts.Output)
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

// SetArgs replaces os.Args for the next Execute.
func (cli *CLI) SetArgs(args []string) {
	cli.rootCmd.SetArgs(args)
}

func (cli *CLI) newRootCmd(out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "fintrack",
		Short:         "Freelancer finance tracker",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)
	cmd.SetErr(out)

	cmd.PersistentFlags().StringVar(&cli.profilePath, "profile", "", "Path to the configuration profile")
	cmd.PersistentFlags().StringVar(&cli.user, "user", "", "User to act as (overrides the profile)")

	cmd.AddCommand(
		cli.newSnapshotCmd(),
		cli.newTipsCmd(),
		cli.newGoalsCmd(),
		cli.newValidateCmd(),
		cli.newContributeCmd(),
		cli.newTokenCmd(),
	)
	return cmd
}

func (cli *CLI) profile() (Profile, error) {
	p, err := LoadProfile(cli.profilePath)
	if err != nil {
		return Profile{}, err
	}
	if cli.user != "" {
		p.User = cli.user
	}
	return p, nil
}

// withSession loads the profile, opens a session and runs fn against it.
func (cli *CLI) withSession(cmd *cobra.Command, fn func(ctx context.Context, s *Session, user string) error) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()

	p, err := cli.profile()
	if err != nil {
		return err
	}
	s, err := cli.open(ctx, p)
	if err != nil {
		return fmt.Errorf("failed to open backend %q: %w", p.Backend, err)
	}
	defer s.Close()
	return fn(ctx, s, p.User)
}
