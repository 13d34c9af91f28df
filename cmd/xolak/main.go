package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/xolak-dev/xolak-cli/internal/app"
	"github.com/xolak-dev/xolak-cli/internal/config"
	"github.com/xolak-dev/xolak-cli/internal/logger"
)

// errUnhealthy makes `health` exit non-zero without printing an extra message.
var errUnhealthy = errors.New("backend is not healthy")

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		if !errors.Is(err, errUnhealthy) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

type cliOptions struct {
	output string
	limit  int
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:           "xolak",
		Short:         "Ask the Xolak agent for open-source repositories to contribute to",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVarP(&opts.output, "output", "o", formatText, "output format: text, json or yaml")

	root.AddCommand(
		&cobra.Command{
			Use:   "query <text...>",
			Short: "Submit a free-text query and print the recommendations",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withAssistant(cmd.Context(), func(ctx context.Context, a *app.Assistant) error {
					resp, err := a.Ask(ctx, strings.Join(args, " "))
					if err != nil {
						return err
					}
					return render(cmd.OutOrStdout(), opts.output, resp)
				})
			},
		},
		&cobra.Command{
			Use:   "health",
			Short: "Check whether the backend is up",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withAssistant(cmd.Context(), func(ctx context.Context, a *app.Assistant) error {
					healthy := a.Healthy(ctx)
					if err := render(cmd.OutOrStdout(), opts.output, healthStatus{Healthy: healthy}); err != nil {
						return err
					}
					if !healthy {
						return errUnhealthy
					}
					return nil
				})
			},
		},
		newHistoryCmd(opts),
	)
	return root
}

func newHistoryCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently answered queries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withAssistant(cmd.Context(), func(_ context.Context, a *app.Assistant) error {
				entries, err := a.History(opts.limit)
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), opts.output, entries)
			})
		},
	}
	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 10, "maximum number of entries to show (0 for all)")
	return cmd
}

// withAssistant loads config, sets up logging and the assistant runtime, and
// runs fn with a context cancelled on SIGINT/SIGTERM.
func withAssistant(parent context.Context, fn func(context.Context, *app.Assistant) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.DebugObj("xolak starting", "config", cfg)

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	assistant, err := app.NewAssistant(ctx, cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize assistant", "error", err.Error())
		return err
	}
	defer closeAssistant(assistant)

	return fn(ctx, assistant)
}

// closeAssistant releases the assistant, logging any errors encountered.
func closeAssistant(c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logger.ErrorObj("assistant close failed", "error", err.Error())
	}
}
