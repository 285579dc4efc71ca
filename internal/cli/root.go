// Package cli implements the topup command: the portal server plus operator
// commands that drive the same services from a terminal.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/tbourn/go-topup-portal/internal/app"
	"github.com/tbourn/go-topup-portal/internal/config"
	"github.com/tbourn/go-topup-portal/internal/observability"
)

// Version is stamped at build time with -ldflags "-X ...cli.Version=v1.2.3".
var Version = "dev"

// commandTimeout bounds one operator command. A backend call is bounded by
// config.RequestTimeout on its own.
const commandTimeout = config.RequestTimeout + 5*time.Second

// Test seams.
var (
	loadConfig = config.Load
	newApp     = func(cfg config.Config, opts ...app.Option) (*app.App, error) { return app.New(cfg, opts...) }
)

type options struct {
	output  string
	verbose bool
	noColor bool

	cfg config.Config
	log zerolog.Logger
}

// NewRootCmd returns the root command.
func NewRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:           "topup",
		Short:         "Mobile airtime top-up portal",
		Long:          "topup serves the top-up portal API and runs the operator flows (login, suppliers, buy, history) from a terminal.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.init(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringVar(&o.output, "output", "text", "output format: json|text")
	root.PersistentFlags().BoolVarP(&o.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&o.noColor, "no-color", false, "disable colored output")

	root.AddCommand(newServeCmd(o))
	root.AddCommand(newLoginCmd(o))
	root.AddCommand(newLogoutCmd(o))
	root.AddCommand(newSessionCmd(o))
	root.AddCommand(newSuppliersCmd(o))
	root.AddCommand(newBuyCmd(o))
	root.AddCommand(newHistoryCmd(o))
	root.AddCommand(newVersionCmd())
	return root
}

func (o *options) init(cmd *cobra.Command) error {
	switch o.output {
	case "text", "json":
	default:
		return fmt.Errorf("--output must be json or text, got %q", o.output)
	}
	if o.noColor || o.output == "json" {
		color.NoColor = true
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	level := cfg.LogLevel
	if o.verbose {
		level = "debug"
	}
	o.cfg = cfg
	o.log = observability.SetupLogging(level, cfg.LogPretty, cmd.ErrOrStderr())
	return nil
}

// run opens the portal, hands it to fn under a bounded context and closes
// it afterwards.
func (o *options) run(cmd *cobra.Command, fn func(ctx context.Context, a *app.App) error) error {
	a, err := newApp(o.cfg, app.WithLogger(o.log))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			o.log.Warn().Err(cerr).Msg("close local store")
		}
	}()

	ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
	defer cancel()
	return fn(ctx, a)
}

func (o *options) printer(w io.Writer) *printer {
	return &printer{w: w, json: o.output == "json"}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "topup %s\n", Version)
			return nil
		},
	}
}
