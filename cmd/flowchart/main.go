package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ravi-parthasarathy/flowchart/pkg/config"
	"github.com/ravi-parthasarathy/flowchart/pkg/flowchart"
)

func main() {
	if err := rootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// app carries the settings shared by every subcommand.
type app struct {
	configPath string
	logLevel   string
	logFormat  string
	cfg        *config.Config
}

func rootCmd() *cobra.Command {
	a := &app{cfg: config.Default()}

	root := &cobra.Command{
		Use:   "flowchart",
		Short: "Flowchart — pipeline run diagrams",
		Long: `Flowchart draws the steps of a pipeline run as a directed graph.

A hierarchy file lists, for every step, the steps or data sources that can
feed it. Predecessors joined by ',' are alternatives (the first available one
is used); predecessors joined by '+' are all used when available.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")
	root.PersistentFlags().StringVar(&a.logFormat, "log-format", "", "log format: text or json")

	root.AddCommand(renderCmd(a))
	root.AddCommand(showCmd(a))
	root.AddCommand(lintCmd(a))
	return root
}

// setup loads the config file and installs the logger; explicit flags win
// over the file.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Log.Format = a.logFormat
	}
	if err := initLogger(cfg.Log.Level, cfg.Log.Format); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// ─── lint ─────────────────────────────────────────────────────────────────────

func lintCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lint <hierarchy>",
		Short: "Validate a hierarchy file without rendering it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := loadHierarchy(args[0], a.cfg.Sources)
			if err != nil {
				return err
			}
			for _, w := range flowchart.Validate(h) {
				if w.Warning {
					fmt.Fprintf(cmd.OutOrStdout(), "warning: %s\n", w.Error())
				}
			}
			if lintErr := flowchart.ValidateErr(h); lintErr != nil {
				return lintErr
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OK: hierarchy %q is valid (%d steps)\n", args[0], len(h.Steps))
			return nil
		},
	}
	return cmd
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// signalContext returns a context that is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(ch)
		select {
		case <-ch:
			fmt.Fprintln(os.Stderr, "\n[flowchart] interrupted — cancelling render")
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}
