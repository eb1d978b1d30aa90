// Package main provides the devassist command: an interactive coding and
// Unity assistant that routes model tool calls to built-in capabilities.
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

	"github.com/Cyclone1070/devassist/internal/config"
	"github.com/Cyclone1070/devassist/internal/ui"
	"github.com/spf13/cobra"
)

const pingMessage = "Say hello!"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts options

	root := &cobra.Command{
		Use:          "devassist",
		Short:        "Coding and Unity development assistant",
		Long:         "devassist chats with a hosted model and runs the tool calls it makes (explain, debug, Unity script generation).",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDependencies(cmd, opts, runChat)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "path to config file (default: ~/.config/devassist/config.yaml)")
	flags.StringVar(&opts.provider, "provider", "", "model provider: groq or gemini")
	flags.StringVar(&opts.model, "model", "", "model name (default: provider's default)")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
	flags.BoolVar(&opts.noSpinner, "no-spinner", false, "disable the progress spinner")

	root.AddCommand(&cobra.Command{
		Use:   "ping",
		Short: "Send a single greeting to the model and print the reply",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDependencies(cmd, opts, runPing)
		},
	})

	return root
}

func withDependencies(cmd *cobra.Command, opts options, run func(context.Context, *Dependencies) error) error {
	// First Ctrl+C cancels the running turn and ends the session; a second
	// one falls through to the default handler.
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		stop()
	}()

	deps, err := buildDependencies(ctx, opts, config.OSEnvironment{}, config.NewLoader(), cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer deps.Close()

	return run(ctx, deps)
}

// runChat is the read-eval-print loop. It returns nil on exit, end of
// input or cancellation.
func runChat(ctx context.Context, deps *Dependencies) error {
	deps.Console.WriteBanner()

	for {
		if ctx.Err() != nil {
			return nil
		}

		msg, err := deps.Console.ReadMessage()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if IsSkippable(msg) {
			continue
		}
		if ui.IsExitCommand(msg) {
			return nil
		}

		result, err := deps.Runner.Run(ctx, msg)
		deps.Console.Settle(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			deps.Logger.Warn("turn failed", "error", err)
			deps.Console.WriteError(err)
			continue
		}
		deps.Console.WriteResult(result)
	}
}

func runPing(ctx context.Context, deps *Dependencies) error {
	result, err := deps.Runner.Run(ctx, pingMessage)
	deps.Console.Settle(ctx)
	if err != nil {
		deps.Console.WriteError(err)
		return fmt.Errorf("ping: %w", err)
	}
	deps.Console.WriteResult(result)
	return nil
}

// IsSkippable reports whether msg has no content worth sending.
func IsSkippable(msg string) bool {
	return strings.TrimSpace(msg) == ""
}
