package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leaflet-docs/leaflet/internal/build"
	"github.com/leaflet-docs/leaflet/internal/config"
	"github.com/leaflet-docs/leaflet/internal/dev"
)

// ExitUsageError marks a failure that should exit 2 (invalid usage or
// config) rather than 1 (build failure).
type ExitUsageError struct {
	Err error
}

func (e *ExitUsageError) Error() string { return e.Err.Error() }
func (e *ExitUsageError) Unwrap() error { return e.Err }

var rootCmd = &cobra.Command{
	Use:     "leaflet",
	Short:   "A Markdown documentation-site generator",
	Long:    "leaflet turns a tree of Markdown files into a static documentation site, with an optional live-reloading dev server.",
	Version: version,
	RunE:    runBuild,
}

func init() {
	rootCmd.Flags().StringP("input", "i", "", "source root (required)")
	rootCmd.Flags().StringP("output", "o", "", "destination root, created if absent (required)")
	rootCmd.Flags().StringP("config", "c", "", "explicit config file path")
	rootCmd.Flags().Bool("watch", false, "watch the input root and rebuild on change (requires --serve to be useful)")
	rootCmd.Flags().Bool("serve", false, "run the HTTP/WebSocket server over the output root")
	rootCmd.Flags().IntP("port", "p", 3000, "server port")
	rootCmd.Flags().String("bind", "127.0.0.1", "server bind address")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func runBuild(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")
	output, _ := cmd.Flags().GetString("output")
	configPath, _ := cmd.Flags().GetString("config")
	watch, _ := cmd.Flags().GetBool("watch")
	serveFlag, _ := cmd.Flags().GetBool("serve")
	port, _ := cmd.Flags().GetInt("port")
	bind, _ := cmd.Flags().GetString("bind")

	cfg, err := config.Resolve(config.Overrides{Input: input, Output: output, ConfigPath: configPath})
	if err != nil {
		return &ExitUsageError{Err: err}
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := build.Run(ctx, cfg)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	if result.SearchWarning != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", result.SearchWarning)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "built %d pages in %s\n", result.PagesRendered, result.Duration.Round(1e6))

	if !serveFlag {
		return nil
	}

	supervisor := dev.New(dev.Options{
		InputRoot:  cfg.Paths.Input,
		OutputRoot: cfg.Paths.Output,
		Port:       port,
		Bind:       bind,
		Watch:      watch,
	}, func() error {
		_, err := build.Run(cmd.Context(), cfg)
		return err
	})
	return supervisor.Run(ctx)
}

// exitCodeFor maps a returned error to the process exit code required by
// the command-line contract: 0 on success (handled in main before this is
// ever called), 2 for invalid usage or configuration, 1 for anything else.
func exitCodeFor(err error) int {
	var usageErr *ExitUsageError
	if errors.As(err, &usageErr) {
		return 2
	}
	return 1
}
