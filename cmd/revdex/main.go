package main

import (
	"context"
	"os"

	"github.com/revdex/revdex/internal/app"
	"github.com/spf13/cobra"
)

var (
	// Version is injected at build time
	Version = "dev"
	// Build is injected at build time
	Build = "unknown"
	// ProgramName is injected at build time
	ProgramName = "revdex"
)

func main() {
	runMain(os.Args, os.Exit)
}

func runMain(args []string, exit func(int)) {
	if err := Execute(Version, Build, ProgramName, args[1:]); err != nil {
		exit(1)
	}
}

// Execute is the entry point for the CLI, extracted for testing
func Execute(version, build, programName string, args []string) error {
	rootCmd := &cobra.Command{
		Use:     programName,
		Short:   "Review request search indexer",
		Long:    "Indexes code review requests into a full-text search index and serves search over MCP",
		Version: version,
	}

	rootCmd.SetVersionTemplate(`{{.Version}}
`)

	indexCmd := &cobra.Command{
		Use:   "index",
		Short: "Index review requests into the search index",
		RunE: func(cmd *cobra.Command, args []string) error {
			full, err := cmd.Flags().GetBool("full")
			if err != nil {
				return err
			}
			return app.RunIndex(context.Background(), app.DefaultRunParams(), cmd.Flags(), full, version)
		},
	}
	indexCmd.Flags().BoolP("full", "f", false, "Rebuild the index from scratch")
	app.RegisterIndexFlags(indexCmd.Flags())

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve search tools over MCP",
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.RunServe(context.Background(), app.DefaultRunParams(), cmd.Flags(), version)
		},
	}
	app.RegisterIndexFlags(serveCmd.Flags())
	app.RegisterServeFlags(serveCmd.Flags())

	rootCmd.AddCommand(indexCmd, serveCmd)
	rootCmd.SetArgs(args)

	return rootCmd.Execute()
}
