// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for the Jowam site server and its
// maintenance commands.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"jowam/internal/config"
)

// cfg is loaded once in PersistentPreRunE and shared by every subcommand.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "jowam",
	Short: "Jowam Coffee website server",
	Long: `jowam serves the Jowam Coffee public site, its Insights blog, the
green coffee catalog and the admin API.

Run without arguments to start the HTTP server.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load()
		if err != nil {
			return fmt.Errorf("load configuration: %w", err)
		}
		cfg = loaded
		slog.SetDefault(newLogger(os.Stdout, cfg))
		return nil
	},
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, createUserCmd)
}

// newLogger returns a JSON handler in production and a text handler
// elsewhere, unless LOG_FORMAT says otherwise.
func newLogger(w io.Writer, c *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.LogLevel}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}
