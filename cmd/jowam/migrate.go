// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"jowam/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|status|down]",
	Short:     "Manage database schema migrations",
	Long:      "Apply pending migrations (up, the default), print their status, or roll back the latest one.",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"up", "status", "down"},
	RunE: func(cmd *cobra.Command, args []string) error {
		action := "up"
		if len(args) == 1 {
			action = args[0]
		}

		db, err := database.Connect(cfg.DSN())
		if err != nil {
			return err
		}
		defer db.Close()

		switch action {
		case "status":
			return database.MigrationStatus(db)
		case "down":
			return database.Rollback(db)
		case "up":
			return database.Migrate(db)
		}
		return fmt.Errorf("unknown migrate action %q", action)
	},
}
