// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"jowam/internal/database"
	"jowam/internal/models"
	"jowam/internal/store"
)

// minPasswordLength matches the admin API rule for new users.
const minPasswordLength = 12

var createUserFlags struct {
	email    string
	password string
	name     string
	role     string
}

var createUserCmd = &cobra.Command{
	Use:   "create-user",
	Short: "Create a staff account for the admin API",
	Long: `Creates a staff account. The user enrolls in two-factor
authentication on first login.

Example:
  jowam create-user --email editor@jowamcoffee.com --password '...' --name Wanjiku --role editor`,
	RunE: func(cmd *cobra.Command, args []string) error {
		f := createUserFlags
		email := strings.ToLower(strings.TrimSpace(f.email))
		role := models.Role(f.role)
		if !role.Valid() {
			return fmt.Errorf("role must be admin, editor or viewer, got %q", f.role)
		}
		if len(f.password) < minPasswordLength {
			return fmt.Errorf("password must be at least %d characters", minPasswordLength)
		}
		name := strings.TrimSpace(f.name)
		if name == "" {
			name = email
		}

		db, err := database.Connect(cfg.DSN())
		if err != nil {
			return err
		}
		defer db.Close()

		user, err := store.NewUserStore(db).Create(cmd.Context(), email, f.password, name, role)
		if err != nil {
			return err
		}
		slog.Info("user created", "id", user.ID, "email", user.Email, "role", user.Role)
		return nil
	},
}

func init() {
	flags := createUserCmd.Flags()
	flags.StringVar(&createUserFlags.email, "email", "", "login email (required)")
	flags.StringVar(&createUserFlags.password, "password", "", "initial password (required)")
	flags.StringVar(&createUserFlags.name, "name", "", "display name, defaults to the email")
	flags.StringVar(&createUserFlags.role, "role", string(models.RoleEditor), "admin, editor or viewer")
	_ = createUserCmd.MarkFlagRequired("email")
	_ = createUserCmd.MarkFlagRequired("password")
}
