package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/fleetlog/fleetlog/domain/entity"
	"github.com/fleetlog/fleetlog/infrastructure/adapter/postgres"
	"github.com/fleetlog/fleetlog/infrastructure/http/validator"
	"github.com/fleetlog/fleetlog/infrastructure/service/password"
)

type createdUser struct {
	Command string `json:"command"`
	ID      int64  `json:"id"`
	Email   string `json:"email"`
	Role    string `json:"role"`
}

func newCreateAdminCmd(opts *rootOptions) *cobra.Command {
	var (
		email    string
		secret   string
		fullName string
		role     string
	)

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create a console user (admin by default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			email = strings.TrimSpace(email)
			if !validator.ValidateEmail(email) {
				return fmt.Errorf("invalid --email %q", email)
			}
			if len(secret) < 8 {
				return fmt.Errorf("--password must be at least 8 characters")
			}
			if !entity.IsValidRole(role) {
				return fmt.Errorf("invalid --role %q", role)
			}

			db, cfg, err := opts.openDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			hash, err := password.NewBcryptPasswordService(cfg.BcryptCost).HashPassword(secret)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}

			user := entity.NewUser(email, fullName, hash, role)
			if err := postgres.NewUserRepositoryAdapter(db).Create(cmd.Context(), user); err != nil {
				return err
			}

			return writeJSON(createdUser{
				Command: "create-admin",
				ID:      user.ID,
				Email:   user.Email,
				Role:    user.Role,
			})
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Login email (required)")
	cmd.Flags().StringVar(&secret, "password", "", "Initial password (required)")
	cmd.Flags().StringVar(&fullName, "name", "Administrator", "Display name")
	cmd.Flags().StringVar(&role, "role", entity.RoleAdmin, "Role: admin or manager")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}
