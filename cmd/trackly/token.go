package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/gosuda/trackly/internal/config"
	"github.com/gosuda/trackly/internal/server/middleware"
)

// tokenCmd mints an access token signed with TRACKLY_JWT_SECRET. Identity is
// owned by an upstream provider in production; this is for local use and
// scripted smoke tests.
func tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a workspace access token",
		RunE: func(cmd *cobra.Command, _ []string) error {
			workspace, _ := cmd.Flags().GetString("workspace")
			user, _ := cmd.Flags().GetString("user")
			role, _ := cmd.Flags().GetString("role")
			name, _ := cmd.Flags().GetString("name")

			workspaceID, err := uuid.Parse(workspace)
			if err != nil {
				return fmt.Errorf("invalid workspace id %q: %w", workspace, err)
			}
			switch role {
			case middleware.RoleAdmin, middleware.RoleMember, middleware.RoleViewer:
			default:
				return fmt.Errorf("unknown role %q", role)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			tok, err := middleware.NewToken(cfg.JWT.Secret, workspaceID, user, role, name, cfg.JWT.AccessTTL)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}

	cmd.Flags().String("workspace", "", "Workspace ID (required)")
	cmd.Flags().String("user", "", "User ID (required)")
	cmd.Flags().String("role", middleware.RoleMember, "Role: admin, member or viewer")
	cmd.Flags().String("name", "", "Display name recorded as the actor")
	_ = cmd.MarkFlagRequired("workspace")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}
