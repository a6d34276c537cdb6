package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/arrendix/protecciones/internal/auth"
	"github.com/arrendix/protecciones/internal/config"
)

// TokenCmd issues an access token signed with JWT_SECRET, for operators and
// local testing.
func TokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API access token",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, _ := cmd.Flags().GetString("user")
			rawRole, _ := cmd.Flags().GetString("role")
			email, _ := cmd.Flags().GetString("email")

			role, ok := auth.ParseRole(rawRole)
			if !ok {
				return fmt.Errorf("unknown role %q (expected ADMIN, STAFF or BROKER)", rawRole)
			}
			if user == "" {
				return fmt.Errorf("--user is required")
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if err := cfg.RequireAuth(); err != nil {
				return err
			}

			token, err := auth.NewToken(cfg.Auth, auth.User{ID: user, Role: role, Email: email}, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().String("user", "", "User id placed in the token")
	cmd.Flags().String("role", string(auth.RoleStaff), "ADMIN, STAFF or BROKER")
	cmd.Flags().String("email", "", "Optional e-mail claim")
	return cmd
}
