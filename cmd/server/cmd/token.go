package cmd

import (
	"fmt"
	"time"

	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/auth"
	"github.com/Ren-mayday/proyecto-10-event-management-backend/internal/domain/ids"
	"github.com/spf13/cobra"
)

// newTokenCommand signs a session token for an existing user id, for local
// testing against a running server.
func newTokenCommand(global *globalOptions) *cobra.Command {
	var (
		userID string
		expiry time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a JWT for a user id",
		Long: `Issue a bearer token signed with JWT_SECRET for the given user id.

Example:
  server token --user-id 01HZX3M8Q1V6YJ4K2N5P7R9T0W
  curl -H "Authorization: Bearer $(server token --user-id ...)" http://localhost:8080/api/v1/events`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := ids.ValidateULID(userID); err != nil {
				return fmt.Errorf("--user-id: %w", err)
			}
			cfg, err := loadConfig(global)
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			if expiry <= 0 {
				expiry = cfg.Auth.JWTExpiry
			}

			issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, expiry, cfg.Auth.JWTIssuer)
			token, expiresAt, err := issuer.Issue(ids.Normalize(userID))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", expiresAt.UTC().Format(time.RFC3339))
			return nil
		},
	}
	cmd.Flags().StringVar(&userID, "user-id", "", "user id (ULID) to put in the token subject")
	cmd.Flags().DurationVar(&expiry, "expiry", 0, "token lifetime (default: JWT_EXPIRY_HOURS)")
	_ = cmd.MarkFlagRequired("user-id")
	return cmd
}
