package token

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/harbinger-games/harbinger/internal/infrastructure/auth"
	"github.com/harbinger-games/harbinger/internal/infrastructure/config"
)

var (
	env string
	ttl time.Duration
)

// NewCommand mints access tokens for local testing.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token <player-id>",
		Short: "Issue a development access token",
		Long:  `Sign an access token for the given player with the configured JWT secret and print it.`,
		Args:  cobra.ExactArgs(1),
		RunE:  run,
	}

	cmd.Flags().StringVarP(&env, "env", "e", "development", "Environment (development, test, production)")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "Token lifetime (default: auth.jwt.access_exp_minutes)")

	return cmd
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	jwtCfg := cfg.Auth.JWT
	svc := auth.NewJWTService(jwtCfg.Secret, jwtCfg.Issuer, jwtCfg.AccessExpMinutes)

	var token *auth.AccessToken
	if ttl > 0 {
		token, err = svc.GenerateWithTTL(args[0], ttl)
	} else {
		token, err = svc.Generate(args[0])
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, token.Token)
	fmt.Fprintf(cmd.ErrOrStderr(), "expires at %s\n", token.ExpiresAt.Format(time.RFC3339))
	return nil
}
