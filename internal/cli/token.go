package cli

import (
	"time"

	"recyclehub/internal/middleware"
	"recyclehub/internal/response"

	"github.com/spf13/cobra"
)

// TokenResult is a minted bearer token
type TokenResult struct {
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// NewTokenCommand creates the token command
func NewTokenCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		role string
		ttl  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token <user-id>",
		Short: "Mint a bearer token signed with JWT_SECRET",
		Long: `Mint a bearer token signed with JWT_SECRET.

Meant for local testing against the API; production tokens come from the
identity provider.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := newFormatter(rootOpts, cmd)
			cfg, err := loadConfig(rootOpts)
			if err != nil {
				return out.Error(err)
			}
			logger, err := newLogger(rootOpts, cfg)
			if err != nil {
				return out.Error(err)
			}

			auth, err := middleware.NewAuthMiddleware(&cfg.Auth, response.NewBuilder(response.DefaultConfig(), logger), logger)
			if err != nil {
				return out.Error(err)
			}
			if role == "" {
				role = auth.AdminRole()
			}

			token, err := auth.IssueToken(args[0], role, ttl)
			if err != nil {
				return out.Error(err)
			}
			return out.Success(TokenResult{
				UserID:    args[0],
				Role:      role,
				Token:     token,
				ExpiresAt: time.Now().Add(ttl).UTC(),
			}, token)
		},
	}

	cmd.Flags().StringVar(&role, "role", "user", "role claim; empty for the admin role")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
