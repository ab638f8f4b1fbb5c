package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	jwtmw "trade_integrity/internal/platform/jwt"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an API token for the audit endpoints",
	Long: `Sign a bearer token with $JWT_SECRET that grants the audits scope.

Example:
  checker token --subject alice --ttl 24h`,
	RunE: runToken,
}

var (
	tokenSubject string
	tokenTTL     time.Duration
)

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().StringVarP(&tokenSubject, "subject", "s", "", "token subject, e.g. the auditor name (required)")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime (default $JWT_TTL or 24h)")
	_ = tokenCmd.MarkFlagRequired("subject")
}

func runToken(cmd *cobra.Command, args []string) error {
	if appCfg.JWTSecret == "" {
		return fmt.Errorf("%s is not set", jwtmw.EnvKeyJWTSecret)
	}
	ttl := tokenTTL
	if ttl <= 0 {
		ttl = appCfg.JWTTTL
	}

	token, err := jwtmw.NewGenerator(appCfg.JWTSecret, ttl).GenerateToken(tokenSubject)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
