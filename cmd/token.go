package cmd

import (
	"encoding/json"
	"log"
	"os"

	"github.com/frahmantamala/goal-tracker/internal/auth"
	"github.com/spf13/cobra"
)

var tokenUser string

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an access token for a user",
	Long:  `Issue a signed access token for local development. Users are managed by the identity provider in production.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig(".")
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}

		generator := auth.NewJWTTokenGenerator(cfg.Security.JWTSecret, cfg.Security.AccessTokenDuration)
		tokens, err := generator.IssueTokens(tokenUser)
		if err != nil {
			log.Fatalf("failed to issue token: %v", err)
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(tokens); err != nil {
			log.Fatalf("failed to write token: %v", err)
		}
	},
}

func init() {
	tokenCmd.Flags().StringVarP(&tokenUser, "user", "u", demoUser, "User id to put in the token")

	rootCmd.AddCommand(tokenCmd)
}
