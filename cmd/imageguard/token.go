package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/NeuralTrust/ImageGuard/pkg/infra/jwt"
	"github.com/NeuralTrust/ImageGuard/pkg/version"
	"github.com/spf13/cobra"
)

var (
	tokenSubject string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for the moderation API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(false)
		if err != nil {
			return err
		}
		if cfg.Server.SecretKey == "" {
			return errors.New("server.secret_key is not set, the API does not require tokens")
		}
		token, err := jwt.NewJwtManager(cfg.Server.SecretKey).CreateToken(tokenSubject, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), version.GetInfo().String())
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "imageguard-client", "token subject")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
	rootCmd.AddCommand(tokenCmd, versionCmd)
}
