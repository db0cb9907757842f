package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"schemasync/internal/auth"
)

var (
	tokenSubject string
	tokenRoles   []string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a bearer token for the admin API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.JWTSecret == "" {
			return fmt.Errorf("jwt_secret is not configured")
		}
		tok, err := auth.GenerateAccessToken(tokenSubject, tokenRoles, cfg.JWTSecret, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Println(tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "schemasync", "token subject")
	tokenCmd.Flags().StringSliceVar(&tokenRoles, "role", []string{"admin"}, "roles to grant")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", auth.AccessTokenTTL, "token lifetime")
}
