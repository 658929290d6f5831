package command

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mediahub/cmd/cli/authentication"
	"mediahub/internal/auth"
)

// authCmd represents the auth command for token related subcommands
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  `Store, inspect and forget the access token issued by the identity provider.`,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Verify an access token and remember it",
	RunE: func(cmd *cobra.Command, args []string) error {
		if token == "" {
			return errors.New("--token is required")
		}
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		session, err := auth.NewVerifier(cfg.AuthJWTSecret, cfg.AuthJWTIssuer).Verify(token)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
		if err := authentication.StoreToken(token); err != nil {
			return fmt.Errorf("store token: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Logged in as %s\n", displayName(session))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := authentication.DeleteToken(); err != nil {
			return fmt.Errorf("logout failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Successfully logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the user of the current token",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		raw, err := resolveToken()
		if err != nil {
			return err
		}
		session, err := auth.NewVerifier(cfg.AuthJWTSecret, cfg.AuthJWTIssuer).Verify(raw)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), displayName(session))
		return nil
	},
}

// tokenCmd mints a token with the shared secret. Development only.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a development access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if cfg.IsProduction() {
			return errors.New("refusing to mint tokens in production")
		}
		userID, _ := cmd.Flags().GetString("user")
		email, _ := cmd.Flags().GetString("email")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		signed, err := auth.NewToken(cfg.AuthJWTSecret, cfg.AuthJWTIssuer, auth.Context{UserID: userID, Email: email}, ttl)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), signed)
		return nil
	},
}

func displayName(s auth.Context) string {
	if s.Email != "" {
		return fmt.Sprintf("%s (%s)", s.Email, s.UserID)
	}
	return s.UserID
}

func init() {
	authCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, tokenCmd)

	tokenCmd.Flags().StringP("user", "u", "", "user id (uuid) to put in the subject")
	tokenCmd.Flags().StringP("email", "e", "", "email claim")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "token lifetime")
	tokenCmd.MarkFlagRequired("user")
}
