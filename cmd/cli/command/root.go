package command

// root.go defines the root command and the global flags shared by every
// subcommand.

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"mediahub/cmd/cli/authentication"
	"mediahub/internal/app"
	"mediahub/internal/auth"
	"mediahub/internal/config"
	"mediahub/internal/logging"
)

var (
	token    string // access token (jwt); falls back to MEDIAHUB_TOKEN and the keyring
	logLevel string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mediahub",
	Short: "mediahub - personal movie and game tracker",
	Long: `mediahub manages your watched movies, watchlist and played games from the
terminal. Use it to:
- Validate and import a Letterboxd export
- Rank your library in head-to-head Versus sessions
- List what you have watched and played

Use "mediahub [command] --help" to see all available commands.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "access token issued by the identity provider")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(authCmd, validateCmd, importCmd, versusCmd, libraryCmd)
}

// loadConfig reads the same environment the API server uses.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// resolveToken picks the flag, then MEDIAHUB_TOKEN, then the keyring.
func resolveToken() (string, error) {
	if token != "" {
		return token, nil
	}
	if env := os.Getenv("MEDIAHUB_TOKEN"); env != "" {
		return env, nil
	}
	stored, err := authentication.GetToken()
	if err != nil {
		return "", fmt.Errorf("read stored token: %w", err)
	}
	if stored == "" {
		return "", errors.New("not logged in: pass --token or run \"mediahub auth login\"")
	}
	return stored, nil
}

// openSession connects to the backing services and verifies the caller's
// token against the shared secret.
func openSession(ctx context.Context) (*app.App, auth.Context, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, auth.Context{}, err
	}

	raw, err := resolveToken()
	if err != nil {
		return nil, auth.Context{}, err
	}
	session, err := auth.NewVerifier(cfg.AuthJWTSecret, cfg.AuthJWTIssuer).Verify(raw)
	if err != nil {
		return nil, auth.Context{}, fmt.Errorf("authenticate: %w", err)
	}

	logger := logging.NewWithWriter(os.Stderr, logLevel, cfg.LogFormat)
	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return nil, auth.Context{}, err
	}
	return a, session, nil
}
