package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/avolkov/mucbridge/internal/app"
	"github.com/avolkov/mucbridge/internal/auth"
	"github.com/avolkov/mucbridge/internal/config"
	"github.com/avolkov/mucbridge/internal/log"
	"github.com/avolkov/mucbridge/internal/store/sqlite"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "mucbridge",
		Short:         "Bridge websocket clients into XMPP Multi-User Chat rooms",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	rootCmd.PersistentFlags().String("config", "", "path to config file")

	rootCmd.AddCommand(
		newServeCmd(),
		newTokenCmd(),
	)

	return rootCmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bridge server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			configPath, _ := cmd.Flags().GetString("config")

			bootstrap := log.New("info")
			cfg, path, err := config.Load(bootstrap, configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			logger := log.New(cfg.LogLevel)
			logger.Info().Str("config", path).Str("addr", cfg.Addr).Str("xmpp", cfg.XMPPAddr).Msg("starting mucbridge")

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			application, err := app.New(cfg, logger)
			if err != nil {
				return err
			}
			return application.Run(ctx)
		},
	}
}

// newTokenCmd mints a client token for an existing account, useful when
// wiring up clients without going through the login endpoint.
func newTokenCmd() *cobra.Command {
	var username string
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a client JWT for an existing account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if username == "" {
				return fmt.Errorf("--username is required")
			}
			configPath, _ := cmd.Flags().GetString("config")

			logger := log.New("warn")
			cfg, _, err := config.Load(logger, configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			st, err := sqlite.New(cfg.DatabasePath)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()

			user, err := st.GetUserByUsername(cmd.Context(), username)
			if err != nil {
				return fmt.Errorf("lookup user: %w", err)
			}

			jwtConfig := &auth.JWTConfig{
				Secret:   []byte(cfg.JWTSecret),
				Issuer:   cfg.JWTIssuer,
				Audience: cfg.JWTAudience,
				TTL:      ttl,
			}
			token, err := auth.GenerateToken(jwtConfig, user.ID, user.Username, user.DefaultNick)
			if err != nil {
				return fmt.Errorf("generate token: %w", err)
			}

			fmt.Println(token)
			return nil
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "account username")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
