package main

import (
	"os"
	"time"

	"github.com/jrsteele09/go-oauth-simulator/internal/config"
	"github.com/jrsteele09/go-oauth-simulator/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	config      config.Config
	jsonOutput  bool
	showSecrets bool
	noBanner    bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{config: config.New()}

	cmd := &cobra.Command{
		Use:           "oauthsim",
		Short:         "Step through the OAuth 2.0 authorization code grant in memory",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(opts.config.GetLogLevel(), zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
			if !opts.noBanner && !opts.jsonOutput {
				displayAppname(opts.config.GetAppName())
			}
		},
	}

	cmd.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "Print results as a single JSON document")
	cmd.PersistentFlags().BoolVar(&opts.showSecrets, "show-secrets", false, "Show the client secret in the client view")
	cmd.PersistentFlags().BoolVar(&opts.noBanner, "no-banner", false, "Do not print the banner")

	cmd.AddCommand(newWalkthroughCmd(opts))
	return cmd
}
