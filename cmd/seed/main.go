package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"dbmodel/internal/logging"
)

var (
	logLevel string
	log      zerolog.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed and inspect authentication users",
	Long: `Seed loads authentication users from JSON files into the configured
document store, and issues tokens for stored users.

Configuration is read from DBMODEL_CONFIG and the environment, as for the server.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log = logging.Console(logLevel)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
