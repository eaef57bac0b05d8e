// Package cli implements the jobtrail command-line interface using Cobra.
// Commands open the local store directly; only serve starts the HTTP API.
package cli

import (
	"fmt"
	"os"
	"os/user"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jobtrail/jobtrail/internal/daemon"
	"github.com/jobtrail/jobtrail/internal/logger"
)

var (
	userFlag  string
	jsonOut   bool
	logLevel  string
	logJSON   bool
	cliLogger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "jobtrail",
	Short: "jobtrail: gamified job-search progress",
	Long: `jobtrail tracks a job search as a game: pick a mode, complete quests,
earn XP, keep a streak and unlock achievements.

Data lives in $JOBTRAIL_HOME (default ~/.jobtrail).`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		log, err := logger.New(logJSON, logLevel)
		if err != nil {
			return err
		}
		cliLogger = log
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&userFlag, "user", "u", defaultUser(), "User id to act as")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Print results as JSON")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "Emit logs as JSON")
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version
	cliVersion = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// openDaemon builds the runtime with the CLI logger.
func openDaemon() (*daemon.Daemon, error) {
	log := cliLogger
	if log == nil {
		log = zap.NewNop()
	}
	return daemon.New(log)
}

func defaultUser() string {
	if v := os.Getenv("JOBTRAIL_USER"); v != "" {
		return v
	}
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return "local"
}
