// Command hsetracker serves the PPE expiry tracker.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/erazemk/hsetracker/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// app carries the loaded configuration to subcommands.
type app struct {
	v          *viper.Viper
	configPath string
	cfg        *config.Config
	closeLog   func()
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	root := &cobra.Command{
		Use:           "hsetracker",
		Short:         "Track expiry of workers' personal protective equipment",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(a.v, a.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg

			closeLog, err := setupLogger(cfg.Log)
			if err != nil {
				return err
			}
			a.closeLog = closeLog
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.closeLog != nil {
				a.closeLog()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "YAML config file (optional)")
	flags.StringP("db", "d", "hsetracker.sqlite3", "SQLite database path")
	flags.StringP("log", "l", "", "log file path (default: stdout/stderr only)")
	flags.StringP("user", "u", "Admin", "admin username on first run")
	flags.String("timezone", "Local", "IANA time zone that defines midnight")
	for key, flag := range map[string]string{
		"db":         "db",
		"log":        "log",
		"admin_user": "user",
		"timezone":   "timezone",
	} {
		if err := a.v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("binding flag %s: %v", flag, err))
		}
	}

	root.AddCommand(a.serveCmd(), a.initCmd(), a.checkCmd())
	return root
}
