package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "centsim",
	Short: "centsim emulates Centurion peripheral controllers.",
	Long: `centsim emulates the register-level behavior of the Hawk ` +
		`moving-head disk controller and the MUX four-port serial card. ` +
		`Flag defaults can be placed in a .env file (CENTSIM_* variables).`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Missing .env files are fine; the flags keep their defaults.
		_ = godotenv.Load()

		applyEnvDefaults(cmd)
	},
}

// applyEnvDefaults fills flags the user did not set from CENTSIM_*
// environment variables, so a .env file can carry a machine configuration.
func applyEnvDefaults(cmd *cobra.Command) {
	for name, env := range map[string]string{
		"disk":         "CENTSIM_DISK",
		"trace":        "CENTSIM_TRACE",
		"output":       "CENTSIM_OUTPUT",
		"monitor-port": "CENTSIM_MONITOR_PORT",
		"duration":     "CENTSIM_DURATION",
	} {
		flag := cmd.Flags().Lookup(name)
		if flag == nil || flag.Changed {
			continue
		}

		if v, ok := os.LookupEnv(env); ok {
			_ = flag.Value.Set(v)
		}
	}
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
