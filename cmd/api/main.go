package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "thinkclear",
	Short:         "Thinkclear API and reply sanitation tools",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config (default $THINKCLEAR_CONFIG)")

	sanitizeCmd.Flags().StringVarP(&sanitizeMode, "mode", "m", "guide", "app mode: lite, guide or push")
	sanitizeCmd.Flags().BoolVar(&pushClarify, "push-clarify", false, "allow one clarifying question in push mode")
	enforceCmd.Flags().StringVarP(&sanitizeMode, "mode", "m", "guide", "app mode: lite, guide or push")

	rootCmd.AddCommand(serveCmd, migrateCmd, sanitizeCmd, enforceCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}
