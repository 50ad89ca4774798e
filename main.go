// Package main is the entry point for locomplete, a terminal editor built
// around an interactive completion engine.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time
var Version = "0.1.0"

// Global flags
var (
	workDir     string
	debug       bool
	contentType string
	theme       string
)

var rootCmd = &cobra.Command{
	Use:   "locomplete [file]",
	Short: "locomplete - a terminal editor with interactive completion",
	Long: `locomplete edits one file in the terminal and completes words, keywords
and snippets as you type.

Settings live in .locomplete/config.json under the project directory and are
reloaded when the file changes. Use 'locomplete config' to inspect them.`,
	Version: Version,
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var path string
		if len(args) == 1 {
			path = args[0]
		}
		return runEditor(cmd.Context(), path)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&workDir, "dir", "d", "", "Project directory (defaults to the current directory)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Write debug logs")
	rootCmd.Flags().StringVarP(&contentType, "content-type", "t", "", "Content type of the buffer (defaults to the file extension)")
	rootCmd.Flags().StringVar(&theme, "theme", "", "Color theme, overriding the configured one")

	rootCmd.AddCommand(configCmd)
}

// projectDir returns the working directory from flag or current directory.
func projectDir() (string, error) {
	if workDir != "" {
		return workDir, nil
	}
	return os.Getwd()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
