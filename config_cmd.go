package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/billie-coop/locomplete/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change settings",
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := loadConfig()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "# %s\n", mgr.Path())
		for _, key := range config.Keys {
			value, err := mgr.Value(key)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "%s = %s\n", key, value)
		}
		return nil
	},
}

var configGetCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print one setting",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := loadConfig()
		if err != nil {
			return err
		}
		value, err := mgr.Value(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Change one setting",
	Long: `Change one setting and save the file. A running editor picks the change up.

Keywords are set per content type as a comma separated list:

  locomplete config set keywords.python def,class,return`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		mgr, err := loadConfig()
		if err != nil {
			return err
		}
		if err := mgr.Set(args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], args[1])
		return nil
	},
}

func init() {
	configCmd.AddCommand(configGetCmd, configSetCmd)
}

func loadConfig() (*config.Manager, error) {
	dir, err := projectDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	mgr := config.NewManager(dir)
	if err := mgr.Load(); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return mgr, nil
}
