package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/huanfeng/apkinspect/internal/config"
	"github.com/huanfeng/apkinspect/internal/i18n"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
	// a broken config file must not stop 'config init' from replacing it
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a commented configuration template",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "apkinspect.yaml"
		if len(args) == 1 {
			path = args[0]
		}

		if _, err := os.Stat(path); err == nil && !configForce {
			return errors.New(i18n.T("config.exists", map[string]interface{}{"Path": path}))
		}

		if err := config.SaveTemplate(path); err != nil {
			return fmt.Errorf("failed to write config template: %w", err)
		}
		fmt.Println(i18n.T("config.written", map[string]interface{}{"Path": path}))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)

	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing file")
}
