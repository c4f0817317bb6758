package cmd

import (
	"fmt"
	"strings"

	"modpack-builder/catalog"
	"modpack-builder/config"

	"github.com/spf13/cobra"
)

var gameVersionsCmd = &cobra.Command{
	Use:   "game-versions",
	Short: "Lists the Minecraft versions a pack can target",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		versions, err := versionSource(cfg).GameVersions(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(versions, "\n"))
		return nil
	},
}

var loadersCmd = &cobra.Command{
	Use:   "loaders",
	Short: "Lists the supported mod loaders",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), strings.Join(catalog.Loaders(), "\n"))
	},
}

func init() {
	rootCmd.AddCommand(gameVersionsCmd)
	rootCmd.AddCommand(loadersCmd)
}
