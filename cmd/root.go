package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "modpack-builder",
	Short: "Builds Minecraft modpacks from Modrinth",
	Long: `Turns a list of mod names into a ready-to-install modpack archive:
names are matched against Modrinth, required dependencies are pulled in,
and the newest compatible file of every project is packed into one zip.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", ".", "directory holding the .env file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "also log to stderr at debug level")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
