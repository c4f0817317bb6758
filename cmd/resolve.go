package cmd

import (
	"os"
	"os/signal"

	"modpack-builder/logger"
	"modpack-builder/pipeline"

	"github.com/spf13/cobra"
)

var resolveFlags requestFlags

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve [mod names...]",
	Short: "Shows what a build would contain without downloading anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		cfg, client, err := bootstrap(false)
		if err != nil {
			return err
		}
		defer logger.Sync()

		req, err := resolveFlags.request(ctx, cfg, args)
		if err != nil {
			return err
		}
		plan, err := pipeline.NewBuilder(cfg, client, logger.Log).Plan(ctx, req)
		if err != nil {
			return err
		}
		printPlan(cmd.OutOrStdout(), plan)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveFlags.register(resolveCmd)
}
