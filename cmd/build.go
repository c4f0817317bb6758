package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"modpack-builder/catalog"
	"modpack-builder/config"
	"modpack-builder/db"
	"modpack-builder/logger"
	"modpack-builder/pipeline"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type requestFlags struct {
	theme       string
	gameVersion string
	loader      string
	seedsFile   string
}

func (f *requestFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.theme, "theme", "", "free-text description of the pack; seeds it mentions are marked as requested")
	cmd.Flags().StringVarP(&f.gameVersion, "game-version", "g", "", "target Minecraft version (default MINECRAFT_VERSION)")
	cmd.Flags().StringVarP(&f.loader, "loader", "l", "", "target mod loader (default MINECRAFT_LOADER)")
	cmd.Flags().StringVarP(&f.seedsFile, "seeds-file", "f", "", "read mod names from a file, one per line; \"-\" reads stdin")
}

// request builds and validates a pipeline request from flags, config and
// positional mod names.
func (f *requestFlags) request(ctx context.Context, cfg config.Config, args []string) (pipeline.Request, error) {
	seeds, err := readSeeds(args, f.seedsFile, os.Stdin)
	if err != nil {
		return pipeline.Request{}, err
	}
	req := pipeline.Request{
		Seeds:       seeds,
		Theme:       f.theme,
		GameVersion: f.gameVersion,
		Loader:      f.loader,
	}
	if req.GameVersion == "" {
		req.GameVersion = cfg.MinecraftVersion
	}
	if req.Loader == "" {
		req.Loader = cfg.MinecraftLoader
	}
	if req.GameVersion == "" {
		return req, fmt.Errorf("no game version given: pass --game-version or set MINECRAFT_VERSION")
	}
	if err := catalog.ValidateLoader(req.Loader); err != nil {
		return req, err
	}
	if err := checkGameVersion(ctx, versionSource(cfg), req.GameVersion); err != nil {
		return req, err
	}
	return req, nil
}

var (
	buildFlags  requestFlags
	buildOutput string
	buildName   string
	buildTUI    bool
)

// buildCmd represents the build command
var buildCmd = &cobra.Command{
	Use:   "build [mod names...]",
	Short: "Builds a modpack archive from a list of mod names",
	Long: `Looks up every mod name on Modrinth, pulls in required dependencies for
the target game version and loader, and writes the newest compatible file of
each project into a single zip archive.

Example: modpack-builder build --game-version 1.20.1 --loader fabric Sodium Lithium`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBuild(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)

	buildFlags.register(buildCmd)
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "directory for the archive (default OUTPUT_DIR)")
	buildCmd.Flags().StringVar(&buildName, "name", "", "archive file name (default minecraft_<version>_<loader>_modpack.zip)")
	buildCmd.Flags().BoolVar(&buildTUI, "tui", false, "show live progress")
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	cfg, client, err := bootstrap(true)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if buildOutput != "" {
		cfg.OutputDir = buildOutput
		if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	req, err := buildFlags.request(ctx, cfg, args)
	if err != nil {
		return err
	}
	req.ArchiveName = buildName

	logger.Log.Infow("Running build command",
		zap.Int("seeds", len(req.Seeds)),
		zap.String("game_version", req.GameVersion),
		zap.String("loader", req.Loader),
	)
	builder := pipeline.NewBuilder(cfg, client, logger.Log)

	var res *pipeline.Result
	if buildTUI {
		res, err = runBuildTUI(ctx, func(ctx context.Context, progress pipeline.ProgressFunc) (*pipeline.Result, error) {
			builder.Progress = progress
			return builder.Build(ctx, req)
		})
	} else {
		res, err = builder.Build(ctx, req)
	}
	if err != nil {
		logger.Log.Errorw("Build failed", zap.Error(err))
		return err
	}

	record := db.NewBuild(req, res)
	if err := db.RecordBuild(db.DB, &record); err != nil {
		logger.Log.Warnw("Failed to save build history to database", zap.Error(err))
	}

	out := cmd.OutOrStdout()
	if !buildTUI {
		printPlan(out, &res.Plan)
	}
	fmt.Fprintf(out, "\nModpack created: %s\n", res.ArchivePath)
	return nil
}
