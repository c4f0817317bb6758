package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"modpack-builder/catalog"
	"modpack-builder/config"
	"modpack-builder/db"
	"modpack-builder/logger"
	"modpack-builder/modrinth"
	"modpack-builder/pipeline"
	"modpack-builder/ui"

	"go.uber.org/zap"
)

// bootstrap handles shared initialization logic for commands.
func bootstrap(withDatabase bool) (config.Config, *modrinth.Client, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return cfg, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := logger.InitLogger(cfg.LogFile, verbose); err != nil {
		return cfg, nil, err
	}

	if withDatabase {
		if err := db.InitDatabase(cfg.DatabasePath); err != nil {
			return cfg, nil, err
		}
		logger.Log.Infow("Database initialized", zap.String("path", cfg.DatabasePath))
	}

	client, err := modrinth.NewClient(cfg)
	if err != nil {
		return cfg, nil, fmt.Errorf("failed to create Modrinth client: %w", err)
	}
	return cfg, client, nil
}

func versionSource(cfg config.Config) *catalog.VersionSource {
	return &catalog.VersionSource{
		URL:       cfg.GameVersionsURL,
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.VersionsTimeout,
	}
}

// checkGameVersion validates gameVersion against the published list. When the
// list cannot be fetched the version is used as given.
func checkGameVersion(ctx context.Context, src *catalog.VersionSource, gameVersion string) error {
	available, err := src.GameVersions(ctx)
	if err != nil {
		logger.Log.Warnw("Could not fetch game versions, skipping validation", zap.Error(err))
		return nil
	}
	return catalog.ValidateGameVersion(gameVersion, available)
}

// readSeeds collects mod names from the arguments, a seeds file, or stdin
// when the file is "-". Every source goes through the same parser.
func readSeeds(args []string, seedsFile string, stdin io.Reader) ([]string, error) {
	var text string
	switch {
	case seedsFile == "-":
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read seeds from stdin: %w", err)
		}
		text = string(b)
	case seedsFile != "":
		b, err := os.ReadFile(seedsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read seeds file: %w", err)
		}
		text = string(b)
	default:
		text = strings.Join(args, "\n")
	}
	return pipeline.ParseSeeds(text)
}

// printPlan writes the human-readable summary of a plan.
func printPlan(w io.Writer, plan *pipeline.Plan) {
	fmt.Fprintf(w, "Mods (%d):\n", len(plan.Mods))
	for _, m := range plan.Mods {
		marker := " "
		if m.RequestedByUser {
			marker = "*"
		}
		fmt.Fprintf(w, "  %s %s (%s)\n", marker, ui.Colorize(m.Name, m.Color), m.Slug)
	}

	if deps := plan.Dependencies(); len(deps) > 0 {
		fmt.Fprintf(w, "Dependencies (%d):\n", len(deps))
		for _, id := range deps {
			fmt.Fprintf(w, "    %s\n", id)
		}
	}

	fmt.Fprintf(w, "Files (%d):\n", len(plan.Downloads))
	for _, d := range plan.Downloads {
		name, err := pipeline.EntryName(d.URL)
		if err != nil {
			name = d.URL
		}
		fmt.Fprintf(w, "    %s\n", name)
	}

	if len(plan.Skipped) > 0 {
		fmt.Fprintf(w, "Skipped (%d):\n", len(plan.Skipped))
		for _, s := range plan.Skipped {
			fmt.Fprintf(w, "    %s [%s]: %s\n", s.Name, s.Stage, s.Reason)
		}
	}
}

func truncate(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen-3] + "..."
	}
	return s
}
