package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"modpack-builder/catalog"
	"modpack-builder/config"
	"modpack-builder/logger"
	"modpack-builder/modrinth"

	"go.uber.org/zap"
)

// Request describes one modpack build.
type Request struct {
	Seeds       []string
	Theme       string
	GameVersion string
	Loader      string
	ArchiveName string // defaults to DefaultArchiveName
}

// Plan is everything a build decides before fetching files.
type Plan struct {
	Mods      []ModRecord
	Resolved  []string
	Downloads []Download
	Skipped   []Skip
}

// Dependencies returns resolved ids that were not enriched seeds.
func (p *Plan) Dependencies() []string {
	seeds := make(map[string]bool, len(p.Mods))
	for _, m := range p.Mods {
		seeds[m.ProjectID] = true
	}
	var deps []string
	for _, id := range p.Resolved {
		if !seeds[id] {
			deps = append(deps, id)
		}
	}
	return deps
}

// Result is a finished build.
type Result struct {
	Plan
	ArchivePath string
}

// Builder runs builds against a registry. It is safe for concurrent use: every
// call gets its own lookup cache.
type Builder struct {
	Registry    modrinth.Registry
	Fetcher     Fetcher
	OutputDir   string
	Policy      string
	Concurrency int
	Log         *zap.SugaredLogger
	Progress    ProgressFunc
}

// NewBuilder wires a Builder to the Modrinth client using cfg.
func NewBuilder(cfg config.Config, client *modrinth.Client, log *zap.SugaredLogger) *Builder {
	return &Builder{
		Registry:    client,
		Fetcher:     client,
		OutputDir:   cfg.OutputDir,
		Policy:      cfg.ArchivePolicy,
		Concurrency: cfg.Concurrency,
		Log:         log,
	}
}

// DefaultArchiveName is the archive file name used when a request names none.
func DefaultArchiveName(gameVersion, loader string) string {
	return fmt.Sprintf("minecraft_%s_%s_modpack.zip", gameVersion, strings.ToLower(loader))
}

func (r Request) validate() error {
	if len(r.Seeds) == 0 {
		return fmt.Errorf("failed to generate mod list: %w", ErrUnrelatedRequest)
	}
	if r.GameVersion == "" {
		return fmt.Errorf("game version is required")
	}
	return catalog.ValidateLoader(r.Loader)
}

// Plan enriches, resolves and selects without downloading anything.
func (b *Builder) Plan(ctx context.Context, req Request) (*Plan, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	log := logger.OrNop(b.Log).With(zap.String("game_version", req.GameVersion), zap.String("loader", req.Loader))
	loader := strings.ToLower(req.Loader)
	lookup := modrinth.NewLookup(b.Registry, modrinth.NewCache(), log)
	plan := &Plan{}

	log.Infow("Enriching seed list", zap.Int("seeds", len(req.Seeds)))
	b.Progress.emit(Event{Kind: EventStageStarted, Stage: StageEnrich, Count: len(req.Seeds)})
	mods, skipped, err := Enrich(ctx, lookup, req.Seeds, req.Theme, b.Concurrency, log, b.Progress)
	if err != nil {
		return nil, fmt.Errorf("enrich: %w", err)
	}
	plan.Mods = mods
	plan.Skipped = append(plan.Skipped, skipped...)

	seedIDs := make([]string, 0, len(mods))
	for _, m := range mods {
		seedIDs = append(seedIDs, m.ProjectID)
	}
	log.Infow("Resolving dependencies", zap.Int("mods", len(seedIDs)))
	b.Progress.emit(Event{Kind: EventStageStarted, Stage: StageResolve, Count: len(seedIDs)})
	plan.Resolved, err = Resolve(ctx, lookup, seedIDs, req.GameVersion, loader)
	if err != nil {
		return nil, fmt.Errorf("resolve: %w", err)
	}
	log.Infow("Dependencies resolved", zap.Int("before", len(seedIDs)), zap.Int("after", len(plan.Resolved)))

	b.Progress.emit(Event{Kind: EventStageStarted, Stage: StageSelect, Count: len(plan.Resolved)})
	plan.Downloads, skipped, err = SelectDownloads(ctx, lookup, plan.Resolved, req.GameVersion, loader)
	if err != nil {
		return nil, fmt.Errorf("select: %w", err)
	}
	for _, s := range skipped {
		log.Infow("No download for project", zap.String("project_id", s.ProjectID), zap.String("reason", s.Reason))
		b.Progress.emit(Event{Kind: EventSkipped, Stage: StageSelect, Name: s.Name, Message: s.Reason})
	}
	plan.Skipped = append(plan.Skipped, skipped...)
	return plan, nil
}

// Build runs the whole pipeline and writes the archive.
func (b *Builder) Build(ctx context.Context, req Request) (*Result, error) {
	plan, err := b.Plan(ctx, req)
	if err != nil {
		return nil, err
	}
	log := logger.OrNop(b.Log)

	name := req.ArchiveName
	if name == "" {
		name = DefaultArchiveName(req.GameVersion, req.Loader)
	}
	name = filepath.Base(name)
	if b.Policy == config.PolicyBestEffort {
		log.Warnw("Archive policy is best-effort: failed downloads are skipped instead of aborting the build")
	}

	b.Progress.emit(Event{Kind: EventStageStarted, Stage: StageArchive, Count: len(plan.Downloads)})
	ab := &ArchiveBuilder{
		Fetcher:     b.Fetcher,
		Dir:         b.OutputDir,
		Policy:      b.Policy,
		Concurrency: b.Concurrency,
		Log:         log,
		Progress:    b.Progress,
	}
	archivePath, skipped, err := ab.Build(ctx, plan.Downloads, name)
	if err != nil {
		return nil, fmt.Errorf("archive: %w", err)
	}
	plan.Skipped = append(plan.Skipped, skipped...)

	log.Infow("Modpack created", zap.String("path", archivePath), zap.Int("files", len(plan.Downloads)-len(skipped)))
	b.Progress.emit(Event{Kind: EventDone, Message: archivePath, Count: len(plan.Downloads) - len(skipped)})
	return &Result{Plan: *plan, ArchivePath: archivePath}, nil
}
