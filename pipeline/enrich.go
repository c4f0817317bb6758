package pipeline

import (
	"context"
	"fmt"
	"strings"

	"modpack-builder/logger"
	"modpack-builder/modrinth"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ModRecord is a seed name resolved to its registry project.
type ModRecord struct {
	Name            string // project title
	Slug            string
	ProjectID       string
	Downloads       int64
	Categories      []string
	Color           int
	RequestedByUser bool // the seed name occurs in the theme text
}

// Searcher finds the top registry hit for a name. *modrinth.Lookup implements it.
type Searcher interface {
	Search(ctx context.Context, name string) (modrinth.Project, bool, error)
}

// requestedByUser reports whether name occurs in theme, ignoring case.
func requestedByUser(name, theme string) bool {
	return strings.Contains(strings.ToLower(theme), strings.ToLower(name))
}

// Enrich looks every name up concurrently and returns one record per accepted
// name, in input order. Repeated names share one lookup through the cache but
// still yield their own record. Names without a hit, and hits that are not
// mods, are returned as skips.
func Enrich(ctx context.Context, s Searcher, names []string, theme string, limit int, log *zap.SugaredLogger, progress ProgressFunc) ([]ModRecord, []Skip, error) {
	log = logger.OrNop(log)
	type outcome struct {
		project modrinth.Project
		found   bool
	}
	outcomes := make([]outcome, len(names))

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, name := range names {
		g.Go(func() error {
			p, found, err := s.Search(gctx, name)
			if err != nil {
				return fmt.Errorf("search %q: %w", name, err)
			}
			outcomes[i] = outcome{project: p, found: found}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var (
		records []ModRecord
		skipped []Skip
	)
	for i, name := range names {
		o := outcomes[i]
		var reason string
		switch {
		case !o.found:
			reason = "no search result"
		case !o.project.IsMod():
			reason = fmt.Sprintf("project type is %q, not a mod", o.project.ProjectType)
		}
		if reason != "" {
			log.Infow("Dropping seed", zap.String("name", name), zap.String("reason", reason))
			skipped = append(skipped, Skip{Stage: StageEnrich, Name: name, ProjectID: o.project.ID, Reason: reason})
			progress.emit(Event{Kind: EventSkipped, Stage: StageEnrich, Name: name, Message: reason})
			continue
		}

		records = append(records, ModRecord{
			Name:            o.project.Title,
			Slug:            o.project.Slug,
			ProjectID:       o.project.ID,
			Downloads:       o.project.Downloads,
			Categories:      o.project.Categories,
			Color:           o.project.Color,
			RequestedByUser: requestedByUser(name, theme),
		})
		progress.emit(Event{Kind: EventModFound, Stage: StageEnrich, Name: o.project.Title, Color: o.project.Color})
	}
	return records, skipped, nil
}
