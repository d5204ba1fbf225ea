package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/crate/internal/formatter"
	"github.com/desertthunder/crate/internal/genre"
	"github.com/desertthunder/crate/internal/models"
	"github.com/desertthunder/crate/internal/scraper"
	"github.com/desertthunder/crate/internal/shared"
	"github.com/urfave/cli/v3"
)

// Scrape fetches one listing page and prints each release with its destination.
func (r *Runner) Scrape(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd)
	if err != nil {
		return err
	}

	page := cmd.Int("page")
	if page < 1 {
		return fmt.Errorf("%w: page must be at least 1, got %d", shared.ErrInvalidArgument, page)
	}

	s := scraper.New(config.Scraper, r.logger)
	r.logger.Info("fetching listing page", "url", s.PageURL(page))

	releases := s.FetchPage(ctx, page)
	classified := make([]models.ClassifiedRelease, 0, len(releases))
	for _, release := range releases {
		classified = append(classified, genre.ClassifyRelease(release))
	}

	if _, err := r.output.Write(formatter.RenderReleases(page, classified)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// Classify prints the destination for the tags given as arguments. No tags classify as REST.
func (r *Runner) Classify(ctx context.Context, cmd *cli.Command) error {
	return r.writePlain("%s\n", genre.Classify(cmd.Args().Slice()))
}
