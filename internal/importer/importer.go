// Kinoscope - Movie Recommendation Service
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

// Package importer loads a movie catalog from a JSON file into the
// store. It runs once at startup when configured, so a fresh install can
// be seeded without a separate tool.
package importer

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"

	"github.com/kinoscope/kinoscope/internal/logging"
	"github.com/kinoscope/kinoscope/internal/recommend"
)

// CatalogWriter is the slice of the store the importer needs.
type CatalogWriter interface {
	InsertMovie(ctx context.Context, m recommend.Movie) error
}

// Stats summarizes one import run.
type Stats struct {
	Total    int
	Imported int
	Skipped  int
	Elapsed  time.Duration
}

// Importer reads a JSON array of movies and upserts them into the store.
type Importer struct {
	writer CatalogWriter
}

// New creates an Importer writing into w.
func New(w CatalogWriter) *Importer {
	return &Importer{writer: w}
}

// movieRecord is the file format: the catalog export of the upstream
// dataset, one object per movie.
type movieRecord struct {
	ID        int64    `json:"id"`
	Title     string   `json:"title"`
	Genres    []string `json:"genres"`
	Keywords  []string `json:"keywords"`
	Cast      []string `json:"cast"`
	Directors []string `json:"directors"`
	Overview  string   `json:"overview"`
	Year      int      `json:"year"`
}

// ImportFile loads the catalog at path. Records without a positive ID or
// a title are skipped and counted rather than failing the run; a corrupt
// file or a store error aborts it.
func (i *Importer) ImportFile(ctx context.Context, path string) (Stats, error) {
	start := time.Now()

	f, err := os.Open(path)
	if err != nil {
		return Stats{}, fmt.Errorf("open catalog: %w", err)
	}
	defer func() { _ = f.Close() }()

	var records []movieRecord
	if err := json.NewDecoder(f).Decode(&records); err != nil {
		return Stats{}, fmt.Errorf("decode catalog %s: %w", path, err)
	}

	stats := Stats{Total: len(records)}
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		if rec.ID <= 0 || rec.Title == "" {
			stats.Skipped++
			continue
		}
		m := recommend.Movie{
			ID:        rec.ID,
			Title:     rec.Title,
			Genres:    rec.Genres,
			Keywords:  rec.Keywords,
			Cast:      rec.Cast,
			Directors: rec.Directors,
			Overview:  rec.Overview,
			Year:      rec.Year,
		}
		if err := i.writer.InsertMovie(ctx, m); err != nil {
			return stats, fmt.Errorf("import movie %d: %w", rec.ID, err)
		}
		stats.Imported++
	}
	stats.Elapsed = time.Since(start)

	logging.Info().
		Str("path", path).
		Int("total", stats.Total).
		Int("imported", stats.Imported).
		Int("skipped", stats.Skipped).
		Dur("elapsed", stats.Elapsed).
		Msg("catalog import complete")
	return stats, nil
}
