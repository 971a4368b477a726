// Kinoscope - Movie Recommendation Service
// Copyright 2026 Kinoscope Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/kinoscope/kinoscope

package importer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/kinoscope/kinoscope/internal/recommend"
)

type captureWriter struct {
	movies []recommend.Movie
	err    error
}

func (w *captureWriter) InsertMovie(_ context.Context, m recommend.Movie) error {
	if w.err != nil {
		return w.err
	}
	w.movies = append(w.movies, m)
	return nil
}

func writeCatalog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return path
}

func TestImportFile(t *testing.T) {
	t.Parallel()

	path := writeCatalog(t, `[
		{"id": 1, "title": "The Long Heist", "genres": ["Crime"], "cast": ["M. Keaton"], "year": 1995},
		{"id": 2, "title": "City of Glass", "overview": "an undercover detective"},
		{"id": 0, "title": "No ID"},
		{"id": 3, "title": ""}
	]`)

	w := &captureWriter{}
	stats, err := New(w).ImportFile(context.Background(), path)
	if err != nil {
		t.Fatalf("ImportFile: %v", err)
	}
	if stats.Total != 4 || stats.Imported != 2 || stats.Skipped != 2 {
		t.Errorf("stats = %+v, want total 4 imported 2 skipped 2", stats)
	}
	if len(w.movies) != 2 || w.movies[0].ID != 1 || w.movies[0].Genres[0] != "Crime" {
		t.Errorf("written movies = %+v", w.movies)
	}
}

func TestImportFileMissing(t *testing.T) {
	t.Parallel()

	_, err := New(&captureWriter{}).ImportFile(context.Background(), "/does/not/exist.json")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestImportFileCorrupt(t *testing.T) {
	t.Parallel()

	path := writeCatalog(t, `{"not": "an array"`)
	_, err := New(&captureWriter{}).ImportFile(context.Background(), path)
	if err == nil {
		t.Fatal("expected error for corrupt file")
	}
}

func TestImportFileWriterError(t *testing.T) {
	t.Parallel()

	path := writeCatalog(t, `[{"id": 1, "title": "X"}]`)
	wantErr := errors.New("disk full")
	_, err := New(&captureWriter{err: wantErr}).ImportFile(context.Background(), path)
	if !errors.Is(err, wantErr) {
		t.Fatalf("ImportFile error = %v, want wrapped writer error", err)
	}
}

func TestImportFileCanceled(t *testing.T) {
	t.Parallel()

	path := writeCatalog(t, `[{"id": 1, "title": "X"}]`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(&captureWriter{}).ImportFile(ctx, path)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("ImportFile error = %v, want context.Canceled", err)
	}
}
