package out_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	fastingoutadapter "fastrack/internal/modules/fasting/adapter/out"
	"fastrack/internal/modules/fasting/domain"
	"fastrack/internal/platform/markdown"
)

func TestJournalExportWritesNotesAndIndex(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "fasts")
	journal := fastingoutadapter.NewVaultJournalStore(dir, time.UTC)

	first := mustRecord(t, 11, time.Date(2026, 10, 8, 20, 0, 0, 0, time.UTC), 16*time.Hour, 16)
	second := mustRecord(t, 12, time.Date(2026, 10, 9, 20, 30, 5, 0, time.UTC), 12*time.Hour, 18)
	records := []domain.Record{second, first}
	stats := domain.ComputeStats(records, second.End)

	indexPath, err := journal.Export(context.Background(), records, stats)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	notePath := filepath.Join(dir, "2026", "10", "08", "200000-16-8-lean-gains.md")
	content, err := os.ReadFile(notePath)
	if err != nil {
		t.Fatalf("expected note at %s: %v", notePath, err)
	}
	meta, body, err := markdown.SplitFrontmatter(string(content))
	if err != nil {
		t.Fatalf("split: %v", err)
	}
	if meta["id"] != 11 || meta["met_goal"] != true || meta["goal_hours"] != 16 {
		t.Fatalf("unexpected frontmatter %+v", meta)
	}
	if !strings.Contains(body, "| Duration | 16:00:00 |") {
		t.Fatalf("expected summary table, got %q", body)
	}
	if _, err := os.Stat(filepath.Join(dir, "2026", "10", "09", "203005-18-6-warrior.md")); err != nil {
		t.Fatalf("expected second note: %v", err)
	}

	index, err := os.ReadFile(indexPath)
	if err != nil {
		t.Fatalf("read index: %v", err)
	}
	text := string(index)
	if !strings.Contains(text, "<!-- fastrack:summary:start -->") || !strings.Contains(text, "Fasts: 2, goals met: 1") {
		t.Fatalf("unexpected index %q", text)
	}
	if strings.Index(text, "2026-10-09") > strings.Index(text, "2026-10-08") {
		t.Fatalf("index must list newest first: %q", text)
	}
}

func TestJournalExportKeepsUserNotesAcrossEdits(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "fasts")
	journal := fastingoutadapter.NewVaultJournalStore(dir, time.UTC)
	ctx := context.Background()

	record := mustRecord(t, 21, time.Date(2026, 10, 8, 20, 0, 0, 0, time.UTC), 16*time.Hour, 16)
	if _, err := journal.Export(ctx, []domain.Record{record}, domain.Stats{}); err != nil {
		t.Fatalf("export: %v", err)
	}
	oldPath := filepath.Join(dir, "2026", "10", "08", "200000-16-8-lean-gains.md")
	content, err := os.ReadFile(oldPath)
	if err != nil {
		t.Fatalf("read note: %v", err)
	}
	if err := os.WriteFile(oldPath, []byte(string(content)+"\nFelt great.\n"), 0o644); err != nil {
		t.Fatalf("append note: %v", err)
	}

	edited, err := record.WithTimes(record.Start.Add(-time.Hour), record.End)
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if _, err := journal.Export(ctx, []domain.Record{edited}, domain.Stats{}); err != nil {
		t.Fatalf("re-export: %v", err)
	}
	if _, err := os.Stat(oldPath); !os.IsNotExist(err) {
		t.Fatalf("expected old note to move, stat err %v", err)
	}
	newPath := filepath.Join(dir, "2026", "10", "08", "190000-16-8-lean-gains.md")
	moved, err := os.ReadFile(newPath)
	if err != nil {
		t.Fatalf("read moved note: %v", err)
	}
	if !strings.Contains(string(moved), "Felt great.") || !strings.Contains(string(moved), "| Duration | 17:00:00 |") {
		t.Fatalf("expected user text and refreshed summary, got %q", moved)
	}
	if strings.Count(string(moved), "<!-- fastrack:fast:start -->") != 1 {
		t.Fatalf("managed block duplicated: %q", moved)
	}

	rendered, err := journal.RenderNote(edited)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(rendered, "Felt great.") {
		t.Fatalf("render must include user notes, got %q", rendered)
	}
}

func TestJournalExportRemovesNotesOfDeletedFasts(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "fasts")
	journal := fastingoutadapter.NewVaultJournalStore(dir, time.UTC)
	ctx := context.Background()

	older := mustRecord(t, 31, time.Date(2026, 10, 8, 20, 0, 0, 0, time.UTC), 16*time.Hour, 16)
	newer := mustRecord(t, 32, time.Date(2026, 10, 9, 20, 30, 5, 0, time.UTC), 12*time.Hour, 18)
	if _, err := journal.Export(ctx, []domain.Record{newer, older}, domain.Stats{}); err != nil {
		t.Fatalf("export: %v", err)
	}
	olderPath := filepath.Join(dir, "2026", "10", "08", "200000-16-8-lean-gains.md")
	newerPath := filepath.Join(dir, "2026", "10", "09", "203005-18-6-warrior.md")
	if _, err := os.Stat(olderPath); err != nil {
		t.Fatalf("expected note before delete: %v", err)
	}

	if _, err := journal.Export(ctx, []domain.Record{newer}, domain.Stats{}); err != nil {
		t.Fatalf("re-export: %v", err)
	}
	if _, err := os.Stat(olderPath); !os.IsNotExist(err) {
		t.Fatalf("note of a deleted fast must be removed, stat err = %v", err)
	}
	if _, err := os.Stat(newerPath); err != nil {
		t.Fatalf("remaining note must be kept: %v", err)
	}

	if _, err := journal.Export(ctx, nil, domain.Stats{}); err != nil {
		t.Fatalf("export after clear: %v", err)
	}
	if _, err := os.Stat(newerPath); !os.IsNotExist(err) {
		t.Fatalf("clearing history must remove every note, stat err = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "index.md")); err != nil {
		t.Fatalf("index must survive a clear: %v", err)
	}
}

func TestJournalRenderNoteWithoutExport(t *testing.T) {
	t.Parallel()
	journal := fastingoutadapter.NewVaultJournalStore(filepath.Join(t.TempDir(), "missing"), time.UTC)
	record := mustRecord(t, 31, time.Date(2026, 10, 8, 20, 0, 0, 0, time.UTC), 2*time.Hour, 16)
	rendered, err := journal.RenderNote(record)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(rendered, "# Fast on Thursday, 8 October 2026") || !strings.Contains(rendered, "goal missed") {
		t.Fatalf("unexpected note %q", rendered)
	}
}
