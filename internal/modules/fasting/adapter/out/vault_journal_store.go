package out

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"fastrack/internal/modules/fasting/domain"
	fastingout "fastrack/internal/modules/fasting/port/out"
	"fastrack/internal/platform/markdown"
	"fastrack/internal/platform/slug"
)

const (
	noteSummaryStart  = "<!-- fastrack:fast:start -->"
	noteSummaryEnd    = "<!-- fastrack:fast:end -->"
	indexSummaryStart = "<!-- fastrack:summary:start -->"
	indexSummaryEnd   = "<!-- fastrack:summary:end -->"
	indexFile         = "index.md"
)

// VaultJournalStore writes one markdown note per fast. Text outside the
// managed blocks belongs to the user and is kept across exports for as long
// as the fast stays in the history.
type VaultJournalStore struct {
	dir string
	loc *time.Location
}

func NewVaultJournalStore(dir string, loc *time.Location) fastingout.JournalStore {
	if loc == nil {
		loc = time.Local
	}
	return &VaultJournalStore{dir: dir, loc: loc}
}

// RenderNote returns the note body for record, including any text the user
// added to an exported note.
func (s *VaultJournalStore) RenderNote(record domain.Record) (string, error) {
	body := ""
	existing, err := s.existingNotes()
	if err != nil {
		return "", err
	}
	if path, ok := existing[record.ID]; ok {
		if _, body, err = readNote(path); err != nil {
			return "", err
		}
	}
	return s.noteBody(record, body), nil
}

func (s *VaultJournalStore) Export(ctx context.Context, records []domain.Record, stats domain.Stats) (string, error) {
	existing, err := s.existingNotes()
	if err != nil {
		return "", err
	}
	// Notes whose record left the history are removed so the journal mirrors it.
	kept := make(map[int64]bool, len(records))
	for _, record := range records {
		kept[record.ID] = true
	}
	for id, path := range existing {
		if kept[id] {
			continue
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return "", fmt.Errorf("remove stale note: %w", err)
		}
	}

	links := make([]string, 0, len(records))
	for _, record := range records {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		path := s.notePath(record)
		body := ""
		if old, ok := existing[record.ID]; ok {
			if _, body, err = readNote(old); err != nil {
				return "", err
			}
			if old != path {
				if err := os.Remove(old); err != nil && !os.IsNotExist(err) {
					return "", fmt.Errorf("remove moved note: %w", err)
				}
			}
		}
		if err := writeNote(path, toNoteFrontmatter(record), s.noteBody(record, body)); err != nil {
			return "", err
		}
		rel, _ := filepath.Rel(s.dir, path)
		links = append(links, fmt.Sprintf("- [%s](%s) %s", record.Start.In(s.loc).Format("2006-01-02 15:04"),
			filepath.ToSlash(rel), outcome(record)))
	}

	indexPath := filepath.Join(s.dir, indexFile)
	body := ""
	if content, err := os.ReadFile(indexPath); err == nil {
		_, body, _ = markdown.SplitFrontmatter(string(content))
	}
	if strings.TrimSpace(body) == "" {
		body = "# Fasting journal\n\n"
	}
	body = markdown.ReplaceManagedBlock(body, indexSummaryStart, indexSummaryEnd, summary(stats, links))
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create journal dir: %w", err)
	}
	if err := os.WriteFile(indexPath, []byte(body), 0o644); err != nil {
		return "", fmt.Errorf("write journal index: %w", err)
	}
	return indexPath, nil
}

func (s *VaultJournalStore) notePath(record domain.Record) string {
	start := record.Start.In(s.loc)
	name := start.Format("150405") + "-" + slug.Make(domain.LabelForGoal(record.Goal), "fast") + ".md"
	return filepath.Join(s.dir, start.Format("2006"), start.Format("01"), start.Format("02"), name)
}

func (s *VaultJournalStore) noteBody(record domain.Record, body string) string {
	if strings.TrimSpace(body) == "" {
		body = fmt.Sprintf("# Fast on %s\n\n## Notes\n", record.Start.In(s.loc).Format("Monday, 2 January 2006"))
	}
	table := strings.Join([]string{
		"| | |",
		"|---|---|",
		"| Started | " + record.Start.In(s.loc).Format("2006-01-02 15:04:05") + " |",
		"| Ended | " + record.End.In(s.loc).Format("2006-01-02 15:04:05") + " |",
		"| Duration | " + domain.FormatClock(record.Duration) + " |",
		"| Goal | " + domain.LabelForGoal(record.Goal) + " |",
		"| Result | " + outcome(record) + " |",
	}, "\n")
	return markdown.ReplaceManagedBlock(body, noteSummaryStart, noteSummaryEnd, table)
}

// existingNotes maps record ids to the notes already on disk.
func (s *VaultJournalStore) existingNotes() (map[int64]string, error) {
	notes := map[int64]string{}
	err := filepath.WalkDir(s.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == s.dir {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() || filepath.Ext(path) != ".md" || path == filepath.Join(s.dir, indexFile) {
			return nil
		}
		meta, _, err := readNote(path)
		if err != nil {
			return nil
		}
		if id, ok := asInt64(meta["id"]); ok {
			notes[id] = path
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan journal: %w", err)
	}
	return notes, nil
}

func readNote(path string) (map[string]any, string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read note %s: %w", path, err)
	}
	meta, body, err := markdown.SplitFrontmatter(string(content))
	if err != nil {
		return nil, "", fmt.Errorf("parse note %s: %w", path, err)
	}
	return meta, body, nil
}

func writeNote(path string, meta map[string]any, body string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create note dir: %w", err)
	}
	rendered, err := markdown.RenderFrontmatter(meta, body)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return fmt.Errorf("write note: %w", err)
	}
	return nil
}

func toNoteFrontmatter(record domain.Record) map[string]any {
	return map[string]any{
		"schema_version": domain.SchemaVersion,
		"id":             record.ID,
		"started_at":     record.Start.Format(time.RFC3339),
		"ended_at":       record.End.Format(time.RFC3339),
		"duration":       record.Duration.String(),
		"goal_hours":     record.Goal,
		"met_goal":       record.MetGoal,
	}
}

func summary(stats domain.Stats, links []string) string {
	lines := []string{
		fmt.Sprintf("Fasts: %d, goals met: %d", stats.TotalFasts, stats.GoalsMet),
		"",
		"Longest: " + domain.FormatClock(stats.Longest) + ", average: " + domain.FormatClock(stats.Average),
		"",
		fmt.Sprintf("Current streak: %d days, best: %d days", stats.CurrentStreak, stats.BestStreak),
	}
	if len(links) > 0 {
		sorted := append([]string(nil), links...)
		sort.Sort(sort.Reverse(sort.StringSlice(sorted)))
		lines = append(lines, "", "## Fasts", "")
		lines = append(lines, sorted...)
	}
	return strings.Join(lines, "\n")
}

func outcome(record domain.Record) string {
	if record.MetGoal {
		return "goal met"
	}
	return "goal missed"
}

func asInt64(v any) (int64, bool) {
	switch value := v.(type) {
	case int:
		return int64(value), true
	case int64:
		return value, true
	case uint64:
		return int64(value), true
	case float64:
		return int64(value), true
	case string:
		n, err := strconv.ParseInt(value, 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}
