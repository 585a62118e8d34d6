package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/starford/jera/internal/models"
)

// localLayout is the offset-less ISO-8601 form older save files used.
const localLayout = "2006-01-02T15:04:05"

// JSONFile implements Provider as a single JSON array file.
type JSONFile struct {
	path string
	now  func() time.Time
}

// NewJSONFile creates a JSONFile provider for path. The file need not exist.
func NewJSONFile(path string) *JSONFile {
	return &JSONFile{path: path, now: time.Now}
}

// Path returns the file location.
func (f *JSONFile) Path() string { return f.path }

// fileNote is the on-disk record. Fields are untyped so that a record with
// an odd value degrades to a default instead of failing the whole file.
type fileNote struct {
	ID       any `json:"id,omitempty"`
	Title    any `json:"title"`
	Content  any `json:"content"`
	Category any `json:"category"`
	Created  any `json:"created"`
	Modified any `json:"modified"`
}

// Load reads the file. A missing file or invalid JSON yields an empty list.
func (f *JSONFile) Load() ([]models.Note, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []models.Note{}, nil
		}
		return nil, fmt.Errorf("storage: read %s: %w", f.path, err)
	}

	var records []fileNote
	if err := json.Unmarshal(data, &records); err != nil {
		slog.Warn("storage: ignoring malformed save file",
			slog.String("path", f.path), slog.String("error", err.Error()))
		return []models.Note{}, nil
	}

	now := f.now().Truncate(time.Second)
	notes := make([]models.Note, 0, len(records))
	seen := make(map[string]struct{}, len(records))
	for _, r := range records {
		n := r.toNote(now)
		if _, dup := seen[n.ID]; dup || !usableID(n.ID) {
			n.ID = uuid.NewString()
		}
		seen[n.ID] = struct{}{}
		notes = append(notes, n)
	}
	return notes, nil
}

// Save writes notes as an indented JSON array: tmp file → fsync → rename.
func (f *JSONFile) Save(notes []models.Note) error {
	records := make([]fileNote, len(notes))
	for i, n := range notes {
		records[i] = fileNote{
			ID:       n.ID,
			Title:    n.Title,
			Content:  n.Content,
			Category: n.Category,
			Created:  formatTime(n.Created),
			Modified: formatTime(n.Modified),
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("storage: encode: %w", err)
	}
	return writeFileAtomic(f.path, buf.Bytes())
}

func (r fileNote) toNote(now time.Time) models.Note {
	return models.Note{
		ID:       text(r.ID, ""),
		Title:    text(r.Title, models.DefaultTitle),
		Content:  text(r.Content, ""),
		Category: text(r.Category, models.DefaultCategory),
		Created:  parseTime(r.Created, now),
		Modified: parseTime(r.Modified, now),
	}
}

// usableID rejects empty ids and ids that would be read back as a list
// position.
func usableID(id string) bool {
	if id == "" {
		return false
	}
	i, err := strconv.Atoi(id)
	return err != nil || i < 0
}

// text renders a decoded JSON value as a string, using def for absent values.
func text(v any, def string) string {
	switch t := v.(type) {
	case nil:
		return def
	case string:
		return t
	case float64, bool:
		return fmt.Sprint(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return def
		}
		return string(b)
	}
}

func formatTime(t time.Time) string {
	return t.Truncate(time.Second).Format(time.RFC3339)
}

func parseTime(v any, def time.Time) time.Time {
	s, ok := v.(string)
	if !ok || s == "" {
		return def
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t.Truncate(time.Second)
	}
	if t, err := time.ParseInLocation(localLayout, s, time.Local); err == nil {
		return t
	}
	return def
}

// writeFileAtomic replaces filename with data without leaving a truncated file behind.
func writeFileAtomic(filename string, data []byte) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".jera-tmp-*")
	if err != nil {
		return fmt.Errorf("storage: create temp: %w", err)
	}
	tmpName := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = tmp.Close()
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("storage: write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("storage: fsync: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("storage: close temp: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("storage: chmod temp: %w", err)
	}
	if err := os.Rename(tmpName, filename); err != nil {
		return fmt.Errorf("storage: rename: %w", err)
	}
	success = true
	return nil
}

func errUnknownDriver(driver string) error {
	return fmt.Errorf("storage: unknown driver %q", driver)
}
