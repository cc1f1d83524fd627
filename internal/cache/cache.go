// Package cache persists the whole keyword collection to a single JSON file.
//
// The file is the fallback of last resort: it is read when the remote store
// has nothing to offer and rewritten after every mutation. Writes go to a
// temporary file in the same directory which is then renamed over the
// target, so a crash leaves either the old or the new document on disk.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"phrasebook/internal/model"
)

// FormatVersion is written into every document.
const FormatVersion = "1.0.0"

// ErrCache marks every failure of the local cache. Callers log it and carry on.
var ErrCache = errors.New("cache error")

// Store loads and saves the full collection.
type Store interface {
	Load(ctx context.Context) ([]model.Keyword, error)
	Save(ctx context.Context, keywords []model.Keyword) error
}

type document struct {
	Keywords []record `json:"keywords"`
	SavedAt  string   `json:"saved_at"`
	Version  string   `json:"version"`
}

type record struct {
	ID         string `json:"id"`
	RemoteID   *int64 `json:"remote_id,omitempty"`
	NativeText string `json:"native_text"`
	TargetText string `json:"target_text"`
	Situation  string `json:"situation"`
	CreatedAt  string `json:"created_at"`
}

// storedRecord is what Load accepts: the current record plus the keys the
// first version of the app wrote.
type storedRecord struct {
	record
	Korean          string `json:"korean"`
	English         string `json:"english"`
	LegacyCreatedAt string `json:"createdAt"`
	SupabaseID      *int64 `json:"supabase_id"`
}

func (r storedRecord) keyword() model.Keyword {
	kw := model.Keyword{
		ID:         r.ID,
		RemoteID:   r.RemoteID,
		NativeText: r.NativeText,
		TargetText: r.TargetText,
		Situation:  model.Situation(r.Situation),
	}
	if !kw.HasRemoteID() {
		kw.RemoteID = r.SupabaseID
	}
	if kw.NativeText == "" {
		kw.NativeText = r.Korean
	}
	if kw.TargetText == "" {
		kw.TargetText = r.English
	}
	createdAt := r.CreatedAt
	if createdAt == "" {
		createdAt = r.LegacyCreatedAt
	}
	// an unreadable timestamp stays zero and the record is dropped on load
	if t, err := model.ParseTimestamp(createdAt); err == nil {
		kw.CreatedAt = t
	}
	return kw
}

type FileStore struct {
	path string
	now  func() time.Time
}

type Option func(*FileStore)

// WithClock sets the clock used for saved_at.
func WithClock(now func() time.Time) Option {
	return func(s *FileStore) {
		s.now = now
	}
}

func NewFileStore(path string, opts ...Option) *FileStore {
	s := &FileStore{path: filepath.Clean(path), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *FileStore) Path() string {
	return s.path
}

// Load returns an empty collection when no document exists yet. Records are
// returned as stored; validating them is up to the caller.
func (s *FileStore) Load(ctx context.Context) ([]model.Keyword, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load cache: %w: %w", ErrCache, err)
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []model.Keyword{}, nil
		}
		return nil, fmt.Errorf("read cache: %w: %w", ErrCache, err)
	}

	var doc struct {
		Keywords []storedRecord `json:"keywords"`
		Version  string         `json:"version"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode cache: %w: %w", ErrCache, err)
	}
	if !compatibleVersion(doc.Version) {
		return nil, fmt.Errorf("decode cache: %w: unsupported version %q", ErrCache, doc.Version)
	}

	keywords := make([]model.Keyword, 0, len(doc.Keywords))
	for _, rec := range doc.Keywords {
		keywords = append(keywords, rec.keyword())
	}
	return keywords, nil
}

// Save replaces the persisted collection atomically.
func (s *FileStore) Save(ctx context.Context, keywords []model.Keyword) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("save cache: %w: %w", ErrCache, err)
	}

	doc := document{
		Keywords: make([]record, 0, len(keywords)),
		SavedAt:  s.now().UTC().Format(time.RFC3339Nano),
		Version:  FormatVersion,
	}
	for _, kw := range keywords {
		doc.Keywords = append(doc.Keywords, record{
			ID:         kw.ID,
			RemoteID:   kw.RemoteID,
			NativeText: kw.NativeText,
			TargetText: kw.TargetText,
			Situation:  string(kw.Situation),
			CreatedAt:  kw.CreatedAt.UTC().Format(time.RFC3339Nano),
		})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode cache: %w: %w", ErrCache, err)
	}
	if err := writeFileAtomic(s.path, data); err != nil {
		return fmt.Errorf("write cache: %w: %w", ErrCache, err)
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace cache file: %w", err)
	}
	committed = true
	return nil
}

// Documents from the same major version are readable.
func compatibleVersion(v string) bool {
	if v == "" {
		return true
	}
	major, _, _ := strings.Cut(v, ".")
	wantMajor, _, _ := strings.Cut(FormatVersion, ".")
	return major == wantMajor
}
