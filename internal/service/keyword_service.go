package service

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"phrasebook/internal/cache"
	"phrasebook/internal/idgen"
	"phrasebook/internal/logger"
	"phrasebook/internal/model"
	"phrasebook/internal/query"
	"phrasebook/internal/repository"
)

type LoadSource string

const (
	LoadSourceRemote  LoadSource = "remote"
	LoadSourceCache   LoadSource = "cache"
	LoadSourceSkipped LoadSource = "skipped"
)

// LoadResult describes which tier a load adopted. The errors are
// informational: a load always leaves the service usable.
type LoadResult struct {
	Source    LoadSource
	Count     int
	Skipped   int
	RemoteErr error
	CacheErr  error
}

// DeleteResult reports a delete. RemoteErr is set when the remote copy could
// not be removed; the keyword is gone locally either way.
type DeleteResult struct {
	Deleted   bool
	Keyword   model.Keyword
	RemoteErr error
}

// KeywordService owns the working collection and keeps the local cache and
// the remote store in step with it.
type KeywordService interface {
	Load(ctx context.Context) LoadResult
	Refresh(ctx context.Context) LoadResult
	Add(ctx context.Context, nativeText, targetText, situation string) (model.Keyword, error)
	Delete(ctx context.Context, id string) (DeleteResult, error)
	Get(id string) (model.Keyword, error)
	List() []model.Keyword
	Search(params query.Params) []model.Keyword
	Stats() query.Stats
	Situations() []model.Situation
	RemoteEnabled() bool
	Wait()
}

type Option func(*keywordService)

// WithClock replaces time.Now for creation timestamps and local ids.
func WithClock(now func() time.Time) Option {
	return func(s *keywordService) {
		s.now = now
	}
}

func WithIDGenerator(gen *idgen.Generator) Option {
	return func(s *keywordService) {
		s.ids = gen
	}
}

// pendingInsert tracks a remote insert that has not returned yet.
type pendingInsert struct {
	opID      string
	cancelled bool
}

type keywordService struct {
	mu       sync.Mutex
	keywords []model.Keyword
	aliases  map[string]string // promoted local id -> remote id
	pending  map[string]*pendingInsert
	// remote ids deleted while an insert was in flight
	deletedRemote map[int64]bool

	remote repository.KeywordRepository
	store  cache.Store
	ids    *idgen.Generator
	now    func() time.Time

	writes  sync.WaitGroup
	refresh singleflight.Group
}

// NewKeywordService builds the engine. remote may be nil when no remote
// store could be constructed; the service then runs on the cache alone.
func NewKeywordService(remote repository.KeywordRepository, store cache.Store, opts ...Option) KeywordService {
	s := &keywordService{
		aliases:       make(map[string]string),
		pending:       make(map[string]*pendingInsert),
		deletedRemote: make(map[int64]bool),
		remote:        remote,
		store:         store,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ids == nil {
		s.ids = idgen.New(s.now)
	}
	return s
}

func (s *keywordService) RemoteEnabled() bool {
	return s.remote != nil
}

// Load runs the startup protocol unless the collection is already populated.
func (s *keywordService) Load(ctx context.Context) LoadResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.keywords) > 0 {
		return LoadResult{Source: LoadSourceSkipped, Count: len(s.keywords)}
	}
	return s.loadLocked(ctx)
}

// Refresh re-runs the load protocol even when the collection is populated.
// Concurrent calls share one run.
func (s *keywordService) Refresh(ctx context.Context) LoadResult {
	v, _, _ := s.refresh.Do("refresh", func() (any, error) {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.loadLocked(ctx), nil
	})
	return v.(LoadResult)
}

func (s *keywordService) loadLocked(ctx context.Context) LoadResult {
	var result LoadResult

	if s.remote != nil {
		rows, err := s.remote.FetchAll(ctx)
		switch {
		case err != nil:
			result.RemoteErr = err
			logger.Warn("remote load failed, using local cache", "module", "service", "action", "load", "resource", "keyword", "result", "failed", "error", err)
		case len(rows) == 0:
			logger.Info("remote store empty, using local cache", "module", "service", "action", "load", "resource", "keyword", "result", "ok")
		default:
			keywords, skipped := reconcile(rows)
			result.Skipped = skipped
			if len(keywords) > 0 {
				s.replaceLocked(keywords)
				result.Source = LoadSourceRemote
				result.Count = len(keywords)
				result.CacheErr = s.persistLocked(ctx)
				logger.Info("keywords loaded", "module", "service", "action", "load", "resource", "keyword", "result", "ok", "source", result.Source, "count", result.Count, "skipped", skipped)
				return result
			}
			logger.Warn("remote rows unusable, using local cache", "module", "service", "action", "load", "resource", "keyword", "result", "failed", "skipped", skipped)
		}
	}

	cached, err := s.store.Load(ctx)
	if err != nil {
		result.CacheErr = err
		logger.Warn("cache load failed", "module", "service", "action", "load", "resource", "cache", "result", "failed", "error", err)
		if len(s.keywords) > 0 {
			// both tiers failed; the in-memory collection is the best we have
			result.Source = LoadSourceSkipped
			result.Count = len(s.keywords)
			return result
		}
	}

	keywords, skipped := sanitize(cached)
	s.replaceLocked(keywords)
	result.Source = LoadSourceCache
	result.Count = len(keywords)
	result.Skipped += skipped
	logger.Info("keywords loaded", "module", "service", "action", "load", "resource", "keyword", "result", "ok", "source", result.Source, "count", result.Count, "skipped", skipped)
	return result
}

// Add validates and stores a new keyword. The remote insert runs in the
// background; on success the keyword takes the remote id.
func (s *keywordService) Add(ctx context.Context, nativeText, targetText, situation string) (model.Keyword, error) {
	s.mu.Lock()

	kw, err := NewKeyword(nativeText, targetText, situation, s.now())
	if err != nil {
		s.mu.Unlock()
		logger.Warn("keyword rejected", "module", "service", "action", "create", "resource", "keyword", "result", "failed", "error", err)
		return model.Keyword{}, err
	}
	kw.ID = s.nextIDLocked()

	s.keywords = append([]model.Keyword{kw}, s.keywords...)
	_ = s.persistLocked(ctx)

	var op *pendingInsert
	if s.remote != nil {
		op = &pendingInsert{opID: uuid.New().String()}
		s.pending[kw.ID] = op
		s.writes.Add(1)
	}
	s.mu.Unlock()

	logger.Info("keyword added", "module", "service", "action", "create", "resource", "keyword", "result", "ok", "keyword_id", kw.ID, "situation", kw.Situation)
	if op != nil {
		go s.pushRemote(context.WithoutCancel(ctx), kw, op)
	}
	return kw, nil
}

func (s *keywordService) pushRemote(ctx context.Context, kw model.Keyword, op *pendingInsert) {
	defer s.writes.Done()

	remoteID, err := s.remote.Insert(ctx, kw)

	s.mu.Lock()
	delete(s.pending, kw.ID)
	cancelled := op.cancelled
	if err == nil && s.deletedRemote[remoteID] {
		// a refresh surfaced the row and it was deleted under its remote id
		cancelled = true
		delete(s.deletedRemote, remoteID)
	}
	if len(s.pending) == 0 {
		clear(s.deletedRemote)
	}
	if err == nil && !cancelled {
		s.promoteLocked(ctx, kw, remoteID)
	}
	s.mu.Unlock()

	switch {
	case err != nil:
		logger.Warn("remote insert failed, keyword stays local", "module", "service", "action", "create", "resource", "remote", "result", "failed", "op_id", op.opID, "keyword_id", kw.ID, "error", err)
	case cancelled:
		// the keyword was deleted while the insert was in flight
		if delErr := s.remote.DeleteByID(ctx, remoteID); delErr != nil && !errors.Is(delErr, repository.ErrNotFound) {
			logger.Warn("compensating remote delete failed", "module", "service", "action", "delete", "resource", "remote", "result", "failed", "op_id", op.opID, "remote_id", remoteID, "error", delErr)
			return
		}
		logger.Info("stale remote insert removed", "module", "service", "action", "delete", "resource", "remote", "result", "ok", "op_id", op.opID, "remote_id", remoteID)
	default:
		logger.Debug("remote insert done", "module", "service", "action", "create", "resource", "remote", "result", "ok", "op_id", op.opID, "keyword_id", kw.ID, "remote_id", remoteID)
	}
}

func (s *keywordService) promoteLocked(ctx context.Context, kw model.Keyword, remoteID int64) {
	localID := kw.ID
	newID := strconv.FormatInt(remoteID, 10)
	idx := s.indexLocked(localID)
	existing := s.indexLocked(newID)

	switch {
	case idx >= 0 && existing >= 0 && existing != idx:
		// a refresh already brought in the remote row
		s.keywords = slices.Delete(s.keywords, idx, idx+1)
	case idx >= 0:
		s.keywords[idx].ID = newID
		s.keywords[idx].RemoteID = &remoteID
	case existing >= 0:
		// collection replaced by a refresh that already holds the row
	default:
		// collection replaced by a refresh that ran before the row landed
		kw.ID = newID
		kw.RemoteID = &remoteID
		s.keywords = insertNewestFirst(s.keywords, kw)
	}
	if localID != newID {
		s.aliases[localID] = newID
	}
	_ = s.persistLocked(ctx)
}

// Delete removes a keyword from both tiers. Unknown ids are a no-op.
func (s *keywordService) Delete(ctx context.Context, id string) (DeleteResult, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return DeleteResult{}, &ValidationError{Field: "id", Reason: "must not be empty"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.resolveLocked(id)
	if idx < 0 {
		logger.Debug("delete of unknown keyword ignored", "module", "service", "action", "delete", "resource", "keyword", "result", "ok", "keyword_id", id)
		return DeleteResult{}, nil
	}
	kw := s.keywords[idx]

	// delete wins over an insert still in flight
	if op, ok := s.pending[kw.ID]; ok {
		op.cancelled = true
	}
	if kw.HasRemoteID() && len(s.pending) > 0 {
		s.deletedRemote[*kw.RemoteID] = true
	}

	var remoteErr error
	if s.remote != nil {
		remoteErr = s.deleteRemote(ctx, kw)
	}

	s.keywords = slices.Delete(s.keywords, idx, idx+1)
	for alias, target := range s.aliases {
		if target == kw.ID {
			delete(s.aliases, alias)
		}
	}
	_ = s.persistLocked(ctx)

	logger.Info("keyword deleted", "module", "service", "action", "delete", "resource", "keyword", "result", "ok", "keyword_id", kw.ID, "remote_synced", remoteErr == nil)
	return DeleteResult{Deleted: true, Keyword: kw, RemoteErr: remoteErr}, nil
}

func (s *keywordService) deleteRemote(ctx context.Context, kw model.Keyword) error {
	if kw.HasRemoteID() {
		err := s.remote.DeleteByID(ctx, *kw.RemoteID)
		if err == nil {
			return nil
		}
		logger.Warn("remote delete by id failed, matching by content", "module", "service", "action", "delete", "resource", "remote", "result", "failed", "remote_id", *kw.RemoteID, "error", err)
	}

	removed, err := s.remote.DeleteByContent(ctx, kw.NativeText, kw.TargetText)
	if err != nil {
		logger.Warn("remote delete failed, remote copy may remain", "module", "service", "action", "delete", "resource", "remote", "result", "failed", "keyword_id", kw.ID, "error", err)
		return err
	}
	logger.Debug("remote delete by content", "module", "service", "action", "delete", "resource", "remote", "result", "ok", "keyword_id", kw.ID, "removed", removed)
	return nil
}

func (s *keywordService) Get(id string) (model.Keyword, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.resolveLocked(strings.TrimSpace(id))
	if idx < 0 {
		return model.Keyword{}, ErrNotFound
	}
	return s.keywords[idx], nil
}

func (s *keywordService) List() []model.Keyword {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.keywords)
}

func (s *keywordService) Search(params query.Params) []model.Keyword {
	s.mu.Lock()
	defer s.mu.Unlock()
	return query.Filter(s.keywords, params)
}

func (s *keywordService) Stats() query.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return query.Summarize(s.keywords)
}

func (s *keywordService) Situations() []model.Situation {
	s.mu.Lock()
	defer s.mu.Unlock()
	return query.Situations(s.keywords)
}

// Wait blocks until every background remote insert has finished.
func (s *keywordService) Wait() {
	s.writes.Wait()
}

func (s *keywordService) persistLocked(ctx context.Context) error {
	if err := s.store.Save(context.WithoutCancel(ctx), s.keywords); err != nil {
		logger.Warn("cache save failed", "module", "service", "action", "save", "resource", "cache", "result", "failed", "count", len(s.keywords), "error", err)
		return err
	}
	return nil
}

func (s *keywordService) replaceLocked(keywords []model.Keyword) {
	for _, kw := range keywords {
		s.ids.Observe(kw.ID)
	}
	s.keywords = keywords
}

func (s *keywordService) nextIDLocked() string {
	for {
		id := s.ids.Next()
		if _, aliased := s.aliases[id]; !aliased && s.indexLocked(id) < 0 {
			return id
		}
	}
}

func (s *keywordService) indexLocked(id string) int {
	return slices.IndexFunc(s.keywords, func(kw model.Keyword) bool {
		return kw.ID == id
	})
}

func (s *keywordService) resolveLocked(id string) int {
	if idx := s.indexLocked(id); idx >= 0 {
		return idx
	}
	if target, ok := s.aliases[id]; ok {
		return s.indexLocked(target)
	}
	return -1
}

func insertNewestFirst(keywords []model.Keyword, kw model.Keyword) []model.Keyword {
	pos := slices.IndexFunc(keywords, func(other model.Keyword) bool {
		return other.CreatedAt.Before(kw.CreatedAt)
	})
	if pos < 0 {
		pos = len(keywords)
	}
	return slices.Insert(keywords, pos, kw)
}
