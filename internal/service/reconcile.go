package service

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"phrasebook/internal/logger"
	"phrasebook/internal/model"
)

// reconcile turns remote rows into the working collection. The remote id
// becomes the canonical keyword id. Rows that cannot be shown (empty texts,
// unknown situation) and repeated ids are skipped.
func reconcile(rows []model.RemoteKeyword) ([]model.Keyword, int) {
	keywords := make([]model.Keyword, 0, len(rows))
	seen := make(map[int64]bool, len(rows))
	skipped := 0
	for _, row := range rows {
		if seen[row.ID] {
			skipped++
			logger.Warn("remote keyword duplicate skipped", "module", "service", "action", "reconcile", "resource", "keyword", "result", "skipped", "remote_id", row.ID)
			continue
		}
		situation, ok := model.ParseSituation(row.Situation)
		if !ok || strings.TrimSpace(row.NativeText) == "" || strings.TrimSpace(row.TargetText) == "" {
			skipped++
			logger.Warn("remote keyword invalid skipped", "module", "service", "action", "reconcile", "resource", "keyword", "result", "skipped", "remote_id", row.ID, "situation", row.Situation)
			continue
		}
		seen[row.ID] = true

		remoteID := row.ID
		keywords = append(keywords, model.Keyword{
			ID:         strconv.FormatInt(row.ID, 10),
			RemoteID:   &remoteID,
			NativeText: row.NativeText,
			TargetText: row.TargetText,
			Situation:  situation,
			CreatedAt:  row.CreatedAt.UTC(),
		})
	}
	sortNewestFirst(keywords)
	return keywords, skipped
}

// sanitize checks keywords read back from the local cache: duplicate ids
// keep their first occurrence, legacy situation labels are normalized and
// entries that fail validation or lack a timestamp are dropped. Cache order
// is kept.
func sanitize(keywords []model.Keyword) ([]model.Keyword, int) {
	out := make([]model.Keyword, 0, len(keywords))
	seen := make(map[string]bool, len(keywords))
	skipped := 0
	for _, kw := range keywords {
		situation, ok := model.ParseSituation(string(kw.Situation))
		if kw.ID == "" || seen[kw.ID] || !ok || kw.CreatedAt.IsZero() || strings.TrimSpace(kw.NativeText) == "" || strings.TrimSpace(kw.TargetText) == "" {
			skipped++
			logger.Warn("cached keyword skipped", "module", "service", "action", "load", "resource", "cache", "result", "skipped", "keyword_id", kw.ID)
			continue
		}
		seen[kw.ID] = true
		kw.Situation = situation
		out = append(out, kw)
	}
	return out, skipped
}

func sortNewestFirst(keywords []model.Keyword) {
	slices.SortStableFunc(keywords, func(a, b model.Keyword) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(remoteIDOf(b), remoteIDOf(a))
	})
}

func remoteIDOf(kw model.Keyword) int64 {
	if !kw.HasRemoteID() {
		return 0
	}
	return *kw.RemoteID
}
