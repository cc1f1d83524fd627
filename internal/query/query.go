// Package query evaluates search and situation filters over a snapshot of
// the working collection. Nothing here mutates its input.
package query

import (
	"slices"
	"strings"

	"phrasebook/internal/model"
)

// Params holds the optional filters. Empty fields do not filter; a
// Situation of model.SituationAll does not filter either. Text is matched
// as given, surrounding spaces included.
type Params struct {
	Text      string
	Situation string
}

// Active reports whether any filter would narrow the result.
func (p Params) Active() bool {
	return p.Text != "" || p.situation() != ""
}

func (p Params) situation() string {
	s := strings.TrimSpace(p.Situation)
	if s == "" || strings.EqualFold(s, model.SituationAll) {
		return ""
	}
	if parsed, ok := model.ParseSituation(s); ok {
		return string(parsed)
	}
	return s
}

// Filter returns the keywords matching every active filter, keeping their order.
func Filter(keywords []model.Keyword, p Params) []model.Keyword {
	situation := p.situation()
	needle := strings.ToLower(p.Text)

	out := make([]model.Keyword, 0, len(keywords))
	for _, kw := range keywords {
		if situation != "" && string(kw.Situation) != situation {
			continue
		}
		if needle != "" && !containsFold(kw.NativeText, needle) && !containsFold(kw.TargetText, needle) {
			continue
		}
		out = append(out, kw)
	}
	return out
}

func containsFold(s, lowerNeedle string) bool {
	return strings.Contains(strings.ToLower(s), lowerNeedle)
}

// Stats summarizes a collection.
type Stats struct {
	Total       int
	BySituation map[model.Situation]int
}

func Summarize(keywords []model.Keyword) Stats {
	stats := Stats{Total: len(keywords), BySituation: make(map[model.Situation]int)}
	for _, kw := range keywords {
		stats.BySituation[kw.Situation]++
	}
	return stats
}

// Situations lists the distinct situations present, in the fixed tag order.
// Unknown tags (which only a hand-edited cache can contain) come last.
func Situations(keywords []model.Keyword) []model.Situation {
	present := make(map[model.Situation]bool)
	for _, kw := range keywords {
		present[kw.Situation] = true
	}

	out := make([]model.Situation, 0, len(present))
	for _, s := range model.Situations() {
		if present[s] {
			out = append(out, s)
			delete(present, s)
		}
	}
	var rest []model.Situation
	for s := range present {
		rest = append(rest, s)
	}
	slices.Sort(rest)
	return append(out, rest...)
}
