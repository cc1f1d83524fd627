package service

import (
	"strings"
	"time"

	"phrasebook/internal/model"
)

// NewKeyword validates a submission and builds the keyword without an id.
// Texts are trimmed; the situation may be a slug or a legacy label.
func NewKeyword(nativeText, targetText, situation string, now time.Time) (model.Keyword, error) {
	native := strings.TrimSpace(nativeText)
	if native == "" {
		return model.Keyword{}, &ValidationError{Field: "native", Reason: "must not be empty"}
	}
	target := strings.TrimSpace(targetText)
	if target == "" {
		return model.Keyword{}, &ValidationError{Field: "target", Reason: "must not be empty"}
	}
	if strings.TrimSpace(situation) == "" {
		return model.Keyword{}, &ValidationError{Field: "situation", Reason: "must not be empty"}
	}
	tag, ok := model.ParseSituation(situation)
	if !ok {
		return model.Keyword{}, &ValidationError{Field: "situation", Reason: "unknown situation " + strings.TrimSpace(situation)}
	}

	return model.Keyword{
		NativeText: native,
		TargetText: target,
		Situation:  tag,
		CreatedAt:  now.UTC(),
	}, nil
}
