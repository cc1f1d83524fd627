package model

import "strings"

type Situation string

const (
	SituationDaily    Situation = "daily-conversation"
	SituationBusiness Situation = "business"
	SituationTravel   Situation = "travel"
	SituationShopping Situation = "shopping"
	SituationDining   Situation = "dining"
	SituationMedical  Situation = "medical"
	SituationSchool   Situation = "school"
	SituationHobby    Situation = "hobby"
)

// SituationAll is the filter sentinel meaning "any situation". It is never stored.
const SituationAll = "all"

var situations = []Situation{
	SituationDaily,
	SituationBusiness,
	SituationTravel,
	SituationShopping,
	SituationDining,
	SituationMedical,
	SituationSchool,
	SituationHobby,
}

// Labels written by the first version of the app, which stored the Korean
// category names verbatim.
var legacyLabels = map[string]Situation{
	"일상대화": SituationDaily,
	"비즈니스": SituationBusiness,
	"여행":   SituationTravel,
	"쇼핑":   SituationShopping,
	"레스토랑": SituationDining,
	"병원":   SituationMedical,
	"학교":   SituationSchool,
	"취미":   SituationHobby,
}

// Situations returns the fixed set of situation tags in display order.
func Situations() []Situation {
	out := make([]Situation, len(situations))
	copy(out, situations)
	return out
}

// ParseSituation normalizes a slug or a legacy label to a Situation.
func ParseSituation(s string) (Situation, bool) {
	trimmed := strings.TrimSpace(s)
	if legacy, ok := legacyLabels[trimmed]; ok {
		return legacy, true
	}
	candidate := Situation(strings.ToLower(trimmed))
	for _, known := range situations {
		if candidate == known {
			return known, true
		}
	}
	return "", false
}

func (s Situation) String() string {
	return string(s)
}
