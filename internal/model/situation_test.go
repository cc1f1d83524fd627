package model_test

import (
	"testing"

	"phrasebook/internal/model"

	"github.com/stretchr/testify/require"
)

func TestParseSituation(t *testing.T) {
	cases := []struct {
		in   string
		want model.Situation
		ok   bool
	}{
		{"dining", model.SituationDining, true},
		{" Travel ", model.SituationTravel, true},
		{"daily-conversation", model.SituationDaily, true},
		{"레스토랑", model.SituationDining, true},
		{"일상대화", model.SituationDaily, true},
		{"all", "", false},
		{"", "", false},
		{"cooking", "", false},
	}
	for _, tc := range cases {
		got, ok := model.ParseSituation(tc.in)
		require.Equal(t, tc.ok, ok, tc.in)
		require.Equal(t, tc.want, got, tc.in)
	}
}

func TestSituations_ReturnsCopy(t *testing.T) {
	s := model.Situations()
	require.Len(t, s, 8)
	s[0] = "mutated"
	require.Equal(t, model.SituationDaily, model.Situations()[0])
}
