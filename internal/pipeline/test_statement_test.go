package pipeline

import (
	"testing"

	"caseforge/internal/tester"
)

func TestDeriveStatement(t *testing.T) {
	cases := []struct {
		name  string
		alibi string
		want  string
	}{
		{"Clara", "I was in the garden (false)", "Claims to have been in the garden"},
		{"James", "I was in the ledger room totaling the preview bids (false)", "Claims to have been in the ledger room totaling the preview bids"},
		{"James", "I saw the lights go out.", "Claims to have seen the lights go out"},
		{"Clara", "I heard a crash in the study (true)", "Claims to have heard a crash in the study"},
		{"Clara", "Asleep upstairs", `Claims: "Asleep upstairs"`},
		{"Edmund", "", "Edmund has not given a clear account of their whereabouts."},
		{"Edmund", "(false)", "Edmund has not given a clear account of their whereabouts."},
	}
	for _, c := range cases {
		tester.Eq(t, DeriveStatement(c.name, c.alibi), c.want, c.alibi)
	}
}
