package validate

import (
	"context"
	"fmt"
	"math/rand"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"caseforge/internal/llm"
	t "caseforge/internal/types"
)

func solvableDraft() *t.Draft {
	chars := []t.Character{
		{ID: "edmund-hale", Name: "Edmund Hale", IsVictim: true},
		{ID: "james-holloway", Name: "James Holloway", IsGuilty: true},
		{ID: "clara-whitmore", Name: "Clara Whitmore"},
	}
	clues := []t.Clue{
		{ID: "c1", Category: t.ClueMotive, Points: 20, RevealedBy: []string{"clara-whitmore"}},
		{ID: "c2", Category: t.ClueMotive, Points: 15, RevealedBy: []string{"clara-whitmore"}},
		{ID: "c3", Category: t.ClueAlibi, Points: 20, RevealedBy: []string{"clara-whitmore"}},
		{ID: "c4", Category: t.ClueEvidence, Points: 20, RevealedBy: []string{"james-holloway"}},
		{ID: "c5", Category: t.ClueRelationship, Points: 10, RevealedBy: []string{"clara-whitmore"}},
		{ID: "c6", Category: t.ClueRelationship, Points: 15, RevealedBy: []string{"james-holloway", "clara-whitmore"}},
	}
	return &t.Draft{
		ID:         "draft-1",
		Characters: chars,
		Clues:      clues,
		Solution:   t.Solution{Culprit: "james-holloway", Method: "poisoning", Motive: "exposure"},
		Scoring:    t.Scoring{MinimumPointsToAccuse: 50, PerfectScoreThreshold: 100},
	}
}

func TestStructuralPassesSolvableDraft(tt *testing.T) {
	res := Structural(solvableDraft())
	require.True(tt, res.IsPublishable)
	require.Empty(tt, res.Warnings)
}

func TestStructuralIsIdempotent(tt *testing.T) {
	d := solvableDraft()
	d.Clues[0].RevealedBy = []string{"edmund-hale"}
	d.Scoring.MinimumPointsToAccuse = 999

	first := Structural(d)
	second := Structural(d)
	require.True(tt, reflect.DeepEqual(first, second))
}

func TestVictimInRevealedByBlocksPublish(tt *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		d := solvableDraft()
		// Scatter extra clues, then poison one revealedBy with the victim.
		for j := 0; j < rng.Intn(4); j++ {
			d.Clues = append(d.Clues, t.Clue{
				ID: fmt.Sprintf("x%d-%d", i, j), Category: t.ClueEvidence,
				Points: 1 + rng.Intn(20), RevealedBy: []string{"clara-whitmore"},
			})
		}
		poisoned := rng.Intn(len(d.Clues))
		d.Clues[poisoned].RevealedBy = append(d.Clues[poisoned].RevealedBy, "edmund-hale")

		res := Structural(d)
		require.False(tt, res.IsPublishable, "victim-revealed clue must block publish")
		require.True(tt, hasKind(res.Warnings, KindRevealedBy))
	}
}

func TestEmptyRevealedByBlocksPublish(tt *testing.T) {
	d := solvableDraft()
	d.Clues[2].RevealedBy = nil
	res := Structural(d)
	require.False(tt, res.IsPublishable)
	require.True(tt, hasKind(res.Warnings, KindRevealedBy))
}

func TestCulpritChecks(tt *testing.T) {
	d := solvableDraft()
	d.Characters[1].IsGuilty = false
	res := Structural(d)
	require.False(tt, res.IsPublishable)
	require.True(tt, hasKind(res.Warnings, KindCulprit))

	d = solvableDraft()
	d.Solution.Culprit = "nobody"
	res = Structural(d)
	require.False(tt, res.IsPublishable)

	d = solvableDraft()
	d.Characters[2].IsGuilty = true // second guilty character
	res = Structural(d)
	require.False(tt, res.IsPublishable)
}

func TestDuplicateClueIDsBlockPublish(tt *testing.T) {
	d := solvableDraft()
	d.Clues[1].ID = d.Clues[0].ID
	res := Structural(d)
	require.False(tt, res.IsPublishable)
	require.True(tt, hasKind(res.Warnings, KindDuplicateID))
}

func TestSoftChecksWarnWithoutBlocking(tt *testing.T) {
	d := solvableDraft()
	d.Scoring.MinimumPointsToAccuse = 9999
	d.Clues = d.Clues[:4] // drops both relationship clues
	res := Structural(d)
	require.True(tt, res.IsPublishable, "soft warnings must not block publish")
	require.True(tt, hasKind(res.Warnings, KindScoring))
	require.True(tt, hasKind(res.Warnings, KindCoverage))
}

func TestDeepCheckMergesCleanly(tt *testing.T) {
	v := &Validator{LLM: llm.NewFakeClient()}
	res := v.Validate(context.Background(), solvableDraft())
	require.True(tt, res.IsPublishable)
	require.Empty(tt, res.Warnings)
}

type downClient struct{}

func (downClient) Name() string { return "down" }
func (downClient) Close() error { return nil }
func (downClient) Generate(context.Context, string, llm.Options) (string, error) {
	return "", llm.ErrUnavailable
}

func TestDeepCheckFailureDegradesToSkipped(tt *testing.T) {
	v := &Validator{LLM: downClient{}}
	res := v.Validate(context.Background(), solvableDraft())
	// The structural verdict stands; the deep check only adds a skip note.
	require.True(tt, res.IsPublishable)
	require.Len(tt, res.Warnings, 1)
	require.Equal(tt, KindSkipped, res.Warnings[0].Kind)
	require.Equal(tt, SeveritySoft, res.Warnings[0].Severity)
}

type garbledClient struct{}

func (garbledClient) Name() string { return "garbled" }
func (garbledClient) Close() error { return nil }
func (garbledClient) Generate(context.Context, string, llm.Options) (string, error) {
	return "no json here at all", nil
}

func TestDeepCheckGarbledReplyDegradesToSkipped(tt *testing.T) {
	v := &Validator{LLM: garbledClient{}}
	res := v.Validate(context.Background(), solvableDraft())
	require.True(tt, res.IsPublishable)
	require.Len(tt, res.Warnings, 1)
	require.Equal(tt, KindSkipped, res.Warnings[0].Kind)
}

func hasKind(warns []Warning, kind string) bool {
	for _, w := range warns {
		if w.Kind == kind {
			return true
		}
	}
	return false
}
