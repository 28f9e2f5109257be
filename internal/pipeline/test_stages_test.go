package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"caseforge/internal/llm"
	"caseforge/internal/tester"
	t "caseforge/internal/types"
)

var fixtureInputs = []t.CharacterInput{
	{TempID: "t1", Name: "Edmund Hale", Role: "auction house owner", IsVictim: true},
	{TempID: "t2", Name: "James Holloway", Role: "head clerk"},
	{TempID: "t3", Name: "Clara Whitmore", Role: "estranged niece"},
}

func fakeStages() *Stages { return NewStages(llm.NewFakeClient()) }

func runCharacters(tt *testing.T, s *Stages, foundation t.Foundation) []t.Character {
	tt.Helper()
	out, err := s.Characters.Run(context.Background(), t.CharactersIn{
		Foundation: foundation,
		Inputs:     fixtureInputs,
	})
	tester.NoErr(tt, err)
	return out.Characters
}

func TestFoundationStage(tt *testing.T) {
	s := fakeStages()
	out, err := s.Foundation.Run(context.Background(), t.FoundationIn{
		Title: "The Glasshouse Vigil", Setting: "an auction house", Premise: "The owner is found dead on auction night.",
	})
	tester.NoErr(tt, err)
	tester.Eq(tt, out.Foundation.Title, "The Glasshouse Vigil")
	tester.True(tt, len(out.TimelineSkeleton) >= 6, "timeline skeleton needs at least 6 events")
	tester.Eq(tt, out.Solution.Culprit, "to be determined")
}

func TestCharactersStage(tt *testing.T) {
	s := fakeStages()
	chars := runCharacters(tt, s, t.Foundation{Title: "The Glasshouse Vigil"})

	tester.Eq(tt, len(chars), len(fixtureInputs))
	tester.Eq(tt, chars[0].ID, "edmund-hale")
	tester.Eq(tt, chars[1].ID, "james-holloway")
	tester.Eq(tt, chars[2].ID, "clara-whitmore")

	for _, c := range chars {
		tester.False(tt, c.IsGuilty, "guilt is assigned later, never at this stage")
	}
	tester.True(tt, chars[0].IsVictim)
	tester.Eq(tt, chars[1].Statement, "Claims to have been in the ledger room totaling the preview bids")

	// Relationship keys are rewritten from display names to stable ids.
	_, byName := chars[1].Relationships["Edmund Hale"]
	tester.False(tt, byName, "relationships must not key on display names")
	_, byID := chars[1].Relationships["edmund-hale"]
	tester.True(tt, byID)
}

func TestCluesStage(tt *testing.T) {
	s := fakeStages()
	chars := runCharacters(tt, s, t.Foundation{Title: "The Glasshouse Vigil"})

	out, err := s.Clues.Run(context.Background(), t.CluesIn{
		Foundation: t.Foundation{Title: "The Glasshouse Vigil"},
		Characters: chars,
		CulpritID:  "james-holloway",
		Motive:     "inheritance dispute",
		Method:     "poisoning",
	})
	tester.NoErr(tt, err)
	tester.True(tt, len(out.Clues) >= MinClues)
	tester.Eq(tt, out.GuiltyID, "james-holloway")
	tester.True(tt, out.SolutionExplanation != "")

	total := 0
	for _, c := range out.Clues {
		total += c.Points
		for _, id := range c.RevealedBy {
			tester.True(tt, id != "edmund-hale", "the victim can never reveal a clue")
		}
	}
	tester.True(tt, out.Scoring.MinimumPointsToAccuse <= total, "accusation threshold must be achievable")
	tester.True(tt, out.Scoring.MinimumPointsToAccuse <= out.Scoring.PerfectScoreThreshold)
}

func TestCluesStageRejectsUnknownCulprit(tt *testing.T) {
	s := fakeStages()
	chars := runCharacters(tt, s, t.Foundation{Title: "The Glasshouse Vigil"})

	_, err := s.Clues.Run(context.Background(), t.CluesIn{
		Characters: chars,
		CulpritID:  "nobody",
	})
	tester.Err(tt, err)
	tester.True(tt, strings.Contains(err.Error(), "clues stage"))
}

func TestTimelineStageAlignsKnowledge(tt *testing.T) {
	s := fakeStages()
	chars := runCharacters(tt, s, t.Foundation{Title: "The Glasshouse Vigil"})

	out, err := s.Timeline.Run(context.Background(), t.TimelineIn{
		Foundation: t.Foundation{Title: "The Glasshouse Vigil"},
		Characters: chars,
		Clues:      []t.Clue{{ID: "copied-key", Description: "a copied key", Points: 10, RevealedBy: []string{"james-holloway"}}},
		Solution:   t.Solution{Culprit: "james-holloway"},
	})
	tester.NoErr(tt, err)
	tester.True(tt, len(out.Timeline) > 0)

	ApplyKnowledge(chars, out.Knowledge)
	tester.Eq(tt, chars[1].Knowledge.Alibi, out.Knowledge["james-holloway"].Alibi)
	tester.True(tt, strings.HasPrefix(chars[1].Statement, "Claims to have been"))
	// The victim never receives knowledge.
	tester.Eq(tt, chars[0].Knowledge.Alibi, "")
}

func TestCaseFileStage(tt *testing.T) {
	s := fakeStages()
	out, err := s.CaseFile.Run(context.Background(), t.CaseFileIn{})
	tester.NoErr(tt, err)
	tester.Eq(tt, out.CaseFile.VictimName, "Edmund Hale")
	tester.True(tt, len(out.CaseFile.InitialEvidence) >= 2)
}

func TestRegeneratorRejectsUnknownSection(tt *testing.T) {
	r := &Regenerator{Stages: fakeStages()}
	_, err := r.Regenerate(context.Background(), "epilogue", &t.Draft{})
	tester.Err(tt, err)
	var verr *t.ValidationError
	tester.True(tt, errors.As(err, &verr))
}

func TestRegeneratorRequiresUpstream(tt *testing.T) {
	r := &Regenerator{Stages: fakeStages()}
	_, err := r.Regenerate(context.Background(), SectionCharacters, &t.Draft{})
	tester.Err(tt, err, "characters regeneration needs a foundation")

	_, err = r.Regenerate(context.Background(), SectionClues, &t.Draft{
		Foundation: t.Foundation{Title: "The Glasshouse Vigil"},
	})
	tester.Err(tt, err, "clue regeneration needs characters")
}

func TestRegenerateSolution(tt *testing.T) {
	s := fakeStages()
	chars := runCharacters(tt, s, t.Foundation{Title: "The Glasshouse Vigil"})
	chars[1].IsGuilty = true

	draft := &t.Draft{
		Input:      t.StoryInput{CulpritTempID: "t2", Motive: "inheritance dispute", Method: "poisoning"},
		Foundation: t.Foundation{Title: "The Glasshouse Vigil"},
		Characters: chars,
	}
	r := &Regenerator{Stages: s}
	res, err := r.Regenerate(context.Background(), SectionSolution, draft)
	tester.NoErr(tt, err)

	sol, ok := res.Data.(t.Solution)
	tester.True(tt, ok)
	tester.Eq(tt, sol.Culprit, "james-holloway")
	tester.Eq(tt, sol.Motive, "inheritance dispute")
	tester.True(tt, sol.Explanation != "")
}

func TestDownstreamTable(tt *testing.T) {
	tester.Eq(tt, Downstream[SectionTimeline], []string{SectionKnowledge})
	tester.Eq(tt, Downstream[SectionSolution], []string{SectionClues, SectionTimeline, SectionKnowledge})
	tester.Eq(tt, len(Downstream[SectionKnowledge]), 0)
}
