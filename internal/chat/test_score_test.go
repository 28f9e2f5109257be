package chat

import (
	"context"
	"strings"
	"testing"

	"caseforge/internal/llm"
	"caseforge/internal/tester"
	t "caseforge/internal/types"
)

func TestScoreWrongAccusationIsZero(tt *testing.T) {
	s := &Scorer{LLM: llm.NewFakeClient()}
	b, err := s.Score(context.Background(), ScoreRequest{
		IsCorrect: false,
		Reasoning: "a long and thoughtful chain of reasoning about the copied key",
	})
	tester.NoErr(tt, err)
	tester.Eq(tt, b, Breakdown{})
}

func TestScoreTokenReasoningGetsFloor(tt *testing.T) {
	s := &Scorer{LLM: llm.NewFakeClient()}
	b, err := s.Score(context.Background(), ScoreRequest{IsCorrect: true, Reasoning: "he did it"})
	tester.NoErr(tt, err)
	tester.Eq(tt, b, Breakdown{Score: 10, MotivePoints: 3, MethodPoints: 3, LogicPoints: 4})
}

func TestScoreParsesModelBreakdown(tt *testing.T) {
	s := &Scorer{LLM: llm.NewFakeClient()}
	b, err := s.Score(context.Background(), ScoreRequest{
		IsCorrect: true,
		Reasoning: "Holloway skimmed the accounts for years; the new will meant an audit, so he copied the key and poisoned the second cup.",
		Solution:  t.Solution{Culprit: "james-holloway", Method: "poisoning", Motive: "exposure"},
	})
	tester.NoErr(tt, err)
	tester.Eq(tt, b, Breakdown{Score: 72, MotivePoints: 22, MethodPoints: 20, LogicPoints: 30})
}

func TestParseBreakdownBareNumber(tt *testing.T) {
	b := parseBreakdown(" 83 ")
	tester.Eq(tt, b.Score, 83)
	tester.Eq(tt, b.MotivePoints, 24)
	tester.Eq(tt, b.MethodPoints, 24)
	tester.Eq(tt, b.LogicPoints, 33)

	b = parseBreakdown("250")
	tester.Eq(tt, b.Score, 100)
}

func TestParseBreakdownGarbledDegrades(tt *testing.T) {
	b := parseBreakdown("the reasoning seems adequate")
	tester.Eq(tt, b, Breakdown{Score: 50, MotivePoints: 15, MethodPoints: 15, LogicPoints: 20})
}

func TestSystemPromptNeverStatesGuilt(tt *testing.T) {
	c := &t.Character{
		Name: "James Holloway", Role: "head clerk", IsGuilty: true,
		Knowledge: t.Knowledge{Alibi: "I was in the ledger room totaling the preview bids (false)"},
		Secrets:   []t.Secret{{Content: "He has been skimming fees.", Willingness: t.WillingnessIfAccused}},
	}
	p := strings.ToLower(SystemPrompt(c))
	tester.True(tt, len(p) > 0)
	tester.False(tt, strings.Contains(p, "guilty"), "the persona prompt must not label the culprit")
	tester.True(tt, strings.Contains(p, "ifaccused"))
}
