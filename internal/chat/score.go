package chat

import (
	"context"
	"strconv"
	"strings"

	"caseforge/internal/llm"
	t "caseforge/internal/types"
	"caseforge/internal/util/jsonutil"
)

// ScoreRequest is one accusation to grade: whether the player named the
// right culprit, and their written reasoning.
type ScoreRequest struct {
	IsCorrect bool       `json:"isCorrect"`
	Reasoning string     `json:"reasoning"`
	Solution  t.Solution `json:"solution"`
}

// Breakdown splits a 0-100 score into motive (30), method (30) and
// logic (40) components.
type Breakdown struct {
	Score        int `json:"score"`
	MotivePoints int `json:"motivePoints"`
	MethodPoints int `json:"methodPoints"`
	LogicPoints  int `json:"logicPoints"`
}

const promptScore = `You are evaluating a detective's reasoning for solving a mystery.

Score the reasoning from 0-100 based on:
1. Does it identify the correct motive? (30 points max)
2. Does it explain the method? (30 points max)
3. Is the logic sound and well-explained? (40 points max)

Respond with ONLY a JSON object in this format:
{"score": 85, "motivePoints": 25, "methodPoints": 28, "logicPoints": 32}`

const minReasoningLength = 20

// Scorer grades accusation reasoning. A wrong accusation scores zero without
// a model call; token-length reasoning gets a floor score; a garbled model
// reply degrades to a neutral midpoint instead of failing the request.
type Scorer struct{ LLM llm.Client }

func (s *Scorer) Score(ctx context.Context, req ScoreRequest) (Breakdown, error) {
	if !req.IsCorrect {
		return Breakdown{}, nil
	}
	if len(strings.TrimSpace(req.Reasoning)) < minReasoningLength {
		return Breakdown{Score: 10, MotivePoints: 3, MethodPoints: 3, LogicPoints: 4}, nil
	}

	user := "THE CORRECT SOLUTION:\n" +
		"- Culprit: " + orUnknown(req.Solution.Culprit) + "\n" +
		"- Method: " + orUnknown(req.Solution.Method) + "\n" +
		"- Motive: " + orUnknown(req.Solution.Motive) + "\n\n" +
		"THE DETECTIVE'S REASONING:\n" +
		"\"" + req.Reasoning + "\"\n\n" +
		"Evaluate the reasoning and provide a structured score."

	text, err := s.LLM.Generate(llm.WithStage(ctx, "score"),
		promptScore+"\n\n"+user,
		llm.Options{MaxTokens: 100, Temperature: 0.1})
	if err != nil {
		return Breakdown{}, err
	}
	return parseBreakdown(text), nil
}

func parseBreakdown(text string) Breakdown {
	var b Breakdown
	if err := jsonutil.Decode(text, &b); err == nil && b.Score > 0 {
		return b
	}
	// Some models reply with a bare number.
	if n, err := strconv.Atoi(strings.TrimSpace(text)); err == nil {
		n = clamp(n, 0, 100)
		return Breakdown{Score: n, MotivePoints: n * 30 / 100, MethodPoints: n * 30 / 100, LogicPoints: n * 40 / 100}
	}
	return Breakdown{Score: 50, MotivePoints: 15, MethodPoints: 15, LogicPoints: 20}
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown"
	}
	return s
}

func clamp(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
