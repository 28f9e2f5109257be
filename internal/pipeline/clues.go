package pipeline

import (
	"context"
	"fmt"
	"log"

	"caseforge/internal/llm"
	t "caseforge/internal/types"
)

const promptClues = `You are designing the clue set for an interactive murder mystery.

Input JSON provides the foundation, the finalized cast (with stable ids and a
victim), and the chosen culprit id, motive and method.

Return STRICT JSON matching this schema:
{
  "clues": [
    {
      "id": "string",                    // short-kebab-case, unique
      "description": "string",           // the fact as revealed to the player
      "category": "motive|alibi|evidence|relationship",
      "importance": "low|medium|high|critical",
      "points": 0,                       // positive integer
      "revealedBy": ["string"],          // ids of LIVING characters who can reveal this
      "detectionHints": ["string"]       // keywords that trigger the reveal in conversation
    }
  ],
  "scoring": {"minimumPointsToAccuse": 0, "perfectScoreThreshold": 0},
  "solutionExplanation": "string",       // the full reveal shown after a correct accusation
  "guiltyId": "string"                   // echo the culprit id from the input
}

Rules:
- Produce between 8 and 12 clues.
- Coverage minimums: motive >= 2, alibi >= 1, evidence (opportunity) >= 1, relationship (corroboration) >= 2.
- revealedBy must NEVER contain the victim's id and must never be empty.
- minimumPointsToAccuse must be achievable: at most the sum of all clue points.
- JSON only; no comments, no prose outside the JSON object.`

const (
	MinClues = 8
	MaxClues = 12
)

// Clues produces the clue set, scoring thresholds and the solution
// explanation, given the finalized cast and the chosen culprit.
type Clues struct{ LLM llm.Client }

func (p *Clues) Run(ctx context.Context, in t.CluesIn) (t.CluesOut, error) {
	if _, ok := findCharacter(in.Characters, in.CulpritID); !ok {
		return t.CluesOut{}, fmt.Errorf("%s stage: culprit %q is not in the cast", StageClues, in.CulpritID)
	}

	var out t.CluesOut
	err := generate(ctx, p.LLM, StageClues, promptClues, in,
		llm.Options{MaxTokens: 3000, Temperature: 0.7}, &out)
	if err != nil {
		return t.CluesOut{}, err
	}
	if len(out.Clues) < MinClues {
		return t.CluesOut{}, fmt.Errorf("%s stage: got %d clues, need at least %d", StageClues, len(out.Clues), MinClues)
	}

	taken := make(map[string]bool)
	total := 0
	for i := range out.Clues {
		c := &out.Clues[i]
		if c.Description == "" {
			return t.CluesOut{}, fmt.Errorf("%s stage: clue %d has no description", StageClues, i)
		}
		if c.Points <= 0 {
			return t.CluesOut{}, fmt.Errorf("%s stage: clue %q has non-positive points", StageClues, c.ID)
		}
		if len(c.RevealedBy) == 0 {
			return t.CluesOut{}, fmt.Errorf("%s stage: clue %q has empty revealedBy", StageClues, c.ID)
		}
		if c.ID == "" {
			c.ID = slugify(c.Description)
			if len(c.ID) > 40 {
				c.ID = c.ID[:40]
			}
		}
		c.ID = uniqueID(c.ID, taken)
		total += c.Points
	}

	if out.GuiltyID != in.CulpritID {
		log.Printf("clues stage: model echoed culprit %q, expected %q; keeping the author's choice", out.GuiltyID, in.CulpritID)
		out.GuiltyID = in.CulpritID
	}
	if out.SolutionExplanation == "" {
		return t.CluesOut{}, fmt.Errorf("%s stage: missing solution explanation", StageClues)
	}

	// Scoring must always be achievable; a model that overshoots here would
	// make the story unwinnable, so clamp rather than fail.
	if out.Scoring.PerfectScoreThreshold <= 0 || out.Scoring.PerfectScoreThreshold > total {
		out.Scoring.PerfectScoreThreshold = total
	}
	if out.Scoring.MinimumPointsToAccuse <= 0 || out.Scoring.MinimumPointsToAccuse > out.Scoring.PerfectScoreThreshold {
		out.Scoring.MinimumPointsToAccuse = out.Scoring.PerfectScoreThreshold / 2
	}
	return out, nil
}

func findCharacter(chars []t.Character, id string) (*t.Character, bool) {
	for i := range chars {
		if chars[i].ID == id {
			return &chars[i], true
		}
	}
	return nil, false
}
