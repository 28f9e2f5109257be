package pipeline

import (
	"context"
	"fmt"

	"caseforge/internal/llm"
	t "caseforge/internal/types"
)

const promptCaseFile = `You are writing the opening case file of an interactive murder mystery:
the newspaper-report-style summary the player sees at game start.

Input JSON provides the setting, final timeline, clue set, cast and solution.
The case file must not leak the solution: initial evidence may hint, never
name the culprit.

Return STRICT JSON matching this schema:
{
  "caseFile": {
    "victimName": "string",
    "victimDescription": "string",
    "causeOfDeath": "string",
    "lastSeen": "string",
    "locationFound": "string",
    "discoveredBy": "string",
    "discoveryTime": "string",
    "timeOfDeath": "string",
    "initialEvidence": ["string"]   // 2-4 facts shown at game start
  }
}

Rules:
- Every field must be consistent with the timeline.
- JSON only; no comments, no prose outside the JSON object.`

// CaseFile produces the player-facing case file from the finished draft.
type CaseFile struct{ LLM llm.Client }

func (p *CaseFile) Run(ctx context.Context, in t.CaseFileIn) (t.CaseFileOut, error) {
	var out t.CaseFileOut
	err := generate(ctx, p.LLM, StageCaseFile, promptCaseFile, in,
		llm.Options{MaxTokens: 1500, Temperature: 0.7}, &out)
	if err != nil {
		return t.CaseFileOut{}, err
	}
	cf := out.CaseFile
	if cf.VictimName == "" || cf.CauseOfDeath == "" {
		return t.CaseFileOut{}, fmt.Errorf("%s stage: missing required case file fields", StageCaseFile)
	}
	if len(cf.InitialEvidence) == 0 {
		return t.CaseFileOut{}, fmt.Errorf("%s stage: no initial evidence", StageCaseFile)
	}
	return out, nil
}
