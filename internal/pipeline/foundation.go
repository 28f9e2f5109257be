package pipeline

import (
	"context"
	"fmt"

	"caseforge/internal/llm"
	t "caseforge/internal/types"
)

const promptFoundation = `You are designing the foundation of an interactive murder mystery.

Input JSON provides the author's raw title, setting and premise.

Return STRICT JSON matching this schema:
{
  "foundation": {
    "title": "string",              // polished title
    "synopsis": "string",           // 2-4 sentence premise as it will be shown to players
    "crimeType": "string",          // e.g. "murder", "theft"
    "setting": {
      "location": "string",
      "timePeriod": "string",
      "atmosphere": "string"
    },
    "victim": "string"              // one paragraph introducing the victim
  },
  "timeline": ["string"],           // at least 6 events in story order, each "<time> - <what happened>"
  "solution": {
    "culprit": "to be determined",
    "method": "to be determined",
    "motive": "to be determined",
    "explanation": "to be determined"
  }
}

Rules:
- Keep the author's intent; polish, do not replace.
- The solution fields MUST read "to be determined" at this stage.
- JSON only; no comments, no prose outside the JSON object.`

const minTimelineEvents = 6

// Foundation turns raw author input into the polished premise plus an
// initial timeline skeleton and a placeholder solution.
type Foundation struct{ LLM llm.Client }

func (p *Foundation) Run(ctx context.Context, in t.FoundationIn) (t.FoundationOut, error) {
	var out t.FoundationOut
	err := generate(ctx, p.LLM, StageFoundation, promptFoundation, in,
		llm.Options{MaxTokens: 2000, Temperature: 0.8}, &out)
	if err != nil {
		return t.FoundationOut{}, err
	}
	if out.Foundation.Title == "" || out.Foundation.Synopsis == "" {
		return t.FoundationOut{}, fmt.Errorf("%s stage: missing required foundation fields", StageFoundation)
	}
	if len(out.TimelineSkeleton) < minTimelineEvents {
		return t.FoundationOut{}, fmt.Errorf("%s stage: timeline skeleton has %d events, need at least %d",
			StageFoundation, len(out.TimelineSkeleton), minTimelineEvents)
	}
	return out, nil
}
