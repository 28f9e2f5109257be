package pipeline

import (
	"context"
	"fmt"

	"caseforge/internal/llm"
	t "caseforge/internal/types"
)

const promptTimeline = `You are finalizing the timeline and character knowledge of an interactive
murder mystery.

Input JSON provides the foundation, the cast (with stable ids), the clue set
and the solution. Every clue must be grounded in the timeline you produce:
an event in the timeline must make the clue's description possible.

Return STRICT JSON matching this schema:
{
  "timeline": ["string"],   // full story-time sequence, each "<time> - <what happened>"
  "knowledge": {
    "<living character id>": {
      "knowsAboutCrime": "string",
      "knowsAboutOthers": ["string"],
      "alibi": "string"     // first person; append " (false)" if the alibi is a lie
    }
  }
}

Rules:
- The timeline must not contradict any clue and must support every clue.
- Knowledge must be consistent with which clues each character can reveal.
- The culprit's alibi must be false; mark it with " (false)".
- Victims get no knowledge entry.
- JSON only; no comments, no prose outside the JSON object.`

// TimelineKnowledge regenerates the timeline so every clue is grounded, and
// realigns per-character knowledge with it.
type TimelineKnowledge struct{ LLM llm.Client }

func (p *TimelineKnowledge) Run(ctx context.Context, in t.TimelineIn) (t.TimelineOut, error) {
	var out t.TimelineOut
	err := generate(ctx, p.LLM, StageTimeline, promptTimeline, in,
		llm.Options{MaxTokens: 3000, Temperature: 0.7}, &out)
	if err != nil {
		return t.TimelineOut{}, err
	}
	if len(out.Timeline) == 0 {
		return t.TimelineOut{}, fmt.Errorf("%s stage: empty timeline", StageTimeline)
	}
	if len(out.Knowledge) == 0 {
		return t.TimelineOut{}, fmt.Errorf("%s stage: no knowledge entries", StageTimeline)
	}
	return out, nil
}

// ApplyKnowledge merges regenerated knowledge into the cast and recomputes
// each affected character's derived statement, so statements never lag behind
// a timeline or clue edit. Victims and unknown ids are skipped.
func ApplyKnowledge(chars []t.Character, knowledge map[string]t.Knowledge) {
	for i := range chars {
		c := &chars[i]
		if c.IsVictim {
			continue
		}
		k, ok := knowledge[c.ID]
		if !ok {
			continue
		}
		c.Knowledge = k
		c.Statement = DeriveStatement(c.Name, k.Alibi)
	}
}
