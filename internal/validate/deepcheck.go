package validate

import (
	"context"
	"fmt"

	"caseforge/internal/llm"
	t "caseforge/internal/types"
	"caseforge/internal/util/jsonutil"
)

const promptDeepCheck = `You are reviewing a finished murder mystery draft for semantic consistency.

Input JSON is the full draft: foundation, cast, clues, timeline, solution.
Look for contradictions a careful reader would catch: an alibi the timeline
disproves without a clue marking it false, a clue no timeline event makes
possible, knowledge a character could not plausibly have, a solution the clue
set cannot support.

Return STRICT JSON matching this schema:
{
  "issues": [
    {"section": "string", "message": "string"}
  ]
}

Rules:
- Report only genuine contradictions; an empty issues list is a fine answer.
- JSON only; no comments, no prose outside the JSON object.`

// DeepChecker asks the model for a semantic plausibility judgment over the
// whole draft. It only ever adds soft warnings: a model outage or garbled
// reply degrades to a single "skipped" warning so the structural verdict
// stands on its own.
type DeepChecker struct{ LLM llm.Client }

type deepCheckOut struct {
	Issues []struct {
		Section string `json:"section"`
		Message string `json:"message"`
	} `json:"issues"`
}

func (dc *DeepChecker) Run(ctx context.Context, d *t.Draft) []Warning {
	payload, err := jsonutil.MarshalIndentNoEscape(d, "", "  ")
	if err != nil {
		return []Warning{skipped(err)}
	}
	text, err := dc.LLM.Generate(llm.WithStage(ctx, "deepCheck"),
		promptDeepCheck+"\n\n[INPUT JSON]\n"+string(payload),
		llm.Options{MaxTokens: 1500, Temperature: 0.3})
	if err != nil {
		return []Warning{skipped(err)}
	}
	var out deepCheckOut
	if err := jsonutil.Decode(text, &out); err != nil {
		return []Warning{skipped(err)}
	}
	warns := make([]Warning, 0, len(out.Issues))
	for _, issue := range out.Issues {
		if issue.Message == "" {
			continue
		}
		warns = append(warns, Warning{
			Kind: KindDeepCheck, Severity: SeveritySoft,
			Section: issue.Section, Message: issue.Message,
		})
	}
	return warns
}

func skipped(err error) Warning {
	return Warning{
		Kind: KindSkipped, Severity: SeveritySoft,
		Message: fmt.Sprintf("deep check skipped: %v", err),
	}
}

// Validator bundles the structural checks with the optional deep check.
// A nil LLM disables the deep check entirely.
type Validator struct{ LLM llm.Client }

func (v *Validator) Validate(ctx context.Context, d *t.Draft) Result {
	res := Structural(d)
	if v == nil || v.LLM == nil {
		return res
	}
	dc := &DeepChecker{LLM: v.LLM}
	res.Warnings = append(res.Warnings, dc.Run(ctx, d)...)
	// Deep check findings are advisory; publishability stays structural.
	return res
}
