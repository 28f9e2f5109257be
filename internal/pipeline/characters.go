package pipeline

import (
	"context"
	"fmt"

	"caseforge/internal/llm"
	t "caseforge/internal/types"
)

const promptCharacters = `You are enriching the cast of an interactive murder mystery.

Input JSON provides the story foundation, the author's minimal character
inputs (tempId, name, role, description, optional traits/secret, victim flag)
and any previously generated characters for relationship consistency.

Return STRICT JSON matching this schema:
{
  "characters": [
    {
      "tempId": "string",            // echo the input tempId
      "name": "string",
      "role": "string",
      "age": 0,
      "isVictim": false,             // echo the input flag
      "personality": {"traits": ["string"], "speechStyle": "string", "quirks": ["string"]},
      "appearance": {"description": "string", "imagePrompt": "string"},
      "knowledge": {
        "knowsAboutCrime": "string",
        "knowsAboutOthers": ["string"],
        "alibi": "string"            // first person, e.g. "I was in the study until nine"
      },
      "secrets": [{"content": "string", "willingness": "never|ifPressed|ifAccused|volunteers", "revealCondition": "string"}],
      "underPressure": {"defensive": "string", "whenCaughtLying": "string", "whenAccused": "string"},
      "relationships": {"<other character name>": "string"}
    }
  ]
}

Rules:
- Produce exactly one enriched character per input, in input order.
- The victim gets an empty alibi and empty underPressure fields.
- Relationships must reference other cast members by their exact name.
- Do NOT decide who is guilty; guilt is assigned in a later stage.
- JSON only; no comments, no prose outside the JSON object.`

// Characters enriches minimally-specified character inputs into full cast
// records. Guilt is forced false here and the player-facing statement is
// computed deterministically from the alibi.
type Characters struct{ LLM llm.Client }

func (p *Characters) Run(ctx context.Context, in t.CharactersIn) (t.CharactersOut, error) {
	var out t.CharactersOut
	err := generate(ctx, p.LLM, StageCharacters, promptCharacters, in,
		llm.Options{MaxTokens: 4000, Temperature: 0.8}, &out)
	if err != nil {
		return t.CharactersOut{}, err
	}
	if len(out.Characters) != len(in.Inputs) {
		return t.CharactersOut{}, fmt.Errorf("%s stage: got %d characters for %d inputs",
			StageCharacters, len(out.Characters), len(in.Inputs))
	}

	taken := make(map[string]bool)
	for _, existing := range in.Existing {
		taken[existing.ID] = true
	}

	byTempID := make(map[string]*t.CharacterInput, len(in.Inputs))
	for i := range in.Inputs {
		if in.Inputs[i].TempID != "" {
			byTempID[in.Inputs[i].TempID] = &in.Inputs[i]
		}
	}

	for i := range out.Characters {
		c := &out.Characters[i]
		// Match the model output back to its input: by echoed tempId when
		// present, by position otherwise.
		src := &in.Inputs[i]
		if c.TempID != "" {
			if m, ok := byTempID[c.TempID]; ok {
				src = m
			}
		}
		if c.Name == "" {
			return t.CharactersOut{}, fmt.Errorf("%s stage: character %d has no name", StageCharacters, i)
		}
		c.TempID = src.TempID
		c.IsVictim = src.IsVictim
		c.IsGuilty = false
		c.ID = uniqueID(slugify(c.Name), taken)
		c.Statement = DeriveStatement(c.Name, c.Knowledge.Alibi)
	}

	remapRelationships(out.Characters, in.Existing)
	return out, nil
}

// remapRelationships rewrites relationship keys from display names to
// character ids so downstream sections reference stable ids.
func remapRelationships(chars []t.Character, existing []t.Character) {
	idByName := make(map[string]string, len(chars)+len(existing))
	for _, c := range existing {
		idByName[c.Name] = c.ID
	}
	for _, c := range chars {
		idByName[c.Name] = c.ID
	}
	for i := range chars {
		if len(chars[i].Relationships) == 0 {
			continue
		}
		remapped := make(map[string]string, len(chars[i].Relationships))
		for name, desc := range chars[i].Relationships {
			if id, ok := idByName[name]; ok {
				remapped[id] = desc
			} else {
				// Already an id, or a reference to someone outside the cast;
				// keep it as-is rather than dropping information.
				remapped[name] = desc
			}
		}
		chars[i].Relationships = remapped
	}
}
