package pipeline

import (
	"context"
	"fmt"

	t "caseforge/internal/types"
)

// User-editable sections of the draft. Editing one marks its downstream
// sections stale; the orchestrator decides whether to cascade.
const (
	SectionFoundation = "foundation"
	SectionCharacters = "characters"
	SectionClues      = "clues"
	SectionTimeline   = "timeline"
	SectionKnowledge  = "characterKnowledge"
	SectionSolution   = "solution"
)

// Sections lists all recognized section names.
var Sections = []string{
	SectionFoundation, SectionCharacters, SectionClues,
	SectionTimeline, SectionKnowledge, SectionSolution,
}

// Downstream is the fixed adjacency table: editing the key invalidates the
// listed sections, in recomputation order. Cascading is the orchestrator's
// job; the regenerator below never touches more than one section.
var Downstream = map[string][]string{
	SectionFoundation: {SectionCharacters, SectionClues, SectionTimeline, SectionKnowledge},
	SectionCharacters: {SectionClues, SectionKnowledge},
	SectionClues:      {SectionTimeline, SectionKnowledge},
	SectionTimeline:   {SectionKnowledge},
	SectionKnowledge:  {},
	SectionSolution:   {SectionClues, SectionTimeline, SectionKnowledge},
}

// KnownSection reports whether name is a recognized editable section.
func KnownSection(name string) bool {
	_, ok := Downstream[name]
	return ok
}

// SectionResult carries the regenerated value for exactly one section.
type SectionResult struct {
	Section string `json:"section"`
	Data    any    `json:"data"`
}

// Regenerator re-invokes the single stage generator that produces a section,
// feeding it the current (possibly user-edited) upstream draft values.
type Regenerator struct {
	Stages *Stages
}

func (r *Regenerator) Regenerate(ctx context.Context, section string, draft *t.Draft) (SectionResult, error) {
	if !KnownSection(section) {
		return SectionResult{}, &t.ValidationError{Field: "section", Message: fmt.Sprintf("unknown section %q", section)}
	}
	switch section {
	case SectionFoundation:
		out, err := r.Stages.Foundation.Run(ctx, t.FoundationIn{
			Title:   draft.Input.Title,
			Setting: draft.Input.Setting,
			Premise: draft.Input.Premise,
		})
		if err != nil {
			return SectionResult{}, err
		}
		return SectionResult{Section: section, Data: out.Foundation}, nil

	case SectionCharacters:
		if err := requireFoundation(draft); err != nil {
			return SectionResult{}, err
		}
		out, err := r.Stages.Characters.Run(ctx, t.CharactersIn{
			Foundation: draft.Foundation,
			Inputs:     draft.Input.Characters,
		})
		if err != nil {
			return SectionResult{}, err
		}
		return SectionResult{Section: section, Data: out.Characters}, nil

	case SectionClues, SectionSolution:
		if err := requireCharacters(draft); err != nil {
			return SectionResult{}, err
		}
		culprit, err := CulpritID(draft)
		if err != nil {
			return SectionResult{}, err
		}
		out, err := r.Stages.Clues.Run(ctx, t.CluesIn{
			Foundation: draft.Foundation,
			Characters: draft.Characters,
			CulpritID:  culprit,
			Motive:     draft.Input.Motive,
			Method:     draft.Input.Method,
		})
		if err != nil {
			return SectionResult{}, err
		}
		if section == SectionSolution {
			return SectionResult{Section: section, Data: t.Solution{
				Culprit:     culprit,
				Method:      draft.Input.Method,
				Motive:      draft.Input.Motive,
				Explanation: out.SolutionExplanation,
			}}, nil
		}
		return SectionResult{Section: section, Data: out}, nil

	case SectionTimeline, SectionKnowledge:
		if err := requireClues(draft); err != nil {
			return SectionResult{}, err
		}
		out, err := r.Stages.Timeline.Run(ctx, t.TimelineIn{
			Foundation: draft.Foundation,
			Characters: draft.Characters,
			Clues:      draft.Clues,
			Solution:   draft.Solution,
		})
		if err != nil {
			return SectionResult{}, err
		}
		if section == SectionKnowledge {
			return SectionResult{Section: section, Data: out.Knowledge}, nil
		}
		return SectionResult{Section: section, Data: out.Timeline}, nil
	}
	// Unreachable: KnownSection gates the switch.
	return SectionResult{}, &t.ValidationError{Field: "section", Message: fmt.Sprintf("unknown section %q", section)}
}

// CulpritID resolves the guilty character: the isGuilty flag if already
// assigned, the author's culprit temp id otherwise.
func CulpritID(draft *t.Draft) (string, error) {
	if c, ok := draft.Culprit(); ok {
		return c.ID, nil
	}
	for i := range draft.Characters {
		if draft.Characters[i].TempID != "" && draft.Characters[i].TempID == draft.Input.CulpritTempID {
			return draft.Characters[i].ID, nil
		}
	}
	return "", &t.ValidationError{Field: "culpritTempId", Message: "no culprit can be resolved from the draft"}
}

func requireFoundation(draft *t.Draft) error {
	if draft.Foundation.Title == "" {
		return &t.ValidationError{Field: "foundation", Message: "draft has no foundation; generate it first"}
	}
	return nil
}

func requireCharacters(draft *t.Draft) error {
	if err := requireFoundation(draft); err != nil {
		return err
	}
	if len(draft.Characters) == 0 {
		return &t.ValidationError{Field: "characters", Message: "draft has no characters; generate them first"}
	}
	return nil
}

func requireClues(draft *t.Draft) error {
	if err := requireCharacters(draft); err != nil {
		return err
	}
	if len(draft.Clues) == 0 {
		return &t.ValidationError{Field: "clues", Message: "draft has no clues; generate them first"}
	}
	return nil
}
