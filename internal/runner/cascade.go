package runner

import (
	"context"
	"fmt"

	"caseforge/internal/pipeline"
	t "caseforge/internal/types"
)

// RegenerateSection rebuilds exactly one section from the current draft and
// returns it without mutating the draft. The caller decides whether to accept
// the result and whether to cascade.
func (o *Orchestrator) RegenerateSection(ctx context.Context, section string, draft *t.Draft) (pipeline.SectionResult, error) {
	regen := &pipeline.Regenerator{Stages: o.Stages}
	return regen.Regenerate(ctx, section, draft)
}

// CascadeEdit records a manual edit to the given section and regenerates its
// stale dependents in dependency order, each consuming the just-regenerated
// predecessor. The edited section itself is left untouched. Emits the same
// progress protocol as a full run, with one terminal event.
func (o *Orchestrator) CascadeEdit(ctx context.Context, section string, draft *t.Draft) (*t.Draft, error) {
	if !pipeline.KnownSection(section) {
		return nil, &t.ValidationError{Field: "section", Message: fmt.Sprintf("unknown section %q", section)}
	}
	if draft.EditedSections == nil {
		draft.EditedSections = make(map[string]bool)
	}
	draft.EditedSections[section] = true

	r := &run{emitter: EmitterFrom(ctx)}
	regen := &pipeline.Regenerator{Stages: o.Stages}
	deps := pipeline.Downstream[section]
	for i, dep := range deps {
		markRegenerating(draft, dep, true)
		res, err := regen.Regenerate(ctx, dep, draft)
		if err != nil {
			markRegenerating(draft, dep, false)
			r.fail(dep, err)
			return draft, err
		}
		if err := ApplySection(draft, res); err != nil {
			markRegenerating(draft, dep, false)
			r.fail(dep, err)
			return draft, err
		}
		markRegenerating(draft, dep, false)
		// Regenerated content supersedes any earlier manual edit.
		delete(draft.EditedSections, dep)
		r.progress(dep, fmt.Sprintf("%s regenerated", dep), (i+1)*90/len(deps))
	}
	r.complete(draft)
	return draft, nil
}

func markRegenerating(draft *t.Draft, section string, on bool) {
	if draft.RegeneratingSections == nil {
		draft.RegeneratingSections = make(map[string]bool)
	}
	if on {
		draft.RegeneratingSections[section] = true
	} else {
		delete(draft.RegeneratingSections, section)
	}
}

// ApplySection writes a regenerated section value back into the draft,
// keeping the derived fields (guilt flags, statements) consistent.
func ApplySection(draft *t.Draft, res pipeline.SectionResult) error {
	switch res.Section {
	case pipeline.SectionFoundation:
		v, ok := res.Data.(t.Foundation)
		if !ok {
			return badSectionData(res)
		}
		draft.Foundation = v

	case pipeline.SectionCharacters:
		v, ok := res.Data.([]t.Character)
		if !ok {
			return badSectionData(res)
		}
		draft.Characters = v
		if _, err := assignGuilt(draft); err != nil {
			return err
		}

	case pipeline.SectionClues:
		v, ok := res.Data.(t.CluesOut)
		if !ok {
			return badSectionData(res)
		}
		draft.Clues = v.Clues
		draft.Scoring = v.Scoring
		draft.Solution.Culprit = v.GuiltyID
		draft.Solution.Explanation = v.SolutionExplanation
		setGuilty(draft, v.GuiltyID)

	case pipeline.SectionTimeline:
		v, ok := res.Data.([]string)
		if !ok {
			return badSectionData(res)
		}
		draft.Timeline = v

	case pipeline.SectionKnowledge:
		v, ok := res.Data.(map[string]t.Knowledge)
		if !ok {
			return badSectionData(res)
		}
		pipeline.ApplyKnowledge(draft.Characters, v)

	case pipeline.SectionSolution:
		v, ok := res.Data.(t.Solution)
		if !ok {
			return badSectionData(res)
		}
		draft.Solution = v
		setGuilty(draft, v.Culprit)

	default:
		return &t.ValidationError{Field: "section", Message: fmt.Sprintf("unknown section %q", res.Section)}
	}
	return nil
}

func badSectionData(res pipeline.SectionResult) error {
	return fmt.Errorf("section %s: unexpected data type %T", res.Section, res.Data)
}
