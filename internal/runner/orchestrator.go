package runner

import (
	"context"
	"fmt"
	"log"

	"github.com/google/uuid"

	"caseforge/internal/pipeline"
	t "caseforge/internal/types"
	"caseforge/internal/validate"
)

// Pseudo-stages appended after the generators.
const (
	StageValidate = "validate"
	StagePublish  = "publish"
)

// stagePercent is the progress value reported after each stage succeeds.
// 100 is reserved for the terminal complete event.
var stagePercent = map[string]int{
	pipeline.StageFoundation: 15,
	pipeline.StageCharacters: 35,
	pipeline.StageClues:      55,
	pipeline.StageTimeline:   75,
	pipeline.StageCaseFile:   85,
	StageValidate:            92,
	StagePublish:             97,
}

// Publisher persists a finished draft. Implemented by the story store.
type Publisher interface {
	Publish(ctx context.Context, draft *t.Draft) error
}

// PortraitGenerator turns an appearance prompt into a hosted image URL.
// Failures are non-fatal: a story publishes fine without portraits.
type PortraitGenerator interface {
	Portrait(ctx context.Context, storyID, characterID, prompt string) (string, error)
}

// Orchestrator drives the stage state machine: foundation → characters →
// clues → timelineAndKnowledge → caseFile → validate → publish. It is
// restartable at any stage given the upstream draft, and emits the progress
// protocol through the context emitter.
type Orchestrator struct {
	Stages    *pipeline.Stages
	Validator *validate.Validator
	Publisher Publisher         // nil skips the publish stage
	Portraits PortraitGenerator // nil skips portrait generation
}

// Run validates the author input and generates a full draft from scratch.
// Invalid input is rejected synchronously before any generation call and
// before any event is emitted.
func (o *Orchestrator) Run(ctx context.Context, input t.StoryInput) (*t.Draft, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}
	draft := &t.Draft{ID: uuid.NewString(), Input: input}
	return o.resume(ctx, pipeline.StageFoundation, draft)
}

// ResumeFrom restarts the state machine at the given stage, reusing the
// draft's upstream sections. A failed clues stage can be retried without
// regenerating foundation or characters.
func (o *Orchestrator) ResumeFrom(ctx context.Context, stage string, draft *t.Draft) (*t.Draft, error) {
	if _, ok := stagePercent[stage]; !ok {
		return nil, &t.ValidationError{Field: "stage", Message: fmt.Sprintf("unknown stage %q", stage)}
	}
	return o.resume(ctx, stage, draft)
}

var stageSequence = append(append([]string{}, pipeline.StageOrder...), StageValidate, StagePublish)

func (o *Orchestrator) resume(ctx context.Context, from string, draft *t.Draft) (*t.Draft, error) {
	r := &run{emitter: EmitterFrom(ctx)}
	started := false
	for _, stage := range stageSequence {
		if stage == from {
			started = true
		}
		if !started {
			r.skipTo(stagePercent[stage])
			continue
		}
		if err := o.runStage(ctx, r, stage, draft); err != nil {
			r.fail(stage, err)
			return draft, err
		}
	}
	r.complete(draft)
	return draft, nil
}

func (o *Orchestrator) runStage(ctx context.Context, r *run, stage string, draft *t.Draft) error {
	switch stage {
	case pipeline.StageFoundation:
		out, err := o.Stages.Foundation.Run(ctx, t.FoundationIn{
			Title:   draft.Input.Title,
			Setting: draft.Input.Setting,
			Premise: draft.Input.Premise,
		})
		if err != nil {
			return err
		}
		draft.Foundation = out.Foundation
		draft.Timeline = out.TimelineSkeleton
		draft.Solution = out.Solution
		r.progress(stage, "foundation drafted", stagePercent[stage])

	case pipeline.StageCharacters:
		out, err := o.Stages.Characters.Run(ctx, t.CharactersIn{
			Foundation: draft.Foundation,
			Inputs:     draft.Input.Characters,
		})
		if err != nil {
			return err
		}
		draft.Characters = out.Characters
		r.progress(stage, fmt.Sprintf("%d characters enriched", len(draft.Characters)), stagePercent[stage])

	case pipeline.StageClues:
		culprit, err := assignGuilt(draft)
		if err != nil {
			return err
		}
		out, err := o.Stages.Clues.Run(ctx, t.CluesIn{
			Foundation: draft.Foundation,
			Characters: draft.Characters,
			CulpritID:  culprit,
			Motive:     draft.Input.Motive,
			Method:     draft.Input.Method,
		})
		if err != nil {
			return err
		}
		draft.Clues = out.Clues
		draft.Scoring = out.Scoring
		draft.Solution = t.Solution{
			Culprit:     culprit,
			Method:      draft.Input.Method,
			Motive:      draft.Input.Motive,
			Explanation: out.SolutionExplanation,
		}
		r.progress(stage, fmt.Sprintf("%d clues planted", len(draft.Clues)), stagePercent[stage])

	case pipeline.StageTimeline:
		out, err := o.Stages.Timeline.Run(ctx, t.TimelineIn{
			Foundation: draft.Foundation,
			Characters: draft.Characters,
			Clues:      draft.Clues,
			Solution:   draft.Solution,
		})
		if err != nil {
			return err
		}
		draft.Timeline = out.Timeline
		pipeline.ApplyKnowledge(draft.Characters, out.Knowledge)
		r.progress(stage, "timeline and knowledge aligned", stagePercent[stage])

	case pipeline.StageCaseFile:
		out, err := o.Stages.CaseFile.Run(ctx, t.CaseFileIn{
			Setting:    draft.Foundation.Setting,
			Timeline:   draft.Timeline,
			Clues:      draft.Clues,
			Characters: draft.Characters,
			Solution:   draft.Solution,
		})
		if err != nil {
			return err
		}
		draft.CaseFile = out.CaseFile
		o.generatePortraits(ctx, draft)
		r.progress(stage, "case file written", stagePercent[stage])

	case StageValidate:
		res := o.Validator.Validate(ctx, draft)
		r.validation(res)
		if !res.IsPublishable {
			return fmt.Errorf("%s stage: hard consistency checks failed (%d warnings)", StageValidate, len(res.Warnings))
		}
		r.progress(stage, "consistency checks passed", stagePercent[stage])

	case StagePublish:
		if o.Publisher == nil {
			r.progress(stage, "publish skipped: no store configured", stagePercent[stage])
			return nil
		}
		if err := o.Publisher.Publish(ctx, draft); err != nil {
			return fmt.Errorf("%s stage: %w", StagePublish, err)
		}
		draft.Published = true
		r.progress(stage, "story published", stagePercent[stage])

	default:
		return fmt.Errorf("unknown stage %q", stage)
	}
	return nil
}

// assignGuilt flags the author's chosen culprit and clears everyone else, so
// at most one character is ever guilty.
func assignGuilt(draft *t.Draft) (string, error) {
	culpritID := ""
	for i := range draft.Characters {
		draft.Characters[i].IsGuilty = false
		if draft.Characters[i].TempID != "" && draft.Characters[i].TempID == draft.Input.CulpritTempID {
			culpritID = draft.Characters[i].ID
		}
	}
	if culpritID == "" {
		return "", fmt.Errorf("%s stage: culprit %q not found among generated characters",
			pipeline.StageClues, draft.Input.CulpritTempID)
	}
	setGuilty(draft, culpritID)
	return culpritID, nil
}

func setGuilty(draft *t.Draft, id string) {
	for i := range draft.Characters {
		draft.Characters[i].IsGuilty = draft.Characters[i].ID == id
	}
}

func (o *Orchestrator) generatePortraits(ctx context.Context, draft *t.Draft) {
	if o.Portraits == nil {
		return
	}
	for i := range draft.Characters {
		c := &draft.Characters[i]
		if c.ImageURL != "" || c.Appearance.ImagePrompt == "" {
			continue
		}
		url, err := o.Portraits.Portrait(ctx, draft.ID, c.ID, c.Appearance.ImagePrompt)
		if err != nil {
			log.Printf("portrait for %s skipped: %v", c.ID, err)
			continue
		}
		c.ImageURL = url
	}
}

// run tracks per-run event state: the monotonic percent floor and the
// single-terminal-event discipline.
type run struct {
	emitter RunEventEmitter
	percent int
	done    bool
}

func (r *run) skipTo(pct int) {
	if pct > r.percent {
		r.percent = pct
	}
}

func (r *run) progress(step, message string, pct int) {
	if pct < r.percent {
		pct = r.percent
	}
	r.percent = pct
	r.emitter.Emit(RunEvent{Type: EventProgress, Step: step, Message: message, Percent: pct})
}

func (r *run) validation(res validate.Result) {
	ok := res.IsPublishable
	r.emitter.Emit(RunEvent{Type: EventValidation, Warnings: res.Warnings, IsPublishable: &ok})
}

func (r *run) fail(stage string, err error) {
	if r.done {
		return
	}
	r.done = true
	r.emitter.Emit(RunEvent{Type: EventError, Step: stage, Message: err.Error(), Percent: r.percent})
}

func (r *run) complete(draft *t.Draft) {
	if r.done {
		return
	}
	r.done = true
	r.emitter.Emit(RunEvent{Type: EventComplete, Percent: 100, Result: draft})
}
