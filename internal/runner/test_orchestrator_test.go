package runner

import (
	"context"
	"errors"
	"strings"
	"testing"

	"caseforge/internal/llm"
	"caseforge/internal/pipeline"
	"caseforge/internal/store"
	"caseforge/internal/tester"
	t "caseforge/internal/types"
	"caseforge/internal/validate"
)

func fixtureInput() t.StoryInput {
	return t.StoryInput{
		Title:   "The Glasshouse Vigil",
		Setting: "an auction house in 1927",
		Premise: "The owner is found dead among his orchids on auction night.",
		Characters: []t.CharacterInput{
			{TempID: "t1", Name: "Edmund Hale", Role: "auction house owner", IsVictim: true},
			{TempID: "t2", Name: "James Holloway", Role: "head clerk"},
			{TempID: "t3", Name: "Clara Whitmore", Role: "estranged niece"},
		},
		CulpritTempID: "t2",
		Motive:        "inheritance dispute",
		Method:        "poisoning",
	}
}

type eventLog struct{ events []RunEvent }

func (l *eventLog) ctx() context.Context {
	return WithEmitter(context.Background(), FuncEmitter(func(e RunEvent) {
		l.events = append(l.events, e)
	}))
}

func (l *eventLog) terminals() []RunEvent {
	var out []RunEvent
	for _, e := range l.events {
		if e.Type == EventComplete || e.Type == EventError {
			out = append(out, e)
		}
	}
	return out
}

func newTestOrchestrator(client llm.Client, pub Publisher) *Orchestrator {
	return &Orchestrator{
		Stages:    pipeline.NewStages(client),
		Validator: &validate.Validator{LLM: client},
		Publisher: pub,
	}
}

func TestRunGeneratesAndPublishes(tt *testing.T) {
	mem := store.NewMemory()
	orch := newTestOrchestrator(llm.NewFakeClient(), mem)
	log := &eventLog{}

	draft, err := orch.Run(log.ctx(), fixtureInput())
	tester.NoErr(tt, err)
	tester.True(tt, draft.Published)
	tester.Eq(tt, draft.Solution.Culprit, "james-holloway")

	culprit, ok := draft.Culprit()
	tester.True(tt, ok)
	tester.Eq(tt, culprit.ID, "james-holloway")

	// Progress discipline: non-decreasing percent, one terminal event, 100
	// only on complete.
	last := 0
	for _, e := range log.events {
		if e.Type == EventProgress {
			tester.True(tt, e.Percent >= last, "percent must never decrease")
			tester.True(tt, e.Percent < 100, "100 is reserved for the terminal event")
			last = e.Percent
		}
	}
	terms := log.terminals()
	tester.Eq(tt, len(terms), 1)
	tester.Eq(tt, terms[0].Type, EventComplete)
	tester.Eq(tt, terms[0].Percent, 100)
	tester.Eq(tt, log.events[len(log.events)-1].Type, EventComplete)

	// A validation event precedes publish.
	sawValidation := false
	for _, e := range log.events {
		if e.Type == EventValidation {
			sawValidation = true
			tester.True(tt, e.IsPublishable != nil && *e.IsPublishable)
		}
	}
	tester.True(tt, sawValidation)

	// Publish replaced the child rows.
	tester.Eq(tt, len(mem.Characters(draft.ID)), 3)
	tester.True(tt, len(mem.Clues(draft.ID)) >= pipeline.MinClues)
}

func TestRunRejectsInvalidInputSynchronously(tt *testing.T) {
	orch := newTestOrchestrator(llm.NewFakeClient(), nil)
	log := &eventLog{}

	in := fixtureInput()
	in.Characters = in.Characters[:2]
	_, err := orch.Run(log.ctx(), in)
	tester.Err(tt, err)
	var verr *t.ValidationError
	tester.True(tt, errors.As(err, &verr))
	tester.Eq(tt, len(log.events), 0, "no generation call, no events")
}

// failAt delegates to the fake client except at one stage.
type failAt struct {
	stage string
	inner llm.Client
}

func (f *failAt) Name() string { return "failAt:" + f.stage }
func (f *failAt) Close() error { return f.inner.Close() }
func (f *failAt) Generate(ctx context.Context, prompt string, opts llm.Options) (string, error) {
	if llm.StageFrom(ctx) == f.stage {
		return "", llm.ErrUnavailable
	}
	return f.inner.Generate(ctx, prompt, opts)
}

func TestFailureAtCluesKeepsUpstreamAndResumes(tt *testing.T) {
	mem := store.NewMemory()
	orch := newTestOrchestrator(&failAt{stage: pipeline.StageClues, inner: llm.NewFakeClient()}, mem)
	log := &eventLog{}

	draft, err := orch.Run(log.ctx(), fixtureInput())
	tester.Err(tt, err)
	tester.True(tt, errors.Is(err, llm.ErrUnavailable))

	terms := log.terminals()
	tester.Eq(tt, len(terms), 1)
	tester.Eq(tt, terms[0].Type, EventError)
	tester.Eq(tt, terms[0].Step, pipeline.StageClues)
	tester.True(tt, strings.Contains(terms[0].Message, "clues stage"))

	// Upstream stages survived the failure.
	tester.Eq(tt, draft.Foundation.Title, "The Glasshouse Vigil")
	tester.Eq(tt, len(draft.Characters), 3)
	tester.Eq(tt, len(draft.Clues), 0)

	// Resume from the failed stage with a healthy client; foundation and
	// characters are not regenerated.
	orch.Stages = pipeline.NewStages(llm.NewFakeClient())
	resumeLog := &eventLog{}
	out, err := orch.ResumeFrom(resumeLog.ctx(), pipeline.StageClues, draft)
	tester.NoErr(tt, err)
	tester.True(tt, out.Published)

	for _, e := range resumeLog.events {
		tester.True(tt, e.Step != pipeline.StageFoundation, "resume must not rerun foundation")
		tester.True(tt, e.Step != pipeline.StageCharacters, "resume must not rerun characters")
	}
}

func TestResumeRejectsUnknownStage(tt *testing.T) {
	orch := newTestOrchestrator(llm.NewFakeClient(), nil)
	_, err := orch.ResumeFrom(context.Background(), "shipping", &t.Draft{})
	tester.Err(tt, err)
}

func TestCascadeSolutionEditRegeneratesDependentsInOrder(tt *testing.T) {
	orch := newTestOrchestrator(llm.NewFakeClient(), store.NewMemory())
	draft, err := orch.Run(context.Background(), fixtureInput())
	tester.NoErr(tt, err)

	// The author hand-edits the solution, then asks for the cascade.
	draft.Solution.Motive = "a buried inheritance feud"
	log := &eventLog{}
	out, err := orch.CascadeEdit(log.ctx(), pipeline.SectionSolution, draft)
	tester.NoErr(tt, err)
	tester.True(tt, out.EditedSections[pipeline.SectionSolution])

	var steps []string
	for _, e := range log.events {
		if e.Type == EventProgress {
			steps = append(steps, e.Step)
		}
	}
	tester.Eq(tt, steps, []string{pipeline.SectionClues, pipeline.SectionTimeline, pipeline.SectionKnowledge})

	terms := log.terminals()
	tester.Eq(tt, len(terms), 1)
	tester.Eq(tt, terms[0].Type, EventComplete)
	tester.Eq(tt, len(out.RegeneratingSections), 0, "no section may stay marked as regenerating")
}

func TestCascadeRejectsUnknownSection(tt *testing.T) {
	orch := newTestOrchestrator(llm.NewFakeClient(), nil)
	_, err := orch.CascadeEdit(context.Background(), "afterword", &t.Draft{})
	tester.Err(tt, err)
}

func TestChannelEmitterNeverBlocks(tt *testing.T) {
	ch := make(chan RunEvent, 1)
	e := &ChannelEmitter{Ch: ch}
	e.Emit(RunEvent{Type: EventProgress, Percent: 10})
	e.Emit(RunEvent{Type: EventProgress, Percent: 20}) // buffer full, dropped
	tester.Eq(tt, len(ch), 1)
	got := <-ch
	tester.Eq(tt, got.Percent, 10)
}
