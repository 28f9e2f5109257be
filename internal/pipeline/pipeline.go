// Package pipeline holds the five mystery-generation stages. Each stage is a
// small struct around the generation client: marshal typed input, one
// generation call, JSON extraction, typed decode, stage-specific
// normalization. Stage N+1 always consumes stage N's concrete output.
package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"caseforge/internal/llm"
	"caseforge/internal/util/jsonutil"
)

// Stage names. These tag generation calls (llm.WithStage) and name the
// failing stage in orchestrator error events.
const (
	StageFoundation = "foundation"
	StageCharacters = "characters"
	StageClues      = "clues"
	StageTimeline   = "timelineAndKnowledge"
	StageCaseFile   = "caseFile"
)

// StageOrder is the fixed first-run sequence.
var StageOrder = []string{StageFoundation, StageCharacters, StageClues, StageTimeline, StageCaseFile}

// Stages bundles one generator per stage over a shared client.
type Stages struct {
	Foundation *Foundation
	Characters *Characters
	Clues      *Clues
	Timeline   *TimelineKnowledge
	CaseFile   *CaseFile
}

func NewStages(client llm.Client) *Stages {
	return &Stages{
		Foundation: &Foundation{LLM: client},
		Characters: &Characters{LLM: client},
		Clues:      &Clues{LLM: client},
		Timeline:   &TimelineKnowledge{LLM: client},
		CaseFile:   &CaseFile{LLM: client},
	}
}

// generate runs one tagged client call and decodes the response into out.
// Parse failures and generation failures surface identically to the caller:
// the stage failed, upstream state is untouched.
func generate(ctx context.Context, client llm.Client, stage, prompt string, input any, opts llm.Options, out any) error {
	in, err := jsonutil.MarshalIndentNoEscape(input, "", "  ")
	if err != nil {
		return fmt.Errorf("%s stage: marshal input: %w", stage, err)
	}
	full := prompt + "\n\n[INPUT JSON]\n" + string(in)

	text, err := client.Generate(llm.WithStage(ctx, stage), full, opts)
	if err != nil {
		return fmt.Errorf("%s stage: %w", stage, err)
	}
	if err := jsonutil.Decode(text, out); err != nil {
		return fmt.Errorf("%s stage: %w", stage, err)
	}
	return nil
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

// slugify derives a stable id from a display name.
func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = nonSlug.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// uniqueID returns slug, or slug-2, slug-3… if taken, and records the result.
func uniqueID(slug string, taken map[string]bool) string {
	if slug == "" {
		slug = "unnamed"
	}
	id := slug
	for n := 2; taken[id]; n++ {
		id = fmt.Sprintf("%s-%d", slug, n)
	}
	taken[id] = true
	return id
}
