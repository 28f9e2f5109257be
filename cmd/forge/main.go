package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"caseforge/internal/llm"
	"caseforge/internal/pipeline"
	t "caseforge/internal/types"
	"caseforge/internal/validate"
)

// forge generates a full mystery draft from an author input file, writing
// one JSON artifact per stage so a failed run can restart mid-pipeline.
func main() {
	input := flag.String("input", "", "path to the story input JSON")
	provider := flag.String("provider", "gemini", "llm provider: gemini, openrouter, fake")
	model := flag.String("model", "", "model id override")
	outDir := flag.String("out", "out", "output directory")
	from := flag.String("from", "", "restart from stage: foundation, characters, clues, timelineAndKnowledge, caseFile")
	flag.Parse()

	if *input == "" {
		log.Fatal("--input is required")
	}
	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatal(err)
	}

	_ = godotenv.Load()
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
	defer cancel()

	client, err := buildClient(ctx, *provider, *model)
	if err != nil {
		log.Fatal(err)
	}
	defer client.Close()

	var in t.StoryInput
	readJSON(*input, &in)
	if err := in.Validate(); err != nil {
		log.Fatalf("input: %v", err)
	}

	stages := pipeline.NewStages(client)
	draft := &t.Draft{ID: uuid.NewString(), Input: in}

	order := pipeline.StageOrder
	start := 0
	for i, s := range order {
		if s == *from {
			start = i
		}
	}

	if start > 0 {
		readJSON(filepath.Join(*outDir, "draft.json"), draft)
	}

	for _, stage := range order[start:] {
		log.Printf("stage %s", stage)
		switch stage {
		case pipeline.StageFoundation:
			out, err := stages.Foundation.Run(ctx, t.FoundationIn{Title: in.Title, Setting: in.Setting, Premise: in.Premise})
			if err != nil {
				log.Fatal(err)
			}
			draft.Foundation = out.Foundation
			draft.Timeline = out.TimelineSkeleton
			draft.Solution = out.Solution
			writeJSON(*outDir, "foundation.json", out)

		case pipeline.StageCharacters:
			out, err := stages.Characters.Run(ctx, t.CharactersIn{Foundation: draft.Foundation, Inputs: in.Characters})
			if err != nil {
				log.Fatal(err)
			}
			draft.Characters = out.Characters
			writeJSON(*outDir, "characters.json", out)

		case pipeline.StageClues:
			culprit := markCulprit(draft)
			out, err := stages.Clues.Run(ctx, t.CluesIn{
				Foundation: draft.Foundation,
				Characters: draft.Characters,
				CulpritID:  culprit,
				Motive:     in.Motive,
				Method:     in.Method,
			})
			if err != nil {
				log.Fatal(err)
			}
			draft.Clues = out.Clues
			draft.Scoring = out.Scoring
			draft.Solution = t.Solution{Culprit: culprit, Method: in.Method, Motive: in.Motive, Explanation: out.SolutionExplanation}
			writeJSON(*outDir, "clues.json", out)

		case pipeline.StageTimeline:
			out, err := stages.Timeline.Run(ctx, t.TimelineIn{
				Foundation: draft.Foundation,
				Characters: draft.Characters,
				Clues:      draft.Clues,
				Solution:   draft.Solution,
			})
			if err != nil {
				log.Fatal(err)
			}
			draft.Timeline = out.Timeline
			pipeline.ApplyKnowledge(draft.Characters, out.Knowledge)
			writeJSON(*outDir, "timeline.json", out)

		case pipeline.StageCaseFile:
			out, err := stages.CaseFile.Run(ctx, t.CaseFileIn{
				Setting:    draft.Foundation.Setting,
				Timeline:   draft.Timeline,
				Clues:      draft.Clues,
				Characters: draft.Characters,
				Solution:   draft.Solution,
			})
			if err != nil {
				log.Fatal(err)
			}
			draft.CaseFile = out.CaseFile
			writeJSON(*outDir, "casefile.json", out)
		}
		writeJSON(*outDir, "draft.json", draft)
	}

	res := validate.Structural(draft)
	writeJSON(*outDir, "validation.json", res)
	if !res.IsPublishable {
		log.Printf("draft is NOT publishable; see validation.json (%d warnings)", len(res.Warnings))
		os.Exit(1)
	}
	log.Printf("draft completed with %d warnings: %s", len(res.Warnings), filepath.Join(*outDir, "draft.json"))
}

func buildClient(ctx context.Context, provider, model string) (llm.Client, error) {
	switch provider {
	case "fake":
		return llm.NewFakeClient(), nil
	case "openrouter":
		return llm.NewOpenRouterClient("", model)
	default:
		return llm.NewGeminiClient(ctx, model)
	}
}

func markCulprit(draft *t.Draft) string {
	id := ""
	for i := range draft.Characters {
		c := &draft.Characters[i]
		c.IsGuilty = c.TempID != "" && c.TempID == draft.Input.CulpritTempID
		if c.IsGuilty {
			id = c.ID
		}
	}
	if id == "" {
		log.Fatalf("culprit %q not found among generated characters", draft.Input.CulpritTempID)
	}
	return id
}

func writeJSON(dir, name string, v any) {
	b, _ := json.MarshalIndent(v, "", "  ")
	if err := os.WriteFile(filepath.Join(dir, name), b, 0o644); err != nil {
		log.Fatalf("failed to write %s: %v", name, err)
	}
}

func readJSON(path string, v any) {
	b, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("failed to read %s: %v", path, err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		log.Fatalf("failed to unmarshal %s: %v", path, err)
	}
}
