package validate

import (
	"fmt"

	t "caseforge/internal/types"
)

// Warning kinds. Each structural check reports its own kind so the editor can
// route the author back to the offending section.
const (
	KindRevealedBy  = "revealedBy"       // hard: empty set, unknown id, or victim id
	KindCulprit     = "culprit"          // hard: solution culprit missing or not flagged guilty
	KindDuplicateID = "duplicateClueId"  // hard: two clues share an id
	KindSuspects    = "suspects"         // soft: no innocent non-victim suspect
	KindScoring     = "scoring"          // soft: accusation threshold not achievable
	KindCoverage    = "coverage"         // soft: a solvability category below its minimum
	KindDeepCheck   = "deepCheck"        // soft: semantic issue found by the model
	KindSkipped     = "deepCheckSkipped" // soft: deep check could not run
)

const (
	SeverityHard = "hard"
	SeveritySoft = "soft"
)

type Warning struct {
	Kind     string `json:"kind"`
	Severity string `json:"severity"`
	Section  string `json:"section"`
	Message  string `json:"message"`
}

type Result struct {
	Warnings      []Warning `json:"warnings"`
	IsPublishable bool      `json:"isPublishable"`
}

// coverageMinimums are the solvability floors per clue category: without
// them a player cannot establish motive, break an alibi, place the culprit
// at the scene, or corroborate testimony.
var coverageMinimums = []struct {
	category string
	min      int
}{
	{t.ClueMotive, 2},
	{t.ClueAlibi, 1},
	{t.ClueEvidence, 1},
	{t.ClueRelationship, 2},
}

// Structural runs every deterministic check over the draft. It is a pure
// function: same draft in, same warnings out, in the same order.
func Structural(d *t.Draft) Result {
	var warns []Warning

	living := make(map[string]bool, len(d.Characters))
	for i := range d.Characters {
		if !d.Characters[i].IsVictim {
			living[d.Characters[i].ID] = true
		}
	}

	for i := range d.Clues {
		c := &d.Clues[i]
		if len(c.RevealedBy) == 0 {
			warns = append(warns, Warning{
				Kind: KindRevealedBy, Severity: SeverityHard, Section: "clues",
				Message: fmt.Sprintf("clue %q can be revealed by nobody", c.ID),
			})
			continue
		}
		for _, id := range c.RevealedBy {
			if !living[id] {
				warns = append(warns, Warning{
					Kind: KindRevealedBy, Severity: SeverityHard, Section: "clues",
					Message: fmt.Sprintf("clue %q lists %q in revealedBy, which is not a living character", c.ID, id),
				})
			}
		}
	}

	seen := make(map[string]bool, len(d.Clues))
	for i := range d.Clues {
		id := d.Clues[i].ID
		if seen[id] {
			warns = append(warns, Warning{
				Kind: KindDuplicateID, Severity: SeverityHard, Section: "clues",
				Message: fmt.Sprintf("duplicate clue id %q", id),
			})
		}
		seen[id] = true
	}

	warns = append(warns, checkCulprit(d)...)

	innocents := 0
	for i := range d.Characters {
		if !d.Characters[i].IsVictim && !d.Characters[i].IsGuilty {
			innocents++
		}
	}
	if innocents < 1 {
		warns = append(warns, Warning{
			Kind: KindSuspects, Severity: SeveritySoft, Section: "characters",
			Message: "no innocent suspect besides the culprit; the mystery cannot be solved by elimination",
		})
	}

	total := 0
	for i := range d.Clues {
		total += d.Clues[i].Points
	}
	if d.Scoring.MinimumPointsToAccuse > total {
		warns = append(warns, Warning{
			Kind: KindScoring, Severity: SeveritySoft, Section: "clues",
			Message: fmt.Sprintf("minimumPointsToAccuse (%d) exceeds the sum of all clue points (%d)", d.Scoring.MinimumPointsToAccuse, total),
		})
	}
	if d.Scoring.MinimumPointsToAccuse > d.Scoring.PerfectScoreThreshold {
		warns = append(warns, Warning{
			Kind: KindScoring, Severity: SeveritySoft, Section: "clues",
			Message: fmt.Sprintf("minimumPointsToAccuse (%d) exceeds perfectScoreThreshold (%d)", d.Scoring.MinimumPointsToAccuse, d.Scoring.PerfectScoreThreshold),
		})
	}

	counts := make(map[string]int, 4)
	for i := range d.Clues {
		counts[d.Clues[i].Category]++
	}
	for _, cm := range coverageMinimums {
		if counts[cm.category] < cm.min {
			warns = append(warns, Warning{
				Kind: KindCoverage, Severity: SeveritySoft, Section: "clues",
				Message: fmt.Sprintf("category %q has %d clues, needs at least %d", cm.category, counts[cm.category], cm.min),
			})
		}
	}

	return Result{Warnings: warns, IsPublishable: publishable(warns)}
}

func checkCulprit(d *t.Draft) []Warning {
	var warns []Warning
	guilty := 0
	for i := range d.Characters {
		if d.Characters[i].IsGuilty {
			guilty++
		}
	}
	if guilty > 1 {
		warns = append(warns, Warning{
			Kind: KindCulprit, Severity: SeverityHard, Section: "characters",
			Message: fmt.Sprintf("%d characters are flagged guilty; exactly one is allowed", guilty),
		})
	}
	c, ok := d.CharacterByID(d.Solution.Culprit)
	switch {
	case d.Solution.Culprit == "":
		warns = append(warns, Warning{
			Kind: KindCulprit, Severity: SeverityHard, Section: "solution",
			Message: "solution names no culprit",
		})
	case !ok:
		warns = append(warns, Warning{
			Kind: KindCulprit, Severity: SeverityHard, Section: "solution",
			Message: fmt.Sprintf("solution culprit %q is not in the cast", d.Solution.Culprit),
		})
	case !c.IsGuilty:
		warns = append(warns, Warning{
			Kind: KindCulprit, Severity: SeverityHard, Section: "solution",
			Message: fmt.Sprintf("solution culprit %q is not flagged guilty", d.Solution.Culprit),
		})
	}
	return warns
}

func publishable(warns []Warning) bool {
	for _, w := range warns {
		if w.Severity == SeverityHard {
			return false
		}
	}
	return true
}
