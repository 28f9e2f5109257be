package types

import (
	"fmt"
	"testing"

	"caseforge/internal/tester"
)

func sampleInput(cast int) StoryInput {
	chars := make([]CharacterInput, 0, cast)
	for i := 0; i < cast; i++ {
		chars = append(chars, CharacterInput{
			TempID:   fmt.Sprintf("t%d", i+1),
			Name:     fmt.Sprintf("Character %d", i+1),
			Role:     "guest",
			IsVictim: i == 0,
		})
	}
	return StoryInput{
		Title:         "The Glasshouse Vigil",
		Setting:       "an auction house in 1927",
		Premise:       "The owner is found dead among his orchids on auction night.",
		Characters:    chars,
		CulpritTempID: "t2",
		Motive:        "inheritance dispute",
		Method:        "poisoning",
	}
}

func TestInputMinimumCast(t *testing.T) {
	in := sampleInput(MinCharacters)
	tester.NoErr(t, in.Validate(), "exactly the minimum cast must pass")

	in = sampleInput(MinCharacters - 1)
	err := in.Validate()
	tester.Err(t, err, "one character below the minimum must be rejected")
	verr, ok := err.(*ValidationError)
	tester.True(t, ok, "expected a ValidationError")
	tester.Eq(t, verr.Field, "characters")
}

func TestInputVictimCount(t *testing.T) {
	in := sampleInput(4)
	in.Characters[0].IsVictim = false
	tester.Err(t, in.Validate(), "no victim must be rejected")

	in = sampleInput(4)
	in.Characters[3].IsVictim = true
	tester.Err(t, in.Validate(), "two victims must be rejected")
}

func TestInputCulpritRules(t *testing.T) {
	in := sampleInput(3)
	in.CulpritTempID = ""
	tester.Err(t, in.Validate(), "unselected culprit must be rejected")

	in = sampleInput(3)
	in.CulpritTempID = "t9"
	tester.Err(t, in.Validate(), "culprit must match a character")

	in = sampleInput(3)
	in.CulpritTempID = "t1"
	tester.Err(t, in.Validate(), "the victim cannot be the culprit")
}

func TestInputRequiredFields(t *testing.T) {
	in := sampleInput(3)
	in.Premise = "too short"
	tester.Err(t, in.Validate())

	in = sampleInput(3)
	in.Characters[1].TempID = in.Characters[2].TempID
	tester.Err(t, in.Validate(), "duplicate temp ids must be rejected")

	in = sampleInput(3)
	in.Motive = " "
	tester.Err(t, in.Validate())

	in = sampleInput(3)
	in.Method = ""
	tester.Err(t, in.Validate())
}
