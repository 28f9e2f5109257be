package types

import (
	"fmt"
	"strings"
)

// MinCharacters is the smallest cast a solvable mystery needs: a victim plus
// at least two living suspects.
const MinCharacters = 3

// StoryInput is everything the author supplies before generation starts.
type StoryInput struct {
	Title      string           `json:"title"`
	Setting    string           `json:"setting"`
	Premise    string           `json:"premise"`
	Characters []CharacterInput `json:"characters"`
	// CulpritTempID names the guilty character by its client-assigned temp id.
	CulpritTempID string `json:"culpritTempId"`
	Motive        string `json:"motive"`
	Method        string `json:"method"`
}

// ValidationError is reported synchronously, before any generation call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Message)
}

// Validate rejects incomplete input so no partial draft state is ever created.
func (in *StoryInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if len(strings.TrimSpace(in.Premise)) < 10 {
		return &ValidationError{Field: "premise", Message: "premise must be at least 10 characters"}
	}
	if len(in.Characters) < MinCharacters {
		return &ValidationError{
			Field:   "characters",
			Message: fmt.Sprintf("at least %d characters are required, got %d", MinCharacters, len(in.Characters)),
		}
	}
	victims := 0
	tempIDs := make(map[string]bool, len(in.Characters))
	for i, c := range in.Characters {
		if strings.TrimSpace(c.Name) == "" {
			return &ValidationError{Field: fmt.Sprintf("characters[%d].name", i), Message: "name is required"}
		}
		if c.TempID != "" {
			if tempIDs[c.TempID] {
				return &ValidationError{Field: fmt.Sprintf("characters[%d].tempId", i), Message: "duplicate temp id " + c.TempID}
			}
			tempIDs[c.TempID] = true
		}
		if c.IsVictim {
			victims++
		}
	}
	if victims != 1 {
		return &ValidationError{Field: "characters", Message: fmt.Sprintf("exactly one victim is required, got %d", victims)}
	}
	if strings.TrimSpace(in.CulpritTempID) == "" {
		return &ValidationError{Field: "culpritTempId", Message: "a culprit must be selected"}
	}
	var culprit *CharacterInput
	for i := range in.Characters {
		if in.Characters[i].TempID == in.CulpritTempID {
			culprit = &in.Characters[i]
			break
		}
	}
	if culprit == nil {
		return &ValidationError{Field: "culpritTempId", Message: "culprit does not match any character"}
	}
	if culprit.IsVictim {
		return &ValidationError{Field: "culpritTempId", Message: "the victim cannot be the culprit"}
	}
	if strings.TrimSpace(in.Motive) == "" {
		return &ValidationError{Field: "motive", Message: "motive is required"}
	}
	if strings.TrimSpace(in.Method) == "" {
		return &ValidationError{Field: "method", Message: "method is required"}
	}
	return nil
}
