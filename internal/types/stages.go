package types

// Typed inputs and outputs for each pipeline stage. Outputs mirror the JSON
// schema the stage prompt demands, so a stage run is: marshal In → generate →
// extract JSON → decode Out → normalize.

type FoundationIn struct {
	Title   string `json:"title"`
	Setting string `json:"setting"`
	Premise string `json:"premise"`
}

type FoundationOut struct {
	Foundation Foundation `json:"foundation"`
	// TimelineSkeleton is the initial multi-event timeline (at least 6 events).
	TimelineSkeleton []string `json:"timeline"`
	// Solution is a placeholder at this stage; fields read "to be determined".
	Solution Solution `json:"solution"`
}

// CharacterInput is the minimal user-specified seed for one character.
type CharacterInput struct {
	TempID      string   `json:"tempId"`
	Name        string   `json:"name"`
	Role        string   `json:"role"`
	Description string   `json:"description"`
	Traits      []string `json:"traits,omitempty"`
	Secret      string   `json:"secret,omitempty"`
	IsVictim    bool     `json:"isVictim"`
}

type CharactersIn struct {
	Foundation Foundation       `json:"foundation"`
	Inputs     []CharacterInput `json:"inputs"`
	// Existing characters are passed for relationship consistency when
	// generating incrementally.
	Existing []Character `json:"existing,omitempty"`
}

type CharactersOut struct {
	Characters []Character `json:"characters"`
}

type CluesIn struct {
	Foundation Foundation  `json:"foundation"`
	Characters []Character `json:"characters"`
	CulpritID  string      `json:"culpritId"`
	Motive     string      `json:"motive"`
	Method     string      `json:"method"`
}

type CluesOut struct {
	Clues               []Clue  `json:"clues"`
	Scoring             Scoring `json:"scoring"`
	SolutionExplanation string  `json:"solutionExplanation"`
	GuiltyID            string  `json:"guiltyId"`
}

type TimelineIn struct {
	Foundation Foundation  `json:"foundation"`
	Characters []Character `json:"characters"`
	Clues      []Clue      `json:"clues"`
	Solution   Solution    `json:"solution"`
}

type TimelineOut struct {
	Timeline []string `json:"timeline"`
	// Knowledge maps character id to timeline-consistent knowledge fields.
	Knowledge map[string]Knowledge `json:"knowledge"`
}

type CaseFileIn struct {
	Setting    Setting     `json:"setting"`
	Timeline   []string    `json:"timeline"`
	Clues      []Clue      `json:"clues"`
	Characters []Character `json:"characters"`
	Solution   Solution    `json:"solution"`
}

type CaseFileOut struct {
	CaseFile CaseFile `json:"caseFile"`
}
