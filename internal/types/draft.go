package types

// Core records of the mystery draft. Field names in JSON match what the
// generation prompts ask the model to emit, so stage outputs decode straight
// into these types.

type Setting struct {
	Location   string `json:"location"`
	TimePeriod string `json:"timePeriod"`
	Atmosphere string `json:"atmosphere"`
}

// Foundation is the polished premise produced by the first stage. Immutable
// once characters exist, except via explicit regeneration.
type Foundation struct {
	Title     string  `json:"title"`
	Synopsis  string  `json:"synopsis"`
	CrimeType string  `json:"crimeType"`
	Setting   Setting `json:"setting"`
	Victim    string  `json:"victim"`
}

type Personality struct {
	Traits      []string `json:"traits"`
	SpeechStyle string   `json:"speechStyle"`
	Quirks      []string `json:"quirks"`
}

type Appearance struct {
	Description string `json:"description"`
	ImagePrompt string `json:"imagePrompt"`
}

// Knowledge is what a character knows, aligned with the timeline at stage 4.
type Knowledge struct {
	KnowsAboutCrime  string   `json:"knowsAboutCrime"`
	KnowsAboutOthers []string `json:"knowsAboutOthers"`
	Alibi            string   `json:"alibi"`
}

// Secret willingness levels, from the character enrichment prompt contract.
const (
	WillingnessNever      = "never"
	WillingnessIfPressed  = "ifPressed"
	WillingnessIfAccused  = "ifAccused"
	WillingnessVolunteers = "volunteers"
)

type Secret struct {
	Content         string `json:"content"`
	Willingness     string `json:"willingness"`
	RevealCondition string `json:"revealCondition"`
}

type UnderPressure struct {
	Defensive       string `json:"defensive"`
	WhenCaughtLying string `json:"whenCaughtLying"`
	WhenAccused     string `json:"whenAccused"`
}

type Character struct {
	ID     string `json:"id"`
	TempID string `json:"tempId,omitempty"`
	Name   string `json:"name"`
	Role   string `json:"role"`
	Age    int    `json:"age"`

	IsVictim bool `json:"isVictim"`
	IsGuilty bool `json:"isGuilty"`

	Personality Personality `json:"personality"`
	Appearance  Appearance  `json:"appearance"`
	Knowledge   Knowledge   `json:"knowledge"`

	// Statement is the case-file-style third-person summary shown to players.
	// Derived deterministically from the alibi, never generated.
	Statement string `json:"statement"`

	Secrets       []Secret          `json:"secrets"`
	UnderPressure UnderPressure     `json:"underPressure"`
	Relationships map[string]string `json:"relationships"`

	ImageURL string `json:"imageUrl,omitempty"`
}

// Clue categories. Evidence clues establish opportunity; relationship clues
// corroborate other testimony.
const (
	ClueMotive       = "motive"
	ClueAlibi        = "alibi"
	ClueEvidence     = "evidence"
	ClueRelationship = "relationship"
)

const (
	ImportanceLow      = "low"
	ImportanceMedium   = "medium"
	ImportanceHigh     = "high"
	ImportanceCritical = "critical"
)

type Clue struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Importance  string `json:"importance"`
	Points      int    `json:"points"`
	// RevealedBy holds ids of living characters able to reveal this clue.
	RevealedBy     []string `json:"revealedBy"`
	DetectionHints []string `json:"detectionHints"`
}

type Solution struct {
	Culprit     string `json:"culprit"`
	Method      string `json:"method"`
	Motive      string `json:"motive"`
	Explanation string `json:"explanation"`
}

type Scoring struct {
	MinimumPointsToAccuse int `json:"minimumPointsToAccuse"`
	PerfectScoreThreshold int `json:"perfectScoreThreshold"`
}

type CaseFile struct {
	VictimName        string   `json:"victimName"`
	VictimDescription string   `json:"victimDescription"`
	CauseOfDeath      string   `json:"causeOfDeath"`
	LastSeen          string   `json:"lastSeen"`
	LocationFound     string   `json:"locationFound"`
	DiscoveredBy      string   `json:"discoveredBy"`
	DiscoveryTime     string   `json:"discoveryTime"`
	TimeOfDeath       string   `json:"timeOfDeath"`
	InitialEvidence   []string `json:"initialEvidence"`
}

// Draft is the aggregate the pipeline builds up and the editor mutates.
// The orchestrator owns the authoritative copy; handlers operate on snapshots.
type Draft struct {
	ID string `json:"id"`
	// Input is the original author submission; section regeneration rebuilds
	// prompts from it.
	Input      StoryInput `json:"input"`
	Foundation Foundation `json:"foundation"`
	Characters []Character `json:"characters"`
	Clues      []Clue      `json:"clues"`
	Timeline   []string    `json:"timeline"`
	Solution   Solution    `json:"solution"`
	Scoring    Scoring     `json:"scoring"`
	CaseFile   CaseFile    `json:"caseFile"`

	// EditedSections suppresses clobbering user edits during cascades;
	// RegeneratingSections marks cascade targets currently being recomputed.
	EditedSections       map[string]bool `json:"editedSections,omitempty"`
	RegeneratingSections map[string]bool `json:"regeneratingSections,omitempty"`

	Published bool `json:"published"`
}

// CharacterByID returns the character with the given id.
func (d *Draft) CharacterByID(id string) (*Character, bool) {
	for i := range d.Characters {
		if d.Characters[i].ID == id {
			return &d.Characters[i], true
		}
	}
	return nil, false
}

// Culprit returns the character flagged guilty, if any.
func (d *Draft) Culprit() (*Character, bool) {
	for i := range d.Characters {
		if d.Characters[i].IsGuilty {
			return &d.Characters[i], true
		}
	}
	return nil, false
}

// LivingCharacterIDs returns ids of all non-victim characters.
func (d *Draft) LivingCharacterIDs() []string {
	out := make([]string, 0, len(d.Characters))
	for i := range d.Characters {
		if !d.Characters[i].IsVictim {
			out = append(out, d.Characters[i].ID)
		}
	}
	return out
}

// Clone returns a deep copy so editor snapshots never alias orchestrator state.
func (d *Draft) Clone() *Draft {
	if d == nil {
		return nil
	}
	out := *d
	out.Characters = make([]Character, len(d.Characters))
	for i, c := range d.Characters {
		cc := c
		cc.Personality.Traits = append([]string(nil), c.Personality.Traits...)
		cc.Personality.Quirks = append([]string(nil), c.Personality.Quirks...)
		cc.Knowledge.KnowsAboutOthers = append([]string(nil), c.Knowledge.KnowsAboutOthers...)
		cc.Secrets = append([]Secret(nil), c.Secrets...)
		if c.Relationships != nil {
			cc.Relationships = make(map[string]string, len(c.Relationships))
			for k, v := range c.Relationships {
				cc.Relationships[k] = v
			}
		}
		out.Characters[i] = cc
	}
	out.Clues = make([]Clue, len(d.Clues))
	for i, cl := range d.Clues {
		ccl := cl
		ccl.RevealedBy = append([]string(nil), cl.RevealedBy...)
		ccl.DetectionHints = append([]string(nil), cl.DetectionHints...)
		out.Clues[i] = ccl
	}
	out.Timeline = append([]string(nil), d.Timeline...)
	out.CaseFile.InitialEvidence = append([]string(nil), d.CaseFile.InitialEvidence...)
	out.EditedSections = copyBoolSet(d.EditedSections)
	out.RegeneratingSections = copyBoolSet(d.RegeneratingSections)
	return &out
}

func copyBoolSet(in map[string]bool) map[string]bool {
	if in == nil {
		return nil
	}
	out := make(map[string]bool, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
