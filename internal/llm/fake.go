package llm

import (
	"context"
)

// FakeClient returns deterministic fixtures per stage for offline runs and
// tests. The fixtures form one consistent miniature mystery (three
// characters, one victim) so a full fake pipeline run passes validation.
type FakeClient struct{}

func NewFakeClient() *FakeClient { return &FakeClient{} }

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	switch StageFrom(ctx) {
	case "foundation":
		return fakeFoundation, nil
	case "characters":
		return fakeCharacters, nil
	case "clues":
		return fakeClues, nil
	case "timelineAndKnowledge":
		return fakeTimeline, nil
	case "caseFile":
		return fakeCaseFile, nil
	case "deepCheck":
		return `{"issues": []}`, nil
	case "score":
		return `{"score": 72, "motivePoints": 22, "methodPoints": 20, "logicPoints": 30}`, nil
	default:
		return "{}", nil
	}
}

const fakeFoundation = `{
  "foundation": {
    "title": "The Glasshouse Vigil",
    "synopsis": "On the night of the winter auction, the owner of Hale's auction house is found dead among his own orchids.",
    "crimeType": "murder",
    "setting": {
      "location": "Hale's auction house, Ashford",
      "timePeriod": "1927",
      "atmosphere": "frost on the glasshouse panes, gaslight, old money under strain"
    },
    "victim": "Edmund Hale, 61, the auction house's exacting owner, found dead in the glasshouse he kept locked."
  },
  "timeline": [
    "6:00 PM - The winter auction preview opens; Edmund greets the buyers.",
    "7:30 PM - Edmund argues with someone in his office; raised voices are heard.",
    "8:15 PM - Edmund retires alone to the glasshouse as is his habit.",
    "8:40 PM - A tray of mulled wine is carried up from the kitchen.",
    "9:30 PM - The lights in the glasshouse go out.",
    "10:05 PM - Edmund is found dead among the orchids; the door is unlocked."
  ],
  "solution": {
    "culprit": "to be determined",
    "method": "to be determined",
    "motive": "to be determined",
    "explanation": "to be determined"
  }
}`

const fakeCharacters = `{
  "characters": [
    {
      "tempId": "t1",
      "name": "Edmund Hale",
      "role": "auction house owner",
      "age": 61,
      "isVictim": true,
      "personality": {
        "traits": ["exacting", "secretive", "proud"],
        "speechStyle": "clipped, formal",
        "quirks": ["polishes his spectacles when lying"]
      },
      "appearance": {
        "description": "A gaunt man in a velvet waistcoat, silver hair combed flat.",
        "imagePrompt": "portrait of a gaunt 1920s auctioneer in a velvet waistcoat, gaslight"
      },
      "knowledge": {
        "knowsAboutCrime": "",
        "knowsAboutOthers": [],
        "alibi": ""
      },
      "secrets": [
        {"content": "He rewrote his will two days before the auction.", "willingness": "never", "revealCondition": ""}
      ],
      "underPressure": {"defensive": "", "whenCaughtLying": "", "whenAccused": ""},
      "relationships": {"James Holloway": "employer of twenty years", "Clara Whitmore": "estranged niece"}
    },
    {
      "tempId": "t2",
      "name": "James Holloway",
      "role": "head clerk",
      "age": 48,
      "isVictim": false,
      "personality": {
        "traits": ["meticulous", "resentful", "soft-spoken"],
        "speechStyle": "quiet, over-precise",
        "quirks": ["counts on his fingers while thinking"]
      },
      "appearance": {
        "description": "A stooped man with ink-stained cuffs and careful eyes.",
        "imagePrompt": "portrait of a stooped 1920s clerk with ink-stained cuffs, dim office"
      },
      "knowledge": {
        "knowsAboutCrime": "He knows the glasshouse key was copied last month.",
        "knowsAboutOthers": ["He saw Clara near the office at half past seven."],
        "alibi": "I was in the ledger room totaling the preview bids (false)"
      },
      "secrets": [
        {"content": "He has been skimming consignment fees for years.", "willingness": "ifAccused", "revealCondition": "confronted with the ledgers"}
      ],
      "underPressure": {
        "defensive": "retreats into procedural detail",
        "whenCaughtLying": "blames faulty memory and produces paperwork",
        "whenAccused": "goes very still and demands evidence"
      },
      "relationships": {"Edmund Hale": "employer of twenty years", "Clara Whitmore": "polite but distant"}
    },
    {
      "tempId": "t3",
      "name": "Clara Whitmore",
      "role": "estranged niece",
      "age": 29,
      "isVictim": false,
      "personality": {
        "traits": ["sharp", "impulsive", "charming"],
        "speechStyle": "quick, ironic",
        "quirks": ["taps her cigarette case when nervous"]
      },
      "appearance": {
        "description": "A striking woman in a borrowed fur, eyes like her uncle's.",
        "imagePrompt": "portrait of a sharp-eyed 1920s woman in a fur stole, auction hall"
      },
      "knowledge": {
        "knowsAboutCrime": "She heard the argument in the office.",
        "knowsAboutOthers": ["She noticed Holloway leaving the glasshouse corridor."],
        "alibi": "I was in the gallery admiring the lots until ten"
      },
      "secrets": [
        {"content": "She came to ask Edmund to settle her debts.", "willingness": "ifPressed", "revealCondition": "asked about the argument"}
      ],
      "underPressure": {
        "defensive": "deflects with jokes",
        "whenCaughtLying": "admits small lies to hide larger ones",
        "whenAccused": "flares up, then goes quiet"
      },
      "relationships": {"Edmund Hale": "estranged uncle", "James Holloway": "polite but distant"}
    }
  ]
}`

const fakeClues = `{
  "clues": [
    {"id": "skimmed-ledgers", "description": "The consignment ledgers show years of small, regular shortfalls in Holloway's hand.", "category": "motive", "importance": "critical", "points": 20, "revealedBy": ["clara-whitmore"], "detectionHints": ["ledger", "money", "accounts"]},
    {"id": "rewritten-will", "description": "Edmund rewrote his will two days before the auction, cutting out longtime staff.", "category": "motive", "importance": "high", "points": 15, "revealedBy": ["clara-whitmore"], "detectionHints": ["will", "inheritance"]},
    {"id": "ledger-room-empty", "description": "The ledger room lamp was cold at nine; nobody had worked there that evening.", "category": "alibi", "importance": "critical", "points": 20, "revealedBy": ["clara-whitmore"], "detectionHints": ["ledger room", "lamp", "alibi"]},
    {"id": "copied-key", "description": "A wax-copied key to the glasshouse turned up in the clerk's desk drawer.", "category": "evidence", "importance": "critical", "points": 20, "revealedBy": ["james-holloway", "clara-whitmore"], "detectionHints": ["key", "glasshouse", "lock"]},
    {"id": "mulled-wine-tray", "description": "Two cups left the kitchen on the mulled wine tray, but only one came back.", "category": "evidence", "importance": "medium", "points": 10, "revealedBy": ["clara-whitmore"], "detectionHints": ["wine", "cup", "tray"]},
    {"id": "office-argument", "description": "The raised voices at half past seven were about money Edmund refused to forgive.", "category": "relationship", "importance": "medium", "points": 10, "revealedBy": ["clara-whitmore"], "detectionHints": ["argument", "office", "voices"]},
    {"id": "corridor-sighting", "description": "Holloway was seen in the glasshouse corridor shortly before the lights went out.", "category": "relationship", "importance": "high", "points": 15, "revealedBy": ["clara-whitmore"], "detectionHints": ["corridor", "saw", "seen"]},
    {"id": "ink-on-the-latch", "description": "A smear of ledger ink marks the inside latch of the glasshouse door.", "category": "evidence", "importance": "high", "points": 15, "revealedBy": ["james-holloway"], "detectionHints": ["ink", "latch", "door"]}
  ],
  "scoring": {"minimumPointsToAccuse": 60, "perfectScoreThreshold": 125},
  "solutionExplanation": "James Holloway had skimmed the consignment accounts for years. When Edmund's new will and a planned audit threatened exposure, Holloway let himself into the locked glasshouse with a copied key, poisoned the second cup of mulled wine, and slipped out, leaving the ledger room dark and his alibi empty.",
  "guiltyId": "james-holloway"
}`

const fakeTimeline = `{
  "timeline": [
    "6:00 PM - The winter auction preview opens; Edmund greets the buyers.",
    "7:30 PM - Edmund and Clara argue in the office over her debts; Holloway listens from the corridor.",
    "8:15 PM - Edmund retires alone to the locked glasshouse with his ledger of private sales.",
    "8:40 PM - Holloway intercepts the mulled wine tray and carries both cups up himself.",
    "9:10 PM - Holloway enters the glasshouse with the copied key; ink from his cuff marks the latch.",
    "9:30 PM - The glasshouse lights go out; Holloway returns by the service stair.",
    "10:05 PM - Clara finds the door unlocked and her uncle dead among the orchids."
  ],
  "knowledge": {
    "james-holloway": {
      "knowsAboutCrime": "He knows exactly how the glasshouse was entered and that the second cup is missing.",
      "knowsAboutOthers": ["He heard Clara's argument with Edmund and plans to point suspicion at her debts."],
      "alibi": "I was in the ledger room totaling the preview bids (false)"
    },
    "clara-whitmore": {
      "knowsAboutCrime": "She found the body and noticed the door was unlocked when it should not have been.",
      "knowsAboutOthers": ["She saw Holloway in the glasshouse corridor before the lights went out.", "She knows the ledger room was dark all evening."],
      "alibi": "I was in the gallery admiring the lots until ten"
    }
  }
}`

const fakeCaseFile = `{
  "caseFile": {
    "victimName": "Edmund Hale",
    "victimDescription": "Owner of Hale's auction house, 61, exacting and secretive.",
    "causeOfDeath": "Poisoning, administered in a cup of mulled wine.",
    "lastSeen": "Retiring alone to the glasshouse at a quarter past eight.",
    "locationFound": "Among the orchid benches in the locked glasshouse.",
    "discoveredBy": "Clara Whitmore, his niece",
    "discoveryTime": "10:05 PM",
    "timeOfDeath": "Between 9:00 and 9:30 PM",
    "initialEvidence": [
      "The glasshouse door was unlocked despite Edmund's habit of locking it.",
      "A single cup of mulled wine sits beside the body; the kitchen sent two.",
      "The glasshouse lights were switched off at the wall, not the bench."
    ]
  }
}`
