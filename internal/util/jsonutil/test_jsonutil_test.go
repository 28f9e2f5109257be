package jsonutil

import (
	"errors"
	"testing"

	"caseforge/internal/tester"
)

func TestExtractDirect(t *testing.T) {
	raw, err := Extract(`{"title": "The Glasshouse Vigil"}`)
	tester.NoErr(t, err)
	tester.Eq(t, string(raw), `{"title": "The Glasshouse Vigil"}`)
}

func TestExtractFenced(t *testing.T) {
	text := "Here is the result you asked for:\n```json\n{\"clues\": []}\n```\nLet me know if you need changes."
	raw, err := Extract(text)
	tester.NoErr(t, err)
	tester.Eq(t, string(raw), `{"clues": []}`)

	// Bare fence without a language tag.
	raw, err = Extract("```\n[1, 2, 3]\n```")
	tester.NoErr(t, err)
	tester.Eq(t, string(raw), `[1, 2, 3]`)
}

func TestExtractBalancedFromProse(t *testing.T) {
	text := `The draft looks solid. {"score": 72, "note": "a brace } inside a string"} Hope that helps!`
	raw, err := Extract(text)
	tester.NoErr(t, err)

	var out struct {
		Score int    `json:"score"`
		Note  string `json:"note"`
	}
	tester.NoErr(t, UnmarshalFlex(raw, &out))
	tester.Eq(t, out.Score, 72)
	tester.Eq(t, out.Note, "a brace } inside a string")
}

func TestExtractFailsWithoutJSON(t *testing.T) {
	_, err := Extract("I could not produce a valid response this time.")
	tester.True(t, errors.Is(err, ErrUnparsable))

	_, err = Extract("")
	tester.True(t, errors.Is(err, ErrUnparsable))

	_, err = Extract(`{"unterminated": true`)
	tester.True(t, errors.Is(err, ErrUnparsable))
}

func TestDecodeTypeMismatchIsParseFailure(t *testing.T) {
	var out struct {
		Count int `json:"count"`
	}
	err := Decode(`{"count": "eight"}`, &out)
	tester.True(t, errors.Is(err, ErrUnparsable))
}

func TestDecodeNormalizesDoubleEscapes(t *testing.T) {
	var out struct {
		Note string `json:"note"`
	}
	tester.NoErr(t, Decode(`{"note": "bids > 500 guineas"}`, &out))
	tester.Eq(t, out.Note, "bids > 500 guineas")
}

func TestMarshalNoEscapeKeepsAngleBrackets(t *testing.T) {
	b, err := MarshalNoEscape(map[string]string{"k": "a<b>c&d"})
	tester.NoErr(t, err)
	tester.Eq(t, string(b), `{"k":"a<b>c&d"}`)
}
