package pipeline

import (
	"fmt"
	"regexp"
	"strings"
)

// The player-facing statement is derived from the alibi with fixed rewrite
// rules, never via generation, so editing a character can never silently
// change what the case file already told the player.

var parenthetical = regexp.MustCompile(`\s*\([^)]*\)`)
var multiSpace = regexp.MustCompile(`\s{2,}`)

// firstPerson maps alibi openings to their third-person rewrites.
var firstPerson = []struct{ prefix, rewrite string }{
	{"i was ", "Claims to have been "},
	{"i saw ", "Claims to have seen "},
	{"i heard ", "Claims to have heard "},
}

// DeriveStatement rewrites a first-person alibi into the case-file-style
// third-person summary shown to players. Truth/falsity annotations in
// parentheses are stripped; an empty or too-short alibi yields a generic
// statement naming the character.
func DeriveStatement(name, alibi string) string {
	cleaned := parenthetical.ReplaceAllString(alibi, "")
	cleaned = multiSpace.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)
	cleaned = strings.TrimSuffix(cleaned, ".")

	if len(cleaned) < 5 {
		return fmt.Sprintf("%s has not given a clear account of their whereabouts.", name)
	}

	lower := strings.ToLower(cleaned)
	for _, fp := range firstPerson {
		if strings.HasPrefix(lower, fp.prefix) {
			return fp.rewrite + cleaned[len(fp.prefix):]
		}
	}
	return fmt.Sprintf("Claims: %q", cleaned)
}
